package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	duerr "github.com/gongahkia/dueday/internal/errors"
)

// run executes the command tree in-process against a database and config
// file under dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	full := append([]string{
		"--config", filepath.Join(dir, "config.toml"),
		"--db", filepath.Join(dir, "tasks.db"),
	}, args...)
	root.SetArgs(full)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) {
	t.Helper()
	cfg := "default_timezone = \"UTC\"\ncolor = \"never\"\nlog_level = \"error\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestAddListDoneDelete(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)

	out, err := run(t, dir, "add", "Pay rent monthly high priority")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Added #1 Pay rent") {
		t.Errorf("unexpected add output:\n%s", out)
	}
	if !strings.Contains(out, "monthly") || !strings.Contains(out, "High") {
		t.Errorf("expected rule and priority in detail:\n%s", out)
	}

	out, err = run(t, dir, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Pay rent") || !strings.Contains(out, "(monthly)") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	out, err = run(t, dir, "next", "1")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, strings.TrimSpace(out)); err != nil {
		t.Errorf("next printed %q: %v", out, err)
	}

	out, err = run(t, dir, "done", "#1")
	if err != nil {
		t.Fatalf("done: %v", err)
	}
	if !strings.Contains(out, "Completed #1") || !strings.Contains(out, "Next #2") {
		t.Errorf("unexpected done output:\n%s", out)
	}

	out, err = run(t, dir, "list", "--all")
	if err != nil {
		t.Fatalf("list --all: %v", err)
	}
	if !strings.Contains(out, "[x]") || strings.Count(out, "Pay rent") != 2 {
		t.Errorf("expected completed and spawned task:\n%s", out)
	}

	if _, err := run(t, dir, "delete", "2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, _ = run(t, dir, "list")
	if !strings.Contains(out, "No tasks.") {
		t.Errorf("expected empty list, got:\n%s", out)
	}
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	if _, err := run(t, dir, "add", "Water plants every 3 days"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, dir, "done", "1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"already completed", []string{"done", "1"}, 2},
		{"missing task", []string{"done", "99"}, 3},
		{"bad id", []string{"next", "abc"}, 2},
		{"bad category", []string{"list", "--category", "Chores"}, 2},
		{"inverted range", []string{"calendar", "--from", "2025-06-10", "--to", "2025-06-01"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := duerr.ExitCode(err); got != tt.code {
				t.Errorf("ExitCode(%v) = %d, want %d", err, got, tt.code)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	out, err := run(t, dir, "parse", "--json", "Take medicine every day at 8am")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got["cleanedTitle"] != "Take medicine" || got["recurrencePattern"] != "daily" {
		t.Errorf("unexpected parse: %v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "tasks.db")); !os.IsNotExist(err) {
		t.Error("parse should not open the task store")
	}
}

func TestImportCalendarExport(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	csv := filepath.Join(dir, "tasks.csv")
	content := "title,category,due\nDentist,Health,06/03/2025\n,Home,\n"
	if err := os.WriteFile(csv, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dir, "import", "--quiet", "--dry-run", csv)
	if err != nil {
		t.Fatalf("import --dry-run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 of 2 entries would be imported") {
		t.Errorf("unexpected dry run output:\n%s", out)
	}
	if out, _ := run(t, dir, "list"); !strings.Contains(out, "No tasks.") {
		t.Errorf("dry run saved tasks:\n%s", out)
	}

	out, err = run(t, dir, "import", "--quiet", csv)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Imported 1 of 2 entries") {
		t.Errorf("unexpected import output:\n%s", out)
	}

	out, err = run(t, dir, "calendar", "--json", "--from", "2025-06-01", "--to", "2025-06-07")
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	var occ []struct {
		DueDate time.Time `json:"dueDate"`
		Task    struct {
			Text string `json:"text"`
		} `json:"task"`
	}
	if err := json.Unmarshal([]byte(out), &occ); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(occ) != 1 || occ[0].Task.Text != "Dentist" || occ[0].DueDate.Day() != 3 {
		t.Errorf("unexpected occurrences: %+v", occ)
	}

	out, err = run(t, dir, "calendar", "--from", "2025-07-01", "--to", "2025-07-02")
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if !strings.Contains(out, "Nothing due.") {
		t.Errorf("expected empty calendar, got:\n%s", out)
	}

	icsPath := filepath.Join(dir, "out.ics")
	if out, err := run(t, dir, "export", icsPath); err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	data, err := os.ReadFile(icsPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "BEGIN:VTODO") || !strings.Contains(string(data), "Dentist") {
		t.Errorf("unexpected export:\n%s", data)
	}
}

func TestCalendarRange(t *testing.T) {
	now := time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)
	start, end, err := calendarRange("", "", now, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if end.Day() != 17 || end.Hour() != 23 {
		t.Errorf("end = %v", end)
	}

	_, end, err = calendarRange("2025-06-01", "2025-06-02", now, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if end.Day() != 2 || end.Hour() != 23 {
		t.Errorf("date-only --to should cover the day, got %v", end)
	}

	if _, _, err := calendarRange("soon", "", now, time.UTC); err == nil {
		t.Error("expected error for bad --from")
	}
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	out, err := run(t, dir, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}

	if _, err := run(t, dir, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := run(t, dir, "config", "init"); err == nil {
		t.Error("expected init to refuse overwriting")
	}

	out, err = run(t, dir, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "default_timezone") || !strings.Contains(out, "max_occurrences") {
		t.Errorf("unexpected config show:\n%s", out)
	}
}

func TestCompletion(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "dueday") {
		t.Errorf("completion script does not mention dueday")
	}
	if _, err := run(t, dir, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
