package ics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gongahkia/dueday/internal/model"
)

func TestParseTodo(t *testing.T) {
	icsData := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VTODO
UID:todo-1
DTSTAMP:20250611T100000Z
SUMMARY:Pay rent
DESCRIPTION:Transfer before noon
CATEGORIES:Finance
DUE:20250701T090000Z
PRIORITY:1
RRULE:FREQ=MONTHLY;UNTIL=20251231T235959Z
END:VTODO
END:VCALENDAR`

	result, err := NewParser().Parse(context.Background(), strings.NewReader(icsData), time.UTC)
	if err != nil {
		t.Fatalf("Failed to parse ICS: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d (%s)", len(result.Items), result.Summary())
	}

	task := result.Items[0]
	if task.Text != "Pay rent" || task.Notes != "Transfer before noon" {
		t.Errorf("unexpected text %q / %q", task.Text, task.Notes)
	}
	if task.Category != model.CategoryFinance {
		t.Errorf("Expected Finance, got %s", task.Category)
	}
	if task.Priority != model.PriorityHigh {
		t.Errorf("Expected High priority, got %q", task.Priority)
	}
	if task.DueDate == nil || !task.DueDate.Equal(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected due %v", task.DueDate)
	}
	if task.Rule.Pattern != model.PatternMonthly || task.Rule.Interval != 1 || task.Rule.EndsAt == nil {
		t.Errorf("unexpected rule %+v", task.Rule)
	}
	if !task.IsRecurring {
		t.Error("expected a recurring task")
	}
}

func TestParseEventWithTZID(t *testing.T) {
	icsData := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
UID:event-1
DTSTAMP:20250611T100000Z
SUMMARY:Standup
DTSTART;TZID=Asia/Kolkata:20250612T093000
RRULE:FREQ=DAILY;INTERVAL=2
END:VEVENT
BEGIN:VEVENT
UID:event-2
DTSTAMP:20250611T100000Z
SUMMARY:Holiday
DTSTART;VALUE=DATE:20251225
END:VEVENT
END:VCALENDAR`

	result, err := NewParser().Parse(context.Background(), strings.NewReader(icsData), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result.Items))
	}

	standup := result.Items[0]
	kolkata, _ := time.LoadLocation("Asia/Kolkata")
	if !standup.DueDate.Equal(time.Date(2025, 6, 12, 9, 30, 0, 0, kolkata)) {
		t.Errorf("unexpected standup due %s", standup.DueDate)
	}
	if standup.Rule.Pattern != model.PatternDaily || standup.Rule.Interval != 2 {
		t.Errorf("unexpected rule %+v", standup.Rule)
	}

	holiday := result.Items[1]
	if !holiday.DueDate.Equal(time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)) || holiday.IsRecurring {
		t.Errorf("unexpected holiday %+v", holiday)
	}
}

func TestParseUnsupportedRuleBecomesCustom(t *testing.T) {
	icsData := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VTODO
UID:todo-2
DTSTAMP:20250611T100000Z
SUMMARY:Board meeting
DUE:20250707T090000Z
RRULE:FREQ=MONTHLY;BYDAY=1MO
END:VTODO
END:VCALENDAR`

	result, err := NewParser().Parse(context.Background(), strings.NewReader(icsData), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result.Items))
	}
	task := result.Items[0]
	if task.Rule.Pattern != model.PatternCustom || task.CustomRule != "FREQ=MONTHLY;BYDAY=1MO" {
		t.Errorf("expected custom rule, got %+v %q", task.Rule, task.CustomRule)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected a warning, got %v", result.Warnings)
	}
}

func TestParseCollectsBadComponents(t *testing.T) {
	icsData := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VTODO
UID:no-summary
DTSTAMP:20250611T100000Z
END:VTODO
BEGIN:VTODO
UID:bad-due
DTSTAMP:20250611T100000Z
SUMMARY:Broken
DUE:tomorrow
END:VTODO
BEGIN:VTODO
UID:fine
DTSTAMP:20250611T100000Z
SUMMARY:Fine
END:VTODO
END:VCALENDAR`

	result, err := NewParser().Parse(context.Background(), strings.NewReader(icsData), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if result.SuccessCount() != 1 || len(result.Errors) != 2 || result.Total != 3 {
		t.Errorf("unexpected result: %s", result.Summary())
	}
	if result.Errors[0].Where != "no-summary" {
		t.Errorf("expected first error for no-summary, got %+v", result.Errors[0])
	}
}

func TestParseInvalidFile(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), strings.NewReader("this is not a calendar"), time.UTC)
	if err == nil {
		t.Fatal("expected an error for a non-iCalendar file")
	}
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewParser().Parse(ctx, strings.NewReader(""), time.UTC); err == nil {
		t.Error("expected context error")
	}
}
