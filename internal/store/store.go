// Package store persists tasks in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/model"
)

// timeLayout has fixed-width fractions so stored instants sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db    *sql.DB
	retry *duerr.RetryConfig
	now   func() time.Time
}

// Filter narrows List. The zero value lists open tasks of every category.
type Filter struct {
	IncludeCompleted bool
	Category         model.Category
	DueBefore        *time.Time
	SeriesID         int64
}

// NextFunc decides, inside the completion transaction, which task replaces
// done. Returning nil ends the series.
type NextFunc func(done model.Task) *model.Task

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, retry: duerr.DefaultRetryConfig(), now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, &duerr.StoreError{Op: "migrate", Err: err}
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL,
	text TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT 'Others',
	due_date TEXT DEFAULT NULL,
	priority TEXT NOT NULL DEFAULT 'Medium',
	is_recurring INTEGER NOT NULL DEFAULT 0,
	recurrence_pattern TEXT NOT NULL DEFAULT 'none',
	recurrence_interval INTEGER NOT NULL DEFAULT 1,
	recurrence_ends_at TEXT DEFAULT NULL,
	original_task_id INTEGER DEFAULT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	completed_at TEXT DEFAULT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(completed, due_date);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns adds columns introduced after the first schema.
func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"color":                  "ALTER TABLE tasks ADD COLUMN color TEXT NOT NULL DEFAULT '';",
		"recurrence_custom_rule": "ALTER TABLE tasks ADD COLUMN recurrence_custom_rule TEXT NOT NULL DEFAULT '';",
		"next_due_date":          "ALTER TABLE tasks ADD COLUMN next_due_date TEXT DEFAULT NULL;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

const taskColumns = `id, uid, text, notes, category, color, due_date, priority, is_recurring,
	recurrence_pattern, recurrence_interval, recurrence_ends_at, recurrence_custom_rule,
	original_task_id, next_due_date, completed, completed_at, created_at, updated_at`

// Create inserts t and fills in its ID, UID and timestamps.
func (s *Store) Create(ctx context.Context, t *model.Task) error {
	return s.write("create", func() error {
		return insert(ctx, s.db, t, s.now())
	})
}

func (s *Store) Get(ctx context.Context, id int64) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?;`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, notFound(id)
	}
	if err != nil {
		return model.Task{}, &duerr.StoreError{Op: "get", Err: err}
	}
	return t, nil
}

// List returns tasks ordered by due date, undated tasks last.
func (s *Store) List(ctx context.Context, f Filter) ([]model.Task, error) {
	var where []string
	var args []any
	if !f.IncludeCompleted {
		where = append(where, "completed = 0")
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.DueBefore != nil {
		where = append(where, "due_date IS NOT NULL AND due_date < ?")
		args = append(args, formatTime(*f.DueBefore))
	}
	if f.SeriesID != 0 {
		where = append(where, "(id = ? OR original_task_id = ?)")
		args = append(args, f.SeriesID, f.SeriesID)
	}
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY due_date IS NULL, due_date, id;"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &duerr.StoreError{Op: "list", Busy: isBusy(err), Err: err}
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, &duerr.StoreError{Op: "list", Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &duerr.StoreError{Op: "list", Err: err}
	}
	return tasks, nil
}

// Update overwrites every mutable column of the task with t.ID.
func (s *Store) Update(ctx context.Context, t *model.Task) error {
	return s.write("update", func() error {
		t.UpdatedAt = s.now().UTC()
		res, err := s.db.ExecContext(ctx, `UPDATE tasks SET text = ?, notes = ?, category = ?, color = ?, due_date = ?,
	priority = ?, is_recurring = ?, recurrence_pattern = ?, recurrence_interval = ?, recurrence_ends_at = ?,
	recurrence_custom_rule = ?, next_due_date = ?, completed = ?, completed_at = ?, updated_at = ? WHERE id = ?;`,
			t.Text, t.Notes, string(t.Category), t.Color, nullTime(t.DueDate),
			string(t.Priority), boolInt(t.IsRecurring), string(t.Rule.Pattern), t.Rule.Interval, nullTime(t.Rule.EndsAt),
			t.CustomRule, nullTime(t.NextDueDate), boolInt(t.Completed), nullTime(t.CompletedAt), formatTime(t.UpdatedAt), t.ID)
		return expectRow(res, err, t.ID)
	})
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.write("delete", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
		return expectRow(res, err, id)
	})
}

// Complete marks the task done and, when next returns a task, inserts it in
// the same transaction. The spawned task always belongs to the same series.
func (s *Store) Complete(ctx context.Context, id int64, completedAt time.Time, next NextFunc) (model.Task, *model.Task, error) {
	var done model.Task
	var spawned *model.Task
	err := s.write("complete", func() error {
		spawned = nil
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		done, err = scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?;`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(id)
		}
		if err != nil {
			return err
		}
		if done.Completed {
			return &duerr.ValidationError{Field: "completed", Message: "task " + strconv.FormatInt(id, 10) + " is already completed"}
		}

		now := s.now().UTC()
		at := completedAt.UTC()
		done.Completed = true
		done.CompletedAt = &at
		done.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET completed = 1, completed_at = ?, updated_at = ? WHERE id = ?;`,
			formatTime(at), formatTime(now), id); err != nil {
			return err
		}

		if next != nil {
			if t := next(done); t != nil {
				series := done.SeriesID()
				t.ID = 0
				t.UID = ""
				t.OriginalTaskID = &series
				t.Completed = false
				t.CompletedAt = nil
				t.CreatedAt = time.Time{}
				if err := insert(ctx, tx, t, now); err != nil {
					return err
				}
				spawned = t
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return model.Task{}, nil, err
	}
	return done, spawned, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, t *model.Task, now time.Time) error {
	now = now.UTC()
	if t.UID == "" {
		t.UID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	res, err := db.ExecContext(ctx, `INSERT INTO tasks (uid, text, notes, category, color, due_date, priority, is_recurring,
	recurrence_pattern, recurrence_interval, recurrence_ends_at, recurrence_custom_rule, original_task_id, next_due_date,
	completed, completed_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		t.UID, t.Text, t.Notes, string(t.Category), t.Color, nullTime(t.DueDate), string(t.Priority), boolInt(t.IsRecurring),
		string(t.Rule.Pattern), t.Rule.Interval, nullTime(t.Rule.EndsAt), t.CustomRule, nullInt(t.OriginalTaskID), nullTime(t.NextDueDate),
		boolInt(t.Completed), nullTime(t.CompletedAt), formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, error) {
	var t model.Task
	var category, priority, pattern string
	var recurring, completed int
	var due, endsAt, nextDue, completedAt sql.NullString
	var original sql.NullInt64
	var created, updated string

	if err := row.Scan(&t.ID, &t.UID, &t.Text, &t.Notes, &category, &t.Color, &due, &priority, &recurring,
		&pattern, &t.Rule.Interval, &endsAt, &t.CustomRule,
		&original, &nextDue, &completed, &completedAt, &created, &updated); err != nil {
		return t, err
	}
	t.Category = model.Category(category)
	t.Priority = model.Priority(priority)
	t.Rule.Pattern = model.Pattern(pattern)
	t.IsRecurring = recurring == 1
	t.Completed = completed == 1
	t.DueDate = parseNullTime(due)
	t.Rule.EndsAt = parseNullTime(endsAt)
	t.NextDueDate = parseNullTime(nextDue)
	t.CompletedAt = parseNullTime(completedAt)
	if original.Valid {
		v := original.Int64
		t.OriginalTaskID = &v
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return t, nil
}

// write runs fn, retrying while the database is locked.
func (s *Store) write(op string, fn func() error) error {
	err := duerr.Retry(s.retry, func() error {
		err := fn()
		if isBusy(err) {
			return &duerr.StoreError{Op: op, Busy: true, Err: err}
		}
		return err
	})
	if err == nil {
		return nil
	}
	var validErr *duerr.ValidationError
	var nf *duerr.NotFoundError
	var storeErr *duerr.StoreError
	if errors.As(err, &validErr) || errors.As(err, &nf) || errors.As(err, &storeErr) {
		return err
	}
	return &duerr.StoreError{Op: op, Err: err}
}

func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

func expectRow(res sql.Result, err error, id int64) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id int64) error {
	return &duerr.NotFoundError{Kind: "task", ID: strconv.FormatInt(id, 10)}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	if path == ":memory:" {
		return "file::memory:?_pragma=busy_timeout(5000)"
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
