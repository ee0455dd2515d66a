package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	duerr "github.com/gongahkia/dueday/internal/errors"
)

type Pattern string

const (
	PatternNone    Pattern = "none"
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
	PatternYearly  Pattern = "yearly"
	PatternCustom  Pattern = "custom"
)

var patterns = []Pattern{PatternNone, PatternDaily, PatternWeekly, PatternMonthly, PatternYearly, PatternCustom}

// Patterns lists every recurrence pattern in declaration order.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// ParsePattern accepts any casing. An empty string is PatternNone.
func ParsePattern(s string) (Pattern, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PatternNone, nil
	}
	for _, p := range patterns {
		if string(p) == s {
			return p, nil
		}
	}
	return PatternNone, &duerr.ValidationError{Field: "recurrencePattern", Message: fmt.Sprintf("unknown pattern %q", s)}
}

// Expandable reports whether occurrences can be computed for p.
func (p Pattern) Expandable() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternYearly:
		return true
	}
	return false
}

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityNone, nil
	case "high":
		return PriorityHigh, nil
	case "medium", "normal":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	return PriorityNone, &duerr.ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", s)}
}

// MarshalJSON writes PriorityNone as null.
func (p Priority) MarshalJSON() ([]byte, error) {
	if p == PriorityNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

// UnmarshalJSON accepts null or any casing ParsePriority accepts.
func (p *Priority) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = PriorityNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ICalPriority maps to the RFC 5545 PRIORITY scale, 0 meaning undefined.
func (p Priority) ICalPriority() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 5
	case PriorityLow:
		return 9
	}
	return 0
}

// PriorityFromICal is the inverse of ICalPriority using the RFC 5545 bands.
func PriorityFromICal(v int) Priority {
	switch {
	case v >= 1 && v <= 4:
		return PriorityHigh
	case v == 5:
		return PriorityMedium
	case v >= 6 && v <= 9:
		return PriorityLow
	}
	return PriorityNone
}

// RecurrenceRule describes how a task repeats. EndsAt is inclusive.
type RecurrenceRule struct {
	Pattern  Pattern    `json:"recurrencePattern"`
	Interval int        `json:"recurrenceInterval"`
	EndsAt   *time.Time `json:"recurrenceEndsAt"`
}

// MaxInterval bounds RecurrenceRule.Interval so stepping arithmetic cannot
// overflow.
const MaxInterval = 1000

// Normalize clamps the interval to [1, MaxInterval] and fills an empty pattern.
func (r RecurrenceRule) Normalize() RecurrenceRule {
	if r.Pattern == "" {
		r.Pattern = PatternNone
	}
	if r.Interval < 1 {
		r.Interval = 1
	}
	if r.Interval > MaxInterval {
		r.Interval = MaxInterval
	}
	return r
}

func (r RecurrenceRule) IsRecurring() bool {
	return r.Pattern != "" && r.Pattern != PatternNone
}

func (r RecurrenceRule) String() string {
	r = r.Normalize()
	if !r.IsRecurring() {
		return "none"
	}
	s := string(r.Pattern)
	if r.Interval > 1 {
		s = fmt.Sprintf("%s/%d", r.Pattern, r.Interval)
	}
	if r.EndsAt != nil {
		s += " until " + r.EndsAt.Format("2006-01-02")
	}
	return s
}

// ParsedTask is the result of interpreting a free-text task description.
type ParsedTask struct {
	OriginalTitle string     `json:"originalTitle"`
	CleanedTitle  string     `json:"cleanedTitle"`
	DueDate       *time.Time `json:"dueDate"`
	Priority      Priority   `json:"priority"`
	RecurrenceRule
}

type Category string

const (
	CategoryHome      Category = "Home"
	CategoryWork      Category = "Work"
	CategorySports    Category = "Sports"
	CategoryActivity  Category = "Activity"
	CategoryGroceries Category = "Groceries"
	CategoryShopping  Category = "Shopping"
	CategoryHealth    Category = "Health"
	CategoryFinance   Category = "Finance"
	CategoryPersonal  Category = "Personal"
	CategoryOthers    Category = "Others"
)

var categories = []Category{
	CategoryHome, CategoryWork, CategorySports, CategoryActivity, CategoryGroceries,
	CategoryShopping, CategoryHealth, CategoryFinance, CategoryPersonal, CategoryOthers,
}

func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOthers, nil
	}
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return CategoryOthers, &duerr.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", s)}
}

const (
	MaxTextLen  = 100
	MaxNotesLen = 400
)

var colorRE = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Task is a stored todo. Completing a recurring task spawns a new Task whose
// OriginalTaskID points at the first task of the series.
type Task struct {
	ID             int64          `json:"id"`
	UID            string         `json:"uid"`
	Text           string         `json:"text"`
	Notes          string         `json:"notes,omitempty"`
	Category       Category       `json:"category"`
	Color          string         `json:"color,omitempty"`
	DueDate        *time.Time     `json:"dueDate"`
	Priority       Priority       `json:"priority"`
	IsRecurring    bool           `json:"isRecurring"`
	Rule           RecurrenceRule `json:"rule"`
	CustomRule     string         `json:"recurrenceCustomRule,omitempty"`
	OriginalTaskID *int64         `json:"originalTaskId,omitempty"`
	NextDueDate    *time.Time     `json:"nextDueDate,omitempty"`
	Completed      bool           `json:"completed"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Normalize applies the defaults a new task receives before it is stored.
func (t *Task) Normalize() {
	t.Text = strings.TrimSpace(t.Text)
	t.Notes = strings.TrimSpace(t.Notes)
	t.Rule = t.Rule.Normalize()
	t.IsRecurring = t.IsRecurring || t.Rule.IsRecurring()
	if t.Priority == PriorityNone {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = CategoryOthers
	}
}

func (t Task) Validate() error {
	if t.Text == "" {
		return &duerr.ValidationError{Field: "text", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(t.Text) > MaxTextLen {
		return &duerr.ValidationError{Field: "text", Message: fmt.Sprintf("longer than %d characters", MaxTextLen)}
	}
	if utf8.RuneCountInString(t.Notes) > MaxNotesLen {
		return &duerr.ValidationError{Field: "notes", Message: fmt.Sprintf("longer than %d characters", MaxNotesLen)}
	}
	if _, err := ParseCategory(string(t.Category)); err != nil {
		return err
	}
	if _, err := ParsePriority(string(t.Priority)); err != nil {
		return err
	}
	if _, err := ParsePattern(string(t.Rule.Pattern)); err != nil {
		return err
	}
	if t.Color != "" && !colorRE.MatchString(t.Color) {
		return &duerr.ValidationError{Field: "color", Message: fmt.Sprintf("%q is not a #RRGGBB value", t.Color)}
	}
	if t.Rule.Interval < 1 || t.Rule.Interval > MaxInterval {
		return &duerr.ValidationError{Field: "recurrenceInterval", Message: fmt.Sprintf("must be between 1 and %d", MaxInterval)}
	}
	if t.Rule.EndsAt != nil && t.DueDate != nil && t.Rule.EndsAt.Before(*t.DueDate) {
		return &duerr.ValidationError{Field: "recurrenceEndsAt", Message: "before the due date"}
	}
	return nil
}

func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// SeriesID is the id of the first task in a recurring series.
func (t Task) SeriesID() int64 {
	if t.OriginalTaskID != nil {
		return *t.OriginalTaskID
	}
	return t.ID
}

// Occurrence is one concrete instance of a task. Index counts steps from the
// task's own due date, so the task itself is Index 0.
type Occurrence struct {
	Task    Task      `json:"task"`
	DueDate time.Time `json:"dueDate"`
	Index   int       `json:"index"`
}

func (o Occurrence) Derived() bool { return o.Index > 0 }
