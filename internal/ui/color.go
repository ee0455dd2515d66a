package ui

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/model"
)

// Mode is the color setting from config: "auto", "always" or "never".
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
	ModeNever  Mode = "never"
)

var (
	mu   sync.RWMutex
	mode = ModeAuto
	out  = os.Stdout
)

// SetMode changes the color mode. Unknown values mean auto.
func SetMode(m Mode) {
	mu.Lock()
	defer mu.Unlock()
	switch m {
	case ModeAlways, ModeNever:
		mode = m
	default:
		mode = ModeAuto
	}
}

func colorEnabled() bool {
	mu.RLock()
	m, f := mode, out
	mu.RUnlock()
	switch m {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func wrap(code, s string) string {
	if !colorEnabled() {
		return s
	}
	return fmt.Sprintf("\033[%sm%s\033[0m", code, s)
}

// Red returns s wrapped in red ANSI color.
func Red(s string) string { return wrap("31", s) }

// Yellow returns s wrapped in yellow ANSI color.
func Yellow(s string) string { return wrap("33", s) }

// Green returns s wrapped in green ANSI color.
func Green(s string) string { return wrap("32", s) }

// Cyan returns s wrapped in cyan ANSI color.
func Cyan(s string) string { return wrap("36", s) }

// Dim returns s in faint ANSI style.
func Dim(s string) string { return wrap("2", s) }

// Bold returns s wrapped in bold ANSI style.
func Bold(s string) string { return wrap("1", s) }

// Priority renders p in its color: red high, yellow medium, green low.
func Priority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return Red(string(p))
	case model.PriorityMedium:
		return Yellow(string(p))
	case model.PriorityLow:
		return Green(string(p))
	}
	return Dim("-")
}

// Due renders a due label colored by its tone.
func Due(l dates.DueLabel) string {
	switch l.Tone {
	case dates.ToneOverdue:
		return Red(l.Text)
	case dates.ToneToday:
		return Yellow(l.Text)
	case dates.ToneNone:
		return Dim(l.Text)
	}
	return l.Text
}
