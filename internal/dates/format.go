package dates

import (
	"fmt"
	"time"
)

type Tone string

const (
	ToneNone    Tone = "none"
	ToneOverdue Tone = "overdue"
	ToneToday   Tone = "today"
	ToneLater   Tone = "later"
)

// DueLabel is a short human description of a due date relative to now.
type DueLabel struct {
	Text string
	Tone Tone
}

// FormatDue renders due relative to now on the local calendar of loc.
func FormatDue(due *time.Time, now time.Time, loc *time.Location) DueLabel {
	if due == nil {
		return DueLabel{Text: "No due date", Tone: ToneNone}
	}
	d := InZone(*due, loc)
	today := StartOfDay(now, loc)
	tomorrow := AddDays(today, 1, loc)

	switch {
	case d.Before(today):
		if SameDay(d, AddDays(today, -1, loc), loc) {
			return DueLabel{Text: "Yesterday", Tone: ToneOverdue}
		}
		return DueLabel{Text: d.Format("Jan 2"), Tone: ToneOverdue}
	case d.Before(tomorrow):
		if d.Before(now) {
			mins := int(now.Sub(d) / time.Minute)
			if mins < 60 {
				return DueLabel{Text: fmt.Sprintf("Overdue %dmin", mins), Tone: ToneOverdue}
			}
			hours := int((now.Sub(d) + 30*time.Minute) / time.Hour)
			return DueLabel{Text: fmt.Sprintf("Overdue %dhr", hours), Tone: ToneOverdue}
		}
		return DueLabel{Text: "Today at " + d.Format("3:04 PM"), Tone: ToneToday}
	case SameDay(d, tomorrow, loc):
		return DueLabel{Text: "Tomorrow at " + d.Format("3:04 PM"), Tone: ToneLater}
	}
	return DueLabel{Text: d.Format("Jan 2, 2006 3:04 PM"), Tone: ToneLater}
}
