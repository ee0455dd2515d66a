package nlp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/gongahkia/dueday/internal/dates"
)

// Match is a date phrase located in a text. Start and End are byte offsets.
// HasClock is false when the phrase named a day but no time of day, in which
// case Time is local midnight of that day.
type Match struct {
	Start, End int
	Text       string
	Time       time.Time
	HasClock   bool
}

// PhraseParser finds natural-language date phrases.
type PhraseParser interface {
	// Find returns the earliest date phrase in text.
	Find(text string, ref time.Time, loc *time.Location) (Match, bool)
	// FindAll returns every non-overlapping date phrase in text.
	FindAll(text string, ref time.Time, loc *time.Location) []Match
}

// layer recognizes one family of phrases and returns all of its matches.
type layer func(text string, ref time.Time, loc *time.Location) []Match

// Layered consults its date layers in order, taking the earliest match;
// ties go to the longer match and then to the earlier layer. The clock layer
// only answers Find when no date layer matched.
type Layered struct {
	layers []layer
	clock  layer
}

// NewPhraseParser builds the default layered parser. locale picks the field
// order for numeric dates; see dates.NewAmbiguousDateParser.
func NewPhraseParser(locale string) *Layered {
	numeric := dates.NewAmbiguousDateParser(locale)
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &Layered{
		layers: []layer{
			numericLayer(numeric),
			monthDayLayer,
			relativeLayer,
			whenLayer(w),
		},
		clock: clockLayer,
	}
}

func (l *Layered) Find(text string, ref time.Time, loc *time.Location) (Match, bool) {
	var all []Match
	for _, fn := range l.layers {
		all = append(all, fn(text, ref, loc)...)
	}
	if len(all) == 0 && l.clock != nil {
		all = l.clock(text, ref, loc)
	}
	if len(all) == 0 {
		return Match{}, false
	}
	best := all[0]
	for _, m := range all[1:] {
		if m.Start < best.Start || (m.Start == best.Start && m.End-m.Start > best.End-best.Start) {
			best = m
		}
	}
	return best, true
}

func (l *Layered) FindAll(text string, ref time.Time, loc *time.Location) []Match {
	var all []Match
	for _, fn := range l.layers {
		all = append(all, fn(text, ref, loc)...)
	}
	if l.clock != nil {
		all = append(all, l.clock(text, ref, loc)...)
	}
	// stable keeps layer order among equal spans
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End-all[i].Start > all[j].End-all[j].Start
	})
	var out []Match
	end := -1
	for _, m := range all {
		if m.Start >= end {
			out = append(out, m)
			end = m.End
		}
	}
	return out
}

// maxLayerMatches bounds the blank-and-rescan loops below.
const maxLayerMatches = 8

func numericLayer(p *dates.AmbiguousDateParser) layer {
	return func(text string, ref time.Time, loc *time.Location) []Match {
		var out []Match
		for i := 0; i < maxLayerMatches; i++ {
			span, t, ok := p.Find(text, loc)
			if !ok {
				break
			}
			out = append(out, Match{Start: span[0], End: span[1], Text: text[span[0]:span[1]], Time: t})
			text = blank(text, span[0], span[1])
		}
		return out
	}
}

var (
	monthDayRE = regexp.MustCompile(`(?i)\b(` + monthAny + `|sept)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	dayMonthRE = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthAny + `|sept)\.?(?:,?\s+(\d{4}))?\b`)
)

// monthDayLayer reads "Dec 31st" and "31 December 2026". Without a year the
// next such date on or after today is used.
func monthDayLayer(text string, ref time.Time, loc *time.Location) []Match {
	var out []Match
	add := func(m []int, monthIdx, dayIdx, yearIdx int) {
		month, ok := dates.ParseMonth(text[m[monthIdx]:m[monthIdx+1]])
		if !ok {
			return
		}
		day, _ := strconv.Atoi(text[m[dayIdx]:m[dayIdx+1]])
		today := dates.StartOfDay(ref, loc)
		year := dates.InZone(today, loc).Year()
		explicit := m[yearIdx] >= 0
		if explicit {
			year, _ = strconv.Atoi(text[m[yearIdx]:m[yearIdx+1]])
		}
		if day < 1 || day > dates.DaysIn(year, month) {
			return
		}
		t := dates.FromWallClock(year, month, day, 0, 0, 0, 0, loc)
		if !explicit && t.Before(today) {
			next := dates.FromWallClock(year+1, month, day, 0, 0, 0, 0, loc)
			if next.Day() != day {
				return
			}
			t = next
		}
		out = append(out, Match{Start: m[0], End: m[1], Text: text[m[0]:m[1]], Time: t})
	}
	for _, m := range monthDayRE.FindAllStringSubmatchIndex(text, -1) {
		add(m, 2, 4, 6)
	}
	for _, m := range dayMonthRE.FindAllStringSubmatchIndex(text, -1) {
		add(m, 4, 2, 6)
	}
	return out
}

var (
	nextUnitRE   = regexp.MustCompile(`(?i)\b(?:next|coming)\s+(day|week|month|year)\b`)
	thisUnitRE   = regexp.MustCompile(`(?i)\b(?:this|current)\s+(week|month|year)\b`)
	endOfRE      = regexp.MustCompile(`(?i)\bend\s+of\s+(?:the\s+)?(?:(next|this)\s+)?(week|month|year)\b`)
	midMonthRE   = regexp.MustCompile(`(?i)\bmid(?:dle)?(?:\s+of)?(?:\s+the)?(?:\s+(next|this))?[\s-]+month\b`)
	dayOfMonthRE = regexp.MustCompile(`(?i)\b(?:on\s+)?the\s+(\d{1,2})(?:st|nd|rd|th)\b`)
)

// relativeLayer covers unit-relative phrases that the general parser leaves out.
func relativeLayer(text string, ref time.Time, loc *time.Location) []Match {
	today := dates.StartOfDay(ref, loc)
	var out []Match
	emit := func(m []int, t time.Time) {
		out = append(out, Match{Start: m[0], End: m[1], Text: text[m[0]:m[1]], Time: t})
	}

	for _, m := range nextUnitRE.FindAllStringSubmatchIndex(text, -1) {
		emit(m, addUnit(today, strings.ToLower(text[m[2]:m[3]]), 1, loc))
	}
	for _, m := range thisUnitRE.FindAllStringSubmatchIndex(text, -1) {
		emit(m, today)
	}
	for _, m := range endOfRE.FindAllStringSubmatchIndex(text, -1) {
		unit := strings.ToLower(text[m[4]:m[5]])
		base := today
		if m[2] >= 0 && strings.EqualFold(text[m[2]:m[3]], "next") {
			base = addUnit(today, unit, 1, loc)
		}
		emit(m, endOfUnit(base, unit, loc))
	}
	for _, m := range midMonthRE.FindAllStringSubmatchIndex(text, -1) {
		l := dates.InZone(today, loc)
		mid := dates.FromWallClock(l.Year(), l.Month(), 15, 0, 0, 0, 0, loc)
		next := m[2] >= 0 && strings.EqualFold(text[m[2]:m[3]], "next")
		if next || mid.Before(today) {
			mid = dates.AddMonths(mid, 1, loc)
		}
		emit(m, mid)
	}
	for _, m := range dayOfMonthRE.FindAllStringSubmatchIndex(text, -1) {
		day, _ := strconv.Atoi(text[m[2]:m[3]])
		if day < 1 || day > 31 {
			continue
		}
		emit(m, nextDayOfMonth(today, day, loc))
	}
	return out
}

func addUnit(t time.Time, unit string, n int, loc *time.Location) time.Time {
	switch unit {
	case "day":
		return dates.AddDays(t, n, loc)
	case "week":
		return dates.AddWeeks(t, n, loc)
	case "month":
		return dates.AddMonths(t, n, loc)
	default:
		return dates.AddYears(t, n, loc)
	}
}

// endOfUnit returns the last day of the week (Sunday), month or year holding t.
func endOfUnit(t time.Time, unit string, loc *time.Location) time.Time {
	l := dates.InZone(t, loc)
	switch unit {
	case "week":
		return dates.AddDays(t, (7-int(l.Weekday()))%7, loc)
	case "month":
		return dates.FromWallClock(l.Year(), l.Month(), dates.DaysIn(l.Year(), l.Month()), 0, 0, 0, 0, loc)
	default:
		return dates.FromWallClock(l.Year(), time.December, 31, 0, 0, 0, 0, loc)
	}
}

// nextDayOfMonth returns the first date on or after today whose day is day,
// clamped to short months.
func nextDayOfMonth(today time.Time, day int, loc *time.Location) time.Time {
	l := dates.InZone(today, loc)
	for i := 0; i < 2; i++ {
		first := dates.AddMonths(dates.FromWallClock(l.Year(), l.Month(), 1, 0, 0, 0, 0, loc), i, loc)
		f := dates.InZone(first, loc)
		d := day
		if last := dates.DaysIn(f.Year(), f.Month()); d > last {
			d = last
		}
		c := dates.FromWallClock(f.Year(), f.Month(), d, 0, 0, 0, 0, loc)
		if !c.Before(today) {
			return c
		}
	}
	return today
}

// whenLayer adapts olebedev/when, which reports one merged result per call.
// Matched spans are blanked and the text rescanned to find the rest.
func whenLayer(w *when.Parser) layer {
	return func(text string, ref time.Time, loc *time.Location) []Match {
		var out []Match
		base := dates.InZone(ref, loc)
		for i := 0; i < maxLayerMatches; i++ {
			res, err := w.Parse(text, base)
			if err != nil || res == nil || strings.TrimSpace(res.Text) == "" {
				break
			}
			start, end := locate(text, res.Index, res.Text)
			if start < 0 {
				break
			}
			t := dates.InZone(res.Time, loc)
			hasClock := len(findTimes(res.Text)) > 0 || strings.Contains(res.Text, ":")
			if !hasClock {
				t = dates.StartOfDay(t, loc)
			}
			out = append(out, Match{Start: start, End: end, Text: text[start:end], Time: t, HasClock: hasClock})
			text = blank(text, start, end)
		}
		return out
	}
}

// clockLayer reads a bare time of day as today at that time.
func clockLayer(text string, ref time.Time, loc *time.Location) []Match {
	var out []Match
	for _, tod := range findTimes(text) {
		out = append(out, Match{
			Start:    tod.Start,
			End:      tod.End,
			Text:     text[tod.Start:tod.End],
			Time:     dates.SetClock(ref, tod.Hour, tod.Minute, loc),
			HasClock: true,
		})
	}
	return out
}

// locate finds the byte span of phrase in text, trusting index when it agrees.
func locate(text string, index int, phrase string) (int, int) {
	if index >= 0 && index+len(phrase) <= len(text) && strings.EqualFold(text[index:index+len(phrase)], phrase) {
		return index, index + len(phrase)
	}
	i := strings.Index(strings.ToLower(text), strings.ToLower(phrase))
	if i < 0 {
		return -1, -1
	}
	return i, i + len(phrase)
}

// blank replaces text[start:end] with spaces so later offsets stay valid.
func blank(text string, start, end int) string {
	return text[:start] + strings.Repeat(" ", end-start) + text[end:]
}
