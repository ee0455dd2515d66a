// Package nlp turns a free-text task description into a model.ParsedTask.
//
// Parsing is deterministic given the text, the zone and the reference
// instant; nothing here reads the system clock.
package nlp

import (
	"regexp"
	"strings"
	"time"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/model"
)

type Options struct {
	// DefaultHour and DefaultMinute are used when a due date names a day but no time.
	DefaultHour   int
	DefaultMinute int
	// DateLocale picks the field order for numeric dates ("MDY", "DMY", "YMD" or a locale like "en_GB").
	DateLocale string
}

func DefaultOptions() Options {
	return Options{DefaultHour: 9, DateLocale: "MDY"}
}

type Parser struct {
	rules   []Rule
	phrases PhraseParser
	opts    Options
}

// New returns a parser using the built-in rules and phrase parser.
func New(opts Options) *Parser {
	return NewWithPhrases(opts, NewPhraseParser(opts.DateLocale))
}

// NewWithPhrases returns a parser that resolves date phrases with phrases.
func NewWithPhrases(opts Options, phrases PhraseParser) *Parser {
	if opts.DefaultHour < 0 || opts.DefaultHour > 23 {
		opts.DefaultHour = 9
	}
	if opts.DefaultMinute < 0 || opts.DefaultMinute > 59 {
		opts.DefaultMinute = 0
	}
	return &Parser{rules: Rules(), phrases: phrases, opts: opts}
}

var weekdayRefRE = regexp.MustCompile(`(?i)\b(?:on|every)\s+(` + weekdayNames + `)s?\b`)

// Parse interprets text in loc relative to ref. A nil loc means UTC. Parse
// never fails: text with nothing recognizable yields a non-recurring task
// due tomorrow at the default hour.
func (p *Parser) Parse(text string, loc *time.Location, ref time.Time) model.ParsedTask {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)

	det := Detect(p.rules, text)
	tod, hasTOD := ExtractTime(text)

	var endsAt *time.Time
	until := findUntil(text)
	if until != nil {
		if m, ok := p.phrases.Find(until.Phrase, ref, loc); ok {
			end := dates.EndOfDay(m.Time, loc)
			endsAt = &end
		}
	}

	var start *time.Time
	if c := findStart(text); c != nil {
		if m, ok := p.phrases.Find(c.Phrase, ref, loc); ok {
			s := m.Time
			switch {
			case hasTOD:
				s = dates.SetClock(s, tod.Hour, tod.Minute, loc)
			case !m.HasClock:
				s = dates.SetClock(s, p.opts.DefaultHour, p.opts.DefaultMinute, loc)
			}
			start = &s
		}
	}

	due := p.resolveDue(text, det, until, tod, hasTOD, ref, loc)
	if start != nil {
		due = start
	}
	if due == nil {
		d := dates.TomorrowAt(ref, p.opts.DefaultHour, p.opts.DefaultMinute, loc)
		due = &d
	}

	cleaned := cleanTitle(text, cleanInput{
		detection:    det,
		startMatched: start != nil,
		phrases:      p.phrases,
		ref:          ref,
		loc:          loc,
	})

	return model.ParsedTask{
		OriginalTitle: text,
		CleanedTitle:  cleaned,
		DueDate:       due,
		Priority:      DetectPriority(text),
		RecurrenceRule: model.RecurrenceRule{
			Pattern:  det.Pattern,
			Interval: det.Interval,
			EndsAt:   endsAt,
		},
	}
}

func (p *Parser) resolveDue(text string, det Detection, until *clause, tod TimeOfDay, hasTOD bool, ref time.Time, loc *time.Location) *time.Time {
	if det.Pattern == model.PatternDaily {
		h, m := p.opts.DefaultHour, p.opts.DefaultMinute
		if hasTOD {
			h, m = tod.Hour, tod.Minute
		}
		d := dates.TomorrowAt(ref, h, m, loc)
		return &d
	}

	var due *time.Time
	if det.Pattern == model.PatternNone || det.Pattern == model.PatternWeekly {
		if m := weekdayRefRE.FindStringSubmatch(text); m != nil {
			if wd, ok := dates.ParseWeekday(m[1]); ok {
				d := dates.NextWeekday(ref, wd, loc)
				due = &d
			}
		}
	}
	if due == nil {
		search := text
		if until != nil {
			search = text[:until.Start]
		}
		if m, ok := p.phrases.Find(search, ref, loc); ok {
			d := m.Time
			if !m.HasClock {
				d = dates.SetClock(d, p.opts.DefaultHour, p.opts.DefaultMinute, loc)
			}
			due = &d
		}
	}
	if due != nil && hasTOD {
		d := dates.SetClock(*due, tod.Hour, tod.Minute, loc)
		due = &d
	}
	return due
}

var defaultParser = New(DefaultOptions())

// ParseTaskDetails parses text with the default parser. zone is an IANA
// name; unknown zones fall back to UTC.
func ParseTaskDetails(text, zone string, ref time.Time) model.ParsedTask {
	loc, _ := dates.LoadZone(zone)
	return defaultParser.Parse(strings.TrimSpace(text), loc, ref)
}
