package nlp

import (
	"regexp"
	"strconv"

	"github.com/gongahkia/dueday/internal/model"
)

const (
	weekdayNames = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
	monthNames   = `january|february|march|april|may|june|july|august|september|october|november|december`
	monthAny     = monthNames + `|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec`
)

// Rule maps a phrase to a recurrence pattern. When ExtractInterval is set the
// first integer in the matched phrase becomes the interval.
type Rule struct {
	Name            string
	Pattern         model.Pattern
	Interval        int
	ExtractInterval bool
	re              *regexp.Regexp
}

func newRule(name, expr string, p model.Pattern, interval int) Rule {
	return Rule{Name: name, Pattern: p, Interval: interval, re: regexp.MustCompile(`(?i)` + expr)}
}

func extracting(name, expr string, p model.Pattern) Rule {
	r := newRule(name, expr, p, 1)
	r.ExtractInterval = true
	return r
}

// Expr returns the rule's regular expression source.
func (r Rule) Expr() string { return r.re.String() }

// defaultRules is evaluated top to bottom and the first match wins, so more
// specific phrasings sit above the bare words they contain.
var defaultRules = []Rule{
	// idioms
	newRule("bi-weekly", `\bbi[-\s]?weekly\b`, model.PatternWeekly, 2),
	newRule("bi-monthly", `\bbi[-\s]?monthly\b`, model.PatternMonthly, 2),
	newRule("fortnightly", `\bfortnightly\b`, model.PatternWeekly, 2),
	newRule("every-other-day", `\bevery\s+other\s+day\b`, model.PatternDaily, 2),
	newRule("every-other-week", `\bevery\s+other\s+week\b`, model.PatternWeekly, 2),
	newRule("every-other-month", `\bevery\s+other\s+month\b`, model.PatternMonthly, 2),

	// explicit counts
	extracting("every-n-days", `\bevery\s+(\d+)\s+days?\b`, model.PatternDaily),
	extracting("every-n-weeks", `\bevery\s+(\d+)\s+weeks?\b`, model.PatternWeekly),
	extracting("every-n-months", `\bevery\s+(\d+)\s+months?\b`, model.PatternMonthly),

	newRule("every-week", `\bevery\s+weeks?\b`, model.PatternWeekly, 1),

	newRule("ordinal-weekday", `\bevery\s+(?:first|second|third|fourth|last)\s+(?:`+weekdayNames+`)s?\b`, model.PatternCustom, 1),

	// weekday idioms
	newRule("every-weekday", `\bevery\s+weekdays?\b`, model.PatternWeekly, 1),
	newRule("weekdays", `\bweekdays?\b`, model.PatternWeekly, 1),
	newRule("named-weekday", `\b(?:every|on)\s+(?:`+weekdayNames+`)s?\b`, model.PatternWeekly, 1),

	// bare words
	newRule("daily", `\b(?:daily|every\s+day)\b`, model.PatternDaily, 1),
	newRule("weekly", `\bweekly\b`, model.PatternWeekly, 1),
	newRule("monthly", `\bmonthly\b`, model.PatternMonthly, 1),
	newRule("yearly", `\b(?:yearly|annually|every\s+year)\b`, model.PatternYearly, 1),

	extracting("every-n-years", `\b(?:annual|every)\s+(\d+)\s+years?\b`, model.PatternYearly),

	newRule("day-of-every-month", `\bon\s+the\s+\d+(?:st|nd|rd|th)?\s+of\s+every\s+month\b`, model.PatternMonthly, 1),
	newRule("every-month", `\bevery\s+month\b`, model.PatternMonthly, 1),

	// month names only ever mark a custom rule
	newRule("every-month-name", `\bevery\s+(?:`+monthAny+`)s?\b`, model.PatternCustom, 1),
	newRule("in-month-name", `\b(?:monthly\s+)?in\s+(?:`+monthAny+`)\b`, model.PatternCustom, 1),
	newRule("month-name", `\b(?:`+monthAny+`)\b`, model.PatternCustom, 1),
}

// Rules returns a copy of the built-in rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// Detection is the outcome of running the rule table over a text.
type Detection struct {
	Rule     *Rule
	Pattern  model.Pattern
	Interval int
}

var intRE = regexp.MustCompile(`\d+`)

// Detect returns the first rule in rules that matches text. No match gives
// PatternNone with interval 1.
func Detect(rules []Rule, text string) Detection {
	for i := range rules {
		r := &rules[i]
		phrases := r.re.FindAllString(text, -1)
		if phrases == nil {
			continue
		}
		d := Detection{Rule: r, Pattern: r.Pattern, Interval: r.Interval}
		if r.ExtractInterval {
			d.Interval = firstPositiveInt(phrases)
		}
		d.Interval = model.RecurrenceRule{Interval: d.Interval}.Normalize().Interval
		return d
	}
	return Detection{Pattern: model.PatternNone, Interval: 1}
}

func firstPositiveInt(phrases []string) int {
	for _, p := range phrases {
		if s := intRE.FindString(p); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

// remove blanks every occurrence of the detected rule.
func (d Detection) remove(text string) string {
	if d.Rule == nil {
		return text
	}
	return d.Rule.re.ReplaceAllString(text, " ")
}
