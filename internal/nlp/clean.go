package nlp

import (
	"regexp"
	"strings"
	"time"

	"github.com/gongahkia/dueday/internal/model"
)

// cleanInput is what the title cleaner knows about a parse.
type cleanInput struct {
	detection    Detection
	startMatched bool
	phrases      PhraseParser
	ref          time.Time
	loc          *time.Location
}

// cleanStep rewrites the working title. Steps never mutate their input.
type cleanStep func(title string, in cleanInput) string

var (
	fillerREs = compileAll(
		`\brepeat\s*this\s*task\b`,
		`\bremind\s*me\b`,
		`\b(?:untill|until|till|til)\b`,
		`\b(?:starting|beginning)\b`,
		`\bfor\s+(?:the\s+)?next\s+\d+\s+(?:day|week|month|year)s?\b`,
		`\bbi[-\s]?weekly\b`,
		`\b(?:high|medium|low|normal)\s*priority\b`,
		`\b(?:with|on)\s+(?:high|medium|low)\b`,
	)
	monthWordRE = regexp.MustCompile(`(?i)\b(?:` + monthNames + `)\b`)
	stopWordRE  = regexp.MustCompile(`(?i)\b(?:at|by|on|with|every|next|the|this|till|til|untill|until|for|beginning|start|mid|middle|end|close|daily|weekly|monthly|yearly|bi[-\s]?weekly|of|month|week|priority|in)\b`)
	spaceRE     = regexp.MustCompile(`\s{2,}`)
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// cleanSteps run in order over a working copy of the original text.
var cleanSteps = []cleanStep{
	stripRecurrence,
	stripUntil,
	stripStart,
	stripDatePhrases,
	stripTimes,
	stripFillers,
	stripMonths,
	stripStopWords,
}

func stripRecurrence(title string, in cleanInput) string {
	return in.detection.remove(title)
}

func stripUntil(title string, _ cleanInput) string {
	return without(title, findUntil(title))
}

// stripStart only removes a start clause that resolved to a date, so a plain
// "from the shop" survives.
func stripStart(title string, in cleanInput) string {
	if !in.startMatched {
		return title
	}
	return without(title, findStart(title))
}

func stripDatePhrases(title string, in cleanInput) string {
	if in.phrases == nil {
		return title
	}
	matches := in.phrases.FindAll(title, in.ref, in.loc)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		title = title[:m.Start] + " " + title[m.End:]
	}
	return title
}

func stripTimes(title string, _ cleanInput) string {
	title = meridianRE.ReplaceAllString(title, " ")
	return clock24RE.ReplaceAllString(title, " ")
}

func stripFillers(title string, _ cleanInput) string {
	for _, re := range fillerREs {
		title = re.ReplaceAllString(title, " ")
	}
	return title
}

// stripMonths leaves month names in custom titles, where they carry the schedule.
func stripMonths(title string, in cleanInput) string {
	if in.detection.Pattern == model.PatternCustom {
		return title
	}
	return monthWordRE.ReplaceAllString(title, " ")
}

func stripStopWords(title string, _ cleanInput) string {
	return stopWordRE.ReplaceAllString(title, " ")
}

// cleanTitle runs every step and tidies the result. An empty result falls
// back to the original text.
func cleanTitle(original string, in cleanInput) string {
	title := original
	for _, step := range cleanSteps {
		title = step(title, in)
	}
	title = spaceRE.ReplaceAllString(strings.TrimSpace(title), " ")
	title = strings.Trim(title, " ,;:-")
	if title == "" {
		return strings.TrimSpace(original)
	}
	return title
}
