package nlp

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// TimeOfDay is a clock reading found in text, with the byte span it came from.
type TimeOfDay struct {
	Hour, Minute int
	Start, End   int
}

var (
	meridianRE = regexp.MustCompile(`(?i)\b(?:(?:at|by)\s*)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	// 24-hour readings need a leading at/by so that ratios and scores are left alone
	clock24RE = regexp.MustCompile(`(?i)\b(?:at|by)\s+(\d{1,2}):(\d{2})\b`)
)

// ExtractTime returns the earliest valid time of day in text.
func ExtractTime(text string) (TimeOfDay, bool) {
	all := findTimes(text)
	if len(all) == 0 {
		return TimeOfDay{}, false
	}
	return all[0], true
}

// findTimes returns every valid time of day in text, ordered by position.
func findTimes(text string) []TimeOfDay {
	var out []TimeOfDay
	for _, m := range meridianRE.FindAllStringSubmatchIndex(text, -1) {
		h, _ := strconv.Atoi(text[m[2]:m[3]])
		min := 0
		if m[4] >= 0 {
			min, _ = strconv.Atoi(text[m[4]:m[5]])
		}
		if h < 1 || h > 12 || min > 59 {
			continue
		}
		pm := strings.EqualFold(text[m[6]:m[7]], "pm")
		switch {
		case pm && h < 12:
			h += 12
		case !pm && h == 12:
			h = 0
		}
		out = append(out, TimeOfDay{Hour: h, Minute: min, Start: m[0], End: m[1]})
	}
	for _, m := range clock24RE.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(out, m[0], m[1]) {
			continue
		}
		h, _ := strconv.Atoi(text[m[2]:m[3]])
		min, _ := strconv.Atoi(text[m[4]:m[5]])
		if h > 23 || min > 59 {
			continue
		}
		out = append(out, TimeOfDay{Hour: h, Minute: min, Start: m[0], End: m[1]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func overlapsAny(ts []TimeOfDay, start, end int) bool {
	for _, t := range ts {
		if start < t.End && t.Start < end {
			return true
		}
	}
	return false
}
