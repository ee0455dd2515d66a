package nlp

import (
	"regexp"
	"strings"
)

// clause is a keyword phrase found in the text. Phrase is the part after the
// keyword that is handed to the phrase parser.
type clause struct {
	Start, End int
	Phrase     string
}

var (
	untilRE = regexp.MustCompile(`(?i)\b(?:untill|until|till|til)\s+(.+)$`)
	startRE = regexp.MustCompile(`(?i)\b(?:starting|beginning|from)\s+((?:mid(?:dle)?|end(?:ing)?|\d{1,2}(?:st|nd|rd|th)?|next|this|current|coming)?\s*(?:day|week|month|` + weekdayNames + `)?\b[\w\s]*)`)
)

// findUntil locates an "until <phrase>" clause running to the end of the text.
func findUntil(text string) *clause {
	m := untilRE.FindStringSubmatchIndex(text)
	if m == nil || strings.TrimSpace(text[m[2]:m[3]]) == "" {
		return nil
	}
	return &clause{Start: m[0], End: m[1], Phrase: strings.TrimSpace(text[m[2]:m[3]])}
}

// findStart locates a "starting|beginning|from <phrase>" clause.
func findStart(text string) *clause {
	m := startRE.FindStringSubmatchIndex(text)
	if m == nil || strings.TrimSpace(text[m[2]:m[3]]) == "" {
		return nil
	}
	return &clause{Start: m[0], End: m[1], Phrase: strings.TrimSpace(text[m[2]:m[3]])}
}

// without returns text with the clause cut out.
func without(text string, c *clause) string {
	if c == nil {
		return text
	}
	return text[:c.Start] + " " + text[c.End:]
}
