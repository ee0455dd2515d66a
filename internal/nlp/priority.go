package nlp

import (
	"regexp"

	"github.com/gongahkia/dueday/internal/model"
)

type priorityRule struct {
	priority model.Priority
	re       *regexp.Regexp
}

// priorityRules are checked high to low, so "urgent, low priority" is High.
var priorityRules = []priorityRule{
	{model.PriorityHigh, regexp.MustCompile(`(?i)\b(?:high\s*priority|urgent|with\s+high|on\s+high)\b`)},
	{model.PriorityMedium, regexp.MustCompile(`(?i)\b(?:medium\s*priority|normal\s*priority|with\s+medium|on\s+medium)\b`)},
	{model.PriorityLow, regexp.MustCompile(`(?i)\b(?:low\s*priority|with\s+low|on\s+low)\b`)},
}

// DetectPriority reads a priority keyword from text. No keyword gives
// model.PriorityNone.
func DetectPriority(text string) model.Priority {
	for _, r := range priorityRules {
		if r.re.MatchString(text) {
			return r.priority
		}
	}
	return model.PriorityNone
}
