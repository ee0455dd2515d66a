package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/gongahkia/dueday/internal/model"
)

var toFreq = map[model.Pattern]rrule.Frequency{
	model.PatternDaily:   rrule.DAILY,
	model.PatternWeekly:  rrule.WEEKLY,
	model.PatternMonthly: rrule.MONTHLY,
	model.PatternYearly:  rrule.YEARLY,
}

// RRule maps rule onto an RFC 5545 recurrence. It returns nil for none and
// custom, which have no RRULE form. Dtstart is left for the caller.
func RRule(rule model.RecurrenceRule) *rrule.ROption {
	rule = rule.Normalize()
	freq, ok := toFreq[rule.Pattern]
	if !ok {
		return nil
	}
	opt := &rrule.ROption{Freq: freq, Interval: rule.Interval}
	if rule.EndsAt != nil {
		opt.Until = rule.EndsAt.UTC().Truncate(time.Second)
	}
	return opt
}

// FromRRule is the inverse of RRule. The second result is false when opt
// uses a frequency or BY* part that dueday cannot step, in which case the
// rule is custom.
func FromRRule(opt *rrule.ROption) (model.RecurrenceRule, bool) {
	if opt == nil {
		return model.RecurrenceRule{Pattern: model.PatternNone, Interval: 1}, true
	}
	rule := model.RecurrenceRule{Pattern: model.PatternCustom, Interval: opt.Interval}
	if !opt.Until.IsZero() {
		until := opt.Until
		rule.EndsAt = &until
	}
	rule = rule.Normalize()

	if hasByParts(opt) || opt.Count > 0 {
		return rule, false
	}
	for p, f := range toFreq {
		if f == opt.Freq {
			rule.Pattern = p
			return rule, true
		}
	}
	return rule, false
}

func hasByParts(opt *rrule.ROption) bool {
	return len(opt.Bysetpos) > 0 || len(opt.Bymonth) > 0 || len(opt.Bymonthday) > 0 ||
		len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 || len(opt.Byweekday) > 0 ||
		len(opt.Byhour) > 0 || len(opt.Byminute) > 0 || len(opt.Bysecond) > 0 ||
		len(opt.Byeaster) > 0
}
