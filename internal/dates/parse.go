package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the field order assumed for numeric dates.
type DateFormat int

const (
	DateFormatMDY DateFormat = iota // MM/DD/YYYY (US)
	DateFormatDMY                   // DD/MM/YYYY (EU)
	DateFormatYMD                   // YYYY/MM/DD (ISO, CJK)
)

func (f DateFormat) String() string {
	switch f {
	case DateFormatDMY:
		return "DMY"
	case DateFormatYMD:
		return "YMD"
	default:
		return "MDY"
	}
}

// AmbiguousDateParser reads numeric dates whose field order depends on the
// writer's locale.
type AmbiguousDateParser struct {
	PreferredFormat DateFormat
	Locale          string
}

// NewAmbiguousDateParser accepts either a field order ("MDY", "DMY", "YMD")
// or a locale such as "en_GB".
func NewAmbiguousDateParser(locale string) *AmbiguousDateParser {
	format := DateFormatMDY
	locale = strings.ToLower(strings.TrimSpace(locale))
	switch {
	case locale == "dmy", strings.HasPrefix(locale, "en_gb"), strings.HasPrefix(locale, "en-gb"),
		strings.HasPrefix(locale, "en_au"), strings.HasPrefix(locale, "en_in"),
		strings.HasPrefix(locale, "de"), strings.HasPrefix(locale, "fr"),
		strings.HasPrefix(locale, "es"), strings.HasPrefix(locale, "it"),
		strings.HasPrefix(locale, "pt"), strings.HasPrefix(locale, "nl"):
		format = DateFormatDMY
	case locale == "ymd", strings.HasPrefix(locale, "ja"), strings.HasPrefix(locale, "zh"),
		strings.HasPrefix(locale, "ko"):
		format = DateFormatYMD
	}
	return &AmbiguousDateParser{PreferredFormat: format, Locale: locale}
}

var (
	isoDateRE   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDateRE = regexp.MustCompile(`\b(\d{1,4})/(\d{1,2})/(\d{2,4})\b`)
	dotDateRE   = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{2,4})\b`)
)

// Parse reads a whole string as a date at local midnight in loc. RFC 3339
// timestamps keep their clock.
func (p *AmbiguousDateParser) Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(orUTC(loc)), nil
	}
	span, t, ok := p.Find(s, loc)
	if !ok || span[0] != 0 || span[1] != len(s) {
		return time.Time{}, fmt.Errorf("cannot parse date: %q", s)
	}
	return t, nil
}

// Find locates the first numeric date inside text and returns its byte span.
func (p *AmbiguousDateParser) Find(text string, loc *time.Location) ([2]int, time.Time, bool) {
	type candidate struct {
		span [2]int
		t    time.Time
	}
	var best *candidate
	consider := func(span []int, y, m, d int) {
		t, ok := validDate(y, m, d, loc)
		if !ok {
			return
		}
		if best == nil || span[0] < best.span[0] {
			best = &candidate{span: [2]int{span[0], span[1]}, t: t}
		}
	}

	if m := isoDateRE.FindStringSubmatchIndex(text); m != nil {
		consider(m, atoi(text[m[2]:m[3]]), atoi(text[m[4]:m[5]]), atoi(text[m[6]:m[7]]))
	}
	if m := slashDateRE.FindStringSubmatchIndex(text); m != nil {
		a, b, c := text[m[2]:m[3]], atoi(text[m[4]:m[5]]), text[m[6]:m[7]]
		switch {
		case len(a) == 4 || p.PreferredFormat == DateFormatYMD:
			consider(m, normalizeYear(a), b, atoi(c))
		case p.PreferredFormat == DateFormatDMY:
			consider(m, normalizeYear(c), b, atoi(a))
		default:
			consider(m, normalizeYear(c), atoi(a), b)
		}
	}
	if m := dotDateRE.FindStringSubmatchIndex(text); m != nil {
		consider(m, normalizeYear(text[m[6]:m[7]]), atoi(text[m[4]:m[5]]), atoi(text[m[2]:m[3]]))
	}

	if best == nil {
		return [2]int{}, time.Time{}, false
	}
	return best.span, best.t, true
}

// IsAmbiguous returns true if the date string could be interpreted as both MDY and DMY.
func IsAmbiguous(s string) bool {
	m := slashDateRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || len(m[1]) == 4 {
		return false
	}
	a, b := atoi(m[1]), atoi(m[2])
	return a <= 12 && b <= 12 && a != b
}

// validDate rejects readings that time.Date would silently normalize.
func validDate(y, m, d int, loc *time.Location) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 || d > DaysIn(y, time.Month(m)) {
		return time.Time{}, false
	}
	return FromWallClock(y, time.Month(m), d, 0, 0, 0, 0, loc), true
}

func normalizeYear(s string) int {
	y := atoi(s)
	if len(s) <= 2 {
		if y > 70 {
			y += 1900
		} else {
			y += 2000
		}
	}
	return y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ParseInstant reads an RFC 3339 timestamp, a "2006-01-02T15:04" wall time
// or a bare "2006-01-02" day. dateOnly is true for the bare day, which is
// returned at local midnight in loc.
func ParseInstant(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	loc = orUTC(loc)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, loc); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("cannot parse time: %q", s)
}
