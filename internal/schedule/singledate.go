package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// singleRule is one row of the single-date fallback, tried in order once no
// recurrence family claimed the text.
type singleRule struct {
	name    string
	extract func(text string) (Classification, bool)
}

var singleDateTable = []singleRule{
	{name: "iso", extract: singleISO},
	{name: "slash", extract: singleSlash},
	{name: "named-month", extract: singleNamedMonth},
	{name: "holiday", extract: singleHoliday},
	{name: "ordinal-keyword", extract: singleOrdinalKeyword},
	{name: "bare-day", extract: singleBareDay},
	{name: "weekend-combo", extract: singleWeekendCombo},
	// Unreachable for any text containing "january": named-month claims it
	// first. Kept so the fallback order stays intact.
	{name: "january-only", extract: singleJanuaryOnly},
	{name: "every-n", extract: singleEveryN},
	{name: "runs-every", extract: singleRunsEvery},
	{name: "suffixed-day", extract: singleSuffixedDay},
}

// SingleDateOrder lists the fallback sub-pattern names in evaluation order.
func SingleDateOrder() []string {
	out := make([]string, 0, len(singleDateTable))
	for _, r := range singleDateTable {
		out = append(out, r.name)
	}
	return out
}

var (
	isoDateRx   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRx = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	everyNRx    = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)? of (?:every|each) month\b|\bevery (\d{1,2})(?:st|nd|rd|th)?\b`)
	runsEveryRx = regexp.MustCompile(`\bruns every (\d{1,2})(?:st|nd|rd|th)?\b`)
	bareDayRxs  = compileBareDays()
)

func compileBareDays() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 31)
	for i := range out {
		out[i] = regexp.MustCompile(`\b` + strconv.Itoa(i+1) + `\b`)
	}
	return out
}

type fixedHoliday struct {
	keyword string
	month   time.Month
	day     int
}

var fixedHolidays = []fixedHoliday{
	{keyword: "christmas", month: time.December, day: 25},
	{keyword: "new year", month: time.January, day: 1},
	{keyword: "valentine", month: time.February, day: 14},
	{keyword: "halloween", month: time.October, day: 31},
	{keyword: "independence day", month: time.July, day: 4},
}

type ordinalKeyword struct {
	patterns []*regexp.Regexp
	day      int
}

var ordinalKeywords = []ordinalKeyword{
	{patterns: phrases("first of", "1st of"), day: 1},
	{patterns: phrases("second of", "2nd of"), day: 2},
	{patterns: phrases("third of", "3rd of"), day: 3},
}

type weekendCombo struct {
	day    *regexp.Regexp
	phrase string
	dayN   int
	shift  Shift
}

var weekendCombos = []weekendCombo{
	{day: regexp.MustCompile(`\b9th\b`), phrase: "previous friday", dayN: 9, shift: ShiftPreviousFriday},
	{day: regexp.MustCompile(`\b12th\b`), phrase: "next monday", dayN: 12, shift: ShiftNextMonday},
	// Walks with NextWorkingDay rather than jumping to Monday.
	{day: regexp.MustCompile(`\b13th\b`), phrase: "next working day", dayN: 13, shift: ShiftNextWorkingDay},
}

func extractSingleDate(text string) (Classification, bool) {
	for _, r := range singleDateTable {
		if c, ok := r.extract(text); ok {
			c.Pattern = r.name
			return c, true
		}
	}
	return Classification{}, false
}

func dayAnchor(day int, shift Shift) Anchor {
	return Anchor{Kind: AnchorDay, Day: day, Shift: shift}
}

func singleISO(text string) (Classification, bool) {
	m := isoDateRx.FindStringSubmatch(text)
	if m == nil {
		return Classification{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 {
		return Classification{}, false
	}
	return Classification{Year: year, Month: time.Month(month), Anchor: dayAnchor(day, ShiftNone)}, true
}

// singleSlash reads US-style MM/DD/YYYY.
func singleSlash(text string) (Classification, bool) {
	m := slashDateRx.FindStringSubmatch(text)
	if m == nil {
		return Classification{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 {
		return Classification{}, false
	}
	return Classification{Year: year, Month: time.Month(month), Anchor: dayAnchor(day, ShiftNone)}, true
}

// singleNamedMonth claims any text naming a month. In other months the rule
// simply yields nothing.
func singleNamedMonth(text string) (Classification, bool) {
	month, ok := findMonth(text)
	if !ok {
		return Classification{}, false
	}
	day, ok := explicitDay(text)
	if !ok {
		day, ok = bareDay(text)
	}
	if !ok {
		day = 1
	}
	return Classification{Month: month, Anchor: dayAnchor(day, detectShift(text))}, true
}

func singleHoliday(text string) (Classification, bool) {
	for _, h := range fixedHolidays {
		if strings.Contains(text, h.keyword) {
			return Classification{Month: h.month, Anchor: dayAnchor(h.day, ShiftNone)}, true
		}
	}
	return Classification{}, false
}

func singleOrdinalKeyword(text string) (Classification, bool) {
	for _, k := range ordinalKeywords {
		for _, p := range k.patterns {
			if p.MatchString(text) {
				return Classification{Anchor: dayAnchor(k.day, detectShift(text))}, true
			}
		}
	}
	return Classification{}, false
}

func singleBareDay(text string) (Classification, bool) {
	day, ok := bareDay(text)
	if !ok {
		return Classification{}, false
	}
	return Classification{Anchor: dayAnchor(day, detectShift(text))}, true
}

// bareDay returns the smallest integer 1-31 that appears as a whole word.
func bareDay(text string) (int, bool) {
	for i, rx := range bareDayRxs {
		if rx.MatchString(text) {
			return i + 1, true
		}
	}
	return 0, false
}

func singleWeekendCombo(text string) (Classification, bool) {
	for _, c := range weekendCombos {
		if c.day.MatchString(text) && strings.Contains(text, c.phrase) {
			return Classification{Anchor: dayAnchor(c.dayN, c.shift)}, true
		}
	}
	return Classification{}, false
}

func singleJanuaryOnly(text string) (Classification, bool) {
	if !strings.Contains(text, "only in january") && !strings.Contains(text, "january only") {
		return Classification{}, false
	}
	day, ok := explicitDay(text)
	if !ok {
		day = 1
	}
	return Classification{Month: time.January, Anchor: dayAnchor(day, detectShift(text))}, true
}

// singleEveryN leaves "runs every N" texts to singleRunsEvery.
func singleEveryN(text string) (Classification, bool) {
	if strings.Contains(text, "runs every") {
		return Classification{}, false
	}
	m := everyNRx.FindStringSubmatch(text)
	if m == nil {
		return Classification{}, false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	day, ok := dayNumber(raw)
	if !ok {
		return Classification{}, false
	}
	return Classification{Anchor: dayAnchor(day, detectShift(text))}, true
}

func singleRunsEvery(text string) (Classification, bool) {
	m := runsEveryRx.FindStringSubmatch(text)
	if m == nil {
		return Classification{}, false
	}
	day, ok := dayNumber(m[1])
	if !ok {
		return Classification{}, false
	}
	shift := detectShift(text)
	if strings.Contains(text, "previous friday") {
		shift = ShiftPreviousFriday
	}
	return Classification{Anchor: dayAnchor(day, shift)}, true
}

// singleSuffixedDay reads a lone "19th" or "20th, if weekend then previous
// friday" as that day of every month.
func singleSuffixedDay(text string) (Classification, bool) {
	m := ordinalSuffixRx.FindStringSubmatch(text)
	if m == nil {
		return Classification{}, false
	}
	day, ok := dayNumber(m[1])
	if !ok {
		return Classification{}, false
	}
	return Classification{Anchor: dayAnchor(day, detectShift(text))}, true
}
