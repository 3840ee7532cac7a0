package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Family is the recurrence category a rule text belongs to.
type Family int

const (
	FamilyUnrecognized Family = iota
	FamilyDaily
	FamilyWeekly
	FamilyMonthly
	FamilyEveryWeekday
	FamilyBiweekly
	FamilyQuarterly
	FamilySemiannual
	FamilyAnnual
	FamilyEndOfMonth
	FamilyOrdinalWeekday
	FamilyBusinessDay
	FamilySingleDate
)

var familyNames = map[Family]string{
	FamilyUnrecognized:   "unrecognized",
	FamilyDaily:          "daily",
	FamilyWeekly:         "weekly",
	FamilyMonthly:        "monthly",
	FamilyEveryWeekday:   "every-weekday",
	FamilyBiweekly:       "biweekly",
	FamilyQuarterly:      "quarterly",
	FamilySemiannual:     "semiannual",
	FamilyAnnual:         "annual",
	FamilyEndOfMonth:     "end-of-month",
	FamilyOrdinalWeekday: "ordinal-weekday",
	FamilyBusinessDay:    "business-day",
	FamilySingleDate:     "single-date",
}

func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return "family(" + strconv.Itoa(int(f)) + ")"
}

// Shift is the weekend-shift policy applied to an anchored date.
type Shift int

const (
	ShiftNone Shift = iota
	// ShiftNextMonday jumps a Saturday or Sunday to the following Monday.
	ShiftNextMonday
	// ShiftNextWorkingDay walks forward to the next working day. Without a
	// holiday list it lands on the same Monday as ShiftNextMonday.
	ShiftNextWorkingDay
	ShiftPreviousFriday
)

func (s Shift) String() string {
	switch s {
	case ShiftNextMonday:
		return "next-monday"
	case ShiftNextWorkingDay:
		return "next-working-day"
	case ShiftPreviousFriday:
		return "previous-friday"
	default:
		return "no-shift"
	}
}

// AnchorKind says how a single date is located inside a month.
type AnchorKind int

const (
	AnchorDay AnchorKind = iota
	AnchorLastDay
	AnchorFirstWorkingDay
	AnchorLastWorkingDay
	AnchorNthWorkingDay
	AnchorOrdinalWeekday
)

// LastOrdinal is the Anchor.Ordinal value for "last <weekday>".
const LastOrdinal = -1

// Anchor locates one date within a month.
type Anchor struct {
	Kind AnchorKind
	// Day is the day of month for AnchorDay and the 1-based rank for
	// AnchorNthWorkingDay.
	Day int
	// Ordinal is the 0-based occurrence for AnchorOrdinalWeekday, or
	// LastOrdinal.
	Ordinal int
	Weekday time.Weekday
	Shift   Shift
}

// Classification is the result of matching one rule text. It depends only
// on the text; month applicability is decided by Expand.
type Classification struct {
	Family Family
	// Pattern names the table entry (or single-date sub-pattern) that matched.
	Pattern string
	Anchor  Anchor
	// Weekday is the target day for weekly, bi-weekly and every-weekday rules.
	Weekday         time.Weekday
	ExcludeWeekends bool
	EveryWorkingDay bool
	// Month and Year gate annual and single-date rules; zero means any.
	Month time.Month
	Year  int
}

// Recurring reports whether the classification can yield several dates in
// one month.
func (c Classification) Recurring() bool {
	switch c.Family {
	case FamilyDaily, FamilyWeekly, FamilyEveryWeekday, FamilyBiweekly:
		return true
	case FamilyBusinessDay:
		return c.EveryWorkingDay
	default:
		return false
	}
}

// familyRule is one row of the ordered classification table. A rule applies
// when any pattern matches; extract may still decline, in which case
// evaluation moves on to the next row. A row without patterns always applies.
type familyRule struct {
	family   Family
	name     string
	patterns []*regexp.Regexp
	extract  func(text string) (Classification, bool)
}

func (r familyRule) applies(text string) bool {
	if len(r.patterns) == 0 {
		return true
	}
	for _, p := range r.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

const weekdayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`

const monthAlt = `january|february|march|april|may|june|july|august|september|october|november|december`

var (
	weekdayRx        = regexp.MustCompile(`\b(` + weekdayAlt + `)s?\b`)
	everyWeekdayRx   = regexp.MustCompile(`\b(?:every|all) (` + weekdayAlt + `)s?\b`)
	ordinalWeekdayRx = regexp.MustCompile(`\b(first|second|third|fourth|fifth|last|1st|2nd|3rd|4th|5th) (` + weekdayAlt + `)\b`)
	monthRx          = regexp.MustCompile(`\b(` + monthAlt + `)\b`)

	excludeWeekendsRx = regexp.MustCompile(`\b(?:except|excluding) weekends?\b|\bweekdays only\b`)

	firstWorkingRx = regexp.MustCompile(`\bfirst (?:business|working) day\b`)
	lastWorkingRx  = regexp.MustCompile(`\blast (?:business|working) day\b`)
	nthWorkingRx   = regexp.MustCompile(`\b(\d{1,2}(?:st|nd|rd|th)|second|third|fourth|fifth) (?:business|working) day\b`)
	everyWorkingRx = regexp.MustCompile(`\b(?:every|all|each) (?:business|working) days?\b|\b(?:every|all) weekdays?\b|\bon weekdays\b`)
	lastDayRx      = regexp.MustCompile(`\blast day\b|\bend of\b`)

	ordinalKeywordRx = regexp.MustCompile(`\b(first|second|third) (?:day )?of\b`)
	ordinalSuffixRx  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\b`)
	dayWordRx        = regexp.MustCompile(`\b(?:day|the) (\d{1,2})\b`)
	monthThenDayRx   = regexp.MustCompile(`\b(?:` + monthAlt + `) (\d{1,2})\b`)
	dayThenMonthRx   = regexp.MustCompile(`\b(\d{1,2}) (?:of )?(?:` + monthAlt + `)\b`)

	previousFridayRx = regexp.MustCompile(`\b(?:previous|prior|preceding) (?:friday|working day|business day)\b`)
	nextMondayRx     = regexp.MustCompile(`\bnext monday\b`)
	nextWorkingRx    = regexp.MustCompile(`\b(?:next|following) (?:working|business) day\b`)
)

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var monthByName = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

var ordinalByWord = map[string]int{
	"first":  0,
	"second": 1,
	"third":  2,
	"fourth": 3,
	"fifth":  4,
	"1st":    0,
	"2nd":    1,
	"3rd":    2,
	"4th":    3,
	"5th":    4,
	"last":   LastOrdinal,
}

// phrases compiles whole-word matchers for literal phrases.
func phrases(ps ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(ps))
	for _, p := range ps {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return out
}

// familyTable is evaluated top to bottom and the first row that applies and
// extracts wins. The order is part of the rule language: a quarterly rule that
// names a weekday stays quarterly because row 6 is tried before row 10.
var familyTable = []familyRule{
	{
		family:   FamilyDaily,
		name:     "daily",
		patterns: phrases("every day", "daily"),
		extract:  extractDaily,
	},
	{
		family: FamilyWeekly,
		name:   "weekly",
		// Whole words only, unlike a plain substring test: "every weekday"
		// and "bi-weekly" fall through so the biweekly and business-day rows
		// below stay reachable.
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bevery week\b`),
			regexp.MustCompile(`(?:^|[^\w-])weekly\b`),
		},
		extract: extractWeekly,
	},
	{
		family:   FamilyMonthly,
		name:     "monthly",
		patterns: phrases("every month", "monthly"),
		extract:  extractPeriod,
	},
	{
		family:   FamilyEveryWeekday,
		name:     "every-weekday",
		patterns: []*regexp.Regexp{everyWeekdayRx},
		extract:  extractEveryWeekday,
	},
	{
		family:   FamilyBiweekly,
		name:     "biweekly",
		patterns: phrases("bi-weekly", "biweekly", "every two weeks", "every 2 weeks", "every other week", "fortnightly"),
		extract:  extractWeekly,
	},
	{
		family:   FamilyQuarterly,
		name:     "quarterly",
		patterns: phrases("quarterly", "every quarter"),
		extract:  extractPeriod,
	},
	{
		family:   FamilySemiannual,
		name:     "semiannual",
		// Before annual, whose "annually" would otherwise claim "semi-annually".
		patterns: append(
			[]*regexp.Regexp{regexp.MustCompile(`\bsemi-?annual(?:ly)?\b`)},
			phrases("twice a year", "every 6 months", "every six months")...,
		),
		extract:  extractPeriod,
	},
	{
		family:   FamilyAnnual,
		name:     "annual",
		patterns: phrases("annually", "yearly", "once a year"),
		extract:  extractAnnual,
	},
	{
		family:   FamilyEndOfMonth,
		name:     "end-of-month",
		patterns: phrases("last day of", "end of month", "end of the month"),
		extract:  extractEndOfMonth,
	},
	{
		family:   FamilyOrdinalWeekday,
		name:     "ordinal-weekday",
		patterns: []*regexp.Regexp{ordinalWeekdayRx},
		extract:  extractOrdinalWeekday,
	},
	{
		family: FamilyBusinessDay,
		name:   "business-day",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bbusiness days?\b`),
			regexp.MustCompile(`\bweekdays?\b`),
			regexp.MustCompile(`\bworking days?\b`),
		},
		extract: extractBusinessDay,
	},
	{
		family:  FamilySingleDate,
		name:    "single-date",
		extract: extractSingleDate,
	},
}

// FamilyOrder lists the family table names in evaluation order.
func FamilyOrder() []string {
	out := make([]string, 0, len(familyTable))
	for _, r := range familyTable {
		out = append(out, r.name)
	}
	return out
}

// Normalize lowercases rule text and collapses runs of whitespace.
func Normalize(rule string) string {
	return strings.Join(strings.Fields(strings.ToLower(rule)), " ")
}

// Classify decides which recurrence family a free-text rule belongs to and
// extracts its parameters. Unknown or empty text yields FamilyUnrecognized.
func Classify(rule string) Classification {
	text := Normalize(rule)
	if text == "" {
		return unrecognized()
	}
	for _, r := range familyTable {
		if !r.applies(text) {
			continue
		}
		c, ok := r.extract(text)
		if !ok {
			continue
		}
		c.Family = r.family
		if c.Pattern == "" {
			c.Pattern = r.name
		}
		return c
	}
	return unrecognized()
}

func unrecognized() Classification {
	return Classification{Family: FamilyUnrecognized, Pattern: FamilyUnrecognized.String()}
}

func extractDaily(text string) (Classification, bool) {
	return Classification{ExcludeWeekends: excludeWeekendsRx.MatchString(text)}, true
}

// extractWeekly serves weekly and bi-weekly rules; Monday is the default day.
func extractWeekly(text string) (Classification, bool) {
	wd, ok := findWeekday(text)
	if !ok {
		wd = time.Monday
	}
	return Classification{Weekday: wd}, true
}

func extractEveryWeekday(text string) (Classification, bool) {
	m := everyWeekdayRx.FindStringSubmatch(text)
	if m == nil {
		return Classification{}, false
	}
	return Classification{Weekday: weekdayByName[m[1]]}, true
}

func extractPeriod(text string) (Classification, bool) {
	return Classification{Anchor: extractAnchor(text)}, true
}

func extractAnnual(text string) (Classification, bool) {
	month, ok := findMonth(text)
	if !ok {
		month = time.January
	}
	return Classification{Anchor: extractAnchor(text), Month: month}, true
}

func extractEndOfMonth(text string) (Classification, bool) {
	return Classification{Anchor: Anchor{Kind: AnchorLastDay, Shift: detectShift(text)}}, true
}

func extractOrdinalWeekday(text string) (Classification, bool) {
	a, ok := ordinalWeekdayAnchor(text)
	if !ok {
		return Classification{}, false
	}
	a.Shift = detectShift(text)
	return Classification{Anchor: a}, true
}

// extractBusinessDay declines texts that mention working days without a
// first/last/nth/every sub-case, leaving them to the single-date fallback
// ("13th, if weekend then next working day").
func extractBusinessDay(text string) (Classification, bool) {
	switch {
	case firstWorkingRx.MatchString(text):
		return Classification{Anchor: Anchor{Kind: AnchorFirstWorkingDay}}, true
	case lastWorkingRx.MatchString(text):
		return Classification{Anchor: Anchor{Kind: AnchorLastWorkingDay}}, true
	}
	if n, ok := nthWorkingDay(text); ok {
		return Classification{Anchor: Anchor{Kind: AnchorNthWorkingDay, Day: n}}, true
	}
	if everyWorkingRx.MatchString(text) {
		return Classification{EveryWorkingDay: true}, true
	}
	return Classification{}, false
}

// extractAnchor locates the date inside an applicable month for the period
// families. Bare integers are ignored so "every 6 months" keeps day 1.
func extractAnchor(text string) Anchor {
	var a Anchor
	switch {
	case firstWorkingRx.MatchString(text):
		a.Kind = AnchorFirstWorkingDay
	case lastWorkingRx.MatchString(text):
		a.Kind = AnchorLastWorkingDay
	default:
		if n, ok := nthWorkingDay(text); ok {
			a = Anchor{Kind: AnchorNthWorkingDay, Day: n}
			break
		}
		if lastDayRx.MatchString(text) {
			a.Kind = AnchorLastDay
			break
		}
		if ow, ok := ordinalWeekdayAnchor(text); ok {
			a = ow
			break
		}
		day, ok := explicitDay(text)
		if !ok {
			day = 1
		}
		a = Anchor{Kind: AnchorDay, Day: day}
	}
	a.Shift = detectShift(text)
	return a
}

func ordinalWeekdayAnchor(text string) (Anchor, bool) {
	m := ordinalWeekdayRx.FindStringSubmatch(text)
	if m == nil {
		return Anchor{}, false
	}
	return Anchor{
		Kind:    AnchorOrdinalWeekday,
		Ordinal: ordinalByWord[m[1]],
		Weekday: weekdayByName[m[2]],
	}, true
}

func nthWorkingDay(text string) (int, bool) {
	m := nthWorkingRx.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	if idx, ok := ordinalByWord[m[1]]; ok {
		return idx + 1, true
	}
	n, err := strconv.Atoi(strings.TrimRight(m[1], "stndrh"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// explicitDay reads a day of month written as an ordinal keyword ("first
// of"), a suffixed number ("15th"), "day 15", "the 15", or next to a month
// name ("march 15", "15 march").
func explicitDay(text string) (int, bool) {
	if m := ordinalKeywordRx.FindStringSubmatch(text); m != nil {
		return ordinalByWord[m[1]] + 1, true
	}
	for _, rx := range []*regexp.Regexp{ordinalSuffixRx, dayWordRx, monthThenDayRx, dayThenMonthRx} {
		if m := rx.FindStringSubmatch(text); m != nil {
			if n, ok := dayNumber(m[1]); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func dayNumber(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

func detectShift(text string) Shift {
	switch {
	case previousFridayRx.MatchString(text):
		return ShiftPreviousFriday
	case nextMondayRx.MatchString(text):
		return ShiftNextMonday
	case nextWorkingRx.MatchString(text):
		return ShiftNextWorkingDay
	default:
		return ShiftNone
	}
}

func findWeekday(text string) (time.Weekday, bool) {
	m := weekdayRx.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return weekdayByName[m[1]], true
}

func findMonth(text string) (time.Month, bool) {
	m := monthRx.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return monthByName[m[1]], true
}
