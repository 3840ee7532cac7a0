package schedule

import (
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	appLog "prodcal/internal/log"
	"prodcal/internal/workday"
)

var (
	quarterMonths    = []time.Month{time.January, time.April, time.July, time.October}
	semiannualMonths = []time.Month{time.January, time.July}
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

var workWeek = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}

// Expand returns the dates c yields in the given month, in ascending order.
// Rules that do not apply to the month, and anchors the month does not have
// (day 31 in February, a fifth Monday), yield nothing.
func Expand(c Classification, year int, month time.Month) []time.Time {
	switch c.Family {
	case FamilyDaily:
		return dailyDates(year, month, c.ExcludeWeekends)
	case FamilyWeekly, FamilyEveryWeekday:
		return weeklyDates(year, month, c.Weekday, 1)
	case FamilyBiweekly:
		return weeklyDates(year, month, c.Weekday, 2)
	case FamilyMonthly, FamilyEndOfMonth, FamilyOrdinalWeekday:
		return anchorDates(c.Anchor, year, month)
	case FamilyQuarterly:
		if !slices.Contains(quarterMonths, month) {
			return nil
		}
		return anchorDates(c.Anchor, year, month)
	case FamilySemiannual:
		if !slices.Contains(semiannualMonths, month) {
			return nil
		}
		return anchorDates(c.Anchor, year, month)
	case FamilyAnnual:
		if month != c.Month {
			return nil
		}
		return anchorDates(c.Anchor, year, month)
	case FamilyBusinessDay:
		if c.EveryWorkingDay {
			return dailyDates(year, month, true)
		}
		return anchorDates(c.Anchor, year, month)
	case FamilySingleDate:
		if c.Year != 0 && c.Year != year {
			return nil
		}
		if c.Month != 0 && c.Month != month {
			return nil
		}
		return anchorDates(c.Anchor, year, month)
	default:
		return nil
	}
}

// AnchorDate resolves a to a date in year/month and applies its weekend
// shift. It reports false when the month has no such date.
func AnchorDate(a Anchor, year int, month time.Month) (time.Time, bool) {
	var d time.Time
	switch a.Kind {
	case AnchorDay:
		var ok bool
		if d, ok = workday.DayOf(year, month, a.Day); !ok {
			return time.Time{}, false
		}
	case AnchorLastDay:
		d = workday.Date(year, month, workday.DaysInMonth(year, month))
	case AnchorFirstWorkingDay:
		d = workday.FirstWorkingDay(year, month)
	case AnchorLastWorkingDay:
		d = workday.LastWorkingDay(year, month)
	case AnchorNthWorkingDay:
		var ok bool
		if d, ok = workday.NthWorkingDay(year, month, a.Day); !ok {
			return time.Time{}, false
		}
	case AnchorOrdinalWeekday:
		if a.Ordinal == LastOrdinal {
			d = workday.LastWeekdayOfMonth(year, month, a.Weekday)
			break
		}
		var ok bool
		if d, ok = workday.NthWeekdayOfMonth(year, month, a.Weekday, a.Ordinal); !ok {
			return time.Time{}, false
		}
	default:
		return time.Time{}, false
	}
	return ApplyShift(a.Shift, d), true
}

// ApplyShift moves a weekend date according to policy. Working days are
// returned unchanged.
func ApplyShift(policy Shift, d time.Time) time.Time {
	if !workday.IsWeekend(d) {
		return d
	}
	switch policy {
	case ShiftNextMonday:
		return workday.NextMonday(d)
	case ShiftNextWorkingDay:
		return workday.NextWorkingDay(d)
	case ShiftPreviousFriday:
		return workday.PreviousFriday(d)
	default:
		return d
	}
}

func anchorDates(a Anchor, year int, month time.Month) []time.Time {
	d, ok := AnchorDate(a, year, month)
	if !ok {
		return nil
	}
	return []time.Time{d}
}

func dailyDates(year int, month time.Month, excludeWeekends bool) []time.Time {
	opt := rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: workday.Date(year, month, 1),
		Until:   workday.Date(year, month, workday.DaysInMonth(year, month)),
	}
	if excludeWeekends {
		opt.Byweekday = workWeek
	}
	return expandRRule(opt)
}

// weeklyDates starts at the first matching weekday of the month and steps by
// interval weeks until month end. Each month restarts the cycle.
func weeklyDates(year int, month time.Month, weekday time.Weekday, interval int) []time.Time {
	first, _ := workday.NthWeekdayOfMonth(year, month, weekday, 0)
	return expandRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Interval:  interval,
		Dtstart:   first,
		Until:     workday.Date(year, month, workday.DaysInMonth(year, month)),
		Byweekday: []rrule.Weekday{rruleWeekdays[weekday]},
	})
}

func expandRRule(opt rrule.ROption) []time.Time {
	r, err := rrule.NewRRule(opt)
	if err != nil {
		appLog.Error("expand: invalid recurrence", err, "freq", int(opt.Freq), "dtstart", opt.Dtstart.Format("2006-01-02"))
		return nil
	}
	return r.All()
}
