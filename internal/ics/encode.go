package ics

import (
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "prodcal/internal/log"
	"prodcal/internal/model"
)

const (
	ProductID              = "-//Production Calendar Generator//EN"
	DefaultUIDDomain       = "prodcal.local"
	DefaultReminderTrigger = "-P1D"

	categories = "Business,Deadline"
)

// Options controls calendar-level metadata and per-event defaults.
type Options struct {
	Year int
	// Title prefixes X-WR-CALNAME; empty means "Business Calendar".
	Title           string
	UIDDomain       string
	ReminderTrigger string
	// Now stamps DTSTAMP. Nil means time.Now.
	Now func() time.Time
}

func (o Options) normalized() Options {
	if o.Title == "" {
		o.Title = "Business Calendar"
	}
	if o.UIDDomain == "" {
		o.UIDDomain = DefaultUIDDomain
	}
	if o.ReminderTrigger == "" {
		o.ReminderTrigger = DefaultReminderTrigger
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// EventUID returns a UID that stays the same across runs for the same event
// identifier and date.
func EventUID(e model.CalendarEvent, domain string) string {
	if domain == "" {
		domain = DefaultUIDDomain
	}
	name := e.ID + "-" + e.Date.Format("20060102")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String() + "@" + domain
}

// Build assembles the VCALENDAR for events. Each event becomes an all-day
// VEVENT whose DTEND is the following day.
func Build(events []model.CalendarEvent, opts Options) *ical.Calendar {
	opts = opts.normalized()
	year := strconv.Itoa(opts.Year)

	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(opts.Title + " " + year)
	cal.SetXWRCalDesc("Business deadlines and close tasks for " + year)

	stamp := opts.Now().UTC()
	for _, e := range events {
		ev := cal.AddEvent(EventUID(e, opts.UIDDomain))
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(e.Date)
		ev.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
		ev.SetSummary(e.RuleName)
		if strings.TrimSpace(e.Notes) != "" {
			ev.SetDescription(e.Notes)
		}
		ev.SetStatus(ical.ObjectStatusConfirmed)
		ev.SetTimeTransparency(ical.TransparencyTransparent)
		ev.SetProperty(ical.ComponentPropertyCategories, categories)

		alarm := ev.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(opts.ReminderTrigger)
		alarm.SetProperty(ical.ComponentPropertyDescription, ical.ToText("Reminder: "+e.RuleName+" is tomorrow"))
	}
	return cal
}

// Encode serializes events as an iCalendar document.
func Encode(events []model.CalendarEvent, opts Options) string {
	return Build(events, opts).Serialize()
}

// Write streams the iCalendar document for events to w.
func Write(w io.Writer, events []model.CalendarEvent, opts Options) error {
	if err := Build(events, opts).SerializeTo(w); err != nil {
		appLog.Error("ics encode failed", err, "year", opts.Year, "events", len(events))
		return err
	}
	return nil
}
