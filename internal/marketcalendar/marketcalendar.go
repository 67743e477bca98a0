// Package marketcalendar implements the market-hours contract: a
// minute is "open" iff it falls on a US equity trading weekday, inside
// the regular session window, and is not an observed holiday. Holidays
// are computed algorithmically rather than read from a fixed table, so
// the rule holds for any year without an annual data update.
package marketcalendar

import (
	"time"

	"github.com/rs/zerolog"
)

// TradingWindow is the regular session open/close, in exchange local
// time.
type TradingWindow struct {
	OpenHour    int
	OpenMinute  int
	CloseHour   int
	CloseMinute int
}

// Service answers "is the market open right now" for the US equity
// session (NYSE/NASDAQ).
type Service struct {
	location *time.Location
	window   TradingWindow
	log      zerolog.Logger
}

// New creates the market-hours service for the US equity session
// (09:30-16:00 America/New_York).
func New(log zerolog.Logger) *Service {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		location: loc,
		window:   TradingWindow{OpenHour: 9, OpenMinute: 30, CloseHour: 16, CloseMinute: 0},
		log:      log.With().Str("component", "market_hours").Logger(),
	}
}

// IsOpen reports whether the market is open at the given instant.
func (s *Service) IsOpen(t time.Time) bool {
	local := t.In(s.location)

	weekday := local.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return false
	}

	if IsHoliday(local) {
		return false
	}

	y, m, d := local.Date()
	open := time.Date(y, m, d, s.window.OpenHour, s.window.OpenMinute, 0, 0, s.location)
	closeTime := time.Date(y, m, d, s.window.CloseHour, s.window.CloseMinute, 0, 0, s.location)

	return !local.Before(open) && !local.After(closeTime)
}

// Now reports whether the market is open right now.
func (s *Service) Now() bool {
	return s.IsOpen(time.Now())
}

// IsHoliday reports whether the given date (interpreted as a calendar
// day, any time-of-day) is an observed US equity market holiday.
func IsHoliday(t time.Time) bool {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())

	// A Saturday New Year's Day is observed on Dec 31 of the prior
	// year, which Holidays reports under the following year.
	candidates := append(Holidays(y, t.Location()), Holidays(y+1, t.Location())...)
	for _, h := range candidates {
		if h.Equal(day) {
			return true
		}
	}
	return false
}

// Holidays returns the observed US equity market holiday dates for the
// given year, with the Saturday-shifts-to-Friday / Sunday-shifts-to-
// Monday observance rule applied.
func Holidays(year int, loc *time.Location) []time.Time {
	raw := []time.Time{
		observe(time.Date(year, time.January, 1, 0, 0, 0, 0, loc)),   // New Year's Day
		nthWeekdayOfMonth(year, time.January, time.Monday, 3, loc),   // MLK Day
		nthWeekdayOfMonth(year, time.February, time.Monday, 3, loc),  // Presidents' Day
		lastWeekdayOfMonth(year, time.May, time.Monday, loc),         // Memorial Day
		observe(time.Date(year, time.June, 19, 0, 0, 0, 0, loc)),     // Juneteenth
		observe(time.Date(year, time.July, 4, 0, 0, 0, 0, loc)),      // Independence Day
		nthWeekdayOfMonth(year, time.September, time.Monday, 1, loc), // Labor Day
		nthWeekdayOfMonth(year, time.November, time.Thursday, 4, loc), // Thanksgiving
		observe(time.Date(year, time.December, 25, 0, 0, 0, 0, loc)), // Christmas
	}
	return raw
}

// observe applies the weekend-observance rule: a holiday falling on
// Saturday is observed the prior Friday; on Sunday, the following
// Monday.
func observe(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}

// nthWeekdayOfMonth returns the nth occurrence (1-indexed) of the given
// weekday in the month. Fixed-weekday holidays (MLK, Presidents',
// Labor Day, Thanksgiving) never fall on a weekend so no observance
// shift applies.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + (n-1)*7
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// lastWeekdayOfMonth returns the last occurrence of the given weekday
// in the month (used for Memorial Day).
func lastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, loc *time.Location) time.Time {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
	last := firstOfNext.AddDate(0, 0, -1)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}
