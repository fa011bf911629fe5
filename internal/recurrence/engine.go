package recurrence

import (
	"errors"
	"time"

	"github.com/example/room-booking/internal/booking"
)

// MaxWeeks bounds how far a weekly recurrence request may extend.
const MaxWeeks = 12

// ErrInvalidWeekday indicates the requested weekday is outside Sunday to Saturday.
var ErrInvalidWeekday = errors.New("recurrence: weekday must be between 0 and 6")

// ErrInvalidWeekCount indicates the requested number of weeks is outside 1 to MaxWeeks.
var ErrInvalidWeekCount = errors.New("recurrence: week count out of range")

// ErrInvalidWindow indicates the shared time-of-day window is empty or inverted.
var ErrInvalidWindow = errors.New("recurrence: end time must be after start time")

// Request describes a weekly recurring booking to expand. All occurrences
// share the weekday and the time-of-day window; FirstDate anchors the series.
type Request struct {
	Weekday   time.Weekday
	StartTime booking.TimeOfDay
	EndTime   booking.TimeOfDay
	FirstDate time.Time
	WeekCount int
}

// Occurrence is one concrete dated instance generated from a Request.
type Occurrence struct {
	Index int
	Date  time.Time
	Start time.Time
	End   time.Time
}

// Engine expands recurrence requests into dated occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that anchors occurrences in the provided
// location. If loc is nil, the local timezone is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{location: loc}
}

// Location returns the timezone occurrences are anchored in.
func (e *Engine) Location() *time.Location {
	if e == nil || e.location == nil {
		return time.Local
	}
	return e.location
}

// Expand generates exactly WeekCount occurrences: occurrence i falls on the
// first date on or after FirstDate matching Weekday, plus i weeks, combined
// with the shared start and end times. Dates are advanced with AddDate so the
// series stays weekday-aligned across DST transitions.
func (e *Engine) Expand(req Request) ([]Occurrence, error) {
	if req.Weekday < time.Sunday || req.Weekday > time.Saturday {
		return nil, ErrInvalidWeekday
	}
	if req.WeekCount < 1 || req.WeekCount > MaxWeeks {
		return nil, ErrInvalidWeekCount
	}
	if req.EndTime <= req.StartTime {
		return nil, ErrInvalidWindow
	}

	loc := e.Location()
	first := startOfDay(req.FirstDate, loc)
	offset := (int(req.Weekday) - int(first.Weekday()) + 7) % 7
	first = first.AddDate(0, 0, offset)

	occurrences := make([]Occurrence, 0, req.WeekCount)
	for i := 0; i < req.WeekCount; i++ {
		date := first.AddDate(0, 0, 7*i)
		occurrences = append(occurrences, Occurrence{
			Index: i,
			Date:  date,
			Start: req.StartTime.At(date, loc),
			End:   req.EndTime.At(date, loc),
		})
	}
	return occurrences, nil
}

// startOfDay pins t's calendar date to midnight in loc. FirstDate values
// arrive date-only, so the calendar fields are read as given; converting the
// instant into loc first would shift the date in negative-offset zones.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
