package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/booking"
)

func mustTimeOfDay(t *testing.T, value string) booking.TimeOfDay {
	t.Helper()
	tod, err := booking.ParseTimeOfDay(value)
	if err != nil {
		t.Fatalf("failed to parse time of day %q: %v", value, err)
	}
	return tod
}

func TestEngine_Expand_WeekdayAlignment(t *testing.T) {
	t.Parallel()

	engine := NewEngine(time.UTC)

	// 2024-03-14 is a Thursday; the first Monday on or after it is 2024-03-18.
	occurrences, err := engine.Expand(Request{
		Weekday:   time.Monday,
		StartTime: mustTimeOfDay(t, "09:00"),
		EndTime:   mustTimeOfDay(t, "10:00"),
		FirstDate: time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		WeekCount: 3,
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	if len(occurrences) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occurrences))
	}

	expectedDates := []time.Time{
		time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, occ := range occurrences {
		if occ.Index != i {
			t.Fatalf("occurrence %d carries index %d", i, occ.Index)
		}
		if !occ.Date.Equal(expectedDates[i]) {
			t.Fatalf("occurrence %d date = %v, expected %v", i, occ.Date, expectedDates[i])
		}
		if occ.Start.Hour() != 9 || occ.End.Hour() != 10 {
			t.Fatalf("occurrence %d window = %v-%v", i, occ.Start, occ.End)
		}
		if occ.Start.Weekday() != time.Monday {
			t.Fatalf("occurrence %d falls on %v", i, occ.Start.Weekday())
		}
	}
}

func TestEngine_Expand_FirstDateMatchesWeekday(t *testing.T) {
	t.Parallel()

	engine := NewEngine(time.UTC)

	// 2024-03-14 is itself a Thursday; the series starts that same day.
	occurrences, err := engine.Expand(Request{
		Weekday:   time.Thursday,
		StartTime: mustTimeOfDay(t, "14:00"),
		EndTime:   mustTimeOfDay(t, "15:30"),
		FirstDate: time.Date(2024, time.March, 14, 11, 22, 33, 0, time.UTC),
		WeekCount: 1,
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	expected := time.Date(2024, time.March, 14, 14, 0, 0, 0, time.UTC)
	if !occurrences[0].Start.Equal(expected) {
		t.Fatalf("first occurrence start = %v, expected %v", occurrences[0].Start, expected)
	}
}

func TestEngine_Expand_DateOnlyFirstDateInNegativeOffsetZone(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	engine := NewEngine(loc)

	// Date-only values parse to UTC midnight. 2026-03-09 is a Monday; the
	// series must not slide back to Sunday the 8th just because UTC midnight
	// falls on the previous local day.
	firstDate := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)

	t.Run("first date keeps its calendar day", func(t *testing.T) {
		occurrences, err := engine.Expand(Request{
			Weekday:   time.Monday,
			StartTime: mustTimeOfDay(t, "10:00"),
			EndTime:   mustTimeOfDay(t, "11:00"),
			FirstDate: firstDate,
			WeekCount: 1,
		})
		if err != nil {
			t.Fatalf("Expand failed: %v", err)
		}
		expected := time.Date(2026, time.March, 9, 10, 0, 0, 0, loc)
		if !occurrences[0].Start.Equal(expected) {
			t.Fatalf("first occurrence start = %v, expected %v", occurrences[0].Start, expected)
		}
	})

	t.Run("alignment never lands before the first date", func(t *testing.T) {
		occurrences, err := engine.Expand(Request{
			Weekday:   time.Sunday,
			StartTime: mustTimeOfDay(t, "10:00"),
			EndTime:   mustTimeOfDay(t, "11:00"),
			FirstDate: firstDate,
			WeekCount: 1,
		})
		if err != nil {
			t.Fatalf("Expand failed: %v", err)
		}
		expected := time.Date(2026, time.March, 15, 10, 0, 0, 0, loc)
		if !occurrences[0].Start.Equal(expected) {
			t.Fatalf("first occurrence start = %v, expected %v", occurrences[0].Start, expected)
		}
	})
}

func TestEngine_Expand_Bounds(t *testing.T) {
	t.Parallel()

	engine := NewEngine(time.UTC)
	base := Request{
		Weekday:   time.Monday,
		StartTime: mustTimeOfDay(t, "09:00"),
		EndTime:   mustTimeOfDay(t, "10:00"),
		FirstDate: time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		WeekCount: 1,
	}

	cases := []struct {
		name     string
		mutate   func(*Request)
		expected error
	}{
		{"zero weeks", func(r *Request) { r.WeekCount = 0 }, ErrInvalidWeekCount},
		{"too many weeks", func(r *Request) { r.WeekCount = MaxWeeks + 1 }, ErrInvalidWeekCount},
		{"negative weekday", func(r *Request) { r.Weekday = time.Weekday(-1) }, ErrInvalidWeekday},
		{"weekday above saturday", func(r *Request) { r.Weekday = time.Weekday(7) }, ErrInvalidWeekday},
		{"inverted window", func(r *Request) { r.StartTime, r.EndTime = r.EndTime, r.StartTime }, ErrInvalidWindow},
		{"empty window", func(r *Request) { r.EndTime = r.StartTime }, ErrInvalidWindow},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := base
			tc.mutate(&req)
			if _, err := engine.Expand(req); !errors.Is(err, tc.expected) {
				t.Fatalf("Expand error = %v, expected %v", err, tc.expected)
			}
		})
	}
}

func TestEngine_Expand_MaxWeeks(t *testing.T) {
	t.Parallel()

	engine := NewEngine(time.UTC)
	occurrences, err := engine.Expand(Request{
		Weekday:   time.Friday,
		StartTime: mustTimeOfDay(t, "09:00"),
		EndTime:   mustTimeOfDay(t, "10:00"),
		FirstDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		WeekCount: MaxWeeks,
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(occurrences) != MaxWeeks {
		t.Fatalf("expected %d occurrences, got %d", MaxWeeks, len(occurrences))
	}
	for i := 1; i < len(occurrences); i++ {
		gap := occurrences[i].Date.Sub(occurrences[i-1].Date)
		if gap != 7*24*time.Hour {
			t.Fatalf("gap between occurrences %d and %d = %v", i-1, i, gap)
		}
	}
}
