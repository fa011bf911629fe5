package booking

import "time"

// Booking represents a reserved interval in a room. Intervals are half-open:
// a booking occupies [Start, End), so two bookings that merely touch at an
// endpoint do not conflict.
type Booking struct {
	ID     string
	RoomID string
	Start  time.Time
	End    time.Time
}

// Conflict details an overlapping booking relation that callers can present
// to users.
type Conflict struct {
	WithBookingID string
	RoomID        string
	Start         time.Time
	End           time.Time
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// DetectConflicts identifies room conflicts for the candidate booking against
// existing ones. A booking never conflicts with itself: entries carrying the
// candidate's ID are skipped, which lets callers pass the stored state
// unchanged when re-validating an edit.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	if candidate.RoomID == "" || !candidate.End.After(candidate.Start) {
		return nil
	}

	var conflicts []Conflict
	for _, other := range existing {
		if other.ID != "" && other.ID == candidate.ID {
			continue
		}
		if other.RoomID != candidate.RoomID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, other.Start, other.End) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithBookingID: other.ID,
			RoomID:        other.RoomID,
			Start:         other.Start,
			End:           other.End,
		})
	}
	return conflicts
}

// ClippedMinutes returns the whole minutes of [start, end) that fall inside
// the window [windowStart, windowEnd]. Used by occupancy computations to sum
// only the reserved time inside the queried interval.
func ClippedMinutes(start, end, windowStart, windowEnd time.Time) int {
	if start.Before(windowStart) {
		start = windowStart
	}
	if end.After(windowEnd) {
		end = windowEnd
	}
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}
