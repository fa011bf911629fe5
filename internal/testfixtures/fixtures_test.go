package testfixtures

import (
	"testing"
	"time"
)

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("reservation")
	if got := gen.Next(); got != "reservation-1" {
		t.Fatalf("expected reservation-1, got %q", got)
	}
	if got := gen.Next(); got != "reservation-2" {
		t.Fatalf("expected reservation-2, got %q", got)
	}
}

func TestRoomFixtureOverrides(t *testing.T) {
	fixture := NewRoomFixture(WithRoomID("room-x"), WithRoomCapacity(25))

	room := fixture.Application()
	if room.ID != "room-x" || room.Capacity != 25 {
		t.Fatalf("unexpected room %+v", room)
	}

	record := fixture.Persistence()
	if record.OpenMinutes != fixture.OpenTime.Minutes() {
		t.Fatalf("expected open minutes %d, got %d", fixture.OpenTime.Minutes(), record.OpenMinutes)
	}
}

func TestReservationFixturesDoNotOverlap(t *testing.T) {
	first := NewReservationFixture()
	second := NewReservationFixture()

	if first.End.After(second.Start) && second.End.After(first.Start) {
		t.Fatalf("fixtures overlap: %v-%v vs %v-%v", first.Start, first.End, second.Start, second.End)
	}
}

func TestReservationFixtureUserIsolation(t *testing.T) {
	fixture := NewReservationFixture(WithReservationUser("user-a"))

	input := fixture.Input()
	*input.UserID = "mutated"

	if *fixture.UserID != "user-a" {
		t.Fatalf("fixture user mutated to %q", *fixture.UserID)
	}
}
