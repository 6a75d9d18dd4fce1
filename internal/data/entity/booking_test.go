package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBookingStatusTransitions(t *testing.T) {
	assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusConfirmed))
	assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusRejected))
	assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusCancelled))
	assert.False(t, BookingStatusPending.CanTransitionTo(BookingStatusPending))

	for _, terminal := range []BookingStatus{BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled} {
		assert.True(t, terminal.IsTerminal(), terminal)
		for _, target := range []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled} {
			assert.False(t, terminal.CanTransitionTo(target), "%s -> %s", terminal, target)
		}
	}

	assert.False(t, BookingStatusPending.IsTerminal())
	assert.False(t, BookingStatus("ARCHIVED").IsValid())
	assert.True(t, BookingStatus("ARCHIVED").IsTerminal())
	assert.False(t, BookingStatus("ARCHIVED").CanTransitionTo(BookingStatusCancelled))
	assert.False(t, BookingStatusPending.CanTransitionTo(BookingStatus("ARCHIVED")))
}

func TestDateRangeOverlaps(t *testing.T) {
	confirmed := DateRange{Start: day("2024-06-01"), End: day("2024-06-10")}

	cases := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"starts on existing checkout day", "2024-06-10", "2024-06-15", true},
		{"starts the day after", "2024-06-11", "2024-06-15", false},
		{"ends on existing check-in day", "2024-05-25", "2024-06-01", true},
		{"ends the day before", "2024-05-25", "2024-05-31", false},
		{"inside", "2024-06-03", "2024-06-05", true},
		{"covers", "2024-05-01", "2024-07-01", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := DateRange{Start: day(tc.start), End: day(tc.end)}
			assert.Equal(t, tc.want, candidate.Overlaps(confirmed))
			assert.Equal(t, tc.want, confirmed.Overlaps(candidate))
		})
	}
}

func TestDateRangeValidAndNights(t *testing.T) {
	r := DateRange{Start: day("2024-06-01"), End: day("2024-06-10")}
	assert.True(t, r.Valid())
	assert.Equal(t, 9, r.Nights())

	assert.False(t, DateRange{Start: day("2024-06-01"), End: day("2024-06-01")}.Valid())
	assert.False(t, DateRange{Start: day("2024-06-02"), End: day("2024-06-01")}.Valid())
}

func TestPropertyLandlord(t *testing.T) {
	landlord := uuid.New()
	p := &Property{ID: uuid.New(), LandlordID: &landlord}

	assert.True(t, p.HasLandlord())
	assert.True(t, p.IsLandlord(landlord))
	assert.False(t, p.IsLandlord(uuid.New()))

	orphan := &Property{ID: uuid.New()}
	assert.False(t, orphan.HasLandlord())
	assert.False(t, orphan.IsLandlord(uuid.Nil))
}
