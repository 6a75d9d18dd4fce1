package usecase

import (
	"rental-booking/internal/data/entity"

	"github.com/google/uuid"
)

// FindConflict returns the first confirmed booking whose dates overlap
// candidate, ignoring the booking identified by exclude. Non-confirmed
// bookings never conflict.
func FindConflict(candidate entity.DateRange, existing []*entity.Booking, exclude uuid.UUID) *entity.Booking {
	for _, b := range existing {
		if b == nil || b.ID == exclude || b.Status != entity.BookingStatusConfirmed {
			continue
		}
		if candidate.Overlaps(b.Range()) {
			return b
		}
	}
	return nil
}

func HasConflict(candidate entity.DateRange, existing []*entity.Booking, exclude uuid.UUID) bool {
	return FindConflict(candidate, existing, exclude) != nil
}
