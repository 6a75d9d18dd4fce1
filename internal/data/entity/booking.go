package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// bookingTransitions is the whole lifecycle: only PENDING moves, and it moves once.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusConfirmed: {},
	BookingStatusRejected:  {},
	BookingStatusCancelled: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	if s.IsTerminal() || !target.IsValid() {
		return false
	}
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible. Unknown
// statuses are treated as terminal.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

func (s BookingStatus) String() string {
	return string(s)
}

// DateRange is a closed interval of calendar days at UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Valid() bool {
	return r.Start.Before(r.End)
}

// Overlaps treats both ends as inclusive: a range ending on the day another
// starts overlaps it, so same-day turnover is never allowed.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// Nights is the number of whole days between start and end.
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

type Booking struct {
	Base
	TenantID   uuid.UUID     `db:"tenant_id"`
	PropertyID uuid.UUID     `db:"property_id"`
	StartDate  time.Time     `db:"start_date"`
	EndDate    time.Time     `db:"end_date"`
	Status     BookingStatus `db:"status"`
}

func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// BookingDetail is a booking joined with the directory data list views show.
type BookingDetail struct {
	Booking
	Property PropertySummary
	Tenant   UserSummary
	Payment  *PaymentSummary
}
