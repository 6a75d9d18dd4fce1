// Package notify delivers booking lifecycle events to real-time clients and
// queues transactional email. Delivery is best effort.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingRejected  = "booking.rejected"
	EventBookingCancelled = "booking.cancelled"
	EventPaymentEligible  = "payment.eligible"
)

const (
	TemplateBookingConfirmation = "booking_confirmation"
	TemplateBookingRejection    = "booking_rejection"
	TemplateBookingCancellation = "booking_cancellation"
)

// Audience names who should receive an event: tenants, landlords and,
// optionally, everyone watching a property.
type Audience struct {
	UserIDs     []uuid.UUID `json:"user_ids,omitempty"`
	LandlordIDs []uuid.UUID `json:"landlord_ids,omitempty"`
	PropertyID  *uuid.UUID  `json:"property_id,omitempty"`
}

// Rooms maps the audience onto hub room names.
func (a Audience) Rooms() []string {
	rooms := make([]string, 0, len(a.UserIDs)+len(a.LandlordIDs)+1)
	rooms = appendRooms(rooms, a.UserIDs, UserRoom)
	rooms = appendRooms(rooms, a.LandlordIDs, LandlordRoom)
	if a.PropertyID != nil && *a.PropertyID != uuid.Nil {
		rooms = append(rooms, PropertyRoom(*a.PropertyID))
	}
	return rooms
}

func appendRooms(rooms []string, ids []uuid.UUID, name func(uuid.UUID) string) []string {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		rooms = append(rooms, name(id))
	}
	return rooms
}

func UserRoom(id uuid.UUID) string     { return "user_" + id.String() }
func LandlordRoom(id uuid.UUID) string { return "landlord_" + id.String() }
func PropertyRoom(id uuid.UUID) string { return "property_" + id.String() }

type Event struct {
	Name       string    `json:"event"`
	Payload    any       `json:"payload"`
	Audience   Audience  `json:"audience"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Email is a templated message for the external mail worker.
type Email struct {
	Template string         `json:"template"`
	To       string         `json:"to"`
	Params   map[string]any `json:"params"`
}

type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}
