package usecase

import (
	"rental-booking/internal/data/entity"
	"rental-booking/pkg/apperror"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a booking operation.
type Actor struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

type Action string

const (
	ActionRequest      Action = "booking:request"
	ActionConfirm      Action = "booking:confirm"
	ActionReject       Action = "booking:reject"
	ActionCancel       Action = "booking:cancel"
	ActionListTenant   Action = "booking:list_tenant"
	ActionListLandlord Action = "booking:list_landlord"
	ActionListProperty Action = "booking:list_property"
	ActionListAll      Action = "booking:list_all"
	ActionOverride     Action = "booking:override"
)

// Ownership is the relation the actor must have to the booking or property.
type Ownership int

const (
	OwnerAny Ownership = iota
	OwnerTenant
	OwnerLandlord
	OwnerNotLandlord
)

type rule struct {
	role        entity.UserRole
	ownership   Ownership
	roleMessage string
	ownMessage  string
}

// policy is the only place that decides who may do what.
var policy = map[Action]rule{
	ActionRequest: {
		role:        entity.RoleTenant,
		ownership:   OwnerNotLandlord,
		roleMessage: "Only tenants can request bookings",
		ownMessage:  "Cannot book your own property",
	},
	ActionConfirm: {
		role:        entity.RoleLandlord,
		ownership:   OwnerLandlord,
		roleMessage: "Only landlords can confirm bookings",
		ownMessage:  "Not authorized to confirm this booking",
	},
	ActionReject: {
		role:        entity.RoleLandlord,
		ownership:   OwnerLandlord,
		roleMessage: "Only landlords can reject bookings",
		ownMessage:  "Not authorized to reject this booking",
	},
	ActionCancel: {
		role:        entity.RoleTenant,
		ownership:   OwnerTenant,
		roleMessage: "Only tenants can cancel bookings",
		ownMessage:  "Not authorized to cancel this booking",
	},
	ActionListTenant: {
		role:        entity.RoleTenant,
		roleMessage: "Only tenants can view their bookings",
	},
	ActionListLandlord: {
		role:        entity.RoleLandlord,
		roleMessage: "Only landlords can view these bookings",
	},
	ActionListProperty: {
		role:        entity.RoleLandlord,
		ownership:   OwnerLandlord,
		roleMessage: "Only landlords can view bookings for their properties",
		ownMessage:  "Not authorized to view bookings for this property",
	},
	ActionListAll: {
		role:        entity.RoleAdmin,
		roleMessage: "Only admins can view all bookings",
	},
	ActionOverride: {
		role:        entity.RoleAdmin,
		roleMessage: "Only admins can change booking status",
	},
}

// Subject is what ownership is judged against. TenantID is zero when the
// action does not concern an existing booking.
type Subject struct {
	TenantID uuid.UUID
	Property *entity.Property
}

// AuthorizeRole is the first phase of a policy check and needs nothing loaded.
func AuthorizeRole(actor Actor, action Action) error {
	r, ok := policy[action]
	if !ok || actor.Role != r.role {
		return apperror.Forbidden(r.roleMessageOr("Forbidden"))
	}
	return nil
}

// AuthorizeOwnership is the second phase, run once the subject is loaded.
func AuthorizeOwnership(actor Actor, action Action, subject Subject) error {
	r, ok := policy[action]
	if !ok {
		return apperror.Forbidden("Forbidden")
	}

	var allowed bool
	switch r.ownership {
	case OwnerAny:
		allowed = true
	case OwnerTenant:
		allowed = subject.TenantID != uuid.Nil && subject.TenantID == actor.UserID
	case OwnerLandlord:
		allowed = subject.Property != nil && subject.Property.IsLandlord(actor.UserID)
	case OwnerNotLandlord:
		allowed = subject.Property != nil && !subject.Property.IsLandlord(actor.UserID)
	}

	if !allowed {
		return apperror.Forbidden(r.ownMessage)
	}
	return nil
}

func (r rule) roleMessageOr(fallback string) string {
	if r.roleMessage == "" {
		return fallback
	}
	return r.roleMessage
}
