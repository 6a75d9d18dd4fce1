package repository

import (
	"time"

	"rental-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Booking BookingRepository
	// Property always reads the database. Requests and status changes
	// authorize against it.
	Property PropertyRepository
	// CachedProperty may lag a landlord reassignment by up to one TTL and
	// only serves read-only listings.
	CachedProperty PropertyRepository
	User           UserRepository
}

func NewRepository(db database.PgxIface, propertyTTL time.Duration, log *zap.Logger) *Repository {
	property := NewPropertyRepository(db, log)
	return &Repository{
		Booking:        NewBookingRepository(db, log),
		Property:       property,
		CachedProperty: NewCachedPropertyRepository(property, propertyTTL, log),
		User:           NewUserRepository(db, log),
	}
}
