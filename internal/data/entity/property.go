package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property is owned by the listing service; bookings only read it.
type Property struct {
	ID           uuid.UUID       `db:"id"`
	LandlordID   *uuid.UUID      `db:"landlord_id"`
	Title        string          `db:"title"`
	City         string          `db:"city"`
	RentPerMonth decimal.Decimal `db:"rent_per_month"`
}

// HasLandlord reports whether the property can accept bookings at all.
func (p *Property) HasLandlord() bool {
	return p.LandlordID != nil && *p.LandlordID != uuid.Nil
}

func (p *Property) IsLandlord(userID uuid.UUID) bool {
	return p.HasLandlord() && *p.LandlordID == userID
}

type PropertySummary struct {
	ID           uuid.UUID
	LandlordID   *uuid.UUID
	Title        string
	City         string
	RentPerMonth decimal.Decimal
}
