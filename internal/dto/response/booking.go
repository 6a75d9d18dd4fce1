package response

import (
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/utils"

	"github.com/shopspring/decimal"
)

type PropertySummaryResponse struct {
	ID           string          `json:"id"`
	LandlordID   string          `json:"landlord_id,omitempty"`
	Title        string          `json:"title"`
	City         string          `json:"city"`
	RentPerMonth decimal.Decimal `json:"rent_per_month"`
}

type TenantSummaryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PaymentSummaryResponse struct {
	Status   entity.PaymentStatus `json:"status"`
	Amount   decimal.Decimal      `json:"amount"`
	Currency string               `json:"currency,omitempty"`
}

type BookingResponse struct {
	ID              string                   `json:"id"`
	TenantID        string                   `json:"tenant_id"`
	PropertyID      string                   `json:"property_id"`
	StartDate       string                   `json:"start_date"`
	EndDate         string                   `json:"end_date"`
	Status          entity.BookingStatus     `json:"status"`
	Nights          int                      `json:"nights"`
	EstimatedAmount decimal.Decimal          `json:"estimated_amount"`
	Property        *PropertySummaryResponse `json:"property,omitempty"`
	Tenant          *TenantSummaryResponse   `json:"tenant,omitempty"`
	Payment         *PaymentSummaryResponse  `json:"payment,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// BookingNoticeResponse is what property room subscribers see. It carries
// no tenant or payment data.
type BookingNoticeResponse struct {
	ID         string               `json:"id"`
	PropertyID string               `json:"property_id"`
	Status     entity.BookingStatus `json:"status"`
	StartDate  string               `json:"start_date"`
	EndDate    string               `json:"end_date"`
}

func BookingToNotice(booking *entity.Booking) BookingNoticeResponse {
	return BookingNoticeResponse{
		ID:         booking.ID.String(),
		PropertyID: booking.PropertyID.String(),
		Status:     booking.Status,
		StartDate:  booking.StartDate.Format(utils.DateLayout),
		EndDate:    booking.EndDate.Format(utils.DateLayout),
	}
}

// BookingToResponse converts a booking plus whatever directory data the
// caller has at hand; nil summaries are omitted from the JSON.
func BookingToResponse(
	booking *entity.Booking,
	property *entity.PropertySummary,
	tenant *entity.UserSummary,
	payment *entity.PaymentSummary,
	estimated decimal.Decimal,
) BookingResponse {
	resp := BookingResponse{
		ID:              booking.ID.String(),
		TenantID:        booking.TenantID.String(),
		PropertyID:      booking.PropertyID.String(),
		StartDate:       booking.StartDate.Format(utils.DateLayout),
		EndDate:         booking.EndDate.Format(utils.DateLayout),
		Status:          booking.Status,
		Nights:          booking.Range().Nights(),
		EstimatedAmount: estimated,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}

	if property != nil {
		resp.Property = &PropertySummaryResponse{
			ID:           property.ID.String(),
			Title:        property.Title,
			City:         property.City,
			RentPerMonth: property.RentPerMonth,
		}
		if property.LandlordID != nil {
			resp.Property.LandlordID = property.LandlordID.String()
		}
	}

	if tenant != nil {
		resp.Tenant = &TenantSummaryResponse{
			ID:    tenant.ID.String(),
			Name:  tenant.Name,
			Email: tenant.Email,
		}
	}

	if payment != nil {
		resp.Payment = &PaymentSummaryResponse{
			Status:   payment.Status,
			Amount:   payment.Amount,
			Currency: payment.Currency,
		}
	}

	return resp
}
