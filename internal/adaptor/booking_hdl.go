package adaptor

import (
	"context"
	"encoding/json"
	"net/http"

	"rental-booking/internal/dto/request"
	"rental-booking/internal/dto/response"
	"rental-booking/internal/usecase"
	"rental-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

type transitionFunc func(ctx context.Context, actor usecase.Actor, bookingID string) (*response.BookingResponse, error)

// RequestBooking handles POST /bookings
func (h *BookingHandler) RequestBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.RequestBooking(r.Context(), actor, &req)
	if err != nil {
		respondError(w, h.log, err, "request booking")
		return
	}

	utils.ResponseCreated(w, "Booking requested", booking)
}

// ConfirmBooking handles PUT /bookings/{id}/confirm
func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ConfirmBooking, "confirm booking", "Booking confirmed")
}

// RejectBooking handles PUT /bookings/{id}/reject
func (h *BookingHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.RejectBooking, "reject booking", "Booking rejected")
}

// CancelBooking handles DELETE /bookings/{id}
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CancelBooking, "cancel booking", "Booking cancelled")
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, apply transitionFunc, operation, message string) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	booking, err := apply(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, booking)
}

// ListForTenant handles GET /bookings/user
func (h *BookingHandler) ListForTenant(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.service.ListForTenant(r.Context(), actor)
	if err != nil {
		respondError(w, h.log, err, "list tenant bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// ListForLandlord handles GET /bookings/landlord
func (h *BookingHandler) ListForLandlord(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.service.ListForLandlord(r.Context(), actor)
	if err != nil {
		respondError(w, h.log, err, "list landlord bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// ListForProperty handles GET /bookings/property/{propertyId}
func (h *BookingHandler) ListForProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.service.ListForProperty(r.Context(), actor, chi.URLParam(r, "propertyId"))
	if err != nil {
		respondError(w, h.log, err, "list property bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// ListAll handles GET /admin/bookings
func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	bookings, err := h.service.ListAll(r.Context(), actor, req)
	if err != nil {
		respondError(w, h.log, err, "list all bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// OverrideStatus handles PUT /admin/bookings/{id}/status
func (h *BookingHandler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.OverrideStatus(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		respondError(w, h.log, err, "override booking status")
		return
	}

	utils.ResponseSuccess(w, "Booking status updated", booking)
}
