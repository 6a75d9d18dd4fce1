package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/internal/dto/request"
	"rental-booking/internal/dto/response"
	"rental-booking/internal/notify"
	"rental-booking/pkg/apperror"
	"rental-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives events after a booking change has committed. It must not
// block and has no way to fail the operation that produced the event.
type Notifier interface {
	Emit(event notify.Event)
	NotifyEmail(email notify.Email)
}

type BookingService interface {
	// Tenant
	RequestBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error)
	ListForTenant(ctx context.Context, actor Actor) ([]response.BookingResponse, error)

	// Landlord
	ConfirmBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error)
	RejectBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error)
	ListForLandlord(ctx context.Context, actor Actor) ([]response.BookingResponse, error)
	ListForProperty(ctx context.Context, actor Actor, propertyID string) ([]response.BookingResponse, error)

	// Admin
	ListAll(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	OverrideStatus(ctx context.Context, actor Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
}

type bookingService struct {
	repo        *repository.Repository
	notifier    Notifier
	frontendURL string
	log         *zap.Logger
}

func NewBookingService(repo *repository.Repository, notifier Notifier, frontendURL string, log *zap.Logger) BookingService {
	return &bookingService{
		repo:        repo,
		notifier:    notifier,
		frontendURL: frontendURL,
		log:         log.With(zap.String("service", "booking")),
	}
}

var errDatesUnavailable = apperror.Conflict("The selected dates are unavailable")

// transitionNotice is what gets announced once a booking reaches a status.
type transitionNotice struct {
	eventName string
	template  string
	link      string
}

var transitionNotices = map[entity.BookingStatus]transitionNotice{
	entity.BookingStatusConfirmed: {
		eventName: notify.EventBookingConfirmed,
		template:  notify.TemplateBookingConfirmation,
		link:      "/bookings",
	},
	entity.BookingStatusRejected: {
		eventName: notify.EventBookingRejected,
		template:  notify.TemplateBookingRejection,
		link:      "/properties",
	},
	entity.BookingStatusCancelled: {
		eventName: notify.EventBookingCancelled,
		template:  notify.TemplateBookingCancellation,
		link:      "/help",
	},
}

func (s *bookingService) RequestBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if err := AuthorizeRole(actor, ActionRequest); err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Request booking validation failed", zap.String("errors", utils.FormatValidationErrors(errs)))
		return nil, apperror.Validation("property_id, start_date and end_date are required", errs)
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, apperror.Validation("Invalid property id", map[string]string{"property_id": "Must be a valid UUID"})
	}

	stay, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	property, err := s.repo.Property.FindByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("find property %s: %w", propertyID.String(), err)
	}
	if property == nil {
		return nil, apperror.NotFound("Property not found")
	}
	if !property.HasLandlord() {
		return nil, apperror.Validation("This property is not yet available for booking", nil)
	}

	if err := AuthorizeOwnership(actor, ActionRequest, Subject{Property: property}); err != nil {
		return nil, err
	}

	confirmed, err := s.repo.Booking.FindConfirmedByPropertyID(ctx, property.ID, stay)
	if err != nil {
		return nil, fmt.Errorf("find confirmed bookings for property %s: %w", property.ID.String(), err)
	}
	if HasConflict(stay, confirmed, uuid.Nil) {
		return nil, errDatesUnavailable
	}

	now := time.Now().UTC()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		TenantID:   actor.UserID,
		PropertyID: property.ID,
		StartDate:  stay.Start,
		EndDate:    stay.End,
		Status:     entity.BookingStatusPending,
	}

	// Create re-checks overlaps under a property lock, closing the gap since
	// the read above.
	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrDateOverlap) {
			return nil, errDatesUnavailable.Wrap(err)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking requested",
		zap.String("booking_id", booking.ID.String()),
		zap.String("property_id", property.ID.String()),
		zap.String("tenant_id", actor.UserID.String()),
	)

	resp := s.toResponse(booking, property, s.lookupTenant(ctx, booking.TenantID))

	s.notifier.Emit(notify.Event{
		Name:    notify.EventBookingCreated,
		Payload: resp,
		Audience: notify.Audience{
			UserIDs:     []uuid.UUID{booking.TenantID},
			LandlordIDs: []uuid.UUID{*property.LandlordID},
		},
	})

	return &resp, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, actor, ActionConfirm, bookingID, entity.BookingStatusConfirmed)
}

func (s *bookingService) RejectBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, actor, ActionReject, bookingID, entity.BookingStatusRejected)
}

func (s *bookingService) CancelBooking(ctx context.Context, actor Actor, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, actor, ActionCancel, bookingID, entity.BookingStatusCancelled)
}

func (s *bookingService) OverrideStatus(ctx context.Context, actor Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if err := AuthorizeRole(actor, ActionOverride); err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("Invalid status", errs)
	}

	return s.transition(ctx, actor, ActionOverride, bookingID, entity.BookingStatus(req.Status))
}

// transition applies the shared guard sequence: role, existence, ownership,
// state machine, conflict re-check for confirmations, then a compare-and-swap
// update. Events go out only after the update has committed.
func (s *bookingService) transition(ctx context.Context, actor Actor, action Action, bookingID string, target entity.BookingStatus) (*response.BookingResponse, error) {
	if err := AuthorizeRole(actor, action); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.Validation("Invalid booking id", map[string]string{"id": "Must be a valid UUID"})
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking not found")
	}

	property, err := s.repo.Property.FindByID(ctx, booking.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("find property %s: %w", booking.PropertyID.String(), err)
	}
	if property == nil {
		return nil, apperror.NotFound("Property not found")
	}

	if err := AuthorizeOwnership(actor, action, Subject{TenantID: booking.TenantID, Property: property}); err != nil {
		s.log.Warn("Booking transition forbidden",
			zap.String("booking_id", bookingID),
			zap.String("action", string(action)),
			zap.String("user_id", actor.UserID.String()),
		)
		return nil, err
	}

	if !booking.Status.CanTransitionTo(target) {
		return nil, apperror.State(stateMessage(booking.Status, target))
	}

	if target == entity.BookingStatusConfirmed {
		confirmed, err := s.repo.Booking.FindConfirmedByPropertyID(ctx, booking.PropertyID, booking.Range())
		if err != nil {
			return nil, fmt.Errorf("find confirmed bookings for property %s: %w", booking.PropertyID.String(), err)
		}
		if HasConflict(booking.Range(), confirmed, booking.ID) {
			return nil, errDatesUnavailable
		}
	}

	updated, err := s.repo.Booking.UpdateStatus(ctx, booking.ID, booking.Status, target)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrStatusMismatch):
		// Lost the race: someone else moved the booking first.
		return nil, apperror.State(stateMessage(booking.Status, target)).Wrap(err)
	case errors.Is(err, repository.ErrDateOverlap):
		return nil, errDatesUnavailable.Wrap(err)
	case errors.Is(err, repository.ErrBookingNotFound):
		return nil, apperror.NotFound("Booking not found").Wrap(err)
	default:
		return nil, fmt.Errorf("update booking %s: %w", bookingID, err)
	}

	s.log.Info("Booking status changed",
		zap.String("booking_id", updated.ID.String()),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("by", actor.UserID.String()),
		zap.String("role", string(actor.Role)),
	)

	resp, tenant := s.describe(ctx, updated, property)
	s.announce(updated, property, tenant, resp)

	return &resp, nil
}

// describe builds the response for a committed booking from its joined
// detail row, falling back to what is already loaded if that read fails.
func (s *bookingService) describe(ctx context.Context, booking *entity.Booking, property *entity.Property) (response.BookingResponse, *entity.UserSummary) {
	detail, err := s.repo.Booking.FindDetailByID(ctx, booking.ID)
	if err != nil || detail == nil {
		s.log.Warn("Failed to load booking detail", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return s.toResponse(booking, property, nil), nil
	}

	return detailToResponse(detail), &detail.Tenant
}

// announce emits the status event, the tenant email and, for
// confirmations, the payment eligibility signal.
func (s *bookingService) announce(booking *entity.Booking, property *entity.Property, tenant *entity.UserSummary, resp response.BookingResponse) {
	notice, ok := transitionNotices[booking.Status]
	if !ok {
		return
	}

	parties := notify.Audience{UserIDs: []uuid.UUID{booking.TenantID}}
	if property.HasLandlord() {
		parties.LandlordIDs = []uuid.UUID{*property.LandlordID}
	}

	// Anyone may watch a property room, so it only gets the redacted notice.
	s.notifier.Emit(notify.Event{Name: notice.eventName, Payload: resp, Audience: parties})
	s.notifier.Emit(notify.Event{
		Name:     notice.eventName,
		Payload:  response.BookingToNotice(booking),
		Audience: notify.Audience{PropertyID: &booking.PropertyID},
	})

	if booking.Status == entity.BookingStatusConfirmed {
		s.notifier.Emit(notify.Event{
			Name: notify.EventPaymentEligible,
			Payload: map[string]any{
				"booking_id": booking.ID.String(),
				"tenant_id":  booking.TenantID.String(),
				"amount":     resp.EstimatedAmount,
			},
			Audience: notify.Audience{UserIDs: []uuid.UUID{booking.TenantID}},
		})
	}

	if tenant == nil || tenant.Email == "" {
		return
	}

	s.notifier.NotifyEmail(notify.Email{
		Template: notice.template,
		To:       tenant.Email,
		Params: map[string]any{
			"userName":      tenant.Name,
			"propertyTitle": property.Title,
			"propertyCity":  property.City,
			"startDate":     booking.StartDate.Format(utils.DateLayout),
			"endDate":       booking.EndDate.Format(utils.DateLayout),
			"rentPerMonth":  property.RentPerMonth.String(),
			"link":          s.frontendURL + notice.link,
		},
	})
}

func (s *bookingService) ListForTenant(ctx context.Context, actor Actor) ([]response.BookingResponse, error) {
	if err := AuthorizeRole(actor, ActionListTenant); err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindByTenantID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for tenant %s: %w", actor.UserID.String(), err)
	}

	return detailsToResponses(bookings), nil
}

func (s *bookingService) ListForLandlord(ctx context.Context, actor Actor) ([]response.BookingResponse, error) {
	if err := AuthorizeRole(actor, ActionListLandlord); err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindByLandlordID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for landlord %s: %w", actor.UserID.String(), err)
	}

	return detailsToResponses(bookings), nil
}

func (s *bookingService) ListForProperty(ctx context.Context, actor Actor, propertyID string) ([]response.BookingResponse, error) {
	if err := AuthorizeRole(actor, ActionListProperty); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(propertyID)
	if err != nil {
		return nil, apperror.Validation("Invalid property id", map[string]string{"propertyId": "Must be a valid UUID"})
	}

	property, err := s.repo.CachedProperty.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find property %s: %w", propertyID, err)
	}
	if property == nil {
		return nil, apperror.NotFound("Property not found")
	}

	if err := AuthorizeOwnership(actor, ActionListProperty, Subject{Property: property}); err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindByPropertyID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list bookings for property %s: %w", propertyID, err)
	}

	return detailsToResponses(bookings), nil
}

func (s *bookingService) ListAll(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if err := AuthorizeRole(actor, ActionListAll); err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("Invalid pagination", errs)
	}

	bookings, err := s.repo.Booking.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.repo.Booking.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	return response.NewPaginatedResponse(detailsToResponses(bookings), req.Page, req.Limit(), total), nil
}

// lookupTenant enriches the response; a failure here must not fail a
// booking that has already been written.
func (s *bookingService) lookupTenant(ctx context.Context, tenantID uuid.UUID) *entity.UserSummary {
	tenant, err := s.repo.User.FindByID(ctx, tenantID)
	if err != nil || tenant == nil {
		s.log.Warn("Failed to load tenant", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil
	}
	return &entity.UserSummary{ID: tenant.ID, Name: tenant.Name, Email: tenant.Email}
}

func (s *bookingService) toResponse(booking *entity.Booking, property *entity.Property, tenant *entity.UserSummary) response.BookingResponse {
	summary := &entity.PropertySummary{
		ID:           property.ID,
		LandlordID:   property.LandlordID,
		Title:        property.Title,
		City:         property.City,
		RentPerMonth: property.RentPerMonth,
	}

	return response.BookingToResponse(booking, summary, tenant, nil, EstimateAmount(property.RentPerMonth, booking.Range()))
}

func detailToResponse(d *entity.BookingDetail) response.BookingResponse {
	return response.BookingToResponse(
		&d.Booking,
		&d.Property,
		&d.Tenant,
		d.Payment,
		EstimateAmount(d.Property.RentPerMonth, d.Range()),
	)
}

func detailsToResponses(details []*entity.BookingDetail) []response.BookingResponse {
	out := make([]response.BookingResponse, 0, len(details))
	for _, d := range details {
		out = append(out, detailToResponse(d))
	}
	return out
}

func parseStay(startDate, endDate string) (entity.DateRange, error) {
	fields := make(map[string]string)

	start, err := utils.ParseDate(startDate)
	if err != nil {
		fields["start_date"] = "Must be a date in YYYY-MM-DD format"
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		fields["end_date"] = "Must be a date in YYYY-MM-DD format"
	}
	if len(fields) > 0 {
		return entity.DateRange{}, apperror.Validation("Invalid booking dates", fields)
	}

	stay := entity.DateRange{Start: start, End: end}
	if !stay.Valid() {
		return entity.DateRange{}, apperror.Validation("startDate must be before endDate",
			map[string]string{"end_date": "Must be after start_date"})
	}

	return stay, nil
}

func stateMessage(from, to entity.BookingStatus) string {
	switch {
	case to == entity.BookingStatusCancelled && from == entity.BookingStatusConfirmed:
		return "Cannot cancel a confirmed booking"
	case to == entity.BookingStatusConfirmed:
		return "Only pending bookings can be confirmed"
	case to == entity.BookingStatusRejected:
		return "Only pending bookings can be rejected"
	case to == entity.BookingStatusCancelled:
		return "Only pending bookings can be cancelled"
	default:
		return fmt.Sprintf("Cannot move a %s booking to %s", from, to)
	}
}
