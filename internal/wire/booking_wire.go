package wire

import (
	"net/http"

	"rental-booking/internal/adaptor"
	"rental-booking/internal/data/entity"
	"rental-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	auth func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	// Role and ownership are decided by the booking policy, not here.
	r.Route("/bookings", func(r chi.Router) {
		r.Use(auth)

		r.Post("/", bookingHandler.RequestBooking)
		r.Get("/user", bookingHandler.ListForTenant)
		r.Get("/landlord", bookingHandler.ListForLandlord)
		r.Get("/property/{propertyId}", bookingHandler.ListForProperty)
		r.Put("/{id}/confirm", bookingHandler.ConfirmBooking)
		r.Put("/{id}/reject", bookingHandler.RejectBooking)
		r.Delete("/{id}", bookingHandler.CancelBooking)
	})

	r.Route("/admin/bookings", func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.RequireRole(log, entity.RoleAdmin))

		r.Get("/", bookingHandler.ListAll)
		r.Put("/{id}/status", bookingHandler.OverrideStatus)
	})
}
