package wire

import (
	"net/http"

	"rental-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireRealtime(r chi.Router, realtimeHandler *adaptor.RealtimeHandler, auth func(http.Handler) http.Handler) {
	r.With(auth).Get("/ws", realtimeHandler.Connect)
}
