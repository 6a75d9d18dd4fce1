package adaptor

import (
	"net/http"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/notify"
	"rental-booking/internal/usecase"
	"rental-booking/pkg/apperror"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking  *BookingHandler
	Realtime *RealtimeHandler
}

func NewHandler(service *usecase.Service, hub *notify.Hub, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Booking:  NewBookingHandler(service.Booking, log),
		Realtime: NewRealtimeHandler(hub, config.App.CORSOrigins, log),
	}
}

// actorFromRequest reads the caller set by the auth middleware.
func actorFromRequest(r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Actor{}, false
	}
	role, ok := utils.GetRoleFromContext(r.Context())
	if !ok {
		return usecase.Actor{}, false
	}
	return usecase.Actor{UserID: userID, Role: entity.UserRole(role)}, true
}

// respondError maps domain errors to their status and code. Anything else is
// logged and reported as a bare 500.
func respondError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	appErr, ok := apperror.As(err)
	if !ok {
		log.Error(operation+" failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" rejected",
		zap.String("operation", operation),
		zap.String("code", string(appErr.Kind)),
		zap.String("reason", appErr.Message),
	)

	var fields any
	if len(appErr.Fields) > 0 {
		fields = appErr.Fields
	}
	utils.ResponseError(w, appErr.Status(), string(appErr.Kind), appErr.Message, fields)
}
