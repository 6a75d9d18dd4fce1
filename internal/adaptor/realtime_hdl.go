package adaptor

import (
	"net/http"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/notify"
	"rental-booking/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type RealtimeHandler struct {
	hub      *notify.Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewRealtimeHandler(hub *notify.Hub, origins []string, log *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		log: log.With(zap.String("handler", "realtime")),
	}
}

// Connect handles GET /ws. Users join their own room, landlords also their
// landlord room; property rooms are joined by client message.
func (h *RealtimeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	rooms := []string{notify.UserRoom(actor.UserID)}
	if actor.Role == entity.RoleLandlord {
		rooms = append(rooms, notify.LandlordRoom(actor.UserID))
	}

	h.log.Debug("Websocket connected",
		zap.String("user_id", actor.UserID.String()),
		zap.Strings("rooms", rooms),
	)
	h.hub.ServeWS(conn, actor.UserID, rooms)
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
