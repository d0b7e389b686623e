package httpserver

import (
	"net/http"
	"time"

	"printdesk-be/internal/logger"
	"printdesk-be/internal/order"
	"printdesk-be/internal/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeWait = 10 * time.Second

// streamOrders pushes each new synchronized snapshot over the socket,
// transformed by the list query the client connected with.
func (s *Server) streamOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	query := listQueryFrom(r)

	sub, err := s.live.Subscribe(r.Context(), actor)
	if err != nil {
		utils.WriteJSONError(w, "live feed unavailable", http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "httpserver"),
		zap.String("actor_id", actor.ID),
	)
	log.Info("live feed connected")

	// Reader goroutine: drains control frames and notices the peer leaving.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			log.Info("live feed disconnected")
			return
		case views, ok := <-sub.Views():
			if !ok {
				return
			}
			payload := order.ApplyListQuery(views, query)

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(payload); err != nil {
				log.Warn("live feed write failed", zap.Error(err))
				return
			}
		}
	}
}
