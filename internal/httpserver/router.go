package httpserver

import (
	"net/http"

	"printdesk-be/internal/asset"
	"printdesk-be/internal/liveview"
	"printdesk-be/internal/logger"
	"printdesk-be/internal/middleware"
	"printdesk-be/internal/order"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	orders order.Service
	live   *liveview.Synchronizer
	assets *asset.FSWriter
}

func NewServer(orders order.Service, live *liveview.Synchronizer, assets *asset.FSWriter) *Server {
	return &Server{orders: orders, live: live, assets: assets}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", s.createOrder)
		r.Get("/", s.listOrders)
		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", s.getOrder)
			r.Delete("/", s.deleteOrder)
			r.Patch("/status", s.transitionOrder)
			r.Post("/confirm", s.confirmOrder)
			r.Patch("/suborders/{subOrderID}/status", s.transitionSubOrder)
			r.Get("/updates", s.listUpdates)
			r.Post("/updates", s.appendUpdate)
			r.Delete("/updates/{updateID}", s.deleteUpdate)
			r.Post("/attachments", s.uploadAttachment)
		})
	})

	r.Get("/ws/orders", s.streamOrders)

	return r
}
