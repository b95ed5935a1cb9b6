package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	ContestHandler      *ContestHandler
	ResultHandler       *ResultHandler
	NotificationHandler *NotificationHandler
	WSHandler           *WSHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/contests", cfg.ContestHandler.Routes(cfg.WSHandler))
		r.Mount("/results", cfg.ResultHandler.Routes())
		r.Mount("/notifications", cfg.NotificationHandler.Routes())
	})
	return r
}
