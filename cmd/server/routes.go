package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rahul4469/cro-analyzer/internal/controllers"
	"github.com/rahul4469/cro-analyzer/internal/middleware"
	"github.com/rahul4469/cro-analyzer/internal/services"
)

func newRouter(svc *services.Services, corsOrigins []string, logger *zap.Logger) http.Handler {
	render := controllers.NewJSONRenderer(logger.Named("render"))
	analyzeCtrl := controllers.NewAnalyzeController(svc.Site, render, logger.Named("analyze"))
	chatCtrl := controllers.NewChatController(svc.Chat, render, corsOrigins, logger.Named("chat"))
	healthCtrl := controllers.NewHealthController(svc.Provider, render)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(corsOrigins))

	r.Get("/healthz", healthCtrl.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", analyzeCtrl.PostAnalyze)
		r.Post("/chat", chatCtrl.PostChat)
		r.Get("/chat/ws", chatCtrl.ChatWS)
	})

	return r
}
