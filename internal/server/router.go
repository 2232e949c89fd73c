package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/paperchat/paperchat/internal/api"
	"github.com/paperchat/paperchat/internal/api/handlers"
	"github.com/paperchat/paperchat/internal/api/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	UploadHandler  *handlers.UploadHandler
	ChatHandler    *handlers.ChatHandler
	QuizHandler    *handlers.QuizHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 20 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "active"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/upload", cfg.UploadHandler.Upload)
	r.Post("/chat", cfg.ChatHandler.Chat)
	r.Post("/generate_quiz", cfg.QuizHandler.Generate)

	return r
}
