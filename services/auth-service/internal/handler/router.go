package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/shop-it-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/shop-it-api/shared/middleware"
	"github.com/vasapolrittideah/shop-it-api/shared/response"
)

const requestTimeout = 30 * time.Second

// NewRouter creates the chi router with the middleware stack and every route
// mounted under /api/{version}.
func NewRouter(logger *zerolog.Logger, authServiceCfg *config.AuthServiceConfig, authHandler *AuthHandler) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.NewRequestLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(requestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   authServiceCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CorrelationIDHeader},
		ExposedHeaders:   []string{middleware.CorrelationIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api/"+authServiceCfg.APIVersion, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			response.WriteJSON(w, http.StatusOK, map[string]string{
				"message": "Auth API",
				"version": "1.0",
			})
		})

		authHandler.RegisterRoutes(r)
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	return router
}
