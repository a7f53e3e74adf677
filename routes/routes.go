package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matchpoint/tournament-api/handlers"
	"github.com/matchpoint/tournament-api/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes mounts the full HTTP surface onto the given router.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tournamentHandler *handlers.TournamentHandler,
	bracketHandler *handlers.BracketHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	// Live bracket updates; the token-less subscription is read-only.
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/participants", tournamentHandler.ListParticipants)
		r.Get("/{tournamentID}/bracket", bracketHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", tournamentHandler.Create)
			r.Post("/join/{inviteToken}", tournamentHandler.Join)
			r.Post("/{tournamentID}/open-registration", tournamentHandler.OpenRegistration)
			r.Post("/{tournamentID}/cancel", tournamentHandler.Cancel)
			r.Post("/{tournamentID}/logo", tournamentHandler.UploadLogo)
			r.Post("/{tournamentID}/bracket", bracketHandler.Generate)
			r.Post("/{tournamentID}/matches/{matchID}/result", bracketHandler.RecordResult)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Get("/users/me", userHandler.GetMe)
	})
}
