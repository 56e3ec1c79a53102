package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/brawlhub/elo-ladder/internal/api/handlers"
	"github.com/brawlhub/elo-ladder/internal/api/middleware"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/brawlhub/elo-ladder/internal/service"
	"github.com/brawlhub/elo-ladder/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub, repos *repository.Repositories, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth)
	lobbyHandler := handlers.NewLobbyHandler(services.Queue)
	matchHandler := handlers.NewMatchHandler(repos.Match, services.Vote)
	teamHandler := handlers.NewTeamHandler(services.Team)
	ladderHandler := handlers.NewLadderHandler(services.Player)
	adminHandler := handlers.NewAdminHandler(services.Undo)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/modes/{mode}", func(r chi.Router) {
				r.Route("/lobbies", func(r chi.Router) {
					r.Post("/", lobbyHandler.Create)
					r.Get("/", lobbyHandler.List)
					r.Post("/{lobbyID}/join", lobbyHandler.Join)
					r.Post("/{lobbyID}/leave", lobbyHandler.Leave)
				})
				r.Get("/leaderboard", ladderHandler.Leaderboard)
				r.Get("/players/{playerID}", ladderHandler.PlayerStats)
			})

			r.Route("/matches/{matchID}", func(r chi.Router) {
				r.Get("/", matchHandler.Get)
				r.Get("/votes", matchHandler.VoteStatus)
				r.Post("/vote", matchHandler.Vote)
				r.Post("/dodge", matchHandler.ReportDodge)
			})

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", teamHandler.Create)
				r.Get("/mine", teamHandler.Mine)
				r.Delete("/{teamID}", teamHandler.Dissolve)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/admin/modes/{mode}/undo", adminHandler.Undo)
			})
		})
	})

	r.Get("/ws", wsHandler.Handle)

	return r
}
