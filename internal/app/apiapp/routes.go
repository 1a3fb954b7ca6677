package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/Princeaman007/agence/internal/services/auth"
	compatsvc "github.com/Princeaman007/agence/internal/services/compat"
	messagingsvc "github.com/Princeaman007/agence/internal/services/messaging"
	userssvc "github.com/Princeaman007/agence/internal/services/users"
	"github.com/Princeaman007/agence/internal/transport/http/handlers"
	"github.com/Princeaman007/agence/internal/transport/ws"
)

type Dependencies struct {
	AuthService      *authsvc.Service
	UserService      *userssvc.Service
	CompatService    *compatsvc.Service
	MessagingService *messagingsvc.Service
	Hub              *ws.Hub
	Logger           *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	meHandler := handlers.NewMeHandler(deps.UserService)
	compatHandler := handlers.NewCompatHandler(deps.CompatService)
	messageHandler := handlers.NewMessageHandler(deps.MessagingService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.With(authMW).Get("/me", meHandler.Me)
	r.With(authMW).Post("/block", meHandler.Block)
	r.With(authMW).Post("/unblock", meHandler.Unblock)
	r.With(authMW).Get("/users/{id}/profile", meHandler.Profile)

	r.Route("/compatibility", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/submit", compatHandler.Submit)
		r.Get("/my-test", compatHandler.MyTest)
		r.Get("/calculate/{userID}", compatHandler.Calculate)
		r.Get("/matches", compatHandler.Matches)
		r.Get("/details/{userID}", compatHandler.Details)
	})

	r.Route("/messages", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", messageHandler.Send)
		r.Get("/conversations", messageHandler.Conversations)
		r.Get("/conversation/{id}", messageHandler.Messages)
		r.Put("/conversation/{id}/read", messageHandler.MarkRead)
		r.Put("/conversation/{id}/archive", messageHandler.Archive)
		r.Delete("/{id}", messageHandler.Delete)
		r.Get("/limits", messageHandler.Limits)
	})

	if deps.Hub != nil {
		r.Get("/ws", ws.ServeWS(deps.Hub, deps.AuthService, deps.Logger))
	}
}
