package router

import (
	"github.com/oktaviandi/auth-portal/internal/application"
	"github.com/oktaviandi/auth-portal/internal/container"
	pginfra "github.com/oktaviandi/auth-portal/internal/infrastructure/postgres"
	handlers "github.com/oktaviandi/auth-portal/internal/interface/http"
	"github.com/oktaviandi/auth-portal/internal/interface/middleware"
	"github.com/oktaviandi/auth-portal/internal/router/modules"
)

// InitModules builds the auth service and handlers from container singletons
// and registers every feature module. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	svc := application.NewService(
		repo,
		container.GetLogger(),
		container.GetRabbitPub(),
		container.GetES(),
		cfg.ESUsersIndex,
		cfg.GoogleAutoLink,
		cfg.MailSendEnabled,
	)

	authHandler := handlers.NewAuthHandler(
		svc,
		container.GetSessions(),
		container.GetGoogle(),
		container.GetStateSigner(),
		container.GetLogger(),
	)
	pageHandler := handlers.NewPageHandler()

	// Every route sees the current user; guards rely on this running first.
	r.Use(middleware.SessionRestore(container.GetSessions(), svc, container.GetLogger()))

	r.AddRoot(modules.NewPagesModule(pageHandler, authHandler, container.GetSessions()))
	r.AddAPI(modules.NewAuthModule(authHandler))
}
