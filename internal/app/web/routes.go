// Package web предоставляет маршруты веб-приложения.
package web

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/do-yard/do-starter-kit-sub000/internal/config"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/auth/login"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/auth/register"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/billing/cancelsubscription"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/billing/checkout"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/billing/createcustomer"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/billing/createsubscription"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/billing/getsubscription"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/billing/upgrade"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/billing/webhook"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/health"
	notescreate "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/notes/create"
	noteslist "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/notes/list"
	notesread "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/notes/read"
	notesremove "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/notes/remove"
	notesupdate "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/notes/update"
	profileavatar "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/profile/avatar"
	profileupdate "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/profile/update"
	userslist "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/users/list"
	usersremove "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/users/remove"
	usersupdate "github.com/do-yard/do-starter-kit-sub000/internal/http/handlers/users/update"
	"github.com/do-yard/do-starter-kit-sub000/internal/http/middlewarectx"
	"github.com/do-yard/do-starter-kit-sub000/internal/models"
	"github.com/do-yard/do-starter-kit-sub000/internal/providers"
	authservice "github.com/do-yard/do-starter-kit-sub000/internal/services/auth"
	billingservice "github.com/do-yard/do-starter-kit-sub000/internal/services/billing"
	notesservice "github.com/do-yard/do-starter-kit-sub000/internal/services/notes"
	usersservice "github.com/do-yard/do-starter-kit-sub000/internal/services/users"
)

// ConfigurationChecker сообщает, настроен ли внешний клиент.
type ConfigurationChecker = health.ConfigurationChecker

// RouteServices сервисы и клиенты, нужные маршрутам приложения.
type RouteServices struct {
	Auth     *authservice.Service
	Billing  *billingservice.Service
	Notes    *notesservice.Service
	Users    *usersservice.Service
	Engine   webhook.Engine
	DB       providers.Database
	Checkers map[string]ConfigurationChecker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, tokens middlewarectx.TokenParser, svc RouteServices) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)

		// Вебхук биллинга аутентифицируется подписью тела, не сессией
		r.Post("/billing/webhook", webhook.New(logger, svc.Engine, cfg.Billing.WebhookSecret).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Auth(logger, tokens))
			r.Use(middlewarectx.RateLimit(logger, rate.Limit(10), 20))

			r.Post("/billing/customer", createcustomer.New(logger, svc.Billing).ServeHTTP)
			r.Post("/billing/subscription", createsubscription.New(logger, svc.Billing).ServeHTTP)
			r.Get("/billing/subscription", getsubscription.New(logger, svc.Billing).ServeHTTP)
			r.Delete("/billing/subscription", cancelsubscription.New(logger, svc.Billing).ServeHTTP)
			r.Post("/billing/checkout", checkout.New(logger, svc.Billing).ServeHTTP)
			r.Post("/billing/upgrade", upgrade.New(logger, svc.Billing).ServeHTTP)

			r.Post("/notes", notescreate.New(logger, svc.Notes).ServeHTTP)
			r.Get("/notes", noteslist.New(logger, svc.Notes).ServeHTTP)
			r.Get("/notes/{id}", notesread.New(logger, svc.Notes).ServeHTTP)
			r.Put("/notes/{id}", notesupdate.New(logger, svc.Notes).ServeHTTP)
			r.Delete("/notes/{id}", notesremove.New(logger, svc.Notes).ServeHTTP)

			r.Put("/profile", profileupdate.New(logger, svc.Users).ServeHTTP)
			r.Post("/profile/avatar", profileavatar.New(logger, svc.Users).ServeHTTP)
		})

		// Административная группа
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Auth(logger, tokens, models.RoleAdmin))

			r.Get("/admin/users", userslist.New(logger, svc.Users).ServeHTTP)
			r.Put("/admin/users/{id}", usersupdate.New(logger, svc.Users).ServeHTTP)
			r.Delete("/admin/users/{id}", usersremove.New(logger, svc.Users).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, svc.DB, svc.Checkers).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
