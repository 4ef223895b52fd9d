// Package web собирает веб-приложение: подключения к внешним системам,
// сервисы, обработчики и HTTP-сервер.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/do-yard/do-starter-kit-sub000/internal/billing/reconcile"
	"github.com/do-yard/do-starter-kit-sub000/internal/cache"
	"github.com/do-yard/do-starter-kit-sub000/internal/config"
	"github.com/do-yard/do-starter-kit-sub000/internal/lib/jwt"
	"github.com/do-yard/do-starter-kit-sub000/internal/migrations"
	"github.com/do-yard/do-starter-kit-sub000/internal/providers"
	"github.com/do-yard/do-starter-kit-sub000/internal/rabbitmq"
	authservice "github.com/do-yard/do-starter-kit-sub000/internal/services/auth"
	billingservice "github.com/do-yard/do-starter-kit-sub000/internal/services/billing"
	notesservice "github.com/do-yard/do-starter-kit-sub000/internal/services/notes"
	usersservice "github.com/do-yard/do-starter-kit-sub000/internal/services/users"
	"github.com/do-yard/do-starter-kit-sub000/internal/storage/repository"
)

// App веб-приложение с HTTP-сервером и подключениями к внешним системам.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     providers.Database
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New собирает приложение из конфига: базу данных с миграциями, кеш,
// клиентов внешних систем, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := providers.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	// Миграции применяются только к реляционному хранилищу.
	if pg, ok := db.(*repository.Storage); ok {
		if err = migrations.Run(pg.DB, cfg.MigrationsPath); err != nil {
			return nil, err
		}
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	billingClient, err := providers.NewBilling(cfg)
	if err != nil {
		return nil, err
	}
	storageClient, err := providers.NewStorage(cfg)
	if err != nil {
		return nil, err
	}

	var (
		conn *amqp.Connection
		ch   *amqp.Channel
	)
	if providers.EmailProvider(cfg.Providers.Email) == providers.EmailRabbitMQ {
		conn, err = rabbitmq.Connect(cfg.RabbitConnectionString, cfg.ConnectRetries, cfg.ConnectDelay)
		if err != nil {
			return nil, err
		}
		ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
		if err != nil {
			conn.Close()
			return nil, err
		}
	}
	emailClient, err := providers.NewEmail(cfg, logger, ch)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	prices := billingservice.PriceIDs{Pro: cfg.Billing.ProPriceID, Free: cfg.Billing.FreePriceID}
	authService := authservice.New(db, jwtMaker, emailClient, logger)
	billingService := billingservice.New(db, billingClient, cacheRedis, prices, logger)
	notesService := notesservice.New(db, logger)
	usersService := usersservice.New(db, db, storageClient, logger)
	engine := reconcile.New(db, reconcile.PriceIDs{Pro: cfg.Billing.ProPriceID, Free: cfg.Billing.FreePriceID}, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker, RouteServices{
		Auth:    authService,
		Billing: billingService,
		Notes:   notesService,
		Users:   usersService,
		Engine:  engine,
		DB:      db,
		Checkers: map[string]ConfigurationChecker{
			"billing": billingClient,
			"storage": storageClient,
			"email":   emailClient,
		},
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.ch != nil {
			_ = a.ch.Close()
		}
		if a.conn != nil {
			_ = a.conn.Close()
		}
		if pg, ok := a.db.(*repository.Storage); ok {
			_ = pg.DB.Close()
		}
		return err
	}
}
