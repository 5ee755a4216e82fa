package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
	"github.com/jessejferrell/Events-Hub-sub001/internal/database"
	"github.com/jessejferrell/Events-Hub-sub001/internal/handlers"
	"github.com/jessejferrell/Events-Hub-sub001/internal/logging"
	"github.com/jessejferrell/Events-Hub-sub001/internal/middleware"
	"github.com/jessejferrell/Events-Hub-sub001/internal/repositories"
	"github.com/jessejferrell/Events-Hub-sub001/internal/server"
	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

// version is stamped at build time via -ldflags
var version = "dev"

const (
	sessionMaxAge   = 7 * 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

func main() {
	migrateOnStart := flag.Bool("migrate", false, "apply pending database migrations before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	logger.Info().Str("version", version).Str("env", cfg.Server.Env).Msg("starting city events hub")

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if *migrateOnStart {
		if err := db.RunMigrations(); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		logger.Info().Msg("database migrations applied")
	}

	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	userRepo := repositories.NewUserRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	productRepo := repositories.NewProductRepository(db.DB)
	orderRepo := repositories.NewOrderRepository(db.DB)
	registrationRepo := repositories.NewRegistrationRepository(db.DB)

	stripeClient := services.NewStripeClient(cfg.Stripe)
	emailService := services.NewEmailService(cfg.Email, logging.Component(logger, "email"))

	storage, err := services.NewStorage(cfg, logging.Component(logger, "storage"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize flyer storage")
	}
	imageService := services.NewImageService(storage, logging.Component(logger, "images"))

	authService := services.NewAuthService(userRepo)
	eventService := services.NewEventService(eventRepo, imageService, logging.Component(logger, "events"))
	productService := services.NewProductService(productRepo, eventRepo, logging.Component(logger, "products"))
	registrationService := services.NewRegistrationService(registrationRepo, eventRepo, logging.Component(logger, "registrations"))
	checkoutService := services.NewCheckoutService(orderRepo, productRepo, stripeClient, cfg.Stripe, logging.Component(logger, "checkout"))
	orderService := services.NewOrderService(orderRepo, eventRepo, stripeClient, emailService, logging.Component(logger, "orders"))
	connectService := services.NewConnectService(userRepo, stripeClient, logging.Component(logger, "connect"))
	reportService := services.NewReportService(orderRepo, logging.Component(logger, "reports"))
	cleanupService := services.NewCleanupService(orderRepo, registrationRepo, 0, logging.Component(logger, "cleanup"))

	httpLogger := logging.Component(logger, "http")

	router := server.NewRouter(server.Handlers{
		Auth:          handlers.NewAuthHandler(authService, store, httpLogger),
		Events:        handlers.NewEventHandler(eventService, httpLogger),
		Products:      handlers.NewProductHandler(productService, eventService, httpLogger),
		Cart:          handlers.NewCartHandler(productService, store, httpLogger),
		Registrations: handlers.NewRegistrationHandler(registrationService, store, httpLogger),
		Checkout:      handlers.NewCheckoutHandler(checkoutService, store, httpLogger),
		Orders:        handlers.NewOrderHandler(orderService, httpLogger),
		Webhooks:      handlers.NewWebhookHandler(orderService, httpLogger),
		Connect:       handlers.NewConnectHandler(connectService, httpLogger),
		Reports:       handlers.NewReportHandler(reportService, httpLogger),
		Health:        handlers.NewHealthHandler(db.DB, version),
	}, server.Middleware{
		Auth:         middleware.NewAuthMiddleware(authService, store),
		CSRF:         middleware.NewCSRFMiddleware(store, logging.Component(logger, "csrf")),
		CORS:         middleware.DefaultCORSConfig(),
		LoginLimiter: middleware.NewRateLimiter(10, 15*time.Minute),
	}, httpLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupService.Run(ctx)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}
