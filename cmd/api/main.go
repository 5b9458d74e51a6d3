package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hackfesthq/hackfest-backend/api/routes"
	"github.com/hackfesthq/hackfest-backend/internal/admin"
	"github.com/hackfesthq/hackfest-backend/internal/auth"
	"github.com/hackfesthq/hackfest-backend/internal/registrations"
	"github.com/hackfesthq/hackfest-backend/internal/teams"
	"github.com/hackfesthq/hackfest-backend/internal/volunteers"
	"github.com/hackfesthq/hackfest-backend/internal/welcome"
	"github.com/hackfesthq/hackfest-backend/pkg/auth/session"
	"github.com/hackfesthq/hackfest-backend/pkg/config"
	"github.com/hackfesthq/hackfest-backend/pkg/db"
	"github.com/hackfesthq/hackfest-backend/pkg/logger"
	"github.com/hackfesthq/hackfest-backend/pkg/mailer"
	"github.com/hackfesthq/hackfest-backend/pkg/metrics"
	"github.com/hackfesthq/hackfest-backend/pkg/migrate"
	"github.com/hackfesthq/hackfest-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := registrations.EnsureAdmin(context.Background(), dbClient.DB(), cfg.AdminSeed, cfg.Password, logg); err != nil {
		logg.Error(context.Background(), "failed to seed admin account", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	var sender mailer.Sender = mailer.Noop{}
	if cfg.SMTP.Enabled() {
		smtpSender, err := mailer.NewSMTPSender(cfg.SMTP)
		if err != nil {
			logg.Error(context.Background(), "failed to configure mailer", err)
			os.Exit(1)
		}
		sender = smtpSender
	} else {
		logg.Warn(context.Background(), "smtp not configured, outbound mail disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	regMetrics := metrics.NewRegistrationMetrics(registry)

	registerService, err := registrations.NewRegisterService(registrations.RegisterServiceParams{
		TxRunner:       dbClient,
		WelcomeSource:  welcome.NewRepository(dbClient.DB()),
		Mailer:         sender,
		Metrics:        regMetrics,
		Logger:         logg,
		PasswordConfig: cfg.Password,
		EventConfig:    cfg.Event,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		RegistrationRepo: registrations.NewRepository(dbClient.DB()),
		SessionManager:   sessionManager,
		ResetStore:       redisClient,
		Mailer:           sender,
		JWTConfig:        cfg.JWT,
		PasswordConfig:   cfg.Password,
		ResetConfig:      cfg.Reset,
		EventConfig:      cfg.Event,
		Logger:           logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	teamService, err := teams.NewService(teams.ServiceParams{
		TxRunner:           dbClient,
		RegistrationReader: registrations.NewRepository(dbClient.DB()),
		Mailer:             sender,
		Metrics:            regMetrics,
		Logger:             logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create team service", err)
		os.Exit(1)
	}

	volunteerService := volunteers.NewService(
		volunteers.NewAvailabilityRepository(dbClient.DB()),
		volunteers.NewTaskAssignmentRepository(dbClient.DB()),
	)

	adminService, err := admin.NewService(admin.ServiceParams{
		TxRunner:   dbClient,
		Volunteers: volunteerService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Sessions:        sessionManager,
			RegisterService: registerService,
			AuthService:     authService,
			TeamService:     teamService,
			VolunteerSvc:    volunteerService,
			AdminService:    adminService,
			Metrics:         registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
