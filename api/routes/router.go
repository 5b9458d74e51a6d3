package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackfesthq/hackfest-backend/api/controllers"
	"github.com/hackfesthq/hackfest-backend/api/middleware"
	"github.com/hackfesthq/hackfest-backend/internal/admin"
	"github.com/hackfesthq/hackfest-backend/internal/auth"
	"github.com/hackfesthq/hackfest-backend/internal/registrations"
	"github.com/hackfesthq/hackfest-backend/internal/teams"
	"github.com/hackfesthq/hackfest-backend/internal/volunteers"
	"github.com/hackfesthq/hackfest-backend/pkg/auth/session"
	"github.com/hackfesthq/hackfest-backend/pkg/config"
	"github.com/hackfesthq/hackfest-backend/pkg/db"
	"github.com/hackfesthq/hackfest-backend/pkg/logger"
	"github.com/hackfesthq/hackfest-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router mounts. Metrics may be nil.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	Sessions        sessionManager
	RegisterService registrations.RegisterService
	AuthService     auth.Service
	TeamService     teams.Service
	VolunteerSvc    *volunteers.Service
	AdminService    admin.Service
	Metrics         prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var cache controllers.Pinger
	if d.Redis != nil {
		cache = d.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, cache, logg))
	})

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.Register(d.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))
		r.Post("/reset-password", controllers.AuthPasswordResetRequest(d.AuthService, logg))
		r.Post("/reset-password/confirm", controllers.AuthPasswordResetConfirm(d.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(d.AuthService, logg))
		})
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AdminAuthLogin(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		requireAuth := middleware.Auth(cfg.JWT, d.Sessions, logg)

		r.Route("/teams", func(r chi.Router) {
			// Browsable without credentials so applicants can pick a team
			// before registering.
			r.Get("/", controllers.TeamsListOpen(d.TeamService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", controllers.MyTeam(d.TeamService, logg))
				r.Post("/{teamID}/requests", controllers.RequestJoinTeam(d.TeamService, logg))
				r.Post("/requests/{requestID}/accept", controllers.AcceptJoinRequest(d.TeamService, logg))
				r.Post("/requests/{requestID}/reject", controllers.RejectJoinRequest(d.TeamService, logg))
			})
		})

		r.Get("/volunteers/tasks", controllers.VolunteerTaskBoard(d.VolunteerSvc, logg))
		r.With(requireAuth).Get("/volunteers/me/schedule", controllers.MyVolunteerSchedule(d.VolunteerSvc, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/registrations", func(r chi.Router) {
			r.Get("/", controllers.AdminListRegistrations(d.AdminService, logg))
			r.Get("/{registrationID}", controllers.AdminGetRegistration(d.AdminService, logg))
			r.Patch("/{registrationID}", controllers.AdminUpdateRegistration(d.AdminService, logg))
			r.Delete("/{registrationID}", controllers.AdminDeleteRegistration(d.AdminService, logg))
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", controllers.AdminListTeams(d.AdminService, logg))
			r.Get("/{teamID}", controllers.AdminTeamDetail(d.AdminService, logg))
			r.Delete("/{teamID}", controllers.AdminDeleteTeam(d.AdminService, logg))
		})

		r.Get("/volunteers/tasks", controllers.AdminVolunteerRoster(d.AdminService, logg))

		r.Route("/welcome-message", func(r chi.Router) {
			r.Get("/", controllers.AdminGetWelcomeMessage(d.AdminService, logg))
			r.Put("/", controllers.AdminUpdateWelcomeMessage(d.AdminService, logg))
		})

		r.Get("/stats", controllers.AdminStats(d.AdminService, logg))
	})

	return r
}
