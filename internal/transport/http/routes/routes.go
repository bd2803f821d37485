package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wisatahub/platform-gateway/internal/core/port"
	"github.com/wisatahub/platform-gateway/internal/infra/config"
	"github.com/wisatahub/platform-gateway/internal/transport/http/handlers"
	"github.com/wisatahub/platform-gateway/internal/transport/http/middleware"
	"github.com/wisatahub/platform-gateway/internal/usecase"
)

// SessionGateway combines reading the session for enforcement with
// re-issuing it for the role switch. *security.SessionReader satisfies it.
type SessionGateway interface {
	middleware.SessionSource
	handlers.SessionIssuer
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Metrics     *middleware.HTTPMetrics
	RateLimiter *middleware.RateLimiter
	Sessions    SessionGateway
	Gateway     middleware.AccessEvaluator
	Recorder    middleware.DecisionRecorder
	Resolver    *usecase.RoleResolver
	Profiles    port.ProfileRepository
	Assignments port.RoleAssignmentRepository
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.Metrics.Handler())
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	r.Use(middleware.Locale(deps.Config.Locale.Default, deps.Config.Locale.Supported))
	r.Use(middleware.Gateway(deps.Sessions, deps.Gateway, deps.Recorder, deps.Config.Locale.Default, deps.Logger))

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		requireSession := middleware.RequireSession(deps.Sessions)

		sessionHandler := handlers.NewSessionHandler(deps.Resolver, deps.Profiles, deps.Assignments, deps.Sessions, deps.Logger)

		sessionGroup := api.Group("/session")
		sessionGroup.Use(requireSession)
		sessionGroup.GET("", sessionHandler.Introspect)

		roleSwitchHandlers := buildRoleSwitchMiddlewares(deps)
		roleSwitchHandlers = append(roleSwitchHandlers, sessionHandler.SwitchRole)
		sessionGroup.POST("/role", roleSwitchHandlers...)
	}

	registerPages(r)

	return r
}

// registerPages binds the locale-prefixed page stubs the gateway fronts. The
// locale middleware has already validated the prefix, so :locale only ever
// matches a supported locale here.
func registerPages(r *gin.Engine) {
	pages := handlers.NewPageHandler()

	localized := r.Group("/:locale")
	{
		localized.GET("/", pages.Page("root"))
		localized.GET("/login", pages.Page("login"))
		localized.GET("/register", pages.Page("register"))
		localized.GET("/logout", pages.Page("logout"))
		localized.GET("/legal/sign", pages.Page("legal_sign"))

		localized.GET("/guide", pages.Page("guide_landing"))
		localized.GET("/guide/apply", pages.Page("guide_apply"))
		localized.GET("/guide/home", pages.Page("guide_home"))

		localized.GET("/mitra", pages.Page("mitra_landing"))
		localized.GET("/mitra/apply", pages.Page("mitra_apply"))
		localized.GET("/mitra/home", pages.Page("mitra_home"))

		localized.GET("/corporate", pages.Page("corporate_landing"))
		localized.GET("/corporate/apply", pages.Page("corporate_apply"))
		localized.GET("/corporate/home", pages.Page("corporate_home"))

		localized.GET("/home", pages.Page("home"))
		localized.GET("/trips", pages.Page("trips"))
		localized.GET("/console", pages.Page("console"))
	}

	r.GET("/auth/callback", pages.Page("auth_callback"))

	// Unrouted paths still pass through the gateway chain: they classify as
	// Protected/any, so only an authenticated, consented caller reaches this
	// stub.
	r.NoRoute(pages.NotFound())
}

func buildRoleSwitchMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.RoleSwitchMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "role_switch_user",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.UserIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
