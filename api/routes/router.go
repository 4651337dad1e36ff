package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillworks/tillpoint-backend/api/controllers"
	"github.com/tillworks/tillpoint-backend/api/middleware"
	"github.com/tillworks/tillpoint-backend/internal/auth"
	"github.com/tillworks/tillpoint-backend/internal/catalog"
	"github.com/tillworks/tillpoint-backend/internal/discount"
	"github.com/tillworks/tillpoint-backend/internal/inventory"
	"github.com/tillworks/tillpoint-backend/internal/returns"
	"github.com/tillworks/tillpoint-backend/internal/sale"
	"github.com/tillworks/tillpoint-backend/internal/shift"
	"github.com/tillworks/tillpoint-backend/internal/users"
	"github.com/tillworks/tillpoint-backend/pkg/auth/session"
	"github.com/tillworks/tillpoint-backend/pkg/config"
	"github.com/tillworks/tillpoint-backend/pkg/db"
	"github.com/tillworks/tillpoint-backend/pkg/enums"
	"github.com/tillworks/tillpoint-backend/pkg/logger"
	"github.com/tillworks/tillpoint-backend/pkg/metrics"
	pkgredis "github.com/tillworks/tillpoint-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps carries everything the HTTP surface needs. The router stays a pure
// wiring function; construction and lifecycle live in cmd/api.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       db.Pinger
	RedisClient    *pkgredis.Client
	SessionManager sessionManager
	Metrics        *metrics.RegisterMetrics

	AuthService     auth.Service
	UserRepo        *users.Repository
	Catalog         *catalog.Repository
	Inventory       *inventory.Repository
	DiscountRules   *discount.Repository
	CheckRepo       sale.CheckRepository
	CheckoutService sale.CheckoutService
	ReturnsService  returns.Service
	ShiftService    shift.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	// A nil *redis.Client must stay a nil interface inside the middleware,
	// otherwise the "store missing" guards never fire.
	var idemStore pkgredis.IdempotencyStore
	var limiterStore middleware.RateLimiterStore
	var redisPinger pkgredis.Pinger
	if deps.RedisClient != nil {
		idemStore = deps.RedisClient
		limiterStore = deps.RedisClient
		redisPinger = deps.RedisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, redisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		// Register flow: every authenticated cashier can ring sales,
		// resolve returns, and manage their shift drawer.
		r.Post("/checks", controllers.CheckCommit(deps.CheckoutService, deps.ShiftService, deps.Metrics, logg))
		r.Get("/checks/{checkID}", controllers.CheckFetch(deps.CheckRepo, logg))
		r.Post("/returns", controllers.ReturnCreate(deps.ReturnsService, deps.ShiftService, deps.Metrics, logg))

		r.Route("/shifts", func(r chi.Router) {
			r.Post("/open", controllers.ShiftOpen(deps.ShiftService, logg))
			r.Get("/current", controllers.ShiftCurrent(deps.ShiftService, logg))
			r.Post("/cash-movements", controllers.CashMovementCreate(deps.ShiftService, logg))
			r.Get("/{shiftID}/x-report", controllers.ShiftXReport(deps.ShiftService, logg))
			r.With(managerOnly(logg)).Post("/{shiftID}/close", controllers.ShiftClose(deps.ShiftService, deps.Metrics, logg))
		})

		r.Get("/products", controllers.ProductList(deps.Catalog, logg))

		// Management surface: catalog, pricing, discount rules, and stock
		// corrections.
		r.Group(func(r chi.Router) {
			r.Use(managerOnly(logg))

			r.Post("/products", controllers.ProductCreate(deps.Catalog, logg))
			r.Put("/products/{productID}", controllers.ProductUpdate(deps.Catalog, logg))
			r.Put("/inventory/{productID}", controllers.InventorySet(deps.Inventory, logg))

			r.Get("/discount-rules", controllers.DiscountRuleList(deps.DiscountRules, logg))
			r.Post("/discount-rules", controllers.DiscountRuleCreate(deps.DiscountRules, logg))
			r.Put("/discount-rules/{ruleID}", controllers.DiscountRuleUpdate(deps.DiscountRules, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin.String()))
			r.Get("/users", controllers.UserList(deps.UserRepo, logg))
			r.Post("/users", controllers.UserCreate(deps.UserRepo, cfg.Password, logg))
		})
	})

	return r
}

func managerOnly(logg *logger.Logger) func(http.Handler) http.Handler {
	return middleware.RequireRole(logg, enums.StaffRoleManager.String(), enums.StaffRoleAdmin.String())
}
