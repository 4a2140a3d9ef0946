package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farmfresh-in/farmfresh-backend/api/controllers"
	"github.com/farmfresh-in/farmfresh-backend/api/middleware"
	"github.com/farmfresh-in/farmfresh-backend/internal/inventory"
	"github.com/farmfresh-in/farmfresh-backend/internal/orders"
	"github.com/farmfresh-in/farmfresh-backend/internal/payments"
	"github.com/farmfresh-in/farmfresh-backend/internal/products"
	"github.com/farmfresh-in/farmfresh-backend/internal/settlement"
	"github.com/farmfresh-in/farmfresh-backend/internal/users"
	"github.com/farmfresh-in/farmfresh-backend/pkg/config"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
	"github.com/farmfresh-in/farmfresh-backend/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Redis      *redis.Client
	Registry   *prometheus.Registry
	Users      users.Service
	Products   products.Service
	Inventory  inventory.Service
	Orders     orders.Service
	Payments   payments.Service
	Settlement settlement.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Users, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg), middleware.Idempotency(deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Users, logg))
		r.Post("/logout", controllers.AuthLogout())
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.AuthMe(deps.Users, logg))
	})

	// Public catalog reads.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.With(middleware.RequireRole(logg, enums.UserRoleFarmer.String())).Group(func(r chi.Router) {
				r.Post("/", controllers.ProductCreate(deps.Products, logg))
				r.Get("/mine", controllers.ProductListMine(deps.Products, logg))
				r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, logg))
				r.Delete("/{productId}", controllers.ProductDeactivate(deps.Products, logg))
			})
		})

		r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
	})

	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.With(middleware.RequireRole(logg, enums.UserRoleFarmer.String())).Post("/logs", controllers.InventoryAdjust(deps.Inventory, logg))
		r.Get("/logs", controllers.InventoryLogs(deps.Inventory, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/cod", controllers.OrderPlaceCOD(deps.Settlement, logg))
		r.Get("/", controllers.OrderList(deps.Orders, logg))
		r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
		r.Post("/{orderId}/status", controllers.OrderUpdateDeliveryStatus(deps.Orders, logg))
		r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Settlement, logg))
	})

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/intent", controllers.PaymentIntent(deps.Payments, logg))
		r.Post("/verify", controllers.PaymentVerify(deps.Settlement, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin.String()))

		r.Get("/users", controllers.AdminListUsers(deps.Users, logg))
		r.Get("/farmers", controllers.AdminListFarmers(deps.Users, logg))
		r.Post("/farmers/{farmerId}/approve", controllers.AdminApproveFarmer(deps.Users, logg))
	})

	return r
}
