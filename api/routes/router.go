package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/natebrowery/stockroom-backend/api/controllers"
	"github.com/natebrowery/stockroom-backend/api/middleware"
	"github.com/natebrowery/stockroom-backend/internal/auth"
	"github.com/natebrowery/stockroom-backend/internal/inventory"
	"github.com/natebrowery/stockroom-backend/internal/media"
	"github.com/natebrowery/stockroom-backend/internal/notifications"
	"github.com/natebrowery/stockroom-backend/internal/orders"
	"github.com/natebrowery/stockroom-backend/internal/products"
	"github.com/natebrowery/stockroom-backend/internal/reports"
	"github.com/natebrowery/stockroom-backend/internal/scanner"
	"github.com/natebrowery/stockroom-backend/internal/users"
	"github.com/natebrowery/stockroom-backend/pkg/auth/session"
	"github.com/natebrowery/stockroom-backend/pkg/config"
	"github.com/natebrowery/stockroom-backend/pkg/db"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	"github.com/natebrowery/stockroom-backend/pkg/logger"
	"github.com/natebrowery/stockroom-backend/pkg/redis"
)

// Services groups every service the router mounts.
type Services struct {
	Auth          auth.Service
	Users         users.Service
	Products      products.Service
	Inventory     inventory.Service
	Orders        orders.Service
	Scanner       scanner.Service
	Notifications notifications.Service
	Reports       reports.Service
	Media         media.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(dbClient, redisClient, logg))
	})

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Auth, cfg.Session, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/register", controllers.AuthRegister(svcs.Auth, cfg.Session, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.Session, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, cfg.Session, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/password-reset", controllers.AuthRequestPasswordReset(svcs.Auth, logg))
		r.Post("/password-reset/confirm", controllers.AuthConfirmPasswordReset(svcs.Auth, logg))
	})

	// Storefront. Checkout accepts guests; a signed-in customer gets the
	// order attached to their account.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, cfg.Session, sessions, logg))
		r.Get("/api/products", controllers.PublicListProducts(svcs.Products, logg))
		r.Get("/api/products/{productID}", controllers.PublicGetProduct(svcs.Products, logg))
		r.Post("/api/orders", controllers.PlaceOrder(svcs.Orders, logg))
		r.Post("/api/orders/track", controllers.TrackOrder(svcs.Orders, logg))
	})

	// Signed-in surface shared by customers and staff.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, cfg.Session, sessions, logg))
		r.Get("/api/ping", controllers.PrivatePing())
		r.Get("/api/me/orders", controllers.ListMyOrders(svcs.Orders, logg))
		r.Get("/api/orders/{orderID}", controllers.GetOrder(svcs.Orders, logg))

		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	// Back office.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, cfg.Session, sessions, logg))
		r.Use(middleware.RequireBackOffice(logg))

		manageCatalog := middleware.RequireRole(logg, enums.UserRoleAdmin, enums.UserRoleManager)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(svcs.Products, logg))
			r.Get("/{productID}", controllers.AdminGetProduct(svcs.Products, logg))
			r.With(manageCatalog).Post("/", controllers.AdminCreateProduct(svcs.Products, logg))
			r.With(manageCatalog).Put("/{productID}", controllers.AdminUpdateProduct(svcs.Products, logg))
			r.With(manageCatalog).Delete("/{productID}", controllers.AdminDeactivateProduct(svcs.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, logg))
			r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
			r.Post("/{orderID}/items/{itemID}/pack", controllers.PackOrderItem(svcs.Orders, logg))
			r.Post("/{orderID}/items/{itemID}/fulfill", controllers.FulfillOrderItem(svcs.Orders, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/adjust", controllers.AdjustInventory(svcs.Inventory, logg))
			r.Post("/bulk-adjust", controllers.BulkAdjustInventory(svcs.Inventory, logg))
			r.Get("/{productID}/logs", controllers.ListInventoryLogs(svcs.Inventory, logg))
		})

		r.Route("/scan", func(r chi.Router) {
			r.Post("/resolve", controllers.ResolveScan(svcs.Scanner, logg))
			r.Post("/receive", controllers.ReceiveScan(svcs.Scanner, logg))
			r.Post("/pack", controllers.PackScan(svcs.Scanner, logg))
			r.Post("/fulfill", controllers.FulfillScan(svcs.Scanner, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", controllers.SalesReport(svcs.Reports, logg))
			r.Get("/inventory", controllers.InventoryReport(svcs.Reports, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Post("/presign", controllers.PresignMedia(svcs.Media, logg))
			r.Post("/{assetID}/complete", controllers.CompleteMedia(svcs.Media, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Get("/", controllers.AdminListUsers(svcs.Users, logg))
			r.Post("/", controllers.AdminCreateUser(svcs.Users, logg))
			r.Get("/{userID}", controllers.AdminGetUser(svcs.Users, logg))
			r.Put("/{userID}", controllers.AdminUpdateUser(svcs.Users, logg))
		})
	})

	return r
}
