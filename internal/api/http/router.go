package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eshop-service/internal/api/http/handlers"
	"github.com/spec-kit/eshop-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	APIPrefix      string
	UploadsDir     string
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Categories     *handlers.CategoriesHandler
	Products       *handlers.ProductsHandler
	Orders         *handlers.OrdersHandler
	AuthMiddleware *auth.Middleware
	LoginLimiter   *LoginLimiter
	Metrics        fiber.Handler
}

// RegisterRoutes mounts the authentication gate ahead of every route, then
// wires the handlers. Admin-only routes add auth.AdminOnly.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)

	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}
	if cfg.UploadsDir != "" {
		app.Static("/public/uploads", cfg.UploadsDir)
	}

	api := app.Group(cfg.APIPrefix)
	admin := auth.AdminOnly()

	users := api.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.LoginLimiter.Handler(), cfg.Users.Login)
	users.Get("/get/count", admin, cfg.Users.Count)
	users.Get("/", admin, cfg.Users.List)
	users.Post("/", admin, cfg.Users.Create)
	users.Get("/:id", auth.Authenticated(), cfg.Users.Get)
	users.Delete("/:id", admin, cfg.Users.Delete)

	categories := api.Group("/categories")
	categories.Get("/", cfg.Categories.List)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Post("/", admin, cfg.Categories.Create)
	categories.Put("/:id", admin, cfg.Categories.Update)
	categories.Delete("/:id", admin, cfg.Categories.Delete)

	products := api.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/get/count", cfg.Products.Count)
	products.Get("/get/featured/:count?", cfg.Products.Featured)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", admin, cfg.Products.Create)
	products.Put("/gallery-images/:id", admin, cfg.Products.UpdateGallery)
	products.Put("/:id", admin, cfg.Products.Update)
	products.Delete("/:id", admin, cfg.Products.Delete)

	orders := api.Group("/orders")
	orders.Get("/get/totalsales", admin, cfg.Orders.TotalSales)
	orders.Get("/get/count", admin, cfg.Orders.Count)
	orders.Get("/get/userorders/:userid", auth.Authenticated(), cfg.Orders.ListByUser)
	orders.Get("/", admin, cfg.Orders.List)
	orders.Post("/", auth.Authenticated(), cfg.Orders.Place)
	orders.Get("/:id", auth.Authenticated(), cfg.Orders.Get)
	orders.Put("/:id", admin, cfg.Orders.UpdateStatus)
	orders.Delete("/:id", admin, cfg.Orders.Delete)
}
