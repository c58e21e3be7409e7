package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/market-portal/internal/api/http/handlers"
	"github.com/spec-kit/market-portal/internal/auth"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Products  *handlers.ProductsHandler
	Cart      *handlers.CartHandler
	Checkout  *handlers.CheckoutHandler
	Admin     *handlers.AdminHandler
	Sessions  *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	public := app.Group("", cfg.Sessions.Handle)
	public.Get(auth.LoginPath, cfg.Auth.LoginPage)
	public.Post(auth.LoginPath, cfg.Auth.Login)
	public.Post("/register", cfg.Auth.Register)
	public.Post("/logout", cfg.Auth.Logout)
	public.Get("/session", cfg.Auth.Session)

	admin := public.Group("/admin", auth.RequirePrivileged())
	admin.Get("/orders", cfg.Admin.Orders)
	admin.Patch("/orders/:id/status", cfg.Admin.UpdateStatus)
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Post("/products", cfg.Products.Create)
	admin.Post("/products/upload-image", cfg.Products.UploadImage)
	admin.Put("/products/:id", cfg.Products.Update)
	admin.Delete("/products/:id", cfg.Products.Delete)

	signedIn := auth.RequireAuthenticated()
	public.Get("/", signedIn, cfg.Dashboard.Dashboard)
	public.Get("/transfer", signedIn, cfg.Dashboard.TransferPage)
	public.Post("/transfer", signedIn, cfg.Dashboard.Transfer)

	public.Get("/products", signedIn, cfg.Products.List)
	public.Post("/products/:id/cart", signedIn, cfg.Products.AddToCart)

	public.Get("/cart", signedIn, cfg.Cart.GetCart)
	public.Post("/cart/items", signedIn, cfg.Cart.AddItem)
	public.Put("/cart/items/:id", signedIn, cfg.Cart.UpdateItem)
	public.Delete("/cart/items/:id", signedIn, cfg.Cart.RemoveItem)
	public.Delete("/cart", signedIn, cfg.Cart.Clear)

	public.Get("/checkout", signedIn, cfg.Checkout.CheckoutPage)
	public.Post("/checkout", signedIn, cfg.Checkout.Checkout)
	public.Get("/orders", signedIn, cfg.Checkout.Orders)
	public.Get("/orders/:id", signedIn, cfg.Checkout.Order)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route", map[string]any{"method": c.Method(), "path": c.Path()})
	})
}
