package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Jirayuth/frame_shop/internal/handlers"
	"github.com/Jirayuth/frame_shop/internal/service/token"
)

type Deps struct {
	Tokens *token.TokenService

	Auth     *handlers.AuthHandler
	Product  *handlers.ProductHandler
	Category *handlers.CategoryHandler
	Search   *handlers.SearchHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
	Frame    *handlers.FrameHandler
	Plaque   *handlers.PlaqueHandler
	Admin    *handlers.AdminHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.Auth.Register)
	v1.POST("/login", d.Auth.Login)
	v1.POST("/logout", d.Auth.LogOut)

	v1.GET("/products", d.Product.GetProducts)
	v1.GET("/products/:id", d.Product.GetProduct)
	v1.GET("/categories", d.Category.GetCategories)
	v1.GET("/search", d.Search.Search)

	// Carts work for guests via the session cookie; a logged-in caller is
	// bound to their account instead.
	cart := v1.Group("/cart", d.Tokens.OptionalAuth)

	cart.GET("", d.Cart.GetCart)
	cart.POST("/items", d.Cart.AddToCart)
	cart.PATCH("/items/:id", d.Cart.UpdateItem)
	cart.DELETE("/items/:id", d.Cart.DeleteItem)

	// Everything that creates money movement requires a logged-in customer.
	authed := v1.Group("", d.Tokens.AutoRefreshMiddleware)

	authed.POST("/checkout", d.Checkout.CheckoutCart)
	authed.POST("/checkout/:id", d.Checkout.BuyNow)
	authed.GET("/orders", d.Order.ListMine)

	authed.POST("/framings", d.Frame.CreateOrder)
	authed.POST("/framings/:id/confirm", d.Frame.ConfirmOrder)
	authed.GET("/framings", d.Frame.ListMine)

	authed.POST("/plaques", d.Plaque.CreateOrder)
	authed.POST("/plaques/:id/checkout", d.Plaque.CheckoutOrder)
	authed.GET("/plaques", d.Plaque.ListMine)

	admin := v1.Group("/admin", d.Tokens.AutoRefreshMiddlewareAdmin)

	admin.POST("/products", d.Product.CreateProduct)
	admin.PATCH("/products/:id", d.Product.PatchProduct)
	admin.DELETE("/products/:id", d.Product.DeleteProduct)

	admin.POST("/categories", d.Category.CreateCategory)
	admin.PATCH("/categories/:id", d.Category.PatchCategory)
	admin.DELETE("/categories/:id", d.Category.DeleteCategory)

	admin.GET("/dashboard", d.Admin.GetDashboard)
	admin.GET("/orders/:kind", d.Admin.ListOrders)
	admin.PATCH("/orders/:kind/:id/status", d.Admin.UpdateOrderStatus)
	admin.DELETE("/orders/:kind/:id", d.Admin.DeleteOrder)

	admin.GET("/users", d.Admin.ListUsers)
	admin.PATCH("/users/:id/active", d.Admin.ToggleUserActive)
	admin.DELETE("/users/:id", d.Admin.DeleteUser)
}
