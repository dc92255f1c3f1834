package routes

import (
	"fmt"
	"net/http"

	"storefront/auth"
	"storefront/middleware"
	"storefront/orders"
	"storefront/products"
	"storefront/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, verify middleware.TokenVerifier, rateLimiter *ratelim.RateLimiter) {
	authenticate := middleware.Authenticate(verify)
	router.POST("/api/auth/register", rateLimiter.Limit(h.Register))
	router.POST("/api/auth/login", rateLimiter.Limit(h.Login))
	router.PUT("/api/auth/profile", rateLimiter.Limit(h.UpdateProfile))
	router.POST("/api/auth/logout", authenticate(h.Logout))
}

func AddOrderRoutes(router *httprouter.Router, h *orders.Handler, verify middleware.TokenVerifier, rateLimiter *ratelim.RateLimiter) {
	authenticate := middleware.Authenticate(verify)
	router.GET("/api/auth/orders", authenticate(h.ListOrders))
	router.POST("/api/auth/orders", rateLimiter.Limit(authenticate(h.PlaceOrder)))
	router.GET("/api/auth/orders/:id/receipt", authenticate(h.GetReceipt))
}

func AddProductRoutes(router *httprouter.Router, h *products.Handler) {
	router.GET("/api/products", h.ListProducts)
	router.GET("/api/products/:id", h.GetProductDetails)
	router.GET("/api/facets", h.GetFacets)
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}
