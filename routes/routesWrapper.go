package routes

import (
	"net/http"

	"storefront/auth"
	"storefront/orders"
	"storefront/products"
	"storefront/ratelim"
	"storefront/utils"

	"github.com/julienschmidt/httprouter"
)

// Handlers bundles everything the router serves.
type Handlers struct {
	Auth     *auth.Handler
	Verifier *auth.Service
	Orders   *orders.Handler
	Products *products.Handler
}

// RoutesWrapper builds the storefront router.
func RoutesWrapper(h Handlers, rateLimiter *ratelim.RateLimiter) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	AddAuthRoutes(router, h.Auth, h.Verifier, rateLimiter)
	AddOrderRoutes(router, h.Orders, h.Verifier, rateLimiter)
	AddProductRoutes(router, h.Products)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondWithMessage(w, http.StatusNotFound, "Not found")
	})
	return router
}
