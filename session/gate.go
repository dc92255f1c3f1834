package session

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

const (
	HomePath  = "/"
	LoginPath = "/login"
)

var (
	protectedViews = []string{"/", "/cart", "/checkout", "/profile", "/product/:id"}
	publicViews    = []string{"/login", "/signup", "/order"}
)

// Gate decides which view a navigation lands on.
type Gate struct {
	protected *httprouter.Router
	public    *httprouter.Router
}

func view(http.ResponseWriter, *http.Request, httprouter.Params) {}

// NewGate builds the gate for the storefront's views.
func NewGate() *Gate {
	g := &Gate{protected: httprouter.New(), public: httprouter.New()}
	for _, p := range protectedViews {
		g.protected.GET(p, view)
	}
	for _, p := range publicViews {
		g.public.GET(p, view)
	}
	return g
}

// Resolve returns the path actually shown for path. Unknown paths fall back to the home
// view, and protected views send anonymous visitors to the login view.
func (g *Gate) Resolve(path string, authenticated bool) string {
	if path == "" || path[0] != '/' {
		path = HomePath
	}
	if h, _, _ := g.public.Lookup(http.MethodGet, path); h != nil {
		return path
	}
	if h, _, _ := g.protected.Lookup(http.MethodGet, path); h == nil {
		path = HomePath
	}
	if !authenticated {
		return LoginPath
	}
	return path
}
