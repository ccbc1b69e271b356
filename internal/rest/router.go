package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Router dispatches requests by method and path pattern. Middleware wraps
// every request, including those that match no route.
type Router struct {
	mux        *mux.Router
	middleware []Middleware
}

// NewRouter creates a new router.
func NewRouter() *Router {
	m := mux.NewRouter()
	m.NotFoundHandler = http.HandlerFunc(defaultNotFound)
	m.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	return &Router{mux: m}
}

// Use adds middleware to the router.
func (r *Router) Use(mw Middleware) {
	r.middleware = append(r.middleware, mw)
}

// Handle registers a route. Patterns name path parameters in braces, as
// in /nspi/v1/{operation}.
func (r *Router) Handle(method, pattern string, handler http.HandlerFunc) {
	r.mux.Methods(method).Path(pattern).Handler(handler)
}

// GET registers a GET route.
func (r *Router) GET(pattern string, handler http.HandlerFunc) {
	r.Handle(http.MethodGet, pattern, handler)
}

// POST registers a POST route.
func (r *Router) POST(pattern string, handler http.HandlerFunc) {
	r.Handle(http.MethodPost, pattern, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var handler http.Handler = r.mux
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

// Param retrieves a path parameter of the matched route.
func Param(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func defaultNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "endpoint not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}
