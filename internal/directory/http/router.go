package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/openlms/auth/internal/directory/service"
	"github.com/openlms/auth/internal/directory/store"
	"github.com/openlms/auth/pkg/httpx"
	"github.com/openlms/auth/pkg/jwtx"
	"github.com/openlms/auth/pkg/slogx"
)

// Router holds shared dependencies for the directory's HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	UserService *service.UserService
}

func NewRouter(codec *jwtx.Codec, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerSystem()
}

func (r *Router) registerUsers() {
	users := &UsersHandler{UserService: r.UserService}

	// Every identity endpoint sits behind the service bearer token the
	// gateway mints for itself. Nothing here is end-user facing.
	authn := httpx.AuthnMiddleware(r.codec)

	r.Mux.Handle("GET /v1/users/lookup",
		httpx.Chain(http.HandlerFunc(users.HandleLookup), authn,
			httpx.RateLimitByIP(httpx.LenientLimit)))
	r.Mux.Handle("GET /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(users.HandleGet), authn,
			httpx.RateLimitByIP(httpx.LenientLimit)))
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(users.HandleCreate), authn,
			httpx.RateLimitByIP(httpx.LenientLimit)))
	r.Mux.Handle("PUT /v1/users/{id}/roles",
		httpx.Chain(http.HandlerFunc(users.HandleUpdateRoles), authn,
			httpx.RateLimitByIP(httpx.LenientLimit)))
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
