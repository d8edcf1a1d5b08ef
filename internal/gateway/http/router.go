package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/openlms/auth/internal/gateway/service"
	"github.com/openlms/auth/pkg/httpx"
	"github.com/openlms/auth/pkg/slogx"
)

// Router holds shared dependencies for the gateway's HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// directoryURL is probed by readyz; the gateway is not ready when its
	// only upstream is down.
	directoryURL string

	AuthService *service.AuthService
	Cookies     CookieWriter
}

func NewRouter(buildVersion, directoryURL string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		directoryURL: directoryURL,
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
	auth := &AuthHandler{AuthService: r.AuthService, Cookies: r.Cookies}

	// Login eats a directory lookup plus an Argon2id verify per attempt,
	// so it gets the strict limit. The token flows are cheap.
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(auth.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(auth.HandleRefresh),
			httpx.RateLimitByIP(httpx.LenientLimit)))
	r.Mux.Handle("GET /api/auth/verify",
		httpx.Chain(http.HandlerFunc(auth.HandleVerify),
			httpx.RateLimitByIP(httpx.LenientLimit)))
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(auth.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit)))

	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.directoryURL))
}
