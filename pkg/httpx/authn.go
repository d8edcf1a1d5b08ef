package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/openlms/auth/pkg/jwtx"
	"github.com/openlms/auth/pkg/slogx"
)

type ctxKey string

const ctxKeyTokenInfo ctxKey = "token_info"

// TokenInfoFromContext returns the verified token attached by
// AuthnMiddleware, if any.
func TokenInfoFromContext(ctx context.Context) (jwtx.TokenInfo, bool) {
	info, ok := ctx.Value(ctxKeyTokenInfo).(jwtx.TokenInfo)
	return info, ok
}

// AuthnMiddleware guards backend endpoints with a bearer access token,
// the credential the gateway attaches on service-to-service calls. The
// token must decode as an unexpired access token; payload completeness is
// not demanded here because service tokens carry no role set.
func AuthnMiddleware(codec *jwtx.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

			info := codec.DecodeInfo(raw)
			switch {
			case !info.IsAccess():
				log.Warn("bearer rejected", "reason", "wrong kind", "kind", info.Kind.String())
				writeBearerError(w, "access token required")
				return
			case info.Expired:
				log.Warn("bearer rejected", "reason", "expired", "sub", info.Subject)
				writeBearerError(w, "token expired")
				return
			case info.Subject == "":
				writeBearerError(w, "token has no subject")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyTokenInfo, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-style error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
