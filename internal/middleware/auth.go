package middleware

import (
	"errors"
	"net/http"

	"github.com/2beens/gymplan/internal/auth"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type AuthMiddlewareHandler struct {
	resolver     auth.Resolver
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(resolver auth.Resolver) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		resolver: resolver,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,

			// login-logout-signup:
			"/signup": true,
			"/login":  true,
			"/logout": true,
		},
	}
}

// AuthCheck resolves the session token into the user it belongs to and puts
// the username into the request context. Everything past the allowed paths
// requires a valid session.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get(auth.TokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			username, err := h.resolver.UserIDForToken(ctx, authToken)
			if err != nil {
				if !errors.Is(err, auth.ErrUnauthenticated) {
					log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				} else {
					log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				}
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(pkg.ContextWithUserID(ctx, username)))
		})
	}
}
