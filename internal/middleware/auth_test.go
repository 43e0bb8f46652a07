package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/gymplan/internal/auth"
	"github.com/2beens/gymplan/internal/middleware"
	"github.com/2beens/gymplan/pkg"

	"github.com/stretchr/testify/assert"
)

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	resolver := auth.NewTestResolver()
	resolver.Sessions["valid-token"] = "testuser"
	authMiddleware := middleware.NewAuthMiddlewareHandler(resolver)

	testCases := []struct {
		name               string
		path               string
		method             string
		token              string
		expectedStatusCode int
		expectedUsername   string
	}{
		{
			name:               "AllowedPathWithoutToken",
			path:               "/login",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "RootWithoutToken",
			path:               "/",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ProtectedPathWithoutToken",
			path:               "/training/state",
			method:             "GET",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ValidToken",
			path:               "/training/state",
			method:             "GET",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
			expectedUsername:   "testuser",
		},
		{
			name:               "InvalidToken",
			path:               "/training/state",
			method:             "GET",
			token:              "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "OptionsPreflight",
			path:               "/training/state",
			method:             "OPTIONS",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotUsername string
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUsername, _ = pkg.UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set(auth.TokenHeader, tc.token)
			}
			rec := httptest.NewRecorder()

			authMiddleware.AuthCheck()(nextHandler).ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedUsername != "" {
				assert.Equal(t, tc.expectedUsername, gotUsername)
			}
		})
	}
}
