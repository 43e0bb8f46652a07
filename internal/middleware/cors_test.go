package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/gymplan/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func TestCors(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	corsHandler := middleware.Cors()(nextHandler)

	testCases := []struct {
		name                string
		origin              string
		userAgent           string
		expectedStatusCode  int
		expectedAllowOrigin string
	}{
		{
			name:                "AllowedOrigin",
			origin:              "http://localhost:8080",
			expectedStatusCode:  http.StatusOK,
			expectedAllowOrigin: "http://localhost:8080",
		},
		{
			name:                "NoOrigin",
			expectedStatusCode:  http.StatusOK,
			expectedAllowOrigin: "*",
		},
		{
			name:                "TrainingAppUserAgent",
			origin:              "http://evil.example.com",
			userAgent:           "GymPlan/1.2",
			expectedStatusCode:  http.StatusOK,
			expectedAllowOrigin: "http://evil.example.com",
		},
		{
			name:               "DisallowedOrigin",
			origin:             "http://evil.example.com",
			userAgent:          "Mozilla/5.0",
			expectedStatusCode: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/training/state", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.userAgent != "" {
				req.Header.Set("User-Agent", tc.userAgent)
			}
			rec := httptest.NewRecorder()

			corsHandler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedAllowOrigin != "" {
				assert.Equal(t, tc.expectedAllowOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
