package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymplan/internal/plans"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-GYMPLAN-TOKEN"

type SignUpRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	AccessKey string `json:"accessKey"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	authService *Service
	metrics     *metrics.Manager
	// fixed provisioning secret gating new registrations
	signupAccessKey string
}

func NewHandler(
	authService *Service,
	metricsManager *metrics.Manager,
	signupAccessKey string,
) *Handler {
	return &Handler{
		authService:     authService,
		metrics:         metricsManager,
		signupAccessKey: signupAccessKey,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/signup", h.handleSignUp).Methods("POST", "OPTIONS").Name("signup")
	r.HandleFunc("/login", h.handleLogin).Methods("POST", "OPTIONS").Name("login")
	r.HandleFunc("/logout", h.handleLogout).Methods("GET", "OPTIONS").Name("logout")
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.signup")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var signUpReq SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&signUpReq); err != nil {
		log.Tracef("signup, unmarshal json params: %s", err)
		http.Error(w, "signup failed", http.StatusBadRequest)
		return
	}

	if signUpReq.Username == "" || signUpReq.Password == "" {
		http.Error(w, "error, username or password empty", http.StatusBadRequest)
		return
	}

	if signUpReq.AccessKey != h.signupAccessKey {
		log.Tracef("[access key] failed signup attempt for user: %s", signUpReq.Username)
		http.Error(w, "error, invalid access key", http.StatusForbidden)
		return
	}

	token, err := h.authService.SignUp(ctx, signUpReq.Username, signUpReq.Password)
	if err != nil {
		if errors.Is(err, plans.ErrUserExists) {
			http.Error(w, "error, user already exists", http.StatusBadRequest)
			return
		}
		log.Errorf("signup for %s: %s", signUpReq.Username, err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterSessionsCreated.Inc()

	tokenJson, err := json.Marshal(TokenResponse{Token: token})
	if err != nil {
		log.Errorf("failed to marshal signup response: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user signed up: %s", signUpReq.Username)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, tokenJson, http.StatusCreated)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		log.Tracef("login, unmarshal json params: %s", err)
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}

	if loginReq.Username == "" || loginReq.Password == "" {
		http.Error(w, "error, username or password empty", http.StatusBadRequest)
		return
	}

	token, err := h.authService.Login(ctx, loginReq.Username, loginReq.Password)
	if err != nil {
		if errors.Is(err, ErrWrongCredentials) {
			http.Error(w, "error, wrong credentials", http.StatusBadRequest)
			return
		}
		log.Errorf("login for %s: %s", loginReq.Username, err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterSessionsCreated.Inc()

	tokenJson, err := json.Marshal(TokenResponse{Token: token})
	if err != nil {
		log.Errorf("failed to marshal login response: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, tokenJson, http.StatusOK)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	token := r.Header.Get(TokenHeader)
	if token == "" {
		http.Error(w, "error, token empty", http.StatusBadRequest)
		return
	}

	// revoking an unknown or expired token is still a successful logout
	if err := h.authService.Revoke(ctx, token); err != nil {
		log.Errorf("logout: %s", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}
