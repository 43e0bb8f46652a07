package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymplan/internal/plans"
	"github.com/2beens/gymplan/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	// a session dies after 30 minutes of inactivity
	DefaultTTL       = 30 * time.Minute
	sessionKeyPrefix = "gymplan-session||"
	tokenByteLength  = 35
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrWrongCredentials = errors.New("wrong credentials")
)

type credentialStore interface {
	Register(username, passwordHash string) error
	PasswordHash(username string) (string, error)
}

// Service issues, validates and revokes login session tokens.
// Tokens live in redis with a sliding TTL: every successful validation
// moves the expiry forward, and redis native expiry is the lazy eviction
// (no sweeper needed).
type Service struct {
	redisClient *redis.Client
	credentials credentialStore
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	// password verification is pluggable, bcrypt by default
	CheckHashFunc func(password, hash string) bool
}

func NewService(
	credentials credentialStore,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		redisClient:    redisClient,
		credentials:    credentials,
		ttl:            ttl,
		RandStringFunc: pkg.GenerateRandomString,
		CheckHashFunc:  pkg.CheckPasswordHash,
	}
}

// SignUp registers a new user and logs them in right away.
// Returns plans.ErrUserExists for a taken username.
func (s *Service) SignUp(ctx context.Context, username, password string) (string, error) {
	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	if err := s.credentials.Register(username, passwordHash); err != nil {
		return "", err
	}

	return s.Issue(ctx, username)
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	passwordHash, err := s.credentials.PasswordHash(username)
	if err != nil {
		if errors.Is(err, plans.ErrUserNotFound) {
			// same answer as for a wrong password, do not leak which one it was
			return "", ErrWrongCredentials
		}
		return "", fmt.Errorf("get credentials: %w", err)
	}

	if !s.CheckHashFunc(password, passwordHash) {
		log.Tracef("[password] failed login attempt for user: %s", username)
		return "", ErrWrongCredentials
	}

	return s.Issue(ctx, username)
}

// Issue generates a fresh unguessable token and stores the session.
func (s *Service) Issue(ctx context.Context, username string) (string, error) {
	token, err := s.RandStringFunc(tokenByteLength)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	sessionKey := sessionKeyPrefix + token
	if err := s.redisClient.Set(ctx, sessionKey, username, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// UserIDForToken validates the token and returns the user it belongs to.
// A hit refreshes the TTL (sliding expiration). An expired token and a token
// that never existed are indistinguishable to the caller.
func (s *Service) UserIDForToken(ctx context.Context, token string) (string, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := s.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("get session: %w", err)
	}

	username := cmd.Val()

	if err := s.redisClient.Expire(ctx, sessionKey, s.ttl).Err(); err != nil {
		// the session was still valid, only the refresh failed
		log.Errorf("refresh session ttl for %s: %s", username, err)
	}

	return username, nil
}

// Revoke removes the session. Revoking an unknown or already
// expired token is a no-op, not an error.
func (s *Service) Revoke(ctx context.Context, token string) error {
	sessionKey := sessionKeyPrefix + token
	if err := s.redisClient.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
