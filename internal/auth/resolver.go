package auth

import "context"

var _ Resolver = (*Service)(nil)
var _ Resolver = (*TestResolver)(nil)

type Resolver interface {
	UserIDForToken(ctx context.Context, token string) (string, error)
}

// TestResolver is a hand rolled fake for handler and middleware tests.
type TestResolver struct {
	Sessions map[string]string // token -> username
}

func NewTestResolver() *TestResolver {
	return &TestResolver{
		Sessions: map[string]string{},
	}
}

func (r *TestResolver) UserIDForToken(_ context.Context, token string) (string, error) {
	username, ok := r.Sessions[token]
	if !ok {
		return "", ErrUnauthenticated
	}
	return username, nil
}
