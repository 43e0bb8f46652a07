package auth

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/gymplan/internal/plans"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	testUsername     = "testuser"
	testPassword     = "testpass"
	testPasswordHash = "$2a$14$6Gmhg85si2etd3K9oB8nYu1cxfbrdmhkg6wI6OXsa88IF4L2r/L9i" // testpass
	testToken        = "test_token"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func newTestService(t *testing.T, ttl time.Duration) (*Service, redismock.ClientMock, *plans.Store) {
	t.Helper()

	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	store := plans.NewStore()
	service := NewService(store, ttl, rdb)
	require.NotNil(t, service)
	service.RandStringFunc = func(s int) (string, error) {
		return testToken, nil
	}

	return service, mock, store
}

func TestService_Login(t *testing.T) {
	service, mock, store := newTestService(t, time.Hour)
	require.NoError(t, store.Register(testUsername, testPasswordHash))

	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectSet(sessionKey, testUsername, time.Hour).SetVal("OK")

	token, err := service.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)
	assert.NoError(t, mock.ExpectationsWereMet())

	// wrong password
	token, err = service.Login(context.Background(), testUsername, "invalid_pass")
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, token)

	// unknown user gets the same answer as a wrong password
	token, err = service.Login(context.Background(), "nobody", testPassword)
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, token)
}

func TestService_SignUp(t *testing.T) {
	service, mock, store := newTestService(t, time.Hour)

	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectSet(sessionKey, testUsername, time.Hour).SetVal("OK")

	token, err := service.SignUp(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)
	assert.NoError(t, mock.ExpectationsWereMet())

	// signup registered the user with a usable password hash
	hash, err := store.PasswordHash(testUsername)
	require.NoError(t, err)
	assert.True(t, service.CheckHashFunc(testPassword, hash))

	// taken username
	token, err = service.SignUp(context.Background(), testUsername, testPassword)
	assert.ErrorIs(t, err, plans.ErrUserExists)
	assert.Empty(t, token)
}

func TestService_UserIDForToken(t *testing.T) {
	service, mock, _ := newTestService(t, time.Hour)

	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectGet(sessionKey).SetVal(testUsername)
	// a hit slides the expiry forward
	mock.ExpectExpire(sessionKey, time.Hour).SetVal(true)

	username, err := service.UserIDForToken(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, testUsername, username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_UserIDForToken_unknownToken(t *testing.T) {
	service, mock, _ := newTestService(t, time.Hour)

	sessionKey := sessionKeyPrefix + "gone"
	mock.ExpectGet(sessionKey).RedisNil()

	username, err := service.UserIDForToken(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Revoke(t *testing.T) {
	service, mock, _ := newTestService(t, time.Hour)

	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectDel(sessionKey).SetVal(1)
	require.NoError(t, service.Revoke(context.Background(), testToken))

	// already gone, still a successful revoke
	mock.ExpectDel(sessionKey).SetVal(0)
	require.NoError(t, service.Revoke(context.Background(), testToken))

	assert.NoError(t, mock.ExpectationsWereMet())
}
