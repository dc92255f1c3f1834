package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	mu      sync.Mutex
	welcome []models.Identity
	err     error
}

func (n *recordingNotifier) Welcome(_ context.Context, id models.Identity) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcome = append(n.welcome, id)
	return n.err
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.welcome))
	for _, id := range n.welcome {
		out = append(out, id.Username)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	tokens := NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewService(NewMemoryRepository(), NewBcryptHasher(bcrypt.MinCost), tokens, NewMemoryRevocations(), n), n
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, "alice", "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, "a@x.com", id.Email)
	assert.NotEmpty(t, id.ID)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		want     error
		kind     Kind
	}{
		{"duplicate email", "bob", "a@x.com", "pw", ErrDuplicateEmail, KindConflict},
		{"duplicate username", "alice", "b@x.com", "pw", ErrDuplicateUsername, KindConflict},
		{"email checked first", "alice", "a@x.com", "pw", ErrDuplicateEmail, KindConflict},
		{"missing username", " ", "c@x.com", "pw", ErrMissingFields, KindInvalid},
		{"missing password", "carol", "c@x.com", "", ErrMissingFields, KindInvalid},
		{"password too long", "carol", "c@x.com", strings.Repeat("p", 73), ErrPasswordTooLong, KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, KindOf(err))

			var ae *Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, "auth.Register", ae.Op)
		})
	}
}

func TestRegisterStoresDigest(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, NewBcryptHasher(bcrypt.MinCost), NewTokenIssuer([]byte("s"), time.Hour), nil, nil)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "pw")
	require.NoError(t, err)

	acc, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", acc.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte("pw")))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "a@x.com", "pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody@x.com", "pw")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	res, err := svc.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User, claims.Identity())
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "a@x.com", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "b@x.com", "pw")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "nobody@x.com", "zed")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UpdateProfile(ctx, "a@x.com", "bob")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = svc.UpdateProfile(ctx, "a@x.com", "")
	assert.ErrorIs(t, err, ErrMissingProfile)

	id, err := svc.UpdateProfile(ctx, "a@x.com", "alicia")
	require.NoError(t, err)
	assert.Equal(t, "alicia", id.Username)
	assert.Equal(t, "a@x.com", id.Email)

	// Renaming to the current name is not a conflict.
	_, err = svc.UpdateProfile(ctx, "a@x.com", "alicia")
	assert.NoError(t, err)

	res, err := svc.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alicia", res.User.Username)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "a@x.com", "pw")
	require.NoError(t, err)
	res, err := svc.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.ErrorIs(t, svc.Logout(ctx, nil), ErrInvalidToken)
}

func TestWelcomeFailureIsSwallowed(t *testing.T) {
	svc, n := newTestService(t)
	n.err = errors.New("queue down")

	id, err := svc.Register(context.Background(), "alice", "a@x.com", "pw")
	require.NoError(t, err)
	svc.Welcome(context.Background(), id)
	assert.Equal(t, []string{"alice"}, n.names())
}

type brokenRepo struct{ Repository }

func (brokenRepo) FindByEmail(context.Context, string) (*models.Account, error) {
	return nil, errors.New("connection reset")
}

func TestRepositoryFailureIsInternal(t *testing.T) {
	svc := NewService(brokenRepo{}, NewBcryptHasher(bcrypt.MinCost), NewTokenIssuer([]byte("s"), time.Hour), nil, nil)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "pw")
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "fallback", PublicMessage(err, "fallback"))
	assert.Equal(t, 500, StatusOf(KindOf(err)))
}
