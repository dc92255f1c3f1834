package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/models"
	"storefront/mq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stalledNotifier struct{}

func (stalledNotifier) Welcome(ctx context.Context, _ models.Identity) error {
	<-ctx.Done()
	return ctx.Err()
}

// registerWithin runs the register handler and fails if it does not return in time.
func registerWithin(t *testing.T, h *Handler, body string, limit time.Duration) int {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))

	done := make(chan struct{})
	go func() {
		h.Register(rr, req, nil)
		close(done)
	}()
	select {
	case <-done:
		return rr.Code
	case <-time.After(limit):
		t.Fatalf("register did not return within %s", limit)
		return 0
	}
}

func TestRegisterWithFullWelcomeQueue(t *testing.T) {
	queue := mq.NewMemoryQueue(1)
	defer queue.Close()
	svc := NewService(NewMemoryRepository(), NewBcryptHasher(bcrypt.MinCost),
		NewTokenIssuer([]byte("s"), time.Hour), nil, mq.NewWelcomeNotifier(queue))
	h := NewHandler(svc)

	assert.Equal(t, http.StatusCreated, registerWithin(t, h, `{"username":"alice","email":"a@x.com","password":"pw"}`, time.Second))
	assert.Equal(t, http.StatusCreated, registerWithin(t, h, `{"username":"bob","email":"b@x.com","password":"pw"}`, time.Second))

	_, err := svc.Login(context.Background(), "b@x.com", "pw")
	require.NoError(t, err, "the account exists although its welcome was dropped")
}

func TestRegisterWithStalledNotifier(t *testing.T) {
	svc := NewService(NewMemoryRepository(), NewBcryptHasher(bcrypt.MinCost),
		NewTokenIssuer([]byte("s"), time.Hour), nil, stalledNotifier{})
	svc.welcomeTimeout = 20 * time.Millisecond

	code := registerWithin(t, NewHandler(svc), `{"username":"alice","email":"a@x.com","password":"pw"}`, time.Second)
	assert.Equal(t, http.StatusCreated, code)
}
