package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/memory"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	s := memory.New()
	return NewService(s, s, ttl, log.New(log.DefaultConfig()))
}

func TestSignUpAndVerify(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, "User@Example.com", "hunter2hunter2", "User")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "user@example.com", sess.User.Email)

	u, err := svc.Verify(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, u.ID)
}

func TestSignUpValidation(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "hunter2hunter2", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.SignUp(ctx, "a@b.c", "short", "")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.c", "hunter2hunter2", "")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "a@b.c", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email yields the same error as a wrong password.
	_, err = svc.SignIn(ctx, "nobody@b.c", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := svc.SignIn(ctx, "a@b.c", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
}

func TestSignOutInvalidatesToken(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, "a@b.c", "hunter2hunter2", "")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, sess.Token))

	_, err = svc.Verify(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestExpiredSessionRejected(t *testing.T) {
	svc := newTestService(t, -time.Minute)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, "a@b.c", "hunter2hunter2", "")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// The expired session was deleted on sight.
	_, err = svc.Verify(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
