// Package auth implements email/password sign-up and sign-in with opaque
// session tokens. Passwords are stored as bcrypt hashes; tokens are random
// 256-bit values looked up in the session store on every request.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so a caller cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrSessionExpired     = errors.New("session expired")
)

type Service struct {
	users    store.UserStore
	sessions store.SessionStore
	ttl      time.Duration
	logger   *log.Logger
}

func NewService(users store.UserStore, sessions store.SessionStore, ttl time.Duration, logger *log.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
}

// Session is what a successful sign-up or sign-in hands back.
type Session struct {
	Token     string
	User      core.User
	ExpiresAt time.Time
}

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, ErrInvalidEmail
	}
	if len(password) < 8 {
		return Session{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u, string(hash)); err != nil {
		return Session{}, err
	}

	s.logger.InfoContext(ctx, "User signed up",
		log.FieldOperation, log.OpSignUp, log.FieldUserID, u.ID)
	return s.openSession(ctx, u)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, hash, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	s.logger.InfoContext(ctx, "User signed in",
		log.FieldOperation, log.OpSignIn, log.FieldUserID, u.ID)
	return s.openSession(ctx, u)
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.InfoContext(ctx, "User signed out", log.FieldOperation, log.OpSignOut)
	return nil
}

// Verify resolves a session token to its user. Expired sessions are deleted
// on sight rather than waiting for the periodic sweep.
func (s *Service) Verify(ctx context.Context, token string) (core.User, error) {
	if token == "" {
		return core.User{}, ErrInvalidCredentials
	}
	userID, expiresAt, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return core.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("look up session: %w", err)
	}
	if time.Now().After(expiresAt) {
		_ = s.sessions.DeleteSession(ctx, token)
		return core.User{}, ErrSessionExpired
	}
	return s.users.GetUser(ctx, userID)
}

// SweepExpired removes expired sessions; meant to run on a timer.
func (s *Service) SweepExpired(ctx context.Context) {
	n, err := s.sessions.DeleteExpiredSessions(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Session sweep failed", log.FieldError, err.Error())
		return
	}
	if n > 0 {
		s.logger.DebugContext(ctx, "Expired sessions removed", "count", n)
	}
}

func (s *Service) openSession(ctx context.Context, u core.User) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, err
	}
	expiresAt := time.Now().Add(s.ttl)
	if err := s.sessions.CreateSession(ctx, token, u.ID, expiresAt); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return Session{Token: token, User: u, ExpiresAt: expiresAt}, nil
}

func newToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
