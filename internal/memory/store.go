// Package memory provides an in-memory store.Store for tests and local
// development. It can be seeded from a JSON file of loose transaction
// records so a dev instance starts with realistic data.
package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

type session struct {
	userID    string
	expiresAt time.Time
}

type userRecord struct {
	user         core.User
	passwordHash string
	settings     core.Settings
}

type Store struct {
	mu           sync.Mutex
	users        map[string]*userRecord // by user ID
	usersByEmail map[string]string      // email -> user ID
	collections  map[string]core.Collection
	transactions map[string]core.Transaction
	sessions     map[string]session
}

func New() *Store {
	return &Store{
		users:        map[string]*userRecord{},
		usersByEmail: map[string]string{},
		collections:  map[string]core.Collection{},
		transactions: map[string]core.Transaction{},
		sessions:     map[string]session{},
	}
}

// NewFromFiles builds a store seeded from seed_transactions.json under base,
// when present. Malformed records are degraded and logged, never dropped
// silently and never fatal.
func NewFromFiles(base string) *Store {
	s := New()
	path := filepath.Join(base, "seed_transactions.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var records []core.TransactionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		slog.Warn("Ignoring unreadable seed file", "path", path, "error", err)
		return s
	}
	for _, r := range records {
		t, warns := core.DecodeTransactionRecord(r)
		for _, w := range warns {
			slog.Warn("Seed record degraded", "detail", w.String())
		}
		if t.ID == "" || t.CollectionID == "" || t.UserID == "" {
			continue
		}
		s.transactions[t.ID] = t
		if _, ok := s.collections[t.CollectionID]; !ok {
			s.collections[t.CollectionID] = core.Collection{
				ID:     t.CollectionID,
				Name:   t.CollectionID,
				UserID: t.UserID,
			}
		}
	}
	return s
}

func (s *Store) ListTransactions(_ context.Context, userID, collectionID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID && t.CollectionID == collectionID {
			out = append(out, t)
		}
	}
	core.SortByTimestampDesc(out)
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.transactions[t.ID]
	if !ok || old.UserID != t.UserID {
		return store.ErrNotFound
	}
	t.CollectionID = old.CollectionID
	t.CreatedAt = old.CreatedAt
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListCollections(_ context.Context, userID string) ([]core.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Collection
	for _, c := range s.collections {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetCollection(_ context.Context, userID, id string) (core.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[id]
	if !ok || c.UserID != userID {
		return core.Collection{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCollection(_ context.Context, c core.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[c.ID] = c
	return nil
}

func (s *Store) RenameCollection(_ context.Context, userID, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[id]
	if !ok || c.UserID != userID {
		return store.ErrNotFound
	}
	c.Name = name
	c.UpdatedAt = time.Now().UTC()
	s.collections[id] = c
	return nil
}

func (s *Store) DeleteCollection(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[id]
	if !ok || c.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.collections, id)
	for txID, t := range s.transactions {
		if t.CollectionID == id {
			delete(s.transactions, txID)
		}
	}
	return nil
}

func (s *Store) GetSettings(_ context.Context, userID string) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.Settings{}, store.ErrNotFound
	}
	return u.settings, nil
}

func (s *Store) UpdateSettings(_ context.Context, userID string, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.settings = settings
	return nil
}

func (s *Store) CreateUser(_ context.Context, u core.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByEmail[u.Email]; ok {
		return store.ErrEmailTaken
	}
	s.users[u.ID] = &userRecord{
		user:         u,
		passwordHash: passwordHash,
		settings:     core.DefaultSettings(),
	}
	s.usersByEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return u.user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return core.User{}, "", store.ErrNotFound
	}
	u := s.users[id]
	return u.user, u.passwordHash, nil
}

func (s *Store) CreateSession(_ context.Context, token, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", time.Time{}, store.ErrNotFound
	}
	return sess.userID, sess.expiresAt, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var n int64
	for token, sess := range s.sessions {
		if sess.expiresAt.Before(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

var _ store.Store = (*Store)(nil)
