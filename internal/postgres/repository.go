// Package postgres implements store.Store on a Postgres database via pgx,
// for deployments where the tracker is not the only tenant of the host.
// Schema mirrors the SQLite layout; timestamps are unix seconds in UTC.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/store"
)

type Repository struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    display_name  TEXT NOT NULL DEFAULT '',
    avatar_url    TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    settings      TEXT NOT NULL DEFAULT '{}',
    created_at    BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
    token      TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    expires_at BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS collections (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    category         TEXT NOT NULL,
    flow_type        TEXT NOT NULL CHECK (flow_type IN ('income', 'expense')),
    amount_cents     BIGINT NOT NULL CHECK (amount_cents >= 0),
    transaction_mode TEXT NOT NULL DEFAULT '',
    ts               BIGINT NOT NULL,
    collection_id    TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
    user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at       BIGINT NOT NULL,
    updated_at       BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_collection ON transactions(user_id, collection_id);
CREATE INDEX IF NOT EXISTS idx_collections_user_id ON collections(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func unixTime(secs int64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

const transactionColumns = `id, name, category, flow_type, amount_cents, transaction_mode, ts, collection_id, user_id, created_at, updated_at`

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var t core.Transaction
	var ts, createdAt, updatedAt int64
	err := row.Scan(&t.ID, &t.Name, &t.Category, (*string)(&t.FlowType), &t.Amount.Cents,
		&t.Mode, &ts, &t.CollectionID, &t.UserID, &createdAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Timestamp = unixTime(ts)
	t.CreatedAt = unixTime(createdAt)
	t.UpdatedAt = unixTime(updatedAt)
	return t, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID, collectionID string) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = $1 AND collection_id = $2
		 ORDER BY CASE WHEN ts = 0 THEN 1 ELSE 0 END, ts DESC, created_at DESC`,
		userID, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Name, t.Category, string(t.FlowType), t.Amount.Cents, t.Mode,
		toUnix(t.Timestamp), t.CollectionID, t.UserID, toUnix(t.CreatedAt), toUnix(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions
		 SET name = $1, category = $2, flow_type = $3, amount_cents = $4, transaction_mode = $5, ts = $6, updated_at = $7
		 WHERE id = $8 AND user_id = $9`,
		t.Name, t.Category, string(t.FlowType), t.Amount.Cents, t.Mode,
		toUnix(t.Timestamp), toUnix(t.UpdatedAt), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) ListCollections(ctx context.Context, userID string) ([]core.Collection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, user_id, created_at, updated_at FROM collections
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var cols []core.Collection
	for rows.Next() {
		var c core.Collection
		var createdAt, updatedAt int64
		if err := rows.Scan(&c.ID, &c.Name, &c.UserID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		c.CreatedAt = unixTime(createdAt)
		c.UpdatedAt = unixTime(updatedAt)
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return cols, nil
}

func (r *Repository) GetCollection(ctx context.Context, userID, id string) (core.Collection, error) {
	var c core.Collection
	var createdAt, updatedAt int64
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, user_id, created_at, updated_at FROM collections
		 WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&c.ID, &c.Name, &c.UserID, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Collection{}, store.ErrNotFound
	}
	if err != nil {
		return core.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	c.CreatedAt = unixTime(createdAt)
	c.UpdatedAt = unixTime(updatedAt)
	return c, nil
}

func (r *Repository) CreateCollection(ctx context.Context, c core.Collection) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO collections (id, name, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.UserID, toUnix(c.CreatedAt), toUnix(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

func (r *Repository) RenameCollection(ctx context.Context, userID, id, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE collections SET name = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
		name, time.Now().Unix(), id, userID)
	if err != nil {
		return fmt.Errorf("rename collection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCollection(ctx context.Context, userID, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete collection: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM transactions WHERE collection_id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("delete collection transactions: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM collections WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete collection: %w", err)
	}

	slog.InfoContext(ctx, "Collection deleted with its transactions", "id", id)
	return nil
}

func (r *Repository) GetSettings(ctx context.Context, userID string) (core.Settings, error) {
	var raw string
	err := r.pool.QueryRow(ctx,
		`SELECT settings FROM users WHERE id = $1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Settings{}, store.ErrNotFound
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	var s core.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		slog.WarnContext(ctx, "Malformed settings document, using defaults", "user_id", userID, "error", err)
		return core.DefaultSettings(), nil
	}
	return s, nil
}

func (r *Repository) UpdateSettings(ctx context.Context, userID string, s core.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET settings = $1 WHERE id = $2`, string(raw), userID)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, u core.User, passwordHash string) error {
	settings, err := json.Marshal(core.DefaultSettings())
	if err != nil {
		return fmt.Errorf("marshal default settings: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO users (id, email, display_name, avatar_url, password_hash, settings, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.DisplayName, u.AvatarURL, passwordHash, string(settings), toUnix(u.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return store.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (core.User, error) {
	var u core.User
	var createdAt int64
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, display_name, avatar_url, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = unixTime(createdAt)
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, string, error) {
	var u core.User
	var hash string
	var createdAt int64
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, display_name, avatar_url, password_hash, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &hash, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, "", store.ErrNotFound
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("get user by email: %w", err)
	}
	u.CreatedAt = unixTime(createdAt)
	return u, hash, nil
}

func (r *Repository) CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, expiresAt.Unix())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, token string) (string, time.Time, error) {
	var userID string
	var expiresAt int64
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token = $1`, token).
		Scan(&userID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", time.Time{}, store.ErrNotFound
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("get session: %w", err)
	}
	return userID, unixTime(expiresAt), nil
}

func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at < $1`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ store.Store = (*Repository)(nil)
