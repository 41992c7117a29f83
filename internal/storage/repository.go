package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/core"
	"github.com/Selvaganesh007/expense-tracker/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements store.Store on a local SQLite database.
// Timestamps are persisted as unix seconds in UTC.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `id, name, category, flow_type, amount_cents, transaction_mode, ts, collection_id, user_id, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
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

// ListTransactions implements store.TransactionReader. Results come back
// newest first; zero timestamps sort last.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID, collectionID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ? AND collection_id = ?
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

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`,
		id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Category, string(t.FlowType), t.Amount.Cents, t.Mode,
		toUnix(t.Timestamp), t.CollectionID, t.UserID, toUnix(t.CreatedAt), toUnix(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"collection_id", t.CollectionID,
		"flow_type", t.FlowType,
		"amount_cents", t.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET name = ?, category = ?, flow_type = ?, amount_cents = ?, transaction_mode = ?, ts = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Name, t.Category, string(t.FlowType), t.Amount.Cents, t.Mode,
		toUnix(t.Timestamp), toUnix(t.UpdatedAt), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListCollections(ctx context.Context, userID string) ([]core.Collection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, user_id, created_at, updated_at FROM collections
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
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

func (r *SQLiteRepository) GetCollection(ctx context.Context, userID, id string) (core.Collection, error) {
	var c core.Collection
	var createdAt, updatedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, user_id, created_at, updated_at FROM collections
		 WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&c.ID, &c.Name, &c.UserID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Collection{}, store.ErrNotFound
	}
	if err != nil {
		return core.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	c.CreatedAt = unixTime(createdAt)
	c.UpdatedAt = unixTime(updatedAt)
	return c, nil
}

func (r *SQLiteRepository) CreateCollection(ctx context.Context, c core.Collection) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO collections (id, name, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.UserID, toUnix(c.CreatedAt), toUnix(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RenameCollection(ctx context.Context, userID, id, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE collections SET name = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		name, time.Now().Unix(), id, userID)
	if err != nil {
		return fmt.Errorf("rename collection: %w", err)
	}
	return requireRow(res)
}

// DeleteCollection removes the collection and all of its transactions in one
// database transaction, so a delete can never orphan rows.
func (r *SQLiteRepository) DeleteCollection(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete collection: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE collection_id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete collection transactions: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM collections WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete collection: %w", err)
	}

	slog.InfoContext(ctx, "Collection deleted with its transactions", "id", id)
	return nil
}

func (r *SQLiteRepository) GetSettings(ctx context.Context, userID string) (core.Settings, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT settings FROM users WHERE id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, store.ErrNotFound
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	var s core.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		// A corrupt settings document should not lock the user out.
		slog.WarnContext(ctx, "Malformed settings document, using defaults", "user_id", userID, "error", err)
		return core.DefaultSettings(), nil
	}
	return s, nil
}

func (r *SQLiteRepository) UpdateSettings(ctx context.Context, userID string, s core.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET settings = ? WHERE id = ?`, string(raw), userID)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User, passwordHash string) error {
	settings, err := json.Marshal(core.DefaultSettings())
	if err != nil {
		return fmt.Errorf("marshal default settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, avatar_url, password_hash, settings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, u.AvatarURL, passwordHash, string(settings), toUnix(u.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	var u core.User
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, avatar_url, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = unixTime(createdAt)
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, string, error) {
	var u core.User
	var hash string
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, avatar_url, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &hash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, "", store.ErrNotFound
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("get user by email: %w", err)
	}
	u.CreatedAt = unixTime(createdAt)
	return u, hash, nil
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt.Unix())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, token string) (string, time.Time, error) {
	var userID string
	var expiresAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, store.ErrNotFound
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("get session: %w", err)
	}
	return userID, unixTime(expiresAt), nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired sessions rows affected: %w", err)
	}
	return n, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.Store = (*SQLiteRepository)(nil)
