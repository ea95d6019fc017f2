package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"referral-miniapp-backend/internal/features/user/models"
	"referral-miniapp-backend/internal/features/user/repository"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY,
		username      TEXT    NOT NULL DEFAULT '',
		first_name    TEXT    NOT NULL DEFAULT '',
		last_name     TEXT    NOT NULL DEFAULT '',
		points        INTEGER NOT NULL DEFAULT 0,
		invited_by    TEXT    NOT NULL DEFAULT '',
		invited_by_id INTEGER NOT NULL DEFAULT 0,
		is_online     INTEGER NOT NULL DEFAULT 0,
		last_seen_at  TEXT    NOT NULL DEFAULT '',
		created_at    TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS invited_users (
		seq     INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id),
		handle  TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invited_users_user ON invited_users (user_id, seq)`,
	`CREATE TABLE IF NOT EXISTS claimed_tasks (
		user_id    INTEGER NOT NULL REFERENCES users (id),
		task_id    TEXT    NOT NULL,
		claimed_at TEXT    NOT NULL,
		PRIMARY KEY (user_id, task_id)
	)`,
	`CREATE TABLE IF NOT EXISTS payment_identifiers (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL REFERENCES users (id),
		value      TEXT    NOT NULL,
		created_at TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payout_requests (
		seq                INTEGER PRIMARY KEY AUTOINCREMENT,
		id                 TEXT    NOT NULL UNIQUE,
		user_id            INTEGER NOT NULL REFERENCES users (id),
		payment_identifier TEXT    NOT NULL,
		requested_at       TEXT    NOT NULL
	)`,
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository создает таблицы при необходимости. db должен быть ограничен одним
// соединением (см. platform/sqlite), иначе транзакции не сериализуются.
func NewUserRepository(ctx context.Context, db *sql.DB) (repository.UserRepository, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("migrate sqlite schema: %w", err)
		}
	}
	return &userRepository{db: db}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var (
		user              = &models.User{ID: id}
		isOnline          int64
		lastSeen, created string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT username, first_name, last_name, points, invited_by, invited_by_id, is_online, last_seen_at, created_at
		FROM users WHERE id = ?`, id).
		Scan(&user.Username, &user.FirstName, &user.LastName, &user.Points, &user.InvitedBy, &user.InvitedByID,
			&isOnline, &lastSeen, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	user.IsOnline = isOnline == 1
	user.LastSeenAt = parseTime(lastSeen)
	user.CreatedAt = parseTime(created)

	if user.InvitedUsers, err = r.queryStrings(ctx, `SELECT handle FROM invited_users WHERE user_id = ? ORDER BY seq`, id); err != nil {
		return nil, err
	}
	if user.ClaimedTaskIDs, err = r.queryStrings(ctx, `SELECT task_id FROM claimed_tasks WHERE user_id = ? ORDER BY task_id`, id); err != nil {
		return nil, err
	}
	if user.PaymentIdentifiers, err = r.queryStrings(ctx, `SELECT value FROM payment_identifiers WHERE user_id = ? ORDER BY seq`, id); err != nil {
		return nil, err
	}
	if user.PayoutRequests, err = r.payoutRequests(ctx, id); err != nil {
		return nil, err
	}

	return user, nil
}

// queryStrings читает строки полностью и закрывает курсор до следующего запроса:
// в пуле одно соединение.
func (r *userRepository) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *userRepository) payoutRequests(ctx context.Context, id int64) ([]models.PayoutRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, payment_identifier, requested_at FROM payout_requests WHERE user_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("list payout requests of user %d: %w", id, err)
	}
	defer rows.Close()

	requests := []models.PayoutRequest{}
	for rows.Next() {
		var (
			req         models.PayoutRequest
			requestedAt string
		)
		if err := rows.Scan(&req.ID, &req.PaymentIdentifier, &requestedAt); err != nil {
			return nil, err
		}
		req.RequestedAt = parseTime(requestedAt)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *userRepository) CreateWithReferral(ctx context.Context, user *models.User, inviterID int64, bonus int64) (bool, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, false, fmt.Errorf("begin create user %d: %w", user.ID, err)
	}
	defer tx.Rollback()

	linked := false
	if inviterID != 0 && inviterID != user.ID {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, inviterID).Scan(&exists)
		if err != nil {
			return false, false, fmt.Errorf("lookup inviter %d: %w", inviterID, err)
		}
		linked = exists > 0
	}

	invitedBy, invitedByID := "", int64(0)
	if linked {
		invitedBy, invitedByID = user.InvitedBy, user.InvitedByID
	}

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO users (id, username, first_name, last_name, points, invited_by, invited_by_id, is_online, last_seen_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.FirstName, user.LastName, user.Points, invitedBy, invitedByID,
		boolToInt(user.IsOnline), formatTime(user.LastSeenAt), formatTime(user.CreatedAt))
	if err != nil {
		return false, false, fmt.Errorf("insert user %d: %w", user.ID, err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, false, err
	}

	if linked {
		if _, err := tx.ExecContext(ctx, `INSERT INTO invited_users (user_id, handle) VALUES (?, ?)`, inviterID, user.Handle()); err != nil {
			return false, false, fmt.Errorf("append invite to %d: %w", inviterID, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET points = points + ? WHERE id = ?`, bonus, inviterID); err != nil {
			return false, false, fmt.Errorf("credit inviter %d: %w", inviterID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, false, fmt.Errorf("commit create user %d: %w", user.ID, err)
	}
	return true, linked, nil
}

func (r *userRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_online = 1, last_seen_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("touch user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) ClaimTask(ctx context.Context, id int64, grant models.TaskGrant, at time.Time) (models.ClaimResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ClaimResult{}, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback()

	var result models.ClaimResult
	err = tx.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ?`, id).Scan(&result.Points)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ClaimResult{}, repository.ErrNotFound
	}
	if err != nil {
		return models.ClaimResult{}, fmt.Errorf("read balance of user %d: %w", id, err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM invited_users WHERE user_id = ?`, id).Scan(&result.InviteCount); err != nil {
		return models.ClaimResult{}, fmt.Errorf("count invites of user %d: %w", id, err)
	}

	var claimed int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM claimed_tasks WHERE user_id = ? AND task_id = ?`, id, grant.TaskID).Scan(&claimed)
	if err != nil {
		return models.ClaimResult{}, fmt.Errorf("check claimed task %s: %w", grant.TaskID, err)
	}
	if claimed > 0 {
		result.Outcome = models.ClaimAlreadyDone
		return result, nil
	}
	if result.InviteCount < grant.RequiredInvites {
		result.Outcome = models.ClaimNotEligible
		return result, nil
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO claimed_tasks (user_id, task_id, claimed_at) VALUES (?, ?, ?)`,
		id, grant.TaskID, formatTime(at)); err != nil {
		return models.ClaimResult{}, fmt.Errorf("mark task %s claimed: %w", grant.TaskID, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET points = points + ? WHERE id = ?`, grant.Reward, id); err != nil {
		return models.ClaimResult{}, fmt.Errorf("credit reward for %s: %w", grant.TaskID, err)
	}

	if err := tx.Commit(); err != nil {
		return models.ClaimResult{}, fmt.Errorf("commit claim: %w", err)
	}
	result.Points += grant.Reward
	result.Outcome = models.ClaimDone
	return result, nil
}

func (r *userRepository) AppendPaymentIdentifier(ctx context.Context, id int64, paymentID string) ([]string, error) {
	if err := r.appendRows(ctx, id, identifierRow(id, paymentID)); err != nil {
		return nil, err
	}
	return r.queryStrings(ctx, `SELECT value FROM payment_identifiers WHERE user_id = ? ORDER BY seq`, id)
}

func (r *userRepository) AppendPayoutRequest(ctx context.Context, id int64, req models.PayoutRequest, saveIdentifier bool) (int, error) {
	rows := make([]row, 0, 2)
	if saveIdentifier {
		rows = append(rows, identifierRow(id, req.PaymentIdentifier))
	}
	rows = append(rows, row{
		query: `INSERT INTO payout_requests (id, user_id, payment_identifier, requested_at) VALUES (?, ?, ?, ?)`,
		args:  []interface{}{req.ID, id, req.PaymentIdentifier, formatTime(req.RequestedAt)},
	})
	if err := r.appendRows(ctx, id, rows...); err != nil {
		return 0, err
	}

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payout_requests WHERE user_id = ?`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count payout requests of user %d: %w", id, err)
	}
	return n, nil
}

type row struct {
	query string
	args  []interface{}
}

func identifierRow(id int64, paymentID string) row {
	return row{
		query: `INSERT INTO payment_identifiers (user_id, value, created_at) VALUES (?, ?, ?)`,
		args:  []interface{}{id, paymentID, formatTime(time.Now())},
	}
}

// appendRows добавляет строки одной транзакцией, только если пользователь существует
func (r *userRepository) appendRows(ctx context.Context, id int64, rows ...row) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("lookup user %d: %w", id, err)
	}
	if exists == 0 {
		return repository.ErrNotFound
	}
	for _, rw := range rows {
		if _, err := tx.ExecContext(ctx, rw.query, rw.args...); err != nil {
			return fmt.Errorf("append for user %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *userRepository) Close() error {
	return r.db.Close()
}
