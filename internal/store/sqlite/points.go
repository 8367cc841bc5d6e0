package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/habitloop/habitloop-server/internal/domain"
)

// Award applies a points delta to a user's account and records a ledger
// entry, all inside one transaction. The balance arithmetic happens in SQL so
// concurrent awards serialize on the row instead of racing through a
// read-modify-write in Go. Balances clamp at zero; they never go negative.
//
// Weekly and monthly counters roll over lazily: if the stored period start no
// longer matches now's period, the counter is zeroed before the delta lands.
func (s *Store) Award(ctx context.Context, userID string, delta int64, reason domain.AwardReason, now time.Time) (*domain.PointsAccount, error) {
	weekStart := domain.DateKey(domain.StartOfWeek(now))
	monthStart := domain.DateKey(domain.StartOfMonth(now))
	nowStr := formatTime(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin award tx: %w", err)
	}
	defer tx.Rollback()

	// Ensure the account row exists.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO points_accounts (user_id, week_start, month_start, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, weekStart, monthStart, nowStr,
	); err != nil {
		return nil, fmt.Errorf("ensure points account: %w", err)
	}

	// Roll stale period counters forward before applying the delta.
	if _, err := tx.ExecContext(ctx, `
		UPDATE points_accounts SET weekly_points = 0, week_start = ?
		WHERE user_id = ? AND week_start <> ?`,
		weekStart, userID, weekStart,
	); err != nil {
		return nil, fmt.Errorf("roll weekly counter: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE points_accounts SET monthly_points = 0, month_start = ?
		WHERE user_id = ? AND month_start <> ?`,
		monthStart, userID, monthStart,
	); err != nil {
		return nil, fmt.Errorf("roll monthly counter: %w", err)
	}

	// Apply the delta atomically. SET clauses read pre-update values, so the
	// level derives from the new total in the same statement.
	if _, err := tx.ExecContext(ctx, `
		UPDATE points_accounts SET
			total_points   = MAX(0, total_points + ?1),
			weekly_points  = MAX(0, weekly_points + ?1),
			monthly_points = MAX(0, monthly_points + ?1),
			level          = MAX(0, total_points + ?1) / ?2,
			updated_at     = ?3
		WHERE user_id = ?4`,
		delta, int64(domain.PointsPerLevel), nowStr, userID,
	); err != nil {
		return nil, fmt.Errorf("apply points delta: %w", err)
	}

	// Append the ledger entry.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO points_entries (user_id, delta, reason, created_at)
		VALUES (?, ?, ?, ?)`,
		userID, delta, string(reason), nowStr,
	); err != nil {
		return nil, fmt.Errorf("insert points entry: %w", err)
	}

	account, err := scanAccount(tx.QueryRowContext(ctx, `
		SELECT user_id, total_points, weekly_points, monthly_points, level,
			week_start, month_start, updated_at
		FROM points_accounts WHERE user_id = ?`, userID))
	if err != nil {
		return nil, fmt.Errorf("read points account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit award tx: %w", err)
	}

	return account, nil
}

// GetAccount retrieves a user's points account.
// Returns nil, nil if the user has never earned points.
func (s *Store) GetAccount(ctx context.Context, userID string) (*domain.PointsAccount, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, `
		SELECT user_id, total_points, weekly_points, monthly_points, level,
			week_start, month_start, updated_at
		FROM points_accounts WHERE user_id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetAllAccounts retrieves all points accounts. Used for leaderboard ranking.
func (s *Store) GetAllAccounts(ctx context.Context) ([]*domain.PointsAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, total_points, weekly_points, monthly_points, level,
			week_start, month_start, updated_at
		FROM points_accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.PointsAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// SumEarnedSince sums the positive ledger deltas for a user from since
// (inclusive) to until (exclusive). Spent or revoked points don't reduce the
// sum; the earn_points challenge goal only counts what was earned.
func (s *Store) SumEarnedSince(ctx context.Context, userID string, since, until time.Time) (int64, error) {
	var sum int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(delta), 0) FROM points_entries
		WHERE user_id = ? AND delta > 0 AND created_at >= ? AND created_at < ?`,
		userID, formatTime(since), formatTime(until),
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum earned points: %w", err)
	}
	return sum, nil
}

// ListEntries returns a user's most recent ledger entries, newest first.
func (s *Store) ListEntries(ctx context.Context, userID string, limit int) ([]*domain.PointsEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, delta, reason, created_at FROM points_entries
		WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.PointsEntry
	for rows.Next() {
		var entry domain.PointsEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Delta, &entry.Reason, &createdAt); err != nil {
			return nil, err
		}
		entry.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.PointsAccount, error) {
	var account domain.PointsAccount
	var updatedAt string

	if err := row.Scan(
		&account.UserID,
		&account.TotalPoints,
		&account.WeeklyPoints,
		&account.MonthlyPoints,
		&account.Level,
		&account.WeekStart,
		&account.MonthStart,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	account.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &account, nil
}
