package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

// ListByEmployee implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT employee_id, leave_type, total, used, remaining
		FROM leave_balances
		WHERE employee_id = $1
		ORDER BY leave_type ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		var b leave.Balance
		if err := rows.Scan(&b.EmployeeID, &b.LeaveType, &b.Total, &b.Used, &b.Remaining); err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// GetForUpdate implements leave.BalanceRepository. Outside a transaction the
// row lock is released as soon as the statement finishes.
func (r *leaveBalanceRepositoryImpl) GetForUpdate(ctx context.Context, employeeID, leaveType string) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	var b leave.Balance
	err := q.QueryRow(ctx, `
		SELECT employee_id, leave_type, total, used, remaining
		FROM leave_balances
		WHERE employee_id = $1 AND leave_type = $2
		FOR UPDATE
	`, employeeID, leaveType).Scan(&b.EmployeeID, &b.LeaveType, &b.Total, &b.Used, &b.Remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	return b, nil
}

// Upsert implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Upsert(ctx context.Context, balance leave.Balance) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO leave_balances (employee_id, leave_type, total, used, remaining, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (employee_id, leave_type) DO UPDATE
		SET total = EXCLUDED.total,
			used = EXCLUDED.used,
			remaining = EXCLUDED.remaining,
			updated_at = NOW()
	`, balance.EmployeeID, balance.LeaveType, balance.Total, balance.Used, balance.Remaining)
	if err != nil {
		return fmt.Errorf("failed to save leave balance: %w", err)
	}
	return nil
}

// EnsureExists implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) EnsureExists(ctx context.Context, balance leave.Balance) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO leave_balances (employee_id, leave_type, total, used, remaining, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (employee_id, leave_type) DO NOTHING
	`, balance.EmployeeID, balance.LeaveType, balance.Total, balance.Used, balance.Remaining)
	if err != nil {
		return fmt.Errorf("failed to create leave balance: %w", err)
	}
	return nil
}
