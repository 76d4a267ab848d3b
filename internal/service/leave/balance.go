package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/leave"
)

// GetBalances implements leave.LeaveService.
func (s *LeaveServiceImpl) GetBalances(ctx context.Context, employeeID string) (map[string]leave.BalanceEntry, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	balances, err := s.balanceRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return leave.ToBalanceMap(balances), nil
}

// Recalculate implements leave.LeaveService.
func (s *LeaveServiceImpl) Recalculate(ctx context.Context, employeeID string) (leave.RecalculationSummary, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return leave.RecalculationSummary{}, err
	}

	summary := leave.RecalculationSummary{Errors: []leave.BucketError{}}
	if err := s.recalculateEmployee(ctx, employeeID, &summary); err != nil {
		return summary, err
	}

	slog.Info("leave balances recalculated",
		"employee_id", employeeID,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// RecalculateAll implements leave.LeaveService.
func (s *LeaveServiceImpl) RecalculateAll(ctx context.Context) (leave.RecalculationSummary, error) {
	summary := leave.RecalculationSummary{Errors: []leave.BucketError{}}

	ids, err := s.employeeRepo.ListIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list employees for recalculation: %w", err)
	}

	slog.Info("leave balance recalculation started", "employees", len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := s.recalculateEmployee(ctx, id, &summary); err != nil {
			summary.Processed++
			summary.Failed++
			summary.Errors = append(summary.Errors, leave.BucketError{EmployeeID: id, Error: err.Error()})
			s.metrics.LeaveRecalc.WithLabelValues("failed").Inc()
			slog.Error("leave balance recalculation failed", "employee_id", id, "error", err)
		}
	}

	slog.Info("leave balance recalculation finished",
		"processed", summary.Processed,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// recalculateEmployee resyncs every bucket the employee has or has approved
// leave in. Bucket failures are recorded in summary; the returned error is
// reserved for failures that stop the whole employee.
func (s *LeaveServiceImpl) recalculateEmployee(ctx context.Context, employeeID string, summary *leave.RecalculationSummary) error {
	balances, err := s.balanceRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	used, err := s.requestRepo.ApprovedDaysByType(ctx, employeeID)
	if err != nil {
		return err
	}

	types := make(map[string]struct{}, len(balances)+len(used))
	for _, b := range balances {
		types[b.LeaveType] = struct{}{}
	}
	for code := range used {
		types[code] = struct{}{}
	}
	codes := make([]string, 0, len(types))
	for code := range types {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		summary.Processed++

		changed, err := s.recalculateBucket(ctx, employeeID, code)
		switch {
		case err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, leave.BucketError{
				EmployeeID: employeeID,
				LeaveType:  code,
				Error:      err.Error(),
			})
			s.metrics.LeaveRecalc.WithLabelValues("failed").Inc()
			slog.Error("leave bucket recalculation failed", "employee_id", employeeID, "leave_type", code, "error", err)
		case changed:
			summary.Updated++
			s.metrics.LeaveRecalc.WithLabelValues("updated").Inc()
		default:
			summary.Skipped++
			s.metrics.LeaveRecalc.WithLabelValues("skipped").Inc()
		}
	}
	return nil
}

// recalculateBucket locks one bucket and sums approved usage under the lock so
// that a concurrent approval cannot be lost.
func (s *LeaveServiceImpl) recalculateBucket(ctx context.Context, employeeID, leaveType string) (bool, error) {
	var changed bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		balance, err := s.lockBalance(ctx, employeeID, leaveType)
		if err != nil {
			if errors.Is(err, leave.ErrLeaveTypeNotFound) {
				return fmt.Errorf("approved leave references unknown type %q: %w", leaveType, err)
			}
			return err
		}

		used, err := s.requestRepo.ApprovedDaysByType(ctx, employeeID)
		if err != nil {
			return err
		}

		next, err := balance.WithUsed(used[leaveType])
		if err != nil {
			return fmt.Errorf("%w: approved %d of %d days", err, used[leaveType], balance.Total)
		}
		if next == balance {
			return nil
		}

		changed = true
		return s.balanceRepo.Upsert(ctx, next)
	})
	return changed, err
}
