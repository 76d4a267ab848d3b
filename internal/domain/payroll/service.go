package payroll

import "context"

type PayrollService interface {
	// CalculatePayroll computes pay for every active employee over the requested period
	CalculatePayroll(ctx context.Context, req PayrollRequest) (PayrollResponse, error)

	// ExportPayroll renders the same computation as a CSV or XLSX download
	ExportPayroll(ctx context.Context, req PayrollRequest) (ExportFile, error)
}
