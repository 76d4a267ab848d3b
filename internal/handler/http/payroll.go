package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-portal-go/internal/handler/http/response"
)

type PayrollHandler interface {
	Calculate(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

func payrollRequestFromQuery(r *http.Request) payroll.PayrollRequest {
	q := r.URL.Query()
	return payroll.PayrollRequest{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Format:    q.Get("format"),
	}
}

// Calculate handles GET /payroll?start_date=&end_date=
func (h *payrollHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.CalculatePayroll(r.Context(), payrollRequestFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export handles GET /payroll/export?start_date=&end_date=&format=csv|xlsx
func (h *payrollHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	file, err := h.payrollService.ExportPayroll(r.Context(), payrollRequestFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}
