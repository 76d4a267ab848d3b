package dashboard

// DashboardResponse is the admin overview for the current business day
type DashboardResponse struct {
	Date                 string                    `json:"date"`
	EmployeeSummary      EmployeeSummaryResponse   `json:"employee_summary"`
	AttendanceStats      AttendanceStatsResponse   `json:"attendance_stats"`
	Departments          []DepartmentStatsResponse `json:"departments"`
	PendingLeaveRequests int64                     `json:"pending_leave_requests"`
}

type EmployeeSummaryResponse struct {
	TotalEmployee    int64 `json:"total_employee"`
	ActiveEmployee   int64 `json:"active_employee"`
	InactiveEmployee int64 `json:"inactive_employee"`
	OnLeaveEmployee  int64 `json:"on_leave_employee"`
}

// AttendanceStatsResponse counts today's state of active employees
type AttendanceStatsResponse struct {
	Present        int64   `json:"present"`
	Late           int64   `json:"late"`
	Absent         int64   `json:"absent"`
	OnLeave        int64   `json:"on_leave"`
	CheckedOut     int64   `json:"checked_out"`
	Total          int64   `json:"total"`
	PresentPercent float64 `json:"present_percent"`
	LatePercent    float64 `json:"late_percent"`
	AbsentPercent  float64 `json:"absent_percent"`
}

type DepartmentStatsResponse struct {
	Department string `json:"department"`
	Employees  int64  `json:"employees"`
	CheckedIn  int64  `json:"checked_in"`
}
