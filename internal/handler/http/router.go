package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions carries the process-level settings the router needs.
type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

type Handlers struct {
	Attendance AttendanceHandler
	Employee   EmployeeHandler
	Leave      LeaveHandler
	Holiday    HolidayHandler
	Payroll    PayrollHandler
	Admin      AdminHandler
}

func NewRouter(opts RouterOptions, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/attendance/{employeeID}", func(r chi.Router) {
			r.Post("/check-in", h.Attendance.CheckIn)
			r.Post("/check-out", h.Attendance.CheckOut)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.Employee.List)
			r.Post("/", h.Employee.Create)

			r.Route("/{employeeID}", func(r chi.Router) {
				r.Get("/", h.Employee.Get)
				r.Patch("/status", h.Employee.UpdateStatus)
				r.Get("/portal", h.Attendance.GetPortalData)
				r.Get("/attendance-details", h.Attendance.GetAttendanceDetails)
				r.Get("/leave-balances", h.Leave.GetBalances)
				r.Post("/leave-balances/recalculate", h.Leave.RecalculateBalances)
			})
		})

		r.Route("/leave-types", func(r chi.Router) {
			r.Get("/", h.Leave.ListTypes)
			r.Post("/", h.Leave.CreateType)
		})

		r.Route("/leave-requests", func(r chi.Router) {
			r.Get("/", h.Leave.ListRequests)
			r.Post("/", h.Leave.CreateRequest)
			r.Get("/{id}", h.Leave.GetRequest)
			r.Put("/{id}/decision", h.Leave.DecideRequest)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.Holiday.List)
			r.Post("/", h.Holiday.Create)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Get("/", h.Payroll.Calculate)
			r.Get("/export", h.Payroll.Export)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/dashboard", h.Admin.GetDashboard)
			r.Post("/attendance/daily-reset", h.Admin.DailyReset)
			r.Post("/attendance/force-reset", h.Admin.ForceReset)
			r.Post("/leave-balances/recalculate", h.Admin.RecalculateBalances)
		})
	})
	return r
}
