package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-portal-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-portal-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-portal-go/internal/service/attendance"
	dashboardService "github.com/cmlabs-hris/hris-portal-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/hris-portal-go/internal/service/employee"
	holidayService "github.com/cmlabs-hris/hris-portal-go/internal/service/holiday"
	leaveService "github.com/cmlabs-hris/hris-portal-go/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-portal-go/internal/service/payroll"
)

const (
	appName    = "hris-portal"
	appVersion = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(
		slog.String("app", appName),
		slog.String("env", cfg.App.Env),
	))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	tx := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	clk := clock.New(cfg.Location())
	m := metrics.New()

	attendanceSvc := attendanceService.NewAttendanceService(
		tx,
		attendanceRepo,
		employeeRepo,
		leaveBalanceRepo,
		leaveRequestRepo,
		holidayRepo,
		cfg.AttendancePolicy(),
		clk,
		m,
	)
	leaveSvc := leaveService.NewLeaveService(tx, leaveTypeRepo, leaveBalanceRepo, leaveRequestRepo, employeeRepo, clk, m)
	employeeSvc := employeeService.NewEmployeeService(tx, employeeRepo, leaveTypeRepo, leaveBalanceRepo, clk)
	holidaySvc := holidayService.NewHolidayService(holidayRepo)
	payrollSvc := payrollService.NewPayrollService(employeeRepo, attendanceRepo, leaveRequestRepo, holidayRepo, cfg.PayrollPolicy(), clk, m)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, clk)

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		AppName:        appName,
		Version:        appVersion,
		Env:            cfg.App.Env,
		LogLevel:       cfg.SlogLevel(),
		AllowedOrigins: cfg.App.AllowedOrigins,
		Metrics:        m.Handler(),
	}, appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Holiday:    appHTTP.NewHolidayHandler(holidaySvc),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
		Admin:      appHTTP.NewAdminHandler(dashboardSvc, attendanceSvc, leaveSvc),
	})

	var scheduler *cron.Scheduler
	if !cfg.Jobs.DisableScheduledJobs {
		scheduler = cron.NewScheduler(m)
		cron.NewPortalJobs(attendanceSvc, leaveSvc).RegisterJobs(scheduler, cfg.Jobs.DailyResetInterval, cfg.Jobs.LeaveRecalcInterval)
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", cfg.Attendance.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server error", "error", err)
		}
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
