package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-portal-go/internal/domain/payroll"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database   DatabaseConfig
	App        AppConfig
	Attendance AttendanceConfig
	Payroll    PayrollConfig
	Jobs       JobsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AttendanceConfig holds the working-hours policy. All clock times are
// interpreted in Timezone.
type AttendanceConfig struct {
	Timezone             string
	WorkingHoursStart    string
	WorkingHoursEnd      string
	LateThresholdMinutes int
	WeekStart            string
}

type PayrollConfig struct {
	LatePenaltyPerDay decimal.Decimal
	CycleDay          int
}

type JobsConfig struct {
	DailyResetInterval   time.Duration
	LeaveRecalcInterval  time.Duration
	DisableScheduledJobs bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_portal"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// Attendance policy
	lateThreshold, err := strconv.Atoi(getEnv("LATE_THRESHOLD_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid LATE_THRESHOLD_MINUTES: %w", err)
	}

	config.Attendance = AttendanceConfig{
		Timezone:             getEnv("APP_TIMEZONE", "Asia/Kolkata"),
		WorkingHoursStart:    getEnv("WORKING_HOURS_START", "09:00"),
		WorkingHoursEnd:      getEnv("WORKING_HOURS_END", "18:00"),
		LateThresholdMinutes: lateThreshold,
		WeekStart:            strings.ToLower(getEnv("WEEK_START", "monday")),
	}

	// Payroll policy
	penalty, err := decimal.NewFromString(getEnv("LATE_PENALTY_PER_DAY", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid LATE_PENALTY_PER_DAY: %w", err)
	}
	cycleDay, err := strconv.Atoi(getEnv("PAYROLL_CYCLE_DAY", "23"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_CYCLE_DAY: %w", err)
	}

	config.Payroll = PayrollConfig{
		LatePenaltyPerDay: penalty,
		CycleDay:          cycleDay,
	}

	// Scheduled jobs
	resetInterval, err := time.ParseDuration(getEnv("DAILY_RESET_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_RESET_INTERVAL: %w", err)
	}
	recalcInterval, err := time.ParseDuration(getEnv("LEAVE_RECALC_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_RECALC_INTERVAL: %w", err)
	}

	config.Jobs = JobsConfig{
		DailyResetInterval:   resetInterval,
		LeaveRecalcInterval:  recalcInterval,
		DisableScheduledJobs: getEnv("DISABLE_SCHEDULED_JOBS", "false") == "true",
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q is not a known timezone: %w", c.Attendance.Timezone, err)
	}

	start, err := ParseClock(c.Attendance.WorkingHoursStart)
	if err != nil {
		return fmt.Errorf("invalid WORKING_HOURS_START: %w", err)
	}
	end, err := ParseClock(c.Attendance.WorkingHoursEnd)
	if err != nil {
		return fmt.Errorf("invalid WORKING_HOURS_END: %w", err)
	}
	if start >= end {
		return fmt.Errorf("WORKING_HOURS_START must be before WORKING_HOURS_END")
	}

	if c.Attendance.LateThresholdMinutes < 0 {
		return fmt.Errorf("LATE_THRESHOLD_MINUTES must not be negative")
	}
	if c.Attendance.WeekStart != "monday" && c.Attendance.WeekStart != "sunday" {
		return fmt.Errorf("WEEK_START must be monday or sunday")
	}
	if c.Payroll.LatePenaltyPerDay.IsNegative() {
		return fmt.Errorf("LATE_PENALTY_PER_DAY must not be negative")
	}
	if c.Payroll.CycleDay < 1 || c.Payroll.CycleDay > 28 {
		return fmt.Errorf("PAYROLL_CYCLE_DAY must be between 1 and 28")
	}
	if c.Jobs.DailyResetInterval <= 0 || c.Jobs.LeaveRecalcInterval <= 0 {
		return fmt.Errorf("job intervals must be positive")
	}
	return nil
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		slog.Warn("falling back to UTC", "timezone", c.Attendance.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// AttendancePolicy builds the working-hours policy. Call after Validate.
func (c *Config) AttendancePolicy() attendance.Policy {
	start, _ := ParseClock(c.Attendance.WorkingHoursStart)
	end, _ := ParseClock(c.Attendance.WorkingHoursEnd)
	weekStart := time.Monday
	if c.Attendance.WeekStart == "sunday" {
		weekStart = time.Sunday
	}
	return attendance.Policy{
		Location:      c.Location(),
		WorkStart:     start,
		WorkEnd:       end,
		LateThreshold: time.Duration(c.Attendance.LateThresholdMinutes) * time.Minute,
		WeekStart:     weekStart,
	}
}

// maxPayrollPeriodDays bounds custom payroll ranges to roughly two cycles.
const maxPayrollPeriodDays = 62

func (c *Config) PayrollPolicy() payroll.Policy {
	return payroll.Policy{
		CycleDay:      c.Payroll.CycleDay,
		LatePenalty:   c.Payroll.LatePenaltyPerDay,
		MaxPeriodDays: maxPayrollPeriodDays,
		Workday:       c.AttendancePolicy(),
	}
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseClock parses "HH:MM" into a duration since midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
