package payroll

import "errors"

var (
	ErrInvalidPeriod     = errors.New("invalid payroll period")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
