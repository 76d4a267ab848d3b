package leave

import "errors"

var (
	ErrLeaveRequestNotFound       = errors.New("leave request not found")
	ErrLeaveRequestAlreadyDecided = errors.New("leave request has already been decided")
	ErrInsufficientBalance        = errors.New("insufficient leave balance")
	ErrUsageExceedsTotal          = errors.New("approved leave exceeds the balance total")
	ErrOverlappingLeave           = errors.New("leave request overlaps an existing pending or approved request")
	ErrLeaveTypeNotFound          = errors.New("leave type not found")
	ErrLeaveTypeInactive          = errors.New("leave type is not active")
	ErrLeaveTypeExists            = errors.New("leave type code already exists")
	ErrBalanceNotFound            = errors.New("leave balance not found")
)
