package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrScanInProgress is returned by RunOnce while another scan is running
	ErrScanInProgress = errors.New("checkout alert scan already in progress")
)
