package engine

import (
	"errors"
	"fmt"
)

// Sentinel failures of the check and manual operations.
var (
	ErrFetchFailed   = errors.New("failed to fetch latest release")
	ErrTriggerFailed = errors.New("deployment trigger failed")
)

// StoreError reports a failed state store operation.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
