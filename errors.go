// errors.go: structured error handling for the synchrobench harness.
//
// Per §7 of the design, no engine's internal CAS/lock retry ever escapes
// as an error — every Set method is infallible. These errors cover the
// layer above the engines: harness-level construction and CLI failures,
// using the same go-errors conventions (and BALIOS_-style prefix renamed
// to SYNCHROBENCH_*) the teacher uses for its own cache-level errors.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package synchrobench

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for synchrobench harness operations.
const (
	// Configuration errors (1xxx)
	ErrCodeInvalidConfig  errors.ErrorCode = "SYNCHROBENCH_INVALID_CONFIG"
	ErrCodeUnknownEngine  errors.ErrorCode = "SYNCHROBENCH_UNKNOWN_ENGINE"
	ErrCodeInvalidFlag    errors.ErrorCode = "SYNCHROBENCH_INVALID_FLAG"
	ErrCodeInvalidKeyRange errors.ErrorCode = "SYNCHROBENCH_INVALID_KEY_RANGE"

	// Background-thread errors (2xxx)
	ErrCodeBackgroundAlreadyRunning errors.ErrorCode = "SYNCHROBENCH_BACKGROUND_ALREADY_RUNNING"
	ErrCodeBackgroundNotRunning     errors.ErrorCode = "SYNCHROBENCH_BACKGROUND_NOT_RUNNING"
	ErrCodeHotTuningFailed          errors.ErrorCode = "SYNCHROBENCH_HOT_TUNING_FAILED"

	// Harness/workload errors (3xxx)
	ErrCodeWorkerSpawnFailed errors.ErrorCode = "SYNCHROBENCH_WORKER_SPAWN_FAILED"
	ErrCodeAllocationFailed  errors.ErrorCode = "SYNCHROBENCH_ALLOCATION_FAILED"

	// Internal errors (5xxx)
	ErrCodeInternalError  errors.ErrorCode = "SYNCHROBENCH_INTERNAL_ERROR"
	ErrCodePanicRecovered errors.ErrorCode = "SYNCHROBENCH_PANIC_RECOVERED"
)

const (
	msgInvalidConfig    = "invalid harness configuration"
	msgUnknownEngine    = "unknown engine name"
	msgInvalidFlag      = "invalid command-line flag value"
	msgInvalidKeyRange  = "invalid key range: must be greater than 0"

	msgBackgroundAlreadyRunning = "maintenance thread is already running"
	msgBackgroundNotRunning     = "maintenance thread is not running"
	msgHotTuningFailed          = "failed to apply hot-reloaded tuning parameters"

	msgWorkerSpawnFailed = "failed to spawn workload worker goroutine"
	msgAllocationFailed  = "allocation failed"

	msgInternalError  = "internal harness error"
	msgPanicRecovered = "panic recovered in harness operation"
)

// =============================================================================
// CONFIGURATION ERRORS
// =============================================================================

// NewErrUnknownEngine creates an error for an unrecognized engine name.
func NewErrUnknownEngine(name string, known []string) error {
	return errors.NewWithContext(ErrCodeUnknownEngine, msgUnknownEngine, map[string]interface{}{
		"requested": name,
		"known":     known,
	})
}

// NewErrInvalidFlag creates an error for a malformed CLI flag value.
func NewErrInvalidFlag(flag string, value string) error {
	return errors.NewWithContext(ErrCodeInvalidFlag, msgInvalidFlag, map[string]interface{}{
		"flag":  flag,
		"value": value,
	})
}

// NewErrInvalidKeyRange creates an error for a non-positive key range.
func NewErrInvalidKeyRange(r int) error {
	return errors.NewWithField(ErrCodeInvalidKeyRange, msgInvalidKeyRange, "provided_range", r)
}

// =============================================================================
// BACKGROUND-THREAD ERRORS
// =============================================================================

// NewErrBackgroundAlreadyRunning creates an error for a redundant Start call
// made through an API that (unlike Thread.Start) chooses not to treat it as
// a no-op.
func NewErrBackgroundAlreadyRunning(engine string) error {
	return errors.NewWithField(ErrCodeBackgroundAlreadyRunning, msgBackgroundAlreadyRunning, "engine", engine)
}

// NewErrBackgroundNotRunning creates an error for a Retune/Stop call made
// through an API that chooses not to treat it as a no-op.
func NewErrBackgroundNotRunning(engine string) error {
	return errors.NewWithField(ErrCodeBackgroundNotRunning, msgBackgroundNotRunning, "engine", engine)
}

// NewErrHotTuningFailed creates an error when a maintenance.HotTuning watch
// fails to apply a reloaded config.
func NewErrHotTuningFailed(path string, cause error) error {
	return errors.Wrap(cause, ErrCodeHotTuningFailed, msgHotTuningFailed).
		WithContext("path", path)
}

// =============================================================================
// HARNESS ERRORS
// =============================================================================

// NewErrWorkerSpawnFailed creates a fatal error when a workload worker
// goroutine cannot be started. Per §6.4 this is the one case the CLI
// harness exits nonzero for.
func NewErrWorkerSpawnFailed(index int, cause error) error {
	return errors.Wrap(cause, ErrCodeWorkerSpawnFailed, msgWorkerSpawnFailed).
		WithContext("worker_index", index).
		WithSeverity("critical")
}

// NewErrAllocationFailed creates a fatal error mirroring the teacher's
// "OOM is fatal" policy: the only other case §6.4 exits nonzero for.
func NewErrAllocationFailed(cause error) error {
	return errors.Wrap(cause, ErrCodeAllocationFailed, msgAllocationFailed).
		WithSeverity("critical")
}

// =============================================================================
// INTERNAL ERRORS
// =============================================================================

// NewErrInternal creates a generic internal error.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// NewErrPanicRecovered creates an error when a panic is recovered.
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsUnknownEngine checks if an error is an unknown-engine error.
func IsUnknownEngine(err error) bool {
	return errors.HasCode(err, ErrCodeUnknownEngine)
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeInvalidConfig || code == ErrCodeUnknownEngine ||
			code == ErrCodeInvalidFlag || code == ErrCodeInvalidKeyRange
	}
	return false
}

// IsBackgroundError checks if an error concerns the maintenance thread.
func IsBackgroundError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeBackgroundAlreadyRunning || code == ErrCodeBackgroundNotRunning ||
			code == ErrCodeHotTuningFailed
	}
	return false
}

// IsFatal checks if an error is one of the two cases §6.4 treats as a
// nonzero harness exit code: allocation failure or worker-spawn failure.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeAllocationFailed || code == ErrCodeWorkerSpawnFailed
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var synchrobenchErr *errors.Error
	if goerrors.As(err, &synchrobenchErr) {
		return synchrobenchErr.Context
	}
	return nil
}
