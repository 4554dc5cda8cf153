package server

import (
	"errors"
	"log/slog"

	"github.com/localrivet/leaveoff/internal/errortypes"
	"github.com/localrivet/leaveoff/internal/tools"
)

// Envelope error codes
const (
	StatusCodeValidationError = "VALIDATION_ERROR"
	StatusCodeNotFound        = "NOT_FOUND"
	StatusCodeIOError         = "IO_ERROR"
	StatusCodeConfigError     = "CONFIG_ERROR"
	StatusCodeInternalError   = "INTERNAL_ERROR"
)

// errorCode maps an error to its envelope code.
func errorCode(err error) string {
	switch errortypes.TypeOf(err) {
	case errortypes.ErrorTypeValidation:
		return StatusCodeValidationError
	case errortypes.ErrorTypeNotFound:
		return StatusCodeNotFound
	case errortypes.ErrorTypeIO:
		return StatusCodeIOError
	case errortypes.ErrorTypeConfig:
		return StatusCodeConfigError
	default:
		if errors.Is(err, errortypes.ErrNotFound) {
			return StatusCodeNotFound
		}
		return StatusCodeInternalError
	}
}

// errorMessage returns the human-readable message for err. Not-found errors
// report only their message so the resolved file path never leaks.
func errorMessage(err error) string {
	var appErr *errortypes.AppError
	if errors.As(err, &appErr) && appErr.Type == errortypes.ErrorTypeNotFound && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// Failure is the single mapping from an error to a failed envelope. Every
// tool handler routes its failures through here.
func Failure(logger *slog.Logger, tool string, err error) tools.Result {
	if logger == nil {
		logger = slog.Default()
	}

	switch errortypes.TypeOf(err) {
	case errortypes.ErrorTypeValidation, errortypes.ErrorTypeNotFound:
		logger.Warn("Tool call rejected", "tool", tool, "error", err)
	default:
		errortypes.LogError(logger.With("tool", tool), err)
	}

	result := tools.Failure(errorMessage(err))
	result.Code = errorCode(err)
	return result
}
