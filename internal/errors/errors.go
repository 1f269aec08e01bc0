package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrNoAuthHeader = &AppError{Code: "AUTH_001", Message: "no authorization header"}
	ErrInvalidToken = &AppError{Code: "AUTH_002", Message: "invalid token"}
	ErrForbidden    = &AppError{Code: "AUTH_003", Message: "forbidden"}

	ErrInvalidMetrics = &AppError{Code: "VALID_001", Message: "invalid metrics data"}
	ErrMissingUser    = &AppError{Code: "VALID_002", Message: "missing user identity"}
	ErrInvalidWindow  = &AppError{Code: "VALID_003", Message: "invalid report window"}
	ErrInvalidGoal    = &AppError{Code: "VALID_004", Message: "invalid goal data"}

	ErrCompletionUnavailable = &AppError{Code: "LLM_001", Message: "completion service unavailable"}
	ErrRateLimited           = &AppError{Code: "LLM_002", Message: "rate limit exceeded"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
