package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/chat"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/risk"
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "validation"
	CategoryComputation  ErrorCategory = "computation"
	CategoryUnauthorized ErrorCategory = "unauthorized"
	CategoryTimeout      ErrorCategory = "timeout"
	CategoryRateLimit    ErrorCategory = "rate_limit"
	CategoryUnavailable  ErrorCategory = "unavailable"
	CategoryInternal     ErrorCategory = "internal"
)

// AppError wraps an errbuilder error with the context needed to answer an HTTP request
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory
	Code       string
	HTTPStatus int
	Timestamp  time.Time
	RequestID  string
	Fields     map[string]string
	StackTrace string
}

// Response is the JSON body sent for an AppError
type Response struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Category  ErrorCategory     `json:"category"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// Response renders the error for the client. Stack traces never leave the process.
func (e *AppError) Response() Response {
	return Response{
		Error:     e.ErrBuilder.Msg,
		Code:      e.Code,
		Category:  e.Category,
		Details:   e.Fields,
		RequestID: e.RequestID,
		Timestamp: e.Timestamp,
	}
}

// NewAppError creates an AppError from errbuilder with additional context
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, code string, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		Code:       code,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

func decorate(builder *errbuilder.ErrBuilder, msg string, cause error, fields map[string]string) *errbuilder.ErrBuilder {
	builder = builder.WithMsg(msg)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	if len(fields) > 0 {
		errorMap := errbuilder.ErrorMap{}
		for key, value := range fields {
			errorMap.Set(key, errors.New(value))
		}
		builder = builder.WithDetails(errbuilder.NewErrDetails(errorMap))
	}

	return builder
}

func withFields(appErr *AppError, fields map[string]string) *AppError {
	if len(fields) > 0 {
		appErr.Fields = fields
	}
	return appErr
}

// NewValidationError creates a validation error. fields maps input names to problems.
func NewValidationError(code, message string, fields map[string]string, cause error) *AppError {
	builder := decorate(errbuilder.New().WithCode(errbuilder.CodeInvalidArgument), message, cause, fields)
	return withFields(NewAppError(builder, CategoryValidation, code, http.StatusBadRequest), fields)
}

// NewComputationError reports inputs that were well-formed but produced no usable result.
func NewComputationError(code, message string, cause error) *AppError {
	builder := decorate(errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition), message, cause, nil)
	return NewAppError(builder, CategoryComputation, code, http.StatusUnprocessableEntity)
}

// NewUnauthorizedError creates an authentication error
func NewUnauthorizedError(message string, cause error) *AppError {
	builder := decorate(errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition), message, cause, nil)
	return NewAppError(builder, CategoryUnauthorized, "unauthorized", http.StatusUnauthorized)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(message string, cause error) *AppError {
	builder := decorate(errbuilder.New().WithCode(errbuilder.CodeDeadlineExceeded), message, cause, nil)
	return NewAppError(builder, CategoryTimeout, "timeout", http.StatusGatewayTimeout)
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(retryAfter string) *AppError {
	fields := map[string]string{"retry_after": retryAfter}
	builder := decorate(errbuilder.New().WithCode(errbuilder.CodeResourceExhausted), "Rate limit exceeded", nil, fields)
	return withFields(NewAppError(builder, CategoryRateLimit, "rate_limit_exceeded", http.StatusTooManyRequests), fields)
}

// NewUnavailableError reports a backing dependency that cannot serve the request
func NewUnavailableError(dependency string, cause error) *AppError {
	fields := map[string]string{"dependency": dependency}
	builder := decorate(errbuilder.New().WithCode(errbuilder.CodeUnavailable), dependency+" unavailable", cause, fields)
	return withFields(NewAppError(builder, CategoryUnavailable, "unavailable", http.StatusServiceUnavailable), fields)
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	builder := decorate(errbuilder.New().WithCode(errbuilder.CodeInternal), "Internal server error", cause,
		map[string]string{"internal_details": message})

	appErr := NewAppError(builder, CategoryInternal, "internal_error", http.StatusInternalServerError)

	// Capture stack trace in development/debug mode
	if gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode {
		appErr.StackTrace = captureStackTrace()
	}

	return appErr
}

// FromRiskError maps calculation failures onto client-facing errors
func FromRiskError(err error) *AppError {
	fields := map[string]string{}
	var fe *risk.FieldError
	if errors.As(err, &fe) {
		fields[fe.Field] = fe.Err.Error()
	}

	code := risk.Outcome(err)
	switch {
	case errors.Is(err, risk.ErrMissingInput):
		return NewValidationError(code, "All numeric fields must be filled with numbers", fields, err)
	case errors.Is(err, risk.ErrNonPositiveInput):
		return NewValidationError(code, "Numeric fields must be greater than zero", fields, err)
	case errors.Is(err, risk.ErrUnsupportedProfile):
		return NewValidationError(code, "Unsupported sex/race combination", fields, err)
	case errors.Is(err, risk.ErrInvalidResult):
		return NewComputationError(code, "Inputs do not produce a valid risk estimate", err)
	}
	return ToAppError(err)
}

// FromChatError maps chat failures onto client-facing errors
func FromChatError(err error) *AppError {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return NewValidationError("empty_message", "Message text is required", nil, err)
	case errors.Is(err, chat.ErrMessageTooLong):
		return NewValidationError("message_too_long", "Message text is too long", nil, err)
	case errors.Is(err, chat.ErrInvalidSession):
		return NewUnauthorizedError("Invalid or expired chat session", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ToAppError(err)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	// anything else came from the message store
	return NewUnavailableError("chat_store", err)
}

// captureStackTrace captures a stack trace for debugging
func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// ErrorHandler is a Gin middleware that provides centralized error handling
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := ToAppError(c.Errors.Last().Err)
		if appErr.RequestID == "" {
			appErr.RequestID = c.GetString("request_id")
		}

		LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr.Response())
	}
}

// RecoveryHandler provides panic recovery with structured error responses
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		appErr := NewInternalError(
			fmt.Sprintf("Panic recovered: %v", recovered),
			fmt.Errorf("%v", recovered),
		)
		appErr.StackTrace = captureStackTrace()
		appErr.RequestID = c.GetString("request_id")

		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
	})
}

// ToAppError converts any error to an AppError
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, risk.ErrMissingInput),
		errors.Is(err, risk.ErrNonPositiveInput),
		errors.Is(err, risk.ErrUnsupportedProfile),
		errors.Is(err, risk.ErrInvalidResult):
		return FromRiskError(err)
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrMessageTooLong),
		errors.Is(err, chat.ErrInvalidSession):
		return FromChatError(err)
	case errors.Is(err, context.Canceled):
		return NewTimeoutError("Request cancelled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError("Request deadline exceeded", err)
	}

	return NewInternalError("An unexpected error occurred", err)
}

// LogError logs an error with appropriate level and context
func LogError(c *gin.Context, err *AppError) {
	logEntry := slog.With(
		"error_category", err.Category,
		"error_code", err.Code,
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", err.RequestID,
	)

	errorMsg := err.ErrBuilder.Msg
	cause := err.ErrBuilder.Unwrap()

	switch err.Category {
	case CategoryValidation, CategoryRateLimit, CategoryUnauthorized:
		if len(err.Fields) > 0 {
			logEntry.Warn(errorMsg, "details", err.Fields)
		} else {
			logEntry.Warn(errorMsg)
		}
	case CategoryComputation, CategoryTimeout, CategoryUnavailable:
		if cause != nil {
			logEntry.Info(errorMsg, "cause", cause)
		} else {
			logEntry.Info(errorMsg)
		}
	default:
		if cause != nil {
			logEntry.Error(errorMsg, "cause", cause)
		} else {
			logEntry.Error(errorMsg)
		}
	}

	// Log stack trace in development
	if err.StackTrace != "" && (gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode) {
		logEntry.Debug("stack_trace", "trace", err.StackTrace)
	}
}

// SafeClose safely closes a resource and logs any errors
func SafeClose(closer interface{ Close() error }, resourceName string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		slog.Warn("Failed to close resource",
			"resource", resourceName,
			"error", err)
	}
}
