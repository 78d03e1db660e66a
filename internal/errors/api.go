package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"trendcli/internal/infrastructure"
)

// APIError is the structured error body returned by the report API.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// Predefined error types for common scenarios
var (
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrRunIncomplete  = New(http.StatusConflict, "RUN_INCOMPLETE", "Pipeline run has not completed")
)

// NotFoundError creates a not found error naming the missing resource.
func NotFoundError(resource string) *APIError {
	return &APIError{
		StatusCode: http.StatusNotFound,
		ErrorCode:  "NOT_FOUND",
		Message:    resource + " not found",
		Details:    resource,
	}
}

// FromPipelineError maps a pipeline error onto an API error, so the
// report API distinguishes data-quality failures from server faults.
func FromPipelineError(err error) *APIError {
	var parseErr *ParseError
	var degenerateErr *DegenerateInputError
	switch {
	case errors.As(err, &parseErr):
		return &APIError{
			StatusCode: http.StatusUnprocessableEntity,
			ErrorCode:  "PARSE_ERROR",
			Message:    "Dataset could not be parsed",
			Details:    parseErr.Error(),
		}
	case errors.As(err, &degenerateErr):
		return &APIError{
			StatusCode: http.StatusUnprocessableEntity,
			ErrorCode:  "DEGENERATE_INPUT",
			Message:    "Trend model could not be fit",
			Details:    degenerateErr.Error(),
		}
	default:
		return ErrInternalServer
	}
}

// HandleError renders err on w and logs it with request context.
func HandleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	apiErr, ok := err.(*APIError)
	if !ok {
		apiErr = FromPipelineError(err)
	}
	if logger == nil {
		logger = infrastructure.LoggerWithContext(r.Context())
	}
	logger.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.String("error_code", apiErr.ErrorCode),
		slog.String("error", err.Error()))
	render.Status(r, apiErr.StatusCode)
	render.JSON(w, r, apiErr)
}
