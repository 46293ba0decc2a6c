package response

import (
	"net/http"
	"strconv"
)

// Response represents the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details in the response
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// --- Error Code Constants ---

const (
	// Client errors (4xx)
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	// Server errors (5xx)
	ErrCodeInternalError = "INTERNAL_ERROR"

	// Business errors
	ErrCodeStoreNotFound      = "STORE_NOT_FOUND"
	ErrCodePlanNotFound       = "PLAN_NOT_FOUND"
	ErrCodeLimitExceeded      = "LIMIT_EXCEEDED"
	ErrCodeThemeNotAllowed    = "THEME_NOT_ALLOWED"
	ErrCodeUnknownTheme       = "UNKNOWN_THEME"
	ErrCodeTenantExists       = "TENANT_EXISTS"
	ErrCodeInvalidSlug        = "INVALID_SLUG"
	ErrCodeInvalidFeaturePath = "INVALID_FEATURE_PATH"
)

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes
var ErrorCodeToHTTPStatus = map[string]int{
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeValidationFailed:   http.StatusBadRequest,
	ErrCodeInternalError:      http.StatusInternalServerError,
	ErrCodeStoreNotFound:      http.StatusNotFound,
	ErrCodePlanNotFound:       http.StatusNotFound,
	ErrCodeLimitExceeded:      http.StatusUnprocessableEntity,
	ErrCodeThemeNotAllowed:    http.StatusConflict,
	ErrCodeUnknownTheme:       http.StatusBadRequest,
	ErrCodeTenantExists:       http.StatusConflict,
	ErrCodeInvalidSlug:        http.StatusBadRequest,
	ErrCodeInvalidFeaturePath: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// --- Response Builders ---

// Success creates a success response with data
func Success(data interface{}) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

// Error creates an error response
func Error(code string, message string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorWithDetails creates an error response with additional details
func ErrorWithDetails(code string, message string, details map[string]string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// --- Common Error Responses ---

// BadRequest creates a bad request error response
func BadRequest(message string) *Response {
	return Error(ErrCodeBadRequest, message)
}

// NotFound creates a not found error response
func NotFound(message string) *Response {
	if message == "" {
		message = "Resource not found"
	}
	return Error(ErrCodeNotFound, message)
}

// StoreNotFound creates the public "store not found" response used when
// a host resolves to no tenant
func StoreNotFound() *Response {
	return Error(ErrCodeStoreNotFound, "No store exists at this address")
}

// LimitExceeded creates the "upgrade your plan" business error
func LimitExceeded(resource string, limit, current int) *Response {
	return ErrorWithDetails(ErrCodeLimitExceeded,
		"Plan limit reached, upgrade your plan to continue",
		map[string]string{
			"resource": resource,
			"limit":    strconv.Itoa(limit),
			"current":  strconv.Itoa(current),
		})
}

// Unauthorized creates an unauthorized error response
func Unauthorized(message string) *Response {
	if message == "" {
		message = "Authentication required"
	}
	return Error(ErrCodeUnauthorized, message)
}

// Forbidden creates a forbidden error response
func Forbidden(message string) *Response {
	if message == "" {
		message = "Access denied"
	}
	return Error(ErrCodeForbidden, message)
}

// InternalError creates an internal server error response
func InternalError(message string) *Response {
	if message == "" {
		message = "An internal error occurred"
	}
	return Error(ErrCodeInternalError, message)
}
