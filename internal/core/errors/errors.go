package errors

// Stable error_type identifiers for HTTP error responses.
const (
	HttpInternalError        = "internal_error"
	HttpInvalidJsonError     = "invalid_json"
	HttpInvalidPartition     = "invalid_partition_config"
	HttpInvalidBoundary      = "invalid_boundary_value"
	HttpNotFoundError        = "not_found"
	HttpForbiddenError       = "forbidden"
	HttpUnauthenticatedError = "unauthenticated"
	HttpConflictError        = "conflict"
)

// ErrorResponse is the JSON error body returned by every handler.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
