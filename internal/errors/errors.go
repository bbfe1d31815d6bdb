package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/underwriter/internal/middleware"
	"github.com/stwalsh4118/underwriter/internal/report"
)

// Error code constants for standardized error responses
const (
	ErrNotFound             = "NOT_FOUND"
	ErrBadRequest           = "BAD_REQUEST"
	ErrInternalServer       = "INTERNAL_SERVER_ERROR"
	ErrValidation           = "VALIDATION_ERROR"
	ErrMissingResult        = "MISSING_RESULT"
	ErrMalformedResult      = "MALFORMED_RESULT"
	ErrExportFailed         = "EXPORT_FAILED"
	ErrAnalysisFailed       = "ANALYSIS_FAILED"
	ErrUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	ErrPayloadTooLarge      = "PAYLOAD_TOO_LARGE"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respond logs the failure on the request logger and writes the envelope.
// Server-side failures are logged at error level with err; everything else is
// a warning.
func respond(c *gin.Context, status int, code, message string, details map[string]interface{}, err error) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		fields := map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		}
		if details != nil {
			fields["details"] = details
		}

		if status >= http.StatusInternalServerError {
			fields["method"] = c.Request.Method
			log.Error("Request failed", err, fields)
		} else {
			log.Warn("Request rejected", fields)
		}
	}

	if err != nil {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrNotFound, message, nil, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The error is logged but never exposed to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil, err)
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details, nil)
}

// FieldValidationError returns a 400 response for a single invalid field.
func FieldValidationError(c *gin.Context, field, reason string) {
	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields",
		map[string]interface{}{field: reason}, nil)
}

// UnsupportedMediaType returns a 415 response for uploads of the wrong type.
func UnsupportedMediaType(c *gin.Context, message string, details map[string]interface{}) {
	respond(c, http.StatusUnsupportedMediaType, ErrUnsupportedMediaType, message, details, nil)
}

// PayloadTooLarge returns a 413 response when the request body exceeds limit bytes.
func PayloadTooLarge(c *gin.Context, limit int64) {
	respond(c, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge, "Upload exceeds the size limit",
		map[string]interface{}{"limit_bytes": limit}, nil)
}

// AnalysisFailed returns a 502 response when the analysis provider failed.
// The failed deal is still recorded, so its ID is included when known.
func AnalysisFailed(c *gin.Context, dealID string, err error) {
	var details map[string]interface{}
	if dealID != "" {
		details = map[string]interface{}{"deal_id": dealID}
	}
	respond(c, http.StatusBadGateway, ErrAnalysisFailed, "Analysis could not be completed", details, err)
}

// MissingResult returns a 409 response: there is no completed analysis to export.
func MissingResult(c *gin.Context) {
	respond(c, http.StatusConflict, ErrMissingResult, "No completed analysis is available to export", nil, nil)
}

// MalformedResult returns a 422 response naming the field that broke the
// analysis result contract.
func MalformedResult(c *gin.Context, format report.Format, field, reason string) {
	respond(c, http.StatusUnprocessableEntity, ErrMalformedResult, "Analysis result is malformed",
		map[string]interface{}{
			"export": format.Label(),
			"field":  field,
			"reason": reason,
		}, nil)
}

// ExportFailed returns a 500 response naming which export failed.
func ExportFailed(c *gin.Context, format report.Format, err error) {
	respond(c, http.StatusInternalServerError, ErrExportFailed, "Failed to generate the "+format.Label(),
		map[string]interface{}{"export": format.Label()}, err)
}

// Export translates a report generation error into the matching response.
func Export(c *gin.Context, format report.Format, err error) {
	var fieldErr *report.FieldError
	var exportErr *report.ExportError

	switch {
	case errors.Is(err, report.ErrMissingResult):
		MissingResult(c)
	case errors.As(err, &fieldErr):
		MalformedResult(c, format, fieldErr.Field, fieldErr.Reason)
	case errors.As(err, &exportErr):
		ExportFailed(c, exportErr.Format, err)
	default:
		ExportFailed(c, format, err)
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "finite":
		return "Must be a finite number"
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lt":
		return "Must be less than " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
