// Package response writes the JSON envelope every parkspot endpoint returns:
//
//	{"success": true,  "data": {...}}
//	{"success": false, "error": {"code": "NO_SPOTS_AVAILABLE", "message": "...", "details": ...}}
//
// Codes are stable SCREAMING_SNAKE identifiers that clients switch on. The
// booking error kinds map to codes in modules/booking; the transport-level
// codes live here.
package response

import "github.com/gin-gonic/gin"

const (
	CodeAuthHeaderMissing = "AUTH_HEADER_MISSING"
	CodeInvalidAuthFormat = "INVALID_AUTH_FORMAT"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidID         = "INVALID_ID"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	ErrorWithDetails(c, statusCode, code, message, nil)
}

// ErrorWithDetails attaches field-level information, e.g. which
// validation tags failed on a booking intent.
func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// AbortError writes an error envelope and stops the handler chain. Used by
// the auth and role middleware.
func AbortError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}
