package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the standardized API response envelope.
// Error is a human-readable message; Code identifies it for clients.
type Response struct {
	Success  bool              `json:"success"`
	Data     interface{}       `json:"data,omitempty"`
	Error    string            `json:"error,omitempty"`
	Code     ErrCode           `json:"code,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Metadata Metadata          `json:"metadata"`
}

// Metadata includes request tracing and timing.
type Metadata struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends a successful JSON response with the given status code and data.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success:  true,
		Data:     data,
		Metadata: buildMetadata(c),
	})
}

// Fail sends an error response with an error code and no field-level details.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, failure(c, code, nil))
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, failure(c, code, fields))
}

// FailWithData sends an error response that still carries a payload, e.g. a degraded health report.
func FailWithData(c *gin.Context, statusCode int, code ErrCode, data interface{}) {
	r := failure(c, code, nil)
	r.Data = data
	c.JSON(statusCode, r)
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, failure(c, code, nil))
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func failure(c *gin.Context, code ErrCode, fields map[string]string) Response {
	return Response{
		Success:  false,
		Error:    GetMessage(code),
		Code:     code,
		Fields:   fields,
		Metadata: buildMetadata(c),
	}
}

func buildMetadata(c *gin.Context) Metadata {
	id := RequestID(c)
	if id == "" {
		id = uuid.NewString() // Fallback if middleware not applied
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
