package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/richxcame/invoice-insights/pkg/common"
	"github.com/richxcame/invoice-insights/pkg/validation"
)

// RespondWithValidationError sends a 400 envelope describing err.
func RespondWithValidationError(c *gin.Context, err error) {
	if valErr, ok := err.(*validation.ValidationError); ok {
		common.ErrorResponse(c, http.StatusBadRequest, "validation failed: "+valErr.Error())
		return
	}
	common.ErrorResponse(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
}

// MaxBodySize rejects bodies larger than maxSize with 413. A declared
// Content-Length is checked up front; otherwise the limit is enforced while
// the handler reads.
func MaxBodySize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxSize {
			common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
