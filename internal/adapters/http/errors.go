package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-inspiration/internal/adapters/http/dto"
)

// RespondWithErrorCode writes the error envelope for code, including the
// trace ID when the request is traced.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	errResp := dto.NewErrorResponse(code, message).WithTraceID(dto.TraceID(c.Request.Context()))

	c.JSON(dto.HTTPStatusFromCode(code), errResp)
}

// AbortWithErrorCode aborts the request chain with the error envelope for code.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	errResp := dto.NewErrorResponse(code, message).WithTraceID(dto.TraceID(c.Request.Context()))

	c.AbortWithStatusJSON(dto.HTTPStatusFromCode(code), errResp)
}

// notFound answers unknown routes with the NOT_FOUND envelope.
func notFound(c *gin.Context) {
	RespondWithErrorCode(c, dto.ErrorCodeNotFound, "route "+c.Request.Method+" "+c.Request.URL.Path+" not found")
}
