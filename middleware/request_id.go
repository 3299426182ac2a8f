package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	RequestIDHeader     = "X-Request-ID"
	ContextRequestIDKey = "request_id"
)

// RequestID tags every request with an id, reusing a client-supplied one
// when it parses as a UUID.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		ctx.Set(ContextRequestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

// AccessLogFields adds the request id and caller to access log entries.
func AccessLogFields(ctx *gin.Context) []zapcore.Field {
	fields := []zapcore.Field{zap.String("request_id", ctx.GetString(ContextRequestIDKey))}
	if sess, ok := CurrentSession(ctx); ok {
		fields = append(fields, zap.Uint("user_id", sess.UserID))
	}
	return fields
}
