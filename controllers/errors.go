package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/serene/middleware"
	"github.com/cppla/serene/services"
	"github.com/cppla/serene/utils"
)

// respondError maps service errors onto the response envelope. Anything
// unrecognised is logged and reported as a generic 500.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40002, validationMessage(err))
	case errors.Is(err, services.ErrInvalidState):
		utils.Error(ctx, http.StatusBadRequest, 40003, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(ctx, http.StatusUnauthorized, 40111, err.Error())
	case errors.Is(err, services.ErrUnsupportedProvider):
		utils.Error(ctx, http.StatusNotFound, 40402, "unsupported oauth provider")
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "resource not found")
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		utils.Error(ctx, http.StatusConflict, 40902, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		utils.Error(ctx, http.StatusConflict, 40903, err.Error())
	default:
		utils.Logger.Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50001, "request failed")
	}
}

// validationMessage strips the sentinel prefix so clients see only the field message.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, services.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(services.ErrValidation.Error())+2:]
	}
	return msg
}

func invalidPayload(ctx *gin.Context) {
	utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
}

func requireSession(ctx *gin.Context) (services.Session, bool) {
	sess, ok := middleware.CurrentSession(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return services.Session{}, false
	}
	return sess, true
}
