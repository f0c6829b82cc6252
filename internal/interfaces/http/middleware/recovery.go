package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/poolkeeper/internal/shared/constants"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
	"github.com/orris-inc/poolkeeper/internal/shared/utils"
)

// Recovery turns handler panics into a 500 envelope. A client that hung up
// mid-response only gets a warning; there is nobody left to answer.
func Recovery(log logger.Interface) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		reqLog := log.With("method", c.Request.Method, "path", c.Request.URL.Path)

		if clientGone(recovered) {
			reqLog.Warnw("client closed connection", "error", recovered)
			c.Abort()
			return
		}

		reqLog.Errorw("panic recovered",
			"principal", c.GetString(constants.ContextKeyPrincipal),
			"panic", recovered,
			"stack", string(debug.Stack()))
		utils.ErrorResponse(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
	})
}

func clientGone(recovered any) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}

// ErrorHandler renders errors attached with c.Error when the handler wrote nothing.
func ErrorHandler(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		log.Errorw("handler error", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		if !c.Writer.Written() {
			utils.ErrorResponseWithError(c, err)
		}
	}
}
