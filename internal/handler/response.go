package handler

import (
	"net/http"

	"storefront-be/internal/apperror"
	"storefront-be/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func writeError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, gin.H{"message": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"message": err.Error()})
}

func writeMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// bindJSON answers 400 itself when the body does not decode.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeMessage(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
