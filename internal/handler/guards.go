package handler

import (
	"net/http"

	"storefront-be/internal/order"
	"storefront-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// requireUser rejects anonymous requests. Identity is set upstream by the
// token middleware.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUserIDFromContext(c.Request.Context()); !ok {
			writeMessage(c, http.StatusUnauthorized, "not authorized, no token")
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := utils.GetUserIDFromContext(ctx); !ok {
			writeMessage(c, http.StatusUnauthorized, "not authorized, no token")
			return
		}
		if !utils.IsAdmin(ctx) {
			writeMessage(c, http.StatusForbidden, "not authorized as an admin")
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) uint {
	id, _ := utils.GetUserIDFromContext(c.Request.Context())
	return id
}

func requester(c *gin.Context) order.Requester {
	return order.Requester{
		UserID:  currentUserID(c),
		IsAdmin: utils.IsAdmin(c.Request.Context()),
	}
}
