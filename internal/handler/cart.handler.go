package handler

import (
	"net/http"

	"storefront-be/internal/cart"

	"github.com/gin-gonic/gin"
)

type cartHandler struct {
	svc cart.Service
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *cartHandler) get(c *gin.Context) {
	ct, err := h.svc.GetCart(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *cartHandler) add(c *gin.Context) {
	var in cart.AddToCartInput
	if !bindJSON(c, &in) {
		return
	}

	ct, err := h.svc.AddToCart(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *cartHandler) update(c *gin.Context) {
	var in updateCartItemRequest
	if !bindJSON(c, &in) {
		return
	}

	ct, err := h.svc.UpdateCartItem(c.Request.Context(), currentUserID(c), c.Param("itemId"), in.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *cartHandler) remove(c *gin.Context) {
	ct, err := h.svc.RemoveFromCart(c.Request.Context(), currentUserID(c), c.Param("itemId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *cartHandler) clear(c *gin.Context) {
	if err := h.svc.ClearCart(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
