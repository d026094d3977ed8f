package handler

import (
	"net/http"

	"storefront-be/internal/order"

	"github.com/gin-gonic/gin"
)

type orderHandler struct {
	svc order.Service
}

type updateStatusRequest struct {
	Status order.Status `json:"status"`
}

func (h *orderHandler) create(c *gin.Context) {
	var in order.CreateOrderInput
	if !bindJSON(c, &in) {
		return
	}

	o, err := h.svc.CreateOrder(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *orderHandler) mine(c *gin.Context) {
	orders, err := h.svc.GetMyOrders(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *orderHandler) all(c *gin.Context) {
	orders, err := h.svc.GetAllOrders(c.Request.Context(), requester(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *orderHandler) get(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), requester(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *orderHandler) updateStatus(c *gin.Context) {
	var in updateStatusRequest
	if !bindJSON(c, &in) {
		return
	}

	o, err := h.svc.UpdateOrderStatus(c.Request.Context(), requester(c), c.Param("id"), in.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *orderHandler) confirmWalletQR(c *gin.Context) {
	o, err := h.svc.ConfirmWalletQR(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
