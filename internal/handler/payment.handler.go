package handler

import (
	"net/http"

	"storefront-be/internal/payment"

	"github.com/gin-gonic/gin"
)

type paymentHandler struct {
	svc payment.Service
}

func (h *paymentHandler) createCardIntent(c *gin.Context) {
	var in payment.CardIntentInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.CreateCardIntent(c.Request.Context(), currentUserID(c), in.OrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *paymentHandler) createWalletPayment(c *gin.Context) {
	var in payment.WalletPaymentInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.CreateWalletPayment(c.Request.Context(), currentUserID(c), in.OrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *paymentHandler) executeWalletPayment(c *gin.Context) {
	var in payment.ExecuteWalletInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.ExecuteWalletPayment(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
