package handler

import (
	"net/http"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type productHandler struct {
	svc product.Service
}

func (h *productHandler) list(c *gin.Context) {
	opts := product.ListOptions{
		Category: product.Category(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     utils.ParsePositiveInt(c.Query("page"), 1),
		Limit:    utils.ParsePositiveInt(c.Query("limit"), product.DefaultPageLimit),
		Sort:     c.Query("sort"),
	}

	var ok bool
	if opts.MinPrice, ok = parsePrice(c, "minPrice"); !ok {
		return
	}
	if opts.MaxPrice, ok = parsePrice(c, "maxPrice"); !ok {
		return
	}

	res, err := h.svc.List(c.Request.Context(), opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func parsePrice(c *gin.Context, key string) (*decimal.Decimal, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		writeMessage(c, http.StatusBadRequest, key+" must be a number")
		return nil, false
	}
	return &d, true
}

func (h *productHandler) featured(c *gin.Context) {
	products, err := h.svc.GetFeatured(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *productHandler) get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *productHandler) create(c *gin.Context) {
	var in product.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	logger.FromCtx(c.Request.Context()).Info("product created by admin",
		zap.String("product_id", p.ID),
		zap.Uint("admin_id", currentUserID(c)),
	)
	c.JSON(http.StatusCreated, p)
}

func (h *productHandler) update(c *gin.Context) {
	var in product.UpdateProductInput
	if !bindJSON(c, &in) {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *productHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}
