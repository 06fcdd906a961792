package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"licensestore/internal/domain"
)

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.Orders.FindByID(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// getOrderLicenses serves the downloadable key blob saved at settlement,
// rebuilding it from the order record when the state entry is missing.
func (h *handlers) getOrderLicenses(c *gin.Context) {
	orderID := c.Param("orderID")
	ctx := c.Request.Context()

	var text string
	err := h.deps.State.Get(ctx, "license_"+orderID, &text)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			writeServiceError(c, err)
			return
		}
		order, ferr := h.deps.Orders.FindByID(ctx, orderID)
		if ferr != nil {
			writeServiceError(c, ferr)
			return
		}
		parts := make([]string, 0, len(order.Licenses))
		for _, l := range order.Licenses {
			parts = append(parts, fmt.Sprintf("%s: %s", l.ProductName, l.LicenseKey))
		}
		text = strings.Join(parts, "\n")
	}
	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "licenseText": text})
}
