package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type adminLoginRequest struct {
	AccessCode string `json:"accessCode" binding:"required"`
}

func (h *handlers) adminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "accessCode is required")
		return
	}
	token, err := h.deps.Admin.Login(c.Request.Context(), req.AccessCode)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *handlers) adminLogout(c *gin.Context) {
	if err := h.deps.Admin.Logout(c.Request.Context(), c.GetHeader(headerAdminToken)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) adminDashboard(c *gin.Context) {
	dashboard, err := h.deps.Admin.Dashboard(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *handlers) adminOrders(c *gin.Context) {
	orders, err := h.deps.Admin.Orders(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) adminMarkDelivered(c *gin.Context) {
	if err := h.deps.Admin.MarkDelivered(c.Request.Context(), c.Param("orderID")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// adminSettleCrypto confirms an off-band crypto transfer for a pending
// draft; the path parameter is the draft id.
func (h *handlers) adminSettleCrypto(c *gin.Context) {
	order, err := h.deps.Admin.SettleCrypto(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) adminRevokeLicense(c *gin.Context) {
	if err := h.deps.Admin.RevokeLicense(c.Request.Context(), c.Param("licenseKey")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) adminLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.deps.Admin.Logs(c.Request.Context(), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
