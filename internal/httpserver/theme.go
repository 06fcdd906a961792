package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"licensestore/internal/domain"
)

type applyThemeRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *handlers) listThemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"themes": h.deps.Theme.Themes()})
}

func (h *handlers) activeTheme(c *gin.Context) {
	theme, err := h.deps.Theme.Active(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, theme)
}

func (h *handlers) applyTheme(c *gin.Context) {
	var req applyThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	theme, err := h.deps.Theme.Apply(c.Request.Context(), req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, theme)
}

func (h *handlers) getSettings(c *gin.Context) {
	settings, err := h.deps.Theme.Settings(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *handlers) putSettings(c *gin.Context) {
	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "invalid settings body")
		return
	}
	if err := h.deps.Theme.SaveSettings(c.Request.Context(), settings); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
