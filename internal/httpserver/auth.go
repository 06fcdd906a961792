package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	customersvc "licensestore/internal/service/customer"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}
	account, err := h.deps.Customer.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": account})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}
	account, token, err := h.deps.Customer.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account, "accessToken": token})
}

func (h *handlers) logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.deps.Customer.Logout(c.Request.Context(), token); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		writeServiceError(c, customersvc.ErrInvalidToken)
		return
	}
	account, err := h.deps.Customer.LookupByToken(c.Request.Context(), token)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account})
}
