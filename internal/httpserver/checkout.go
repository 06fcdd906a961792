package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"licensestore/internal/domain"
)

type methodRequest struct {
	Method string `json:"method" binding:"required"`
}

type cardRequest struct {
	CardNumber string `json:"cardNumber"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

func (h *handlers) startCheckout(c *gin.Context) {
	draft, err := h.deps.Checkout.Start(c.Request.Context(), ownerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (h *handlers) getDraft(c *gin.Context) {
	draft, ok := h.ownedDraft(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *handlers) selectMethod(c *gin.Context) {
	var req methodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "method is required")
		return
	}
	if _, ok := h.ownedDraft(c); !ok {
		return
	}
	draft, err := h.deps.Checkout.SelectMethod(c.Request.Context(), c.Param("draftID"), req.Method)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *handlers) submitPayPal(c *gin.Context) {
	if _, ok := h.ownedDraft(c); !ok {
		return
	}
	order, err := h.deps.Checkout.SubmitPayPal(c.Request.Context(), c.Param("draftID"), accountID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) submitCard(c *gin.Context) {
	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if _, ok := h.ownedDraft(c); !ok {
		return
	}
	order, err := h.deps.Checkout.SubmitCard(c.Request.Context(), c.Param("draftID"), accountID(c), req.CardNumber, req.Expiry, req.CVV)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) submitCrypto(c *gin.Context) {
	if _, ok := h.ownedDraft(c); !ok {
		return
	}
	wallet, draft, err := h.deps.Checkout.SubmitCrypto(c.Request.Context(), c.Param("draftID"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet": wallet,
		"amount": draft.Total,
		"draft":  draft,
	})
}

func (h *handlers) cancelCheckout(c *gin.Context) {
	if _, ok := h.ownedDraft(c); !ok {
		return
	}
	if err := h.deps.Checkout.Cancel(c.Request.Context(), c.Param("draftID")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ownedDraft loads the draft and hides it from everyone but its owner.
func (h *handlers) ownedDraft(c *gin.Context) (*domain.OrderDraft, bool) {
	draft, err := h.deps.Checkout.GetDraft(c.Request.Context(), c.Param("draftID"))
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	if draft.OwnerID != ownerID(c) {
		apiError(c, http.StatusNotFound, "not_found", "draft not found")
		return nil, false
	}
	return draft, true
}
