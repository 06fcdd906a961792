package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"licensestore/internal/domain"
	cartsvc "licensestore/internal/service/cart"
)

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// newCartSession hands an anonymous visitor a session id to carry in
// X-Cart-Session until they log in.
func (h *handlers) newCartSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessionId": uuid.NewString()})
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.deps.Cart.Get(c.Request.Context(), ownerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeCart(c, cart)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "productId is required")
		return
	}
	cart, err := h.deps.Cart.Add(c.Request.Context(), ownerID(c), req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeCart(c, cart)
}

func (h *handlers) setCartItemQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "quantity is required")
		return
	}
	cart, err := h.deps.Cart.SetQuantity(c.Request.Context(), ownerID(c), c.Param("productID"), req.Quantity)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeCart(c, cart)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	cart, err := h.deps.Cart.Remove(c.Request.Context(), ownerID(c), c.Param("productID"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeCart(c, cart)
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.Cart.Clear(c.Request.Context(), ownerID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeCart(c *gin.Context, cart *domain.Cart) {
	c.JSON(http.StatusOK, gin.H{
		"id":       cart.ID,
		"currency": cart.Currency,
		"items":    cart.Lines,
		"total":    cartsvc.CartTotal(cart.Lines),
	})
}
