package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	customersvc "licensestore/internal/service/customer"
)

const (
	headerCartSession = "X-Cart-Session"
	headerAdminToken  = "X-Admin-Token"

	ctxOwnerID = "ownerID"
	ctxAccount = "account"
)

// requireOwner resolves the cart owner for the request: a logged-in customer
// via bearer token, otherwise an anonymous session id from X-Cart-Session.
func (h *handlers) requireOwner(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		account, err := h.deps.Customer.LookupByToken(c.Request.Context(), token)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.Set(ctxOwnerID, "user:"+account.UID)
		c.Set(ctxAccount, account)
		c.Next()
		return
	}

	if session := strings.TrimSpace(c.GetHeader(headerCartSession)); session != "" {
		c.Set(ctxOwnerID, "session:"+session)
		c.Next()
		return
	}

	apiError(c, http.StatusUnauthorized, "session_required", "provide a bearer token or an X-Cart-Session header")
}

// requireAdmin validates the admin session token on every panel request.
func (h *handlers) requireAdmin(c *gin.Context) {
	token := strings.TrimSpace(c.GetHeader(headerAdminToken))
	if token == "" {
		apiError(c, http.StatusUnauthorized, "unauthorized", "missing admin token")
		return
	}
	if err := h.deps.Admin.Validate(c.Request.Context(), token); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Next()
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func ownerID(c *gin.Context) string {
	return c.GetString(ctxOwnerID)
}

// accountID returns the customer id when the request carries a login, nil
// for anonymous sessions.
func accountID(c *gin.Context) *string {
	v, ok := c.Get(ctxAccount)
	if !ok {
		return nil
	}
	account, ok := v.(*customersvc.Account)
	if !ok || account == nil {
		return nil
	}
	uid := account.UID
	return &uid
}
