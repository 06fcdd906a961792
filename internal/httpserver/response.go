package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"licensestore/internal/domain"
	adminsvc "licensestore/internal/service/admin"
	checkoutsvc "licensestore/internal/service/checkout"
	customersvc "licensestore/internal/service/customer"
)

// apiError writes the uniform error envelope.
func apiError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"code": code, "message": message},
	})
}

// writeServiceError maps domain and service errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCardDetails):
		apiError(c, http.StatusUnprocessableEntity, "invalid_card_details", err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		apiError(c, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrBelowMinimum):
		apiError(c, http.StatusBadRequest, "below_minimum", err.Error())
	case errors.Is(err, domain.ErrAboveMaximum):
		apiError(c, http.StatusBadRequest, "above_maximum", err.Error())
	case errors.Is(err, checkoutsvc.ErrUnknownMethod):
		apiError(c, http.StatusBadRequest, "unknown_method", err.Error())
	case errors.Is(err, domain.ErrInvalidDraftState):
		apiError(c, http.StatusConflict, "invalid_draft_state", err.Error())
	case errors.Is(err, domain.ErrPaymentCancelled):
		apiError(c, http.StatusPaymentRequired, "payment_cancelled", err.Error())
	case errors.Is(err, domain.ErrPaymentFailed):
		apiError(c, http.StatusPaymentRequired, "payment_failed", err.Error())
	case errors.Is(err, domain.ErrStorageFull):
		apiError(c, http.StatusInsufficientStorage, "storage_full", err.Error())
	case errors.Is(err, customersvc.ErrInvalidEmail),
		errors.Is(err, customersvc.ErrWeakPassword):
		apiError(c, http.StatusBadRequest, "invalid_credentials", err.Error())
	case errors.Is(err, customersvc.ErrEmailInUse):
		apiError(c, http.StatusConflict, "email_in_use", err.Error())
	case errors.Is(err, customersvc.ErrWrongPassword),
		errors.Is(err, customersvc.ErrInvalidToken),
		errors.Is(err, customersvc.ErrAccountDisabled),
		errors.Is(err, adminsvc.ErrBadAccessCode),
		errors.Is(err, adminsvc.ErrSessionExpired):
		apiError(c, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrLicenseNotFound),
		errors.Is(err, domain.ErrThemeNotFound),
		errors.Is(err, domain.ErrNotFound):
		apiError(c, http.StatusNotFound, "not_found", err.Error())
	default:
		apiError(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}
