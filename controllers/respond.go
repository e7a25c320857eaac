package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/No9005/mini-moi/config"
	"github.com/No9005/mini-moi/services"
	"github.com/No9005/mini-moi/utils"
)

// requestLanguage returns the language the response should be labeled in,
// from the "lang" query parameter or the configured default
func requestLanguage(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}
	return config.GetConfig().DefaultLanguage
}

// businessLocation returns the configured business timezone
func businessLocation() *time.Location {
	return config.GetConfig().Location()
}

// respondServiceError translates a service error into the API error envelope
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, services.ErrNoDueDeliveries):
		// a normal empty result, not a failure
		translation := services.GetTranslation(requestLanguage(c))
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_DUE_DELIVERIES",
				"message": translation.Messages["noDelivery"],
			},
		})
		return

	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUnknownCustomer),
		errors.Is(err, services.ErrUnknownProduct),
		errors.Is(err, services.ErrUnknownSubcategory),
		errors.Is(err, services.ErrUnknownSubscription):
		status = http.StatusNotFound
		code = "NOT_FOUND"

	case errors.Is(err, services.ErrIncompleteDeliveryLine),
		errors.Is(err, services.ErrEmptyPayload),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrMissingDeliveryDate),
		errors.Is(err, utils.ErrInvalidRecurrenceRule),
		errors.Is(err, utils.ErrUnknownCycleType):
		status = http.StatusBadRequest
		code = "VALIDATION_ERROR"

	case errors.Is(err, services.ErrDefaultProtected):
		status = http.StatusForbidden
		code = "DEFAULT_PROTECTED"

	case errors.Is(err, services.ErrDanglingReference):
		status = http.StatusConflict
		code = "DATA_INTEGRITY_ERROR"

	case errors.Is(err, services.ErrPersistenceFailure):
		status = http.StatusInternalServerError
		code = "DATABASE_ERROR"
	}

	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}
