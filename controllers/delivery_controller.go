package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/No9005/mini-moi/config"
	"github.com/No9005/mini-moi/services"
	"github.com/No9005/mini-moi/utils"
)

// CreateDelivery handles POST /api/v1/delivery/create - builds tomorrow's
// delivery overview for operator review
func CreateDelivery(c *gin.Context) {
	service := services.NewDeliveryService(config.GetDB(), utils.RealClock{})

	overview, err := service.CreateOverview(requestLanguage(c), businessLocation())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    overview,
	})
}

// BookDeliveryRequest represents the request body for booking the reviewed
// delivery plan
type BookDeliveryRequest struct {
	Lines []services.DeliveryLine `json:"lines" binding:"required"`
}

// BookDelivery handles POST /api/v1/delivery/book - commits the (possibly
// edited) delivery plan as permanent orders and advances the subscriptions
func BookDelivery(c *gin.Context) {
	var req BookDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	service := services.NewDeliveryService(config.GetDB(), utils.RealClock{})
	result, err := service.Book(req.Lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
