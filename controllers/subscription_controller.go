package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/No9005/mini-moi/config"
	"github.com/No9005/mini-moi/services"
	"github.com/No9005/mini-moi/utils"
)

// ListSubscriptions handles GET /api/v1/subscriptions - lists abos,
// optionally filtered by customer (?customer_id=) and limited (?limit=)
func ListSubscriptions(c *gin.Context) {
	service := services.NewSubscriptionService(config.GetDB(), utils.RealClock{})
	loc := businessLocation()

	if customerID := c.Query("customer_id"); customerID != "" {
		id, err := strconv.ParseUint(customerID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "customer_id must be an integer",
				},
			})
			return
		}
		views, err := service.ListByCustomer(uint(id), loc)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
		return
	}

	limit := 0
	if rawLimit := c.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "limit must be an integer",
				},
			})
			return
		}
		limit = parsed
	}

	views, err := service.List(limit, loc)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}

// GetSubscription handles GET /api/v1/subscriptions/:id
func GetSubscription(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	service := services.NewSubscriptionService(config.GetDB(), utils.RealClock{})
	view, err := service.Get(id, businessLocation())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// CreateSubscriptions handles POST /api/v1/subscriptions - adds a batch of
// new abos
func CreateSubscriptions(c *gin.Context) {
	var inputs []services.SubscriptionInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
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

	service := services.NewSubscriptionService(config.GetDB(), utils.RealClock{})
	if err := service.Add(inputs, businessLocation()); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["addedToDb"]},
	})
}

// UpdateSubscription handles PUT /api/v1/subscriptions/:id
func UpdateSubscription(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input services.SubscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
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

	service := services.NewSubscriptionService(config.GetDB(), utils.RealClock{})
	if err := service.Update(id, input, businessLocation()); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["updatedDb"]},
	})
}

// DeleteSubscription handles DELETE /api/v1/subscriptions/:id
func DeleteSubscription(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	service := services.NewSubscriptionService(config.GetDB(), utils.RealClock{})
	if err := service.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["deletedFromDb"]},
	})
}

// pathID parses the :id path parameter; on failure it writes the error
// response and returns ok=false
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "id must be an integer",
			},
		})
		return 0, false
	}
	return uint(id), true
}
