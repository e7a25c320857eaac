package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/No9005/mini-moi/config"
	"github.com/No9005/mini-moi/models"
	"github.com/No9005/mini-moi/services"
)

// ListCustomers handles GET /api/v1/customers
func ListCustomers(c *gin.Context) {
	service := services.NewCatalogService(config.GetDB())

	customers, err := service.ListCustomers()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": customers})
}

// CreateCustomer handles POST /api/v1/customers
func CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
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

	service := services.NewCatalogService(config.GetDB())
	if err := service.CreateCustomer(&customer); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": customer})
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
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

	service := services.NewCatalogService(config.GetDB())
	if err := service.UpdateCustomer(id, &customer); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["updatedDb"]},
	})
}

// DeleteCustomer handles DELETE /api/v1/customers/:id - removes the customer
// together with all of their subscriptions
func DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	service := services.NewCatalogService(config.GetDB())
	if err := service.DeleteCustomer(id); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["deletedFromDb"]},
	})
}
