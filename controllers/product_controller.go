package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/No9005/mini-moi/config"
	"github.com/No9005/mini-moi/models"
	"github.com/No9005/mini-moi/services"
)

// ListProducts handles GET /api/v1/products
func ListProducts(c *gin.Context) {
	service := services.NewCatalogService(config.GetDB())

	products, err := service.ListProducts()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

// CreateProduct handles POST /api/v1/products
func CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
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
	if err := service.CreateProduct(&product); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
}

// UpdateProduct handles PUT /api/v1/products/:id
func UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
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
	if err := service.UpdateProduct(id, &product); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["updatedDb"]},
	})
}

// DeleteProduct handles DELETE /api/v1/products/:id - removes the product and
// the subscriptions referencing it
func DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	service := services.NewCatalogService(config.GetDB())
	if err := service.DeleteProduct(id); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["deletedFromDb"]},
	})
}
