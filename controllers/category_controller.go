package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/No9005/mini-moi/config"
	"github.com/No9005/mini-moi/models"
	"github.com/No9005/mini-moi/services"
)

// ListCategories handles GET /api/v1/categories
func ListCategories(c *gin.Context) {
	service := services.NewCatalogService(config.GetDB())

	categories, err := service.ListCategories()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
}

// CreateCategory handles POST /api/v1/categories
func CreateCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
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
	if err := service.CreateCategory(&category); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": category})
}

// UpdateCategoryRequest carries the new name for a category
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateCategory handles PUT /api/v1/categories/:id
func UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
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

	service := services.NewCatalogService(config.GetDB())
	if err := service.UpdateCategory(id, req.Name); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["updatedDb"]},
	})
}

// DeleteCategory handles DELETE /api/v1/categories/:id - removes the
// category, its products and their subscriptions
func DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	service := services.NewCatalogService(config.GetDB())
	if err := service.DeleteCategory(id); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["deletedFromDb"]},
	})
}

// ListSubcategories handles GET /api/v1/subcategories
func ListSubcategories(c *gin.Context) {
	service := services.NewCatalogService(config.GetDB())

	subcategories, err := service.ListSubcategories()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": subcategories})
}

// CreateSubcategory handles POST /api/v1/subcategories
func CreateSubcategory(c *gin.Context) {
	var subcategory models.Subcategory
	if err := c.ShouldBindJSON(&subcategory); err != nil {
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
	if err := service.CreateSubcategory(&subcategory); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": subcategory})
}

// DeleteSubcategory handles DELETE /api/v1/subcategories/:id. The default
// "None" row cannot be deleted.
func DeleteSubcategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	service := services.NewCatalogService(config.GetDB())
	if err := service.DeleteSubcategory(id); err != nil {
		respondServiceError(c, err)
		return
	}

	translation := services.GetTranslation(requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"msg": translation.Messages["deletedFromDb"]},
	})
}
