package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/No9005/mini-moi/config"
	"github.com/No9005/mini-moi/services"
	"github.com/No9005/mini-moi/utils"
)

// GetReport handles GET /api/v1/reports - earnings and selling overview for
// the standard time windows, recomputed from the order history
func GetReport(c *gin.Context) {
	service := services.NewReportService(config.GetDB(), utils.RealClock{})

	report, err := service.Build(requestLanguage(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}
