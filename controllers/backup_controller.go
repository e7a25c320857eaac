package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/No9005/mini-moi/services"
)

// CreateBackup handles POST /api/v1/backups - uploads a snapshot of the
// database file to S3
func CreateBackup(c *gin.Context) {
	backupService := services.GetBackupService()
	if backupService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BACKUP_UNAVAILABLE",
				"message": "Backup service is not configured",
			},
		})
		return
	}

	key, err := backupService.CreateSnapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BACKUP_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    gin.H{"key": key},
	})
}

// ListBackups handles GET /api/v1/backups
func ListBackups(c *gin.Context) {
	backupService := services.GetBackupService()
	if backupService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BACKUP_UNAVAILABLE",
				"message": "Backup service is not configured",
			},
		})
		return
	}

	keys, err := backupService.ListSnapshots()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BACKUP_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": keys})
}

// DeleteBackup handles DELETE /api/v1/backups/*key
func DeleteBackup(c *gin.Context) {
	backupService := services.GetBackupService()
	if backupService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BACKUP_UNAVAILABLE",
				"message": "Backup service is not configured",
			},
		})
		return
	}

	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}

	if err := backupService.DeleteSnapshot(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BACKUP_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
