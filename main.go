package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/No9005/mini-moi/config"
	"github.com/No9005/mini-moi/controllers"
	"github.com/No9005/mini-moi/models"
	"github.com/No9005/mini-moi/services"
)

func main() {
	log.Println("Starting Mini Moi delivery API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Category{},
		&models.Subcategory{},
		&models.Product{},
		&models.Subscription{},
		&models.Order{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	if err := seedDefaults(); err != nil {
		log.Fatalf("Failed to seed default rows: %v", err)
	}

	// Backup is optional; without a bucket the endpoints report unavailable
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitBackupService(); err != nil {
			log.Fatalf("Failed to initialize backup service: %v", err)
		}
	}

	router := gin.Default()
	router.Use(cors.Default())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Delivery workflow
		v1.POST("/delivery/create", controllers.CreateDelivery)
		v1.POST("/delivery/book", controllers.BookDelivery)

		// Subscriptions (abos)
		v1.GET("/subscriptions", controllers.ListSubscriptions)
		v1.GET("/subscriptions/:id", controllers.GetSubscription)
		v1.POST("/subscriptions", controllers.CreateSubscriptions)
		v1.PUT("/subscriptions/:id", controllers.UpdateSubscription)
		v1.DELETE("/subscriptions/:id", controllers.DeleteSubscription)

		// Customers
		v1.GET("/customers", controllers.ListCustomers)
		v1.POST("/customers", controllers.CreateCustomer)
		v1.PUT("/customers/:id", controllers.UpdateCustomer)
		v1.DELETE("/customers/:id", controllers.DeleteCustomer)

		// Products
		v1.GET("/products", controllers.ListProducts)
		v1.POST("/products", controllers.CreateProduct)
		v1.PUT("/products/:id", controllers.UpdateProduct)
		v1.DELETE("/products/:id", controllers.DeleteProduct)

		// Categories & subcategories
		v1.GET("/categories", controllers.ListCategories)
		v1.POST("/categories", controllers.CreateCategory)
		v1.PUT("/categories/:id", controllers.UpdateCategory)
		v1.DELETE("/categories/:id", controllers.DeleteCategory)
		v1.GET("/subcategories", controllers.ListSubcategories)
		v1.POST("/subcategories", controllers.CreateSubcategory)
		v1.DELETE("/subcategories/:id", controllers.DeleteSubcategory)

		// Reporting
		v1.GET("/reports", controllers.GetReport)

		// Backups
		v1.GET("/backups", controllers.ListBackups)
		v1.POST("/backups", controllers.CreateBackup)
		v1.DELETE("/backups/*key", controllers.DeleteBackup)
	}

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// seedDefaults inserts the sentinel "None" subcategory with id 0. Gorm
// treats a zero primary key as unset, so the row goes in via raw SQL.
func seedDefaults() error {
	db := config.GetDB()

	var count int64
	if err := db.Model(&models.Subcategory{}).
		Where("id = ?", models.DefaultSubcategoryID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Exec(
		"INSERT INTO subcategory (id, name) VALUES (?, ?)",
		models.DefaultSubcategoryID, "None",
	).Error
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Mini Moi API is running",
	})
}
