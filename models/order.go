package models

import (
	"time"
)

// Order is one immutable line of the permanent order history. Product name,
// category and subcategory are denormalized so reports survive catalog
// renames. Orders are only ever created by the booking transaction.
type Order struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CustomerID      uint      `gorm:"not null;index" json:"customer_id"`
	ProductID       uint      `gorm:"not null;index" json:"product_id"`
	ProductName     string    `gorm:"not null" json:"product_name"`
	CategoryName    string    `gorm:"default:''" json:"category_name"`
	SubcategoryName string    `gorm:"default:''" json:"subcategory_name"`
	Quantity        int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price           float64   `gorm:"not null" json:"price"` // unit selling price at booking time
	Total           float64   `gorm:"not null;check:total >= 0" json:"total"`
	Date            time.Time `gorm:"not null;index" json:"date"` // UTC booking timestamp
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
