package models

import (
	"time"
)

// Customer represents one delivery customer
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Surname   string    `gorm:"not null" json:"surname"`
	Street    string    `gorm:"not null" json:"street"`
	Nr        int       `gorm:"not null" json:"nr"`
	Postal    string    `gorm:"not null" json:"postal"`
	Town      string    `gorm:"not null;index" json:"town"`
	Phone     string    `gorm:"default:''" json:"phone"`
	Mobile    string    `gorm:"default:''" json:"mobile"`
	Birthdate string    `gorm:"default:''" json:"birthdate"` // "YYYY.MM.DD"
	Approach  int       `gorm:"not null;default:0" json:"approach"` // manual visiting order within a town
	Notes     string    `gorm:"default:''" json:"notes"`
	CreatedAt time.Time `json:"created_at"`

	Subscriptions []Subscription `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"subscriptions,omitempty"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
