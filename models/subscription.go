package models

import (
	"time"
)

// Cycle types of a subscription. A dormant subscription keeps its fixed
// next_delivery date and is never auto-advanced.
const (
	CycleNone     = "none"
	CycleDay      = "day"      // same weekday every week, Interval = weekday index (Monday = 0)
	CycleInterval = "interval" // again after Interval days, Interval > 0
)

// Subscription is a recurring commitment of one customer to receive a fixed
// product/subcategory/quantity on a schedule ("abo")
type Subscription struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CustomerID    uint      `gorm:"not null;index" json:"customer_id"`
	ProductID     uint      `gorm:"not null;index" json:"product_id"`
	SubcategoryID uint      `gorm:"not null;default:0" json:"subcategory_id"`
	Quantity      int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	CycleType     string    `gorm:"not null;default:'none'" json:"cycle_type"`
	Interval      int       `gorm:"not null;default:0" json:"interval"`
	NextDelivery  time.Time `gorm:"not null;index" json:"next_delivery"` // UTC; its calendar date is the scheduled delivery date
	UpdateDate    time.Time `gorm:"not null" json:"update_date"`
}

// TableName specifies the table name for the Subscription model
func (Subscription) TableName() string {
	return "abo"
}

// Dormant reports whether the subscription has no active cycle
func (s *Subscription) Dormant() bool {
	return s.CycleType == CycleNone || s.CycleType == "" || s.CycleType == "None"
}
