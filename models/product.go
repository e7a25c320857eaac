package models

// Product represents one sellable product of the catalog
type Product struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Name          string  `gorm:"not null" json:"name"`
	CategoryID    uint    `gorm:"not null;index" json:"category_id"`
	PurchasePrice float64 `gorm:"not null" json:"purchase_price"`
	SellingPrice  float64 `gorm:"not null" json:"selling_price"`
	Margin        float64 `json:"margin"` // cached, recomputed on every write
	Store         string  `gorm:"default:''" json:"store"`
	Phone         string  `gorm:"default:''" json:"phone"`

	Subscriptions []Subscription `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"subscriptions,omitempty"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
