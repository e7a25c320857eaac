package models

// Category groups products (e.g. "Bread", "Rolls")
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "category"
}

// DefaultSubcategoryID is the id of the sentinel "None" subcategory.
// The row is seeded at migration time and must never be deleted.
const DefaultSubcategoryID uint = 0

// Subcategory tags the variant of a product on a subscription
// (e.g. "whole" vs "sliced")
type Subcategory struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// TableName specifies the table name for the Subcategory model
func (Subcategory) TableName() string {
	return "subcategory"
}
