package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/No9005/mini-moi/models"
)

// CatalogService manages customers, products, categories and subcategories.
// Deleting a customer or product cascades the subscriptions hanging off it;
// orders are history and never cascade.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a CatalogService
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// --- customers ---

// ListCustomers returns all customers ordered by town and approach
func (s *CatalogService) ListCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.Order("town, approach, id").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	return customers, nil
}

// CreateCustomer stores a new customer
func (s *CatalogService) CreateCustomer(customer *models.Customer) error {
	if err := s.db.Create(customer).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// UpdateCustomer overwrites an existing customer
func (s *CatalogService) UpdateCustomer(id uint, customer *models.Customer) error {
	if err := s.requireRow(&models.Customer{}, id, "customer"); err != nil {
		return err
	}
	customer.ID = id
	if err := s.db.Save(customer).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// DeleteCustomer removes a customer and all of their subscriptions
func (s *CatalogService) DeleteCustomer(id uint) error {
	if err := s.requireRow(&models.Customer{}, id, "customer"); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&models.Subscription{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
		if err := tx.Delete(&models.Customer{}, id).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
		return nil
	})
}

// --- products ---

// ListProducts returns the whole catalog ordered by name
func (s *CatalogService) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	return products, nil
}

// CreateProduct stores a new product after validating its category and
// refreshing the cached margin
func (s *CatalogService) CreateProduct(product *models.Product) error {
	if err := s.validateProduct(product); err != nil {
		return err
	}
	if err := s.db.Create(product).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// UpdateProduct overwrites an existing product and recomputes its margin
func (s *CatalogService) UpdateProduct(id uint, product *models.Product) error {
	if err := s.requireRow(&models.Product{}, id, "product"); err != nil {
		return err
	}
	if err := s.validateProduct(product); err != nil {
		return err
	}
	product.ID = id
	if err := s.db.Save(product).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// DeleteProduct removes a product and the subscriptions referencing it
func (s *CatalogService) DeleteProduct(id uint) error {
	if err := s.requireRow(&models.Product{}, id, "product"); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Subscription{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
		if err := tx.Delete(&models.Product{}, id).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
		return nil
	})
}

func (s *CatalogService) validateProduct(product *models.Product) error {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", product.CategoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("checking category: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: category %d", ErrNotFound, product.CategoryID)
	}
	product.Margin = margin(product.PurchasePrice, product.SellingPrice)
	return nil
}

// margin returns the relative margin of a product as a decimal fraction
func margin(purchase, selling float64) float64 {
	if selling == 0 {
		return 0
	}
	return (selling - purchase) / selling
}

// --- categories & subcategories ---

// ListCategories returns all categories ordered by name
func (s *CatalogService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	return categories, nil
}

// CreateCategory stores a new category
func (s *CatalogService) CreateCategory(category *models.Category) error {
	if err := s.db.Create(category).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// UpdateCategory renames a category
func (s *CatalogService) UpdateCategory(id uint, name string) error {
	if err := s.requireRow(&models.Category{}, id, "category"); err != nil {
		return err
	}
	if err := s.db.Model(&models.Category{}).Where("id = ?", id).Update("name", name).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// DeleteCategory removes a category, its products and their subscriptions
func (s *CatalogService) DeleteCategory(id uint) error {
	if err := s.requireRow(&models.Category{}, id, "category"); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var productIDs []uint
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Subscription{}).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
			}
			if err := tx.Where("id IN ?", productIDs).Delete(&models.Product{}).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
			}
		}
		if err := tx.Delete(&models.Category{}, id).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
		return nil
	})
}

// ListSubcategories returns all subcategories, the sentinel "None" first
func (s *CatalogService) ListSubcategories() ([]models.Subcategory, error) {
	var subcategories []models.Subcategory
	if err := s.db.Order("id").Find(&subcategories).Error; err != nil {
		return nil, fmt.Errorf("querying subcategories: %w", err)
	}
	return subcategories, nil
}

// CreateSubcategory stores a new subcategory
func (s *CatalogService) CreateSubcategory(subcategory *models.Subcategory) error {
	if err := s.db.Create(subcategory).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// DeleteSubcategory removes a subcategory. The sentinel default row is
// protected.
func (s *CatalogService) DeleteSubcategory(id uint) error {
	if id == models.DefaultSubcategoryID {
		return ErrDefaultProtected
	}
	result := s.db.Delete(&models.Subcategory{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: subcategory %d", ErrNotFound, id)
	}
	return nil
}

func (s *CatalogService) requireRow(model interface{}, id uint, name string) error {
	err := s.db.First(model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, name, id)
	}
	if err != nil {
		return fmt.Errorf("querying %s: %w", name, err)
	}
	return nil
}
