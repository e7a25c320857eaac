package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/No9005/mini-moi/models"
	"github.com/No9005/mini-moi/utils"
)

// SubscriptionInput carries the operator-entered fields of one abo.
// NextDelivery is an optional explicit local calendar date ("YYYY.MM.DD" or
// "YYYY-MM-DD"); left empty it is computed from today's date via the
// recurrence rule.
type SubscriptionInput struct {
	CustomerID    uint   `json:"customer_id"`
	ProductID     uint   `json:"product_id"`
	SubcategoryID uint   `json:"subcategory_id"`
	Quantity      int    `json:"quantity"`
	CycleType     string `json:"cycle_type"`
	Interval      int    `json:"interval"`
	NextDelivery  string `json:"next_delivery"`
}

// SubscriptionView is one abo row prepared for display: dates are rendered
// in business-local time
type SubscriptionView struct {
	ID            uint   `json:"id"`
	CustomerID    uint   `json:"customer_id"`
	ProductID     uint   `json:"product_id"`
	SubcategoryID uint   `json:"subcategory_id"`
	Quantity      int    `json:"quantity"`
	CycleType     string `json:"cycle_type"`
	Interval      int    `json:"interval"`
	NextDelivery  string `json:"next_delivery"`
	UpdateDate    string `json:"update_date"`
}

// SubscriptionService manages the abo records of customers
type SubscriptionService struct {
	db    *gorm.DB
	clock utils.Clock
}

// NewSubscriptionService creates a SubscriptionService
func NewSubscriptionService(db *gorm.DB, clock utils.Clock) *SubscriptionService {
	return &SubscriptionService{db: db, clock: clock}
}

// List returns up to limit subscriptions (all of them for limit <= 0)
func (s *SubscriptionService) List(limit int, loc *time.Location) ([]SubscriptionView, error) {
	query := s.db.Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var subs []models.Subscription
	if err := query.Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	return viewsOf(subs, loc), nil
}

// ListByCustomer returns every subscription of one customer
func (s *SubscriptionService) ListByCustomer(customerID uint, loc *time.Location) ([]SubscriptionView, error) {
	var subs []models.Subscription
	if err := s.db.Where("customer_id = ?", customerID).Order("id").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	return viewsOf(subs, loc), nil
}

// Get returns a single subscription by id
func (s *SubscriptionService) Get(id uint, loc *time.Location) (*SubscriptionView, error) {
	var sub models.Subscription
	if err := s.db.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: subscription %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("querying subscription: %w", err)
	}
	view := viewsOf([]models.Subscription{sub}, loc)[0]
	return &view, nil
}

// Add validates and stores a batch of new subscriptions. The whole batch is
// rejected on the first invalid entry.
func (s *SubscriptionService) Add(inputs []SubscriptionInput, loc *time.Location) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no subscriptions", ErrEmptyPayload)
	}

	toAdd := make([]models.Subscription, 0, len(inputs))
	for i, input := range inputs {
		sub, err := s.buildSubscription(input, loc)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		toAdd = append(toAdd, *sub)
	}

	if err := s.db.Create(&toAdd).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// Update overwrites a single subscription with the given input
func (s *SubscriptionService) Update(id uint, input SubscriptionInput, loc *time.Location) error {
	var existing models.Subscription
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: subscription %d", ErrNotFound, id)
		}
		return fmt.Errorf("querying subscription: %w", err)
	}

	sub, err := s.buildSubscription(input, loc)
	if err != nil {
		return err
	}
	sub.ID = id

	if err := s.db.Save(sub).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// Delete removes a single subscription
func (s *SubscriptionService) Delete(id uint) error {
	result := s.db.Delete(&models.Subscription{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: subscription %d", ErrNotFound, id)
	}
	return nil
}

// buildSubscription validates the referenced records and the cycle rule and
// resolves the next delivery date
func (s *SubscriptionService) buildSubscription(input SubscriptionInput, loc *time.Location) (*models.Subscription, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, input.Quantity)
	}

	var count int64
	if err := s.db.Model(&models.Customer{}).Where("id = ?", input.CustomerID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking customer: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownCustomer, input.CustomerID)
	}
	if err := s.db.Model(&models.Product{}).Where("id = ?", input.ProductID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking product: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownProduct, input.ProductID)
	}
	if err := s.db.Model(&models.Subcategory{}).Where("id = ?", input.SubcategoryID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking subcategory: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownSubcategory, input.SubcategoryID)
	}

	cycleType := normalizeCycleType(input.CycleType)
	interval := input.Interval
	if cycleType == models.CycleNone {
		interval = 0
	}

	now := s.clock.Now().UTC()
	sub := &models.Subscription{
		CustomerID:    input.CustomerID,
		ProductID:     input.ProductID,
		SubcategoryID: input.SubcategoryID,
		Quantity:      input.Quantity,
		CycleType:     cycleType,
		Interval:      interval,
		UpdateDate:    now,
	}

	// validates the cycle rule even when an explicit date overrides the result
	next, err := utils.NextDelivery(utils.Today(s.clock), cycleType, interval)
	if err != nil {
		return nil, err
	}

	if explicit := strings.TrimSpace(input.NextDelivery); explicit != "" {
		date, err := utils.ParseDate(explicit)
		if err != nil {
			return nil, err
		}
		sub.NextDelivery = utils.LocalToUTC(date, loc)
		return sub, nil
	}

	if next == nil {
		// a dormant abo has no rule to derive a date from
		return nil, ErrMissingDeliveryDate
	}
	sub.NextDelivery = *next
	return sub, nil
}

func normalizeCycleType(cycleType string) string {
	switch strings.ToLower(strings.TrimSpace(cycleType)) {
	case "", "none":
		return models.CycleNone
	default:
		return strings.ToLower(strings.TrimSpace(cycleType))
	}
}

func viewsOf(subs []models.Subscription, loc *time.Location) []SubscriptionView {
	views := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, SubscriptionView{
			ID:            sub.ID,
			CustomerID:    sub.CustomerID,
			ProductID:     sub.ProductID,
			SubcategoryID: sub.SubcategoryID,
			Quantity:      sub.Quantity,
			CycleType:     sub.CycleType,
			Interval:      sub.Interval,
			NextDelivery:  utils.FormatDate(utils.UTCToLocal(sub.NextDelivery, loc)),
			UpdateDate:    utils.FormatDateTime(utils.UTCToLocal(sub.UpdateDate, loc)),
		})
	}
	return views
}
