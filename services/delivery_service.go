package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/No9005/mini-moi/models"
	"github.com/No9005/mini-moi/utils"
)

// DeliveryLine is one transient row of the next-day delivery plan. It is
// produced by the aggregation, may be edited by the operator in the frontend
// and is consumed by Book. SubscriptionID links the line back to the abo it
// originated from.
type DeliveryLine struct {
	SubscriptionID  uint    `json:"subscription_id"`
	CustomerID      uint    `json:"customer_id"`
	CustomerName    string  `json:"customer_name"`
	CustomerSurname string  `json:"customer_surname"`
	Street          string  `json:"customer_street"`
	Nr              int     `json:"customer_nr"`
	Town            string  `json:"customer_town"`
	Phone           string  `json:"customer_phone"`
	Mobile          string  `json:"customer_mobile"`
	Approach        int     `json:"customer_approach"`
	Notes           string  `json:"customer_notes"`
	ProductID       uint    `json:"product_id"`
	ProductName     string  `json:"product_name"`
	CategoryName    string  `json:"category_name"`
	SubcategoryName string  `json:"subcategory_name"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"product_selling_price"` // unit price
	Cost            float64 `json:"cost"`                  // Price * Quantity
	TotalCost       float64 `json:"total_cost"`            // customer's grand total for the day
	spending        float64 // purchase price * quantity, internal only
}

// CategoryTotal is one row of the category overview
type CategoryTotal struct {
	CategoryName string  `json:"category_name"`
	Quantity     int     `json:"quantity"`
	Cost         float64 `json:"cost"`
}

// CategoryOverview carries the category totals plus the fixed column order
// and the localized column labels for rendering
type CategoryOverview struct {
	Totals  []CategoryTotal   `json:"data"`
	Columns []string          `json:"order"`
	Labels  map[string]string `json:"mapping"`
}

// BreakdownRow is one product row of a per-category cross tabulation
type BreakdownRow struct {
	ProductName string         `json:"product_name"`
	Quantities  map[string]int `json:"quantities"` // subcategory name -> quantity
	Total       int            `json:"total"`
}

// ProductBreakdown cross-tabulates product x subcategory quantities within
// one category. Subcategories lists the column order, rows are sorted by
// product name.
type ProductBreakdown struct {
	Subcategories []string       `json:"subcategories"`
	Rows          []BreakdownRow `json:"rows"`
}

// DeliveryOverview is the full aggregation result handed to the operator for
// review. It is the input boundary of the (external) rendering collaborator.
type DeliveryOverview struct {
	CategoryOverview CategoryOverview            `json:"overview_category"`
	ProductBreakdown map[string]ProductBreakdown `json:"overview_product"`
	TownLines        map[string][]DeliveryLine   `json:"town_based"`
	TotalEarnings    float64                     `json:"total_earnings"`
	TotalSpendings   float64                     `json:"total_spendings"`
}

// BookingResult summarizes a committed booking for audit logging
type BookingResult struct {
	OrdersCreated           int     `json:"orders_created"`
	AdvancedSubscriptionIDs []uint  `json:"advanced_subscription_ids"`
	SkippedSubscriptionIDs  []uint  `json:"skipped_subscription_ids"`
	TotalEarnings           float64 `json:"total_earnings"`
}

// DeliveryService computes the next-day delivery plan and books it
type DeliveryService struct {
	db    *gorm.DB
	clock utils.Clock
}

// NewDeliveryService creates a DeliveryService on the given database and clock
func NewDeliveryService(db *gorm.DB, clock utils.Clock) *DeliveryService {
	return &DeliveryService{db: db, clock: clock}
}

// SelectDue returns every subscription whose next delivery falls on tomorrow
// in business-local time. Timestamps are stored in UTC, so the selection runs
// in two phases: a coarse UTC window around today (wide enough for any
// UTC/local offset; stored dates are UTC midnights or local midnights
// converted to UTC, which land up to a day later for zones behind UTC) and an
// exact local-calendar-date match against tomorrow's local day.
// Returns ErrNoDueDeliveries when nothing is due.
func (s *DeliveryService) SelectDue(loc *time.Location) ([]models.Subscription, error) {
	now := s.clock.Now().UTC()
	today := utils.TruncateToDay(now)
	windowStart := today.AddDate(0, 0, -1)
	windowEnd := today.AddDate(0, 0, 2)

	// tomorrow as a local calendar day, not a UTC midnight reinterpreted
	localTomorrow := utils.TruncateToDay(now.In(loc)).AddDate(0, 0, 1)

	var candidates []models.Subscription
	if err := s.db.
		Where("next_delivery >= ? AND next_delivery <= ?", windowStart, windowEnd).
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("querying due subscriptions: %w", err)
	}

	due := make([]models.Subscription, 0, len(candidates))
	for _, sub := range candidates {
		if !utils.LocalCalendarDateMatches(sub.NextDelivery, localTomorrow, loc) {
			continue
		}
		if sub.Dormant() {
			// should never happen: a dormant abo keeps a fixed date that is
			// not maintained, so it must not produce a delivery
			log.Printf("skipping dormant subscription %d inside the due window", sub.ID)
			continue
		}
		due = append(due, sub)
	}

	if len(due) == 0 {
		return nil, ErrNoDueDeliveries
	}
	return due, nil
}

// CreateOverview builds the full delivery plan for tomorrow: joined delivery
// lines grouped per town, category totals, the per-category product
// breakdown and the scalar earnings/spendings totals. Running it twice
// without intervening writes yields identical output.
func (s *DeliveryService) CreateOverview(language string, loc *time.Location) (*DeliveryOverview, error) {
	due, err := s.SelectDue(loc)
	if err != nil {
		return nil, err
	}

	lines, err := s.joinLines(due)
	if err != nil {
		return nil, err
	}

	// stable output order for towns and within a town
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Town != lines[j].Town {
			return lines[i].Town < lines[j].Town
		}
		if lines[i].Approach != lines[j].Approach {
			return lines[i].Approach < lines[j].Approach
		}
		return lines[i].ProductName < lines[j].ProductName
	})

	// broadcast each customer's grand total back onto its lines
	totalPerCustomer := make(map[uint]float64)
	for _, line := range lines {
		totalPerCustomer[line.CustomerID] += line.Cost
	}
	for i := range lines {
		lines[i].TotalCost = totalPerCustomer[lines[i].CustomerID]
	}

	towns := make(map[string][]DeliveryLine)
	var totalEarnings, totalSpendings float64
	for _, line := range lines {
		towns[line.Town] = append(towns[line.Town], line)
		totalEarnings += line.Cost
		totalSpendings += line.spending
	}

	translation := GetTranslation(language)
	overview := &DeliveryOverview{
		CategoryOverview: categoryOverview(lines, translation),
		ProductBreakdown: productBreakdown(lines),
		TownLines:        towns,
		TotalEarnings:    totalEarnings,
		TotalSpendings:   totalSpendings,
	}
	return overview, nil
}

// joinLines attaches customer, product, category and subcategory attributes
// to every due subscription. Only the id sets actually referenced by the due
// list are fetched. A stale reference fails the whole run: silently dropping
// a row would under-count tomorrow's deliveries.
func (s *DeliveryService) joinLines(due []models.Subscription) ([]DeliveryLine, error) {
	customerIDs := make([]uint, 0, len(due))
	productIDs := make([]uint, 0, len(due))
	subcategoryIDs := make([]uint, 0, len(due))
	seenCustomer := make(map[uint]bool)
	seenProduct := make(map[uint]bool)
	seenSubcategory := make(map[uint]bool)
	for _, sub := range due {
		if !seenCustomer[sub.CustomerID] {
			seenCustomer[sub.CustomerID] = true
			customerIDs = append(customerIDs, sub.CustomerID)
		}
		if !seenProduct[sub.ProductID] {
			seenProduct[sub.ProductID] = true
			productIDs = append(productIDs, sub.ProductID)
		}
		if !seenSubcategory[sub.SubcategoryID] {
			seenSubcategory[sub.SubcategoryID] = true
			subcategoryIDs = append(subcategoryIDs, sub.SubcategoryID)
		}
	}

	var customerRows []models.Customer
	if err := s.db.Where("id IN ?", customerIDs).Find(&customerRows).Error; err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	customers := make(map[uint]models.Customer, len(customerRows))
	for _, c := range customerRows {
		customers[c.ID] = c
	}

	var productRows []models.Product
	if err := s.db.Where("id IN ?", productIDs).Find(&productRows).Error; err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	products := make(map[uint]models.Product, len(productRows))
	categoryIDs := make([]uint, 0, len(productRows))
	seenCategory := make(map[uint]bool)
	for _, p := range productRows {
		products[p.ID] = p
		if !seenCategory[p.CategoryID] {
			seenCategory[p.CategoryID] = true
			categoryIDs = append(categoryIDs, p.CategoryID)
		}
	}

	var categoryRows []models.Category
	if err := s.db.Where("id IN ?", categoryIDs).Find(&categoryRows).Error; err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	categories := make(map[uint]models.Category, len(categoryRows))
	for _, c := range categoryRows {
		categories[c.ID] = c
	}

	var subcategoryRows []models.Subcategory
	if err := s.db.Where("id IN ?", subcategoryIDs).Find(&subcategoryRows).Error; err != nil {
		return nil, fmt.Errorf("querying subcategories: %w", err)
	}
	subcategories := make(map[uint]models.Subcategory, len(subcategoryRows))
	for _, sc := range subcategoryRows {
		subcategories[sc.ID] = sc
	}

	lines := make([]DeliveryLine, 0, len(due))
	for _, sub := range due {
		customer, ok := customers[sub.CustomerID]
		if !ok {
			return nil, fmt.Errorf("%w: subscription %d references customer %d", ErrDanglingReference, sub.ID, sub.CustomerID)
		}
		product, ok := products[sub.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: subscription %d references product %d", ErrDanglingReference, sub.ID, sub.ProductID)
		}
		category, ok := categories[product.CategoryID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d references category %d", ErrDanglingReference, product.ID, product.CategoryID)
		}
		subcategory, ok := subcategories[sub.SubcategoryID]
		if !ok {
			return nil, fmt.Errorf("%w: subscription %d references subcategory %d", ErrDanglingReference, sub.ID, sub.SubcategoryID)
		}

		lines = append(lines, DeliveryLine{
			SubscriptionID:  sub.ID,
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			CustomerSurname: customer.Surname,
			Street:          customer.Street,
			Nr:              customer.Nr,
			Town:            customer.Town,
			Phone:           customer.Phone,
			Mobile:          customer.Mobile,
			Approach:        customer.Approach,
			Notes:           customer.Notes,
			ProductID:       product.ID,
			ProductName:     product.Name,
			CategoryName:    category.Name,
			SubcategoryName: subcategory.Name,
			Quantity:        sub.Quantity,
			Price:           product.SellingPrice,
			Cost:            product.SellingPrice * float64(sub.Quantity),
			spending:        product.PurchasePrice * float64(sub.Quantity),
		})
	}
	return lines, nil
}

// categoryOverviewColumns is the fixed, documented column order of the
// category totals table
var categoryOverviewColumns = []string{"category_name", "quantity", "cost"}

func categoryOverview(lines []DeliveryLine, translation Translation) CategoryOverview {
	sums := make(map[string]*CategoryTotal)
	names := make([]string, 0)
	for _, line := range lines {
		total, ok := sums[line.CategoryName]
		if !ok {
			total = &CategoryTotal{CategoryName: line.CategoryName}
			sums[line.CategoryName] = total
			names = append(names, line.CategoryName)
		}
		total.Quantity += line.Quantity
		total.Cost += line.Cost
	}
	sort.Strings(names)

	totals := make([]CategoryTotal, 0, len(names))
	for _, name := range names {
		totals = append(totals, *sums[name])
	}

	labels := make(map[string]string, len(categoryOverviewColumns))
	for _, col := range categoryOverviewColumns {
		labels[col] = translation.DeliveryColumns[col]
	}

	return CategoryOverview{
		Totals:  totals,
		Columns: categoryOverviewColumns,
		Labels:  labels,
	}
}

func productBreakdown(lines []DeliveryLine) map[string]ProductBreakdown {
	type cell struct{ product, subcategory string }
	perCategory := make(map[string]map[cell]int)
	for _, line := range lines {
		if perCategory[line.CategoryName] == nil {
			perCategory[line.CategoryName] = make(map[cell]int)
		}
		perCategory[line.CategoryName][cell{line.ProductName, line.SubcategoryName}] += line.Quantity
	}

	breakdown := make(map[string]ProductBreakdown, len(perCategory))
	for categoryName, cells := range perCategory {
		subcategorySet := make(map[string]bool)
		productSet := make(map[string]bool)
		for c := range cells {
			subcategorySet[c.subcategory] = true
			productSet[c.product] = true
		}

		subcategories := make([]string, 0, len(subcategorySet))
		for name := range subcategorySet {
			subcategories = append(subcategories, name)
		}
		sort.Strings(subcategories)

		productNames := make([]string, 0, len(productSet))
		for name := range productSet {
			productNames = append(productNames, name)
		}
		sort.Strings(productNames)

		rows := make([]BreakdownRow, 0, len(productNames))
		for _, productName := range productNames {
			row := BreakdownRow{
				ProductName: productName,
				Quantities:  make(map[string]int, len(subcategories)),
			}
			for _, subcategoryName := range subcategories {
				qty := cells[cell{productName, subcategoryName}]
				row.Quantities[subcategoryName] = qty
				row.Total += qty
			}
			rows = append(rows, row)
		}

		breakdown[categoryName] = ProductBreakdown{
			Subcategories: subcategories,
			Rows:          rows,
		}
	}
	return breakdown
}

// Book commits a (possibly operator-edited) set of delivery lines: one
// immutable order per line plus the advance of every involved subscription's
// next delivery date, all inside a single storage transaction. The new date
// is computed from the subscription's CURRENT next delivery, not from "now",
// so the cadence survives delayed bookings.
//
// Lines whose subscription id does not resolve are not booked; their ids are
// reported in the result. If no line resolves, nothing is written and
// ErrUnknownSubscription is returned.
func (s *DeliveryService) Book(lines []DeliveryLine) (*BookingResult, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no delivery lines", ErrEmptyPayload)
	}
	for i, line := range lines {
		if field := line.missingField(); field != "" {
			return nil, fmt.Errorf("%w: line %d is missing %s", ErrIncompleteDeliveryLine, i, field)
		}
	}

	subscriptionIDs := make([]uint, 0, len(lines))
	seen := make(map[uint]bool)
	for _, line := range lines {
		if !seen[line.SubscriptionID] {
			seen[line.SubscriptionID] = true
			subscriptionIDs = append(subscriptionIDs, line.SubscriptionID)
		}
	}

	var subscriptionRows []models.Subscription
	if err := s.db.Where("id IN ?", subscriptionIDs).Find(&subscriptionRows).Error; err != nil {
		return nil, fmt.Errorf("%w: resolving subscriptions: %v", ErrPersistenceFailure, err)
	}
	subscriptions := make(map[uint]models.Subscription, len(subscriptionRows))
	for _, sub := range subscriptionRows {
		subscriptions[sub.ID] = sub
	}

	var skipped []uint
	for _, id := range subscriptionIDs {
		if _, ok := subscriptions[id]; !ok {
			skipped = append(skipped, id)
		}
	}
	sort.Slice(skipped, func(i, j int) bool { return skipped[i] < skipped[j] })

	booked := make([]DeliveryLine, 0, len(lines))
	for _, line := range lines {
		if _, ok := subscriptions[line.SubscriptionID]; ok {
			booked = append(booked, line)
		}
	}
	if len(booked) == 0 {
		return nil, fmt.Errorf("%w: none of the %d delivery lines resolves to a stored subscription", ErrUnknownSubscription, len(lines))
	}

	now := s.clock.Now().UTC()
	result := &BookingResult{SkippedSubscriptionIDs: skipped}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range booked {
			order := models.Order{
				CustomerID:      line.CustomerID,
				ProductID:       line.ProductID,
				ProductName:     line.ProductName,
				CategoryName:    line.CategoryName,
				SubcategoryName: line.SubcategoryName,
				Quantity:        line.Quantity,
				Price:           line.Price,
				Total:           line.Cost,
				Date:            now,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			result.OrdersCreated++
			result.TotalEarnings += line.Cost
		}

		// advance every touched subscription, in id order like the order
		// history expects
		touched := make([]models.Subscription, 0, len(subscriptions))
		for _, sub := range subscriptions {
			touched = append(touched, sub)
		}
		sort.Slice(touched, func(i, j int) bool { return touched[i].ID < touched[j].ID })

		for _, sub := range touched {
			next, err := utils.NextDelivery(sub.NextDelivery, sub.CycleType, sub.Interval)
			if err != nil {
				return err
			}
			updates := map[string]interface{}{"update_date": now}
			if next != nil {
				updates["next_delivery"] = *next
			}
			if err := tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(updates).Error; err != nil {
				return err
			}
			if next != nil {
				result.AdvancedSubscriptionIDs = append(result.AdvancedSubscriptionIDs, sub.ID)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, utils.ErrInvalidRecurrenceRule) || errors.Is(err, utils.ErrUnknownCycleType) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	log.Printf("booked %d orders, advanced %d subscriptions, skipped %d unknown ids",
		result.OrdersCreated, len(result.AdvancedSubscriptionIDs), len(result.SkippedSubscriptionIDs))
	return result, nil
}

// missingField returns the name of the first required field that is not set,
// or "" when the line is complete. The checks follow the documented field
// order of the booking contract.
func (l *DeliveryLine) missingField() string {
	switch {
	case l.CustomerID == 0:
		return "customer_id"
	case l.ProductID == 0:
		return "product_id"
	case l.ProductName == "":
		return "product_name"
	case l.Quantity <= 0:
		return "quantity"
	case l.Price <= 0:
		return "product_selling_price"
	case l.Cost == 0:
		return "cost"
	case l.SubcategoryName == "":
		return "subcategory_name"
	case l.CategoryName == "":
		return "category_name"
	case l.SubscriptionID == 0:
		return "subscription_id"
	}
	return ""
}
