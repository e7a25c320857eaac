package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/No9005/mini-moi/models"
	"github.com/No9005/mini-moi/utils"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// testClock freezes "now" on Friday 2024-06-14, so tomorrow is Saturday
// 2024-06-15
var testClock = fixedClock{now: time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)}

var (
	testToday    = time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	testTomorrow = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Category{},
		&models.Subcategory{},
		&models.Product{},
		&models.Subscription{},
		&models.Order{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	// sentinel subcategory; gorm treats a zero primary key as unset, so raw SQL
	if err := db.Exec("INSERT INTO subcategory (id, name) VALUES (?, ?)", models.DefaultSubcategoryID, "None").Error; err != nil {
		t.Fatalf("Failed to seed default subcategory: %v", err)
	}

	return db
}

// seedDeliveryFixture loads a small bakery round: three customers in two
// towns, three products in two categories and four subscriptions due
// tomorrow. Subscriptions 5 and 6 are due on other days, subscription 7 is
// dormant.
func seedDeliveryFixture(t *testing.T, db *gorm.DB) {
	categories := []models.Category{
		{ID: 1, Name: "Brot"},
		{ID: 2, Name: "Semmel"},
	}
	if err := db.Create(&categories).Error; err != nil {
		t.Fatalf("Failed to seed categories: %v", err)
	}

	subcategories := []models.Subcategory{
		{ID: 1, Name: "Ganz"},
		{ID: 2, Name: "Geschnitten"},
	}
	if err := db.Create(&subcategories).Error; err != nil {
		t.Fatalf("Failed to seed subcategories: %v", err)
	}

	products := []models.Product{
		{ID: 1, Name: "Sonnenkernbrot", CategoryID: 1, PurchasePrice: 2.00, SellingPrice: 3.50, Margin: margin(2.00, 3.50)},
		{ID: 2, Name: "Fitnessbrot", CategoryID: 1, PurchasePrice: 3.00, SellingPrice: 5.00, Margin: margin(3.00, 5.00)},
		{ID: 3, Name: "Kaisersemmel", CategoryID: 2, PurchasePrice: 0.20, SellingPrice: 0.50, Margin: margin(0.20, 0.50)},
	}
	if err := db.Create(&products).Error; err != nil {
		t.Fatalf("Failed to seed products: %v", err)
	}

	customers := []models.Customer{
		{ID: 1, Name: "Fried", Surname: "Egg", Street: "Meyerweg", Nr: 5, Postal: "12345", Town: "Entenhausen", Approach: 1},
		{ID: 2, Name: "Dagobert", Surname: "Duck", Street: "Talerstrasse", Nr: 1, Postal: "12345", Town: "Entenhausen", Approach: 2},
		{ID: 3, Name: "Dream", Surname: "Worker", Street: "Wolkenallee", Nr: 7, Postal: "99999", Town: "Dreamland", Approach: 1},
	}
	if err := db.Create(&customers).Error; err != nil {
		t.Fatalf("Failed to seed customers: %v", err)
	}

	subscriptions := []models.Subscription{
		{ID: 1, CustomerID: 1, ProductID: 1, SubcategoryID: 1, Quantity: 10, CycleType: models.CycleDay, Interval: 5, NextDelivery: testTomorrow, UpdateDate: testToday},
		{ID: 2, CustomerID: 1, ProductID: 3, SubcategoryID: 0, Quantity: 25, CycleType: models.CycleInterval, Interval: 7, NextDelivery: testTomorrow, UpdateDate: testToday},
		{ID: 3, CustomerID: 2, ProductID: 2, SubcategoryID: 2, Quantity: 2, CycleType: models.CycleInterval, Interval: 2, NextDelivery: testTomorrow, UpdateDate: testToday},
		{ID: 4, CustomerID: 3, ProductID: 1, SubcategoryID: 2, Quantity: 2, CycleType: models.CycleDay, Interval: 5, NextDelivery: testTomorrow, UpdateDate: testToday},
		{ID: 5, CustomerID: 2, ProductID: 1, SubcategoryID: 1, Quantity: 1, CycleType: models.CycleInterval, Interval: 1, NextDelivery: testToday, UpdateDate: testToday},
		{ID: 6, CustomerID: 3, ProductID: 1, SubcategoryID: 1, Quantity: 1, CycleType: models.CycleInterval, Interval: 1, NextDelivery: testTomorrow.AddDate(0, 0, 1), UpdateDate: testToday},
		{ID: 7, CustomerID: 3, ProductID: 3, SubcategoryID: 0, Quantity: 3, CycleType: models.CycleNone, Interval: 0, NextDelivery: testTomorrow, UpdateDate: testToday},
	}
	if err := db.Create(&subscriptions).Error; err != nil {
		t.Fatalf("Failed to seed subscriptions: %v", err)
	}
}

func TestSelectDue(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)
	service := NewDeliveryService(db, testClock)

	due, err := service.SelectDue(time.UTC)
	assert.NoError(t, err)

	ids := make([]uint, 0, len(due))
	for _, sub := range due {
		ids = append(ids, sub.ID)
	}

	// 5 is due today, 6 the day after tomorrow, 7 is dormant
	assert.ElementsMatch(t, []uint{1, 2, 3, 4}, ids)
}

func TestSelectDue_NothingDue(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewDeliveryService(db, testClock)

	due, err := service.SelectDue(time.UTC)
	assert.ErrorIs(t, err, ErrNoDueDeliveries)
	assert.Nil(t, due)
}

func TestSelectDue_BusinessTimezone(t *testing.T) {
	db := setupServiceTestDB(t)
	berlin, err := time.LoadLocation("Europe/Berlin")
	assert.NoError(t, err)

	category := models.Category{ID: 1, Name: "Brot"}
	db.Create(&category)
	product := models.Product{ID: 1, Name: "Baguette", CategoryID: 1, PurchasePrice: 1, SellingPrice: 2}
	db.Create(&product)
	customer := models.Customer{ID: 1, Name: "Fried", Surname: "Egg", Street: "Meyerweg", Nr: 5, Postal: "12345", Town: "Entenhausen"}
	db.Create(&customer)

	// 22:30 UTC on the 14th is already the 15th in Berlin
	eveningUTC := models.Subscription{
		ID: 1, CustomerID: 1, ProductID: 1, Quantity: 1,
		CycleType: models.CycleInterval, Interval: 7,
		NextDelivery: time.Date(2024, 6, 14, 22, 30, 0, 0, time.UTC),
		UpdateDate:   testToday,
	}
	db.Create(&eveningUTC)

	service := NewDeliveryService(db, testClock)

	due, err := service.SelectDue(berlin)
	assert.NoError(t, err)
	assert.Len(t, due, 1)
	assert.Equal(t, uint(1), due[0].ID)

	// the same timestamp is still the 14th on a UTC calendar
	_, err = service.SelectDue(time.UTC)
	assert.ErrorIs(t, err, ErrNoDueDeliveries)
}

func TestSelectDue_BehindUTCTimezone(t *testing.T) {
	db := setupServiceTestDB(t)
	newYork, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)

	category := models.Category{ID: 1, Name: "Brot"}
	db.Create(&category)
	product := models.Product{ID: 1, Name: "Baguette", CategoryID: 1, PurchasePrice: 1, SellingPrice: 2}
	db.Create(&product)
	customer := models.Customer{ID: 1, Name: "Fried", Surname: "Egg", Street: "Meyerweg", Nr: 5, Postal: "12345", Town: "Entenhausen"}
	db.Create(&customer)

	// an explicit date goes in as local midnight, which for New York lands
	// a few hours past the UTC midnight of the same calendar day
	subService := NewSubscriptionService(db, testClock)
	err = subService.Add([]SubscriptionInput{
		{CustomerID: 1, ProductID: 1, Quantity: 2, CycleType: "interval", Interval: 7, NextDelivery: "2024.06.15"},
		{CustomerID: 1, ProductID: 1, Quantity: 1, CycleType: "interval", Interval: 7, NextDelivery: "2024.06.16"},
	}, newYork)
	assert.NoError(t, err)

	var stored models.Subscription
	assert.NoError(t, db.First(&stored).Error)
	assert.Equal(t, time.Date(2024, 6, 15, 4, 0, 0, 0, time.UTC), stored.NextDelivery.UTC())

	service := NewDeliveryService(db, testClock)

	// only the abo dated tomorrow on the New York calendar is due; the one
	// dated a day later stays out
	due, err := service.SelectDue(newYork)
	assert.NoError(t, err)
	assert.Len(t, due, 1)
	assert.Equal(t, stored.ID, due[0].ID)
}

func TestCreateOverview(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)
	service := NewDeliveryService(db, testClock)

	overview, err := service.CreateOverview("en", time.UTC)
	assert.NoError(t, err)

	// scalar totals
	assert.InDelta(t, 64.50, overview.TotalEarnings, 0.001)
	assert.InDelta(t, 35.00, overview.TotalSpendings, 0.001)

	// category totals, sorted by category name
	assert.Equal(t, []CategoryTotal{
		{CategoryName: "Brot", Quantity: 14, Cost: 52.00},
		{CategoryName: "Semmel", Quantity: 25, Cost: 12.50},
	}, overview.CategoryOverview.Totals)
	assert.Equal(t, []string{"category_name", "quantity", "cost"}, overview.CategoryOverview.Columns)
	assert.Equal(t, "Category", overview.CategoryOverview.Labels["category_name"])
	assert.Equal(t, "Qnt.", overview.CategoryOverview.Labels["quantity"])

	// product x subcategory breakdown per category
	brot, ok := overview.ProductBreakdown["Brot"]
	assert.True(t, ok)
	assert.Equal(t, []string{"Ganz", "Geschnitten"}, brot.Subcategories)
	assert.Equal(t, []BreakdownRow{
		{ProductName: "Fitnessbrot", Quantities: map[string]int{"Ganz": 0, "Geschnitten": 2}, Total: 2},
		{ProductName: "Sonnenkernbrot", Quantities: map[string]int{"Ganz": 10, "Geschnitten": 2}, Total: 12},
	}, brot.Rows)

	semmel, ok := overview.ProductBreakdown["Semmel"]
	assert.True(t, ok)
	assert.Equal(t, []string{"None"}, semmel.Subcategories)
	assert.Equal(t, []BreakdownRow{
		{ProductName: "Kaisersemmel", Quantities: map[string]int{"None": 25}, Total: 25},
	}, semmel.Rows)

	// town grouping and in-town ordering: approach first, product name second
	assert.Len(t, overview.TownLines, 2)

	entenhausen := overview.TownLines["Entenhausen"]
	assert.Len(t, entenhausen, 3)
	assert.Equal(t, "Kaisersemmel", entenhausen[0].ProductName)
	assert.Equal(t, "Sonnenkernbrot", entenhausen[1].ProductName)
	assert.Equal(t, "Fitnessbrot", entenhausen[2].ProductName)
	assert.Equal(t, 1, entenhausen[0].Approach)
	assert.Equal(t, 2, entenhausen[2].Approach)

	dreamland := overview.TownLines["Dreamland"]
	assert.Len(t, dreamland, 1)
	assert.Equal(t, "Sonnenkernbrot", dreamland[0].ProductName)
	assert.Equal(t, "Worker", dreamland[0].CustomerSurname)

	// the customer grand total is broadcast onto every line of that customer
	assert.InDelta(t, 47.50, entenhausen[0].TotalCost, 0.001)
	assert.InDelta(t, 47.50, entenhausen[1].TotalCost, 0.001)
	assert.InDelta(t, 10.00, entenhausen[2].TotalCost, 0.001)
	assert.InDelta(t, 7.00, dreamland[0].TotalCost, 0.001)

	// line details
	first := entenhausen[0]
	assert.Equal(t, uint(2), first.SubscriptionID)
	assert.Equal(t, uint(1), first.CustomerID)
	assert.Equal(t, "Fried", first.CustomerName)
	assert.Equal(t, "Entenhausen", first.Town)
	assert.Equal(t, 25, first.Quantity)
	assert.InDelta(t, 0.50, first.Price, 0.001)
	assert.InDelta(t, 12.50, first.Cost, 0.001)
}

func TestCreateOverview_Idempotent(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)
	service := NewDeliveryService(db, testClock)

	first, err := service.CreateOverview("en", time.UTC)
	assert.NoError(t, err)
	second, err := service.CreateOverview("en", time.UTC)
	assert.NoError(t, err)

	assert.Equal(t, first, second, "re-running the aggregation must not change anything")
}

func TestCreateOverview_DanglingReference(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)

	// stale subscription pointing at a deleted customer
	stale := models.Subscription{
		ID: 8, CustomerID: 999, ProductID: 1, SubcategoryID: 1, Quantity: 1,
		CycleType: models.CycleInterval, Interval: 7,
		NextDelivery: testTomorrow, UpdateDate: testToday,
	}
	db.Create(&stale)

	service := NewDeliveryService(db, testClock)
	overview, err := service.CreateOverview("en", time.UTC)

	assert.ErrorIs(t, err, ErrDanglingReference)
	assert.Nil(t, overview, "a stale reference must fail the whole run, not drop a row")
}

func overviewLines(overview *DeliveryOverview) []DeliveryLine {
	var lines []DeliveryLine
	for _, townLines := range overview.TownLines {
		lines = append(lines, townLines...)
	}
	return lines
}

func TestBook(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)
	service := NewDeliveryService(db, testClock)

	overview, err := service.CreateOverview("en", time.UTC)
	assert.NoError(t, err)

	result, err := service.Book(overviewLines(overview))
	assert.NoError(t, err)

	assert.Equal(t, 4, result.OrdersCreated)
	assert.InDelta(t, 64.50, result.TotalEarnings, 0.001)
	assert.Equal(t, []uint{1, 2, 3, 4}, result.AdvancedSubscriptionIDs)
	assert.Empty(t, result.SkippedSubscriptionIDs)

	// one immutable order per line, dated at booking time
	var orders []models.Order
	db.Order("id").Find(&orders)
	assert.Len(t, orders, 4)
	for _, order := range orders {
		assert.Equal(t, testClock.now, order.Date.UTC())
		assert.NotEmpty(t, order.ProductName)
		assert.NotEmpty(t, order.CategoryName)
	}

	// next delivery advances from the CURRENT date, per cycle rule:
	// 2024-06-15 is a Saturday (weekday index 5)
	expectedNext := map[uint]time.Time{
		1: time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC), // day/5: next Saturday
		2: time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC), // interval/7
		3: time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC), // interval/2
		4: time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC), // day/5
	}
	for id, expected := range expectedNext {
		var sub models.Subscription
		assert.NoError(t, db.First(&sub, id).Error)
		assert.Equal(t, expected, sub.NextDelivery.UTC(), "subscription %d", id)
		assert.Equal(t, testClock.now, sub.UpdateDate.UTC())
	}

	// untouched subscriptions keep their dates
	var untouched models.Subscription
	assert.NoError(t, db.First(&untouched, 5).Error)
	assert.Equal(t, testToday, untouched.NextDelivery.UTC())
}

func TestBook_SkipsUnknownSubscriptions(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)
	service := NewDeliveryService(db, testClock)

	overview, err := service.CreateOverview("en", time.UTC)
	assert.NoError(t, err)
	lines := overviewLines(overview)

	ghost := lines[0]
	ghost.SubscriptionID = 999
	lines = append(lines, ghost)

	result, err := service.Book(lines)
	assert.NoError(t, err)

	assert.Equal(t, 4, result.OrdersCreated, "the unknown line must not be booked")
	assert.Equal(t, []uint{999}, result.SkippedSubscriptionIDs)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(4), count)
}

func TestBook_AllUnknownSubscriptions(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)
	service := NewDeliveryService(db, testClock)

	overview, err := service.CreateOverview("en", time.UTC)
	assert.NoError(t, err)

	lines := overviewLines(overview)[:1]
	lines[0].SubscriptionID = 999

	result, err := service.Book(lines)
	assert.ErrorIs(t, err, ErrUnknownSubscription)
	assert.Nil(t, result)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestBook_EmptyPayload(t *testing.T) {
	db := setupServiceTestDB(t)
	service := NewDeliveryService(db, testClock)

	result, err := service.Book(nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)
	assert.Nil(t, result)
}

func TestBook_IncompleteLine(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)
	service := NewDeliveryService(db, testClock)

	overview, err := service.CreateOverview("en", time.UTC)
	assert.NoError(t, err)
	lines := overviewLines(overview)

	tests := []struct {
		name   string
		mutate func(line *DeliveryLine)
	}{
		{"missing customer id", func(l *DeliveryLine) { l.CustomerID = 0 }},
		{"missing product id", func(l *DeliveryLine) { l.ProductID = 0 }},
		{"missing product name", func(l *DeliveryLine) { l.ProductName = "" }},
		{"zero quantity", func(l *DeliveryLine) { l.Quantity = 0 }},
		{"negative quantity", func(l *DeliveryLine) { l.Quantity = -1 }},
		{"zero price", func(l *DeliveryLine) { l.Price = 0 }},
		{"zero cost", func(l *DeliveryLine) { l.Cost = 0 }},
		{"missing subcategory name", func(l *DeliveryLine) { l.SubcategoryName = "" }},
		{"missing category name", func(l *DeliveryLine) { l.CategoryName = "" }},
		{"missing subscription id", func(l *DeliveryLine) { l.SubscriptionID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := make([]DeliveryLine, len(lines))
			copy(broken, lines)
			tt.mutate(&broken[0])

			result, err := service.Book(broken)
			assert.ErrorIs(t, err, ErrIncompleteDeliveryLine)
			assert.Nil(t, result)

			var count int64
			db.Model(&models.Order{}).Count(&count)
			assert.Equal(t, int64(0), count)
		})
	}
}

func TestBook_AtomicRollback(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)
	service := NewDeliveryService(db, testClock)

	overview, err := service.CreateOverview("en", time.UTC)
	assert.NoError(t, err)
	lines := overviewLines(overview)

	// a negative cost passes the completeness check but violates the
	// non-negative total constraint of the orders table mid-transaction
	for i := range lines {
		if lines[i].SubscriptionID == 3 {
			lines[i].Cost = -5.0
		}
	}

	result, err := service.Book(lines)
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.Nil(t, result)

	// nothing may survive the failed transaction
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)

	var sub models.Subscription
	assert.NoError(t, db.First(&sub, 1).Error)
	assert.Equal(t, testTomorrow, sub.NextDelivery.UTC(), "no subscription may advance when the booking fails")
}

func TestBook_InvalidStoredRuleRollsBack(t *testing.T) {
	db := setupServiceTestDB(t)
	seedDeliveryFixture(t, db)

	// corrupt a stored rule: weekday index out of range
	db.Model(&models.Subscription{}).Where("id = ?", 1).Update("interval", 9)

	service := NewDeliveryService(db, testClock)
	overview, err := service.CreateOverview("en", time.UTC)
	assert.NoError(t, err)

	result, err := service.Book(overviewLines(overview))
	assert.ErrorIs(t, err, utils.ErrInvalidRecurrenceRule)
	assert.Nil(t, result)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count, "orders created before the bad rule must roll back")
}
