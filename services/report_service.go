package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/No9005/mini-moi/models"
	"github.com/No9005/mini-moi/utils"
)

// ReportSeries is one chart-ready series: parallel label and value slices
type ReportSeries struct {
	Index  []string  `json:"index"`
	Values []float64 `json:"values"`
}

// PeriodReport aggregates the persisted orders of one time window
type PeriodReport struct {
	SellingOverview ReportSeries `json:"selling_overview"` // quantity per product
	RevenueSources  ReportSeries `json:"revenue_sources"`  // revenue per category
	Earnings        ReportSeries `json:"earnings"`         // revenue per weekday/day/month
}

// Report holds the standard reporting windows
type Report struct {
	CurrentWeek PeriodReport `json:"current_week"`
	LastWeek    PeriodReport `json:"last_week"`
	Month       PeriodReport `json:"month"`
	Year        PeriodReport `json:"year"`
}

// ReportService recomputes earnings from the permanent order history. The
// same totals shown at booking time must be derivable from these orders, so
// this is also the reconciliation path for the booking transaction.
type ReportService struct {
	db    *gorm.DB
	clock utils.Clock
}

// NewReportService creates a ReportService
func NewReportService(db *gorm.DB, clock utils.Clock) *ReportService {
	return &ReportService{db: db, clock: clock}
}

type reportRow struct {
	date        time.Time // delivery date (order date shifted by one day)
	productName string
	category    string
	quantity    int
	total       float64
}

// Build computes the report for the current year from the orders table.
// Orders are booked the evening before delivery, so every order date is
// shifted by one day to the actual delivery day.
func (s *ReportService) Build(language string) (*Report, error) {
	today := utils.Today(s.clock)
	startOfYear := time.Date(today.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC)
	endOfYear := time.Date(today.Year(), time.December, 30, 23, 59, 59, 0, time.UTC)

	var orders []models.Order
	if err := s.db.
		Where("date >= ? AND date <= ?", startOfYear, endOfYear).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}

	rows := make([]reportRow, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, reportRow{
			date:        utils.TruncateToDay(order.Date).AddDate(0, 0, 1),
			productName: order.ProductName,
			category:    order.CategoryName,
			quantity:    order.Quantity,
			total:       order.Total,
		})
	}

	translation := GetTranslation(language)
	endOfToday := today.Add(24*time.Hour - time.Second)

	report := &Report{
		CurrentWeek: buildPeriod(rows, utils.DateByWeekday(today, 6, -1), endOfToday, groupByWeekday, translation),
		LastWeek:    buildPeriod(rows, utils.DateByWeekday(today, 6, -2), utils.DateByWeekday(today, 6, -1).Add(24*time.Hour-time.Second), groupByWeekday, translation),
		Month:       buildPeriod(rows, time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), endOfToday, groupByDay, translation),
		Year:        buildPeriod(rows, time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), endOfToday, groupByMonth, translation),
	}
	return report, nil
}

type timeGrouper int

const (
	groupByWeekday timeGrouper = iota
	groupByDay
	groupByMonth
)

func buildPeriod(rows []reportRow, start, end time.Time, grouper timeGrouper, translation Translation) PeriodReport {
	quantityPerProduct := make(map[string]float64)
	revenuePerCategory := make(map[string]float64)
	earningsPerBucket := make(map[int]float64) // bucket index keeps chronological order

	for _, row := range rows {
		if row.date.Before(start) || row.date.After(end) {
			continue
		}
		quantityPerProduct[row.productName] += float64(row.quantity)
		revenuePerCategory[row.category] += row.total

		switch grouper {
		case groupByWeekday:
			earningsPerBucket[utils.WeekdayIndex(row.date)] += row.total
		case groupByDay:
			earningsPerBucket[row.date.Day()] += row.total
		case groupByMonth:
			earningsPerBucket[int(row.date.Month())] += row.total
		}
	}

	earnings := ReportSeries{}
	buckets := make([]int, 0, len(earningsPerBucket))
	for bucket := range earningsPerBucket {
		buckets = append(buckets, bucket)
	}
	sort.Ints(buckets)
	for _, bucket := range buckets {
		var label string
		switch grouper {
		case groupByWeekday:
			label = translation.Weekdays[bucket]
		case groupByDay:
			label = strconv.Itoa(bucket)
		case groupByMonth:
			label = translation.Months[bucket-1]
		}
		earnings.Index = append(earnings.Index, label)
		earnings.Values = append(earnings.Values, earningsPerBucket[bucket])
	}

	return PeriodReport{
		SellingOverview: seriesOf(quantityPerProduct),
		RevenueSources:  seriesOf(revenuePerCategory),
		Earnings:        earnings,
	}
}

func seriesOf(sums map[string]float64) ReportSeries {
	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	series := ReportSeries{}
	for _, key := range keys {
		series.Index = append(series.Index, key)
		series.Values = append(series.Values, sums[key])
	}
	return series
}
