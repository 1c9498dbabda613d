package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adebayoakin/gearmart-backend/internal/orders"
	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	"github.com/adebayoakin/gearmart-backend/pkg/enums"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
)

const reportWindow = 7 * 24 * time.Hour

// Dashboard is the admin overview: paid revenue and order/customer counts for
// the trailing week, with week-over-week growth percentages.
type Dashboard struct {
	Revenue        decimal.Decimal    `json:"revenue"`
	RevenueGrowth  float64            `json:"revenue_growth_pct"`
	Orders         int64              `json:"orders"`
	OrdersGrowth   float64            `json:"orders_growth_pct"`
	Customers      int64              `json:"customers"`
	CustomerGrowth float64            `json:"customers_growth_pct"`
	TopProducts    []TopProduct       `json:"top_products"`
	RecentOrders   []orders.OrderView `json:"recent_orders"`
}

// TopProduct is one row of the revenue leaderboard.
type TopProduct struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int64           `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Service exposes the read-only admin reporting queries.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type windowTotals struct {
	Revenue   decimal.Decimal
	Orders    int64
	Customers int64
}

type service struct {
	db         *gorm.DB
	ordersRepo orders.Repository
	now        func() time.Time
}

// NewService builds the reporting service. now is injectable for tests and
// defaults to the wall clock when nil.
func NewService(db *gorm.DB, ordersRepo orders.Repository, now func() time.Time) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{db: db, ordersRepo: ordersRepo, now: now}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	end := s.now().UTC()
	current, err := s.totals(ctx, end.Add(-reportWindow), end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate current window")
	}
	previous, err := s.totals(ctx, end.Add(-2*reportWindow), end.Add(-reportWindow))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate previous window")
	}

	top, err := s.topProducts(ctx, end.Add(-reportWindow), end, 5)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top products")
	}

	recent, err := s.ordersRepo.ListRecent(ctx, 10)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent orders")
	}
	recentViews := make([]orders.OrderView, 0, len(recent))
	for i := range recent {
		recentViews = append(recentViews, orders.ToOrderView(&recent[i]))
	}

	return &Dashboard{
		Revenue:        current.Revenue,
		RevenueGrowth:  growthPct(current.Revenue.InexactFloat64(), previous.Revenue.InexactFloat64()),
		Orders:         current.Orders,
		OrdersGrowth:   growthPct(float64(current.Orders), float64(previous.Orders)),
		Customers:      current.Customers,
		CustomerGrowth: growthPct(float64(current.Customers), float64(previous.Customers)),
		TopProducts:    top,
		RecentOrders:   recentViews,
	}, nil
}

func (s *service) totals(ctx context.Context, from, to time.Time) (windowTotals, error) {
	var row struct {
		Revenue   decimal.Decimal
		Orders    int64
		Customers int64
	}
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS orders, COUNT(DISTINCT email) AS customers").
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return windowTotals{}, err
	}
	return windowTotals{Revenue: row.Revenue, Orders: row.Orders, Customers: row.Customers}, nil
}

func (s *service) topProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	rows := []TopProduct{}
	err := s.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) AS units_sold, SUM(order_items.line_total) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.payment_status = ?", enums.PaymentStatusPaid).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Group("order_items.product_id, order_items.product_name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// growthPct returns the week-over-week change in percent. A zero previous
// window reads as 0% growth rather than a division blowup, matching the
// dashboard's "no baseline yet" rendering.
func growthPct(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
