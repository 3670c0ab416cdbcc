// Package metrics computes the dashboard figures of a restaurant: receipts and
// order counts compared with the previous period, a daily receipt series and
// the best selling products.
package metrics

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/models"
	"github.com/pedro5g/forfly/internal/utils"
)

const (
	maxPeriodDays   = 7
	popularProducts = 5
)

type MonthReceipt struct {
	Receipt           int64   `json:"receipt"`
	DiffFromLastMonth float64 `json:"diffFromLastMonth"`
}

type MonthAmount struct {
	Amount            int64   `json:"amount"`
	DiffFromLastMonth float64 `json:"diffFromLastMonth"`
}

// DayAmount compares today with yesterday. The field keeps the name the
// dashboard already reads.
type DayAmount struct {
	Amount            int64   `json:"amount"`
	DiffFromYesterday float64 `json:"diffFromLastMonth"`
}

type DailyReceipt struct {
	Date    string `json:"date"` // DD/MM
	Receipt int64  `json:"receipt"`
}

type PopularProduct struct {
	Product *string `json:"product"`
	Amount  int64   `json:"amount"`
}

type Engine struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

type pair struct {
	Current  int64 `gorm:"column:cur_value"`
	Previous int64 `gorm:"column:prev_value"`
}

// compare sums value over [prevStart, curStart) and [curStart, curEnd) in one
// pass over the restaurant's orders.
func (e *Engine) compare(ctx context.Context, restaurantID, value string, prevStart, curStart, curEnd time.Time, status models.OrderStatus) (pair, error) {
	var p pair
	q := e.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(
			"COALESCE(SUM(CASE WHEN created_at >= ? THEN "+value+" ELSE 0 END), 0) AS cur_value, "+
				"COALESCE(SUM(CASE WHEN created_at < ? THEN "+value+" ELSE 0 END), 0) AS prev_value",
			curStart, curStart,
		).
		Where("restaurant_id = ? AND created_at >= ? AND created_at < ?", restaurantID, prevStart, curEnd)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Scan(&p).Error
	return p, err
}

func (e *Engine) monthBounds() (prevStart, curStart, curEnd time.Time) {
	curStart = utils.StartOfMonth(e.now())
	return curStart.AddDate(0, -1, 0), curStart, curStart.AddDate(0, 1, 0)
}

// MonthlyReceipt sums the totals of this month's orders of every status.
func (e *Engine) MonthlyReceipt(ctx context.Context, restaurantID string) (*MonthReceipt, error) {
	prev, cur, end := e.monthBounds()
	p, err := e.compare(ctx, restaurantID, "total_in_cents", prev, cur, end, "")
	if err != nil {
		return nil, err
	}
	return &MonthReceipt{Receipt: p.Current, DiffFromLastMonth: PercentDiff(p.Current, p.Previous)}, nil
}

func (e *Engine) MonthlyOrderCount(ctx context.Context, restaurantID string) (*MonthAmount, error) {
	prev, cur, end := e.monthBounds()
	p, err := e.compare(ctx, restaurantID, "1", prev, cur, end, "")
	if err != nil {
		return nil, err
	}
	return &MonthAmount{Amount: p.Current, DiffFromLastMonth: PercentDiff(p.Current, p.Previous)}, nil
}

func (e *Engine) MonthlyCanceledOrderCount(ctx context.Context, restaurantID string) (*MonthAmount, error) {
	prev, cur, end := e.monthBounds()
	p, err := e.compare(ctx, restaurantID, "1", prev, cur, end, models.StatusCanceled)
	if err != nil {
		return nil, err
	}
	return &MonthAmount{Amount: p.Current, DiffFromLastMonth: PercentDiff(p.Current, p.Previous)}, nil
}

func (e *Engine) DailyOrderCount(ctx context.Context, restaurantID string) (*DayAmount, error) {
	today := utils.StartOfDay(e.now())
	p, err := e.compare(ctx, restaurantID, "1", today.AddDate(0, 0, -1), today, today.AddDate(0, 0, 1), "")
	if err != nil {
		return nil, err
	}
	return &DayAmount{Amount: p.Current, DiffFromYesterday: PercentDiff(p.Current, p.Previous)}, nil
}

// window resolves the requested period. Missing ends default to a 7 day
// span around the given one, or to the last 7 days.
func (e *Engine) window(from, to *time.Time) (time.Time, time.Time, error) {
	var start, end time.Time
	switch {
	case from != nil && to != nil:
		start, end = *from, *to
	case from != nil:
		start = *from
		end = start.AddDate(0, 0, maxPeriodDays)
	case to != nil:
		end = *to
		start = end.AddDate(0, 0, -maxPeriodDays)
	default:
		end = e.now()
		start = end.AddDate(0, 0, -maxPeriodDays)
	}
	start, end = start.UTC(), end.UTC()

	if end.Before(start) {
		return time.Time{}, time.Time{}, core.ErrInvalidPeriod
	}
	if utils.WholeDaysBetween(start, end) > maxPeriodDays {
		return time.Time{}, time.Time{}, core.ErrPeriodTooLarge
	}
	return start, end, nil
}

func (e *Engine) dayExpr() string {
	if e.db.Dialector.Name() == "postgres" {
		return "TO_CHAR(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	}
	return "strftime('%Y-%m-%d', created_at)"
}

// DailyReceiptSeries returns the receipt of every day in the window that has
// orders, oldest first. Both end days are included whole.
func (e *Engine) DailyReceiptSeries(ctx context.Context, restaurantID string, from, to *time.Time) ([]DailyReceipt, error) {
	start, end, err := e.window(from, to)
	if err != nil {
		return nil, err
	}
	lo := utils.StartOfDay(start)
	hi := utils.StartOfDay(end).AddDate(0, 0, 1)

	var rows []struct {
		Day     string
		Receipt int64
	}
	day := e.dayExpr()
	err = e.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(day+" AS day, COALESCE(SUM(total_in_cents), 0) AS receipt").
		Where("restaurant_id = ? AND created_at >= ? AND created_at < ?", restaurantID, lo, hi).
		Group(day).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// full dates compare chronologically, across a year boundary too
	sort.Slice(rows, func(i, j int) bool { return rows[i].Day < rows[j].Day })

	out := make([]DailyReceipt, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse("2006-01-02", r.Day)
		if err != nil {
			return nil, err
		}
		out = append(out, DailyReceipt{Date: d.Format("02/01"), Receipt: r.Receipt})
	}
	return out, nil
}

// PopularProducts ranks products by quantity sold across all of the
// restaurant's orders. Items whose product was deleted share one unnamed row.
func (e *Engine) PopularProducts(ctx context.Context, restaurantID string) ([]PopularProduct, error) {
	out := make([]PopularProduct, 0, popularProducts)
	err := e.db.WithContext(ctx).
		Table("order_items").
		Select("products.name AS product, COALESCE(SUM(order_items.quantity), 0) AS amount").
		Joins("INNER JOIN orders ON orders.id = order_items.order_id").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where("orders.restaurant_id = ?", restaurantID).
		Group("products.name").
		Order("amount DESC").
		Order("products.name IS NULL").
		Order("products.name ASC").
		Limit(popularProducts).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
