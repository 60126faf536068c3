package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"neontix/internal/bookings"
)

type Repository interface {
	GetTotals(ctx context.Context) (*Totals, error)
	CountEvents(ctx context.Context) (int64, error)
	GetRecentBookings(ctx context.Context, limit int) ([]RecentBooking, error)
	GetCategoryCounts(ctx context.Context) ([]CategoryCount, error)
	// GetDailyRevenue groups confirmed bookings created at or after since by calendar day
	GetDailyRevenue(ctx context.Context, since time.Time) ([]PeriodRevenue, error)
	// GetMonthlyRevenue groups confirmed bookings created at or after since by month
	GetMonthlyRevenue(ctx context.Context, since time.Time) ([]PeriodRevenue, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func confirmed() string {
	return string(bookings.StatusConfirmed)
}

func (r *repository) GetTotals(ctx context.Context) (*Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(total_amount) FILTER (WHERE status = @confirmed), 0) AS revenue,
			COUNT(*) FILTER (WHERE status = @confirmed) AS confirmed_bookings,
			COUNT(*) AS total_bookings,
			COALESCE(SUM(ticket_count) FILTER (WHERE status = @confirmed), 0) AS tickets_sold,
			COUNT(DISTINCT COALESCE(NULLIF(user_id, ''), NULLIF(customer_email, ''))) FILTER (WHERE status = @confirmed) AS unique_customers
		FROM bookings
	`, map[string]interface{}{"confirmed": confirmed()}).Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	return &totals, nil
}

func (r *repository) CountEvents(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Table("events").Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return total, nil
}

func (r *repository) GetRecentBookings(ctx context.Context, limit int) ([]RecentBooking, error) {
	var recent []RecentBooking
	err := r.db.WithContext(ctx).
		Table("bookings b").
		Select("b.id, e.title AS event_title, b.customer_email, b.customer_name, b.ticket_count, b.total_amount, b.status, b.created_at").
		Joins("JOIN events e ON e.id = b.event_id").
		Order("b.created_at DESC").
		Limit(limit).
		Scan(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent bookings: %w", err)
	}
	return recent, nil
}

func (r *repository) GetCategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := r.db.WithContext(ctx).
		Table("events").
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC, category").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count events by category: %w", err)
	}
	return counts, nil
}

func (r *repository) GetDailyRevenue(ctx context.Context, since time.Time) ([]PeriodRevenue, error) {
	return r.revenueSeries(ctx, "day", since)
}

func (r *repository) GetMonthlyRevenue(ctx context.Context, since time.Time) ([]PeriodRevenue, error) {
	return r.revenueSeries(ctx, "month", since)
}

// revenueSeries buckets confirmed revenue with DATE_TRUNC; unit is "day" or "month"
func (r *repository) revenueSeries(ctx context.Context, unit string, since time.Time) ([]PeriodRevenue, error) {
	var rows []PeriodRevenue
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE_TRUNC(?, created_at) AS period,
			COALESCE(SUM(total_amount), 0) AS revenue,
			COUNT(*) AS bookings
		FROM bookings
		WHERE status = ? AND created_at >= ?
		GROUP BY period
		ORDER BY period
	`, unit, confirmed(), since).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get %s revenue: %w", unit, err)
	}
	return rows, nil
}
