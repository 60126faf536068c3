package analytics

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"neontix/internal/shared/constants"
	"neontix/pkg/cache"
	"neontix/pkg/logger"
)

const (
	recentBookingsLimit = 10
	weeklyDays          = 7
	trendMonths         = 12
	dateLayout          = "2006-01-02"
	monthLayout         = "2006-01"
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	GetDashboard(ctx context.Context) (*DashboardAnalytics, error)
	GetAnalytics(ctx context.Context) (*AdminAnalytics, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	ttl          time.Duration
	now          func() time.Time
	log          *logger.Logger
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		ttl:  constants.TTL_ANALYTICS,
		now:  time.Now,
		log:  logger.GetDefault(),
	}
}

// NewServiceWithTTL overrides how long the admin read models are cached
func NewServiceWithTTL(repo Repository, ttl time.Duration) Service {
	s := NewService(repo).(*service)
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) GetDashboard(ctx context.Context) (*DashboardAnalytics, error) {
	if s.cacheService == nil {
		dashboard, err := s.buildDashboard(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get dashboard analytics: %w", err)
		}
		return dashboard, nil
	}

	var dashboard DashboardAnalytics
	err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_ANALYTICS_DASHBOARD, s.ttl, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	}, &dashboard)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard analytics: %w", err)
	}
	return &dashboard, nil
}

func (s *service) buildDashboard(ctx context.Context) (*DashboardAnalytics, error) {
	now := s.now().UTC()

	totals, err := s.repo.GetTotals(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.CountEvents(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.GetRecentBookings(ctx, recentBookingsLimit)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.GetDailyRevenue(ctx, startOfDay(now).AddDate(0, 0, -(weeklyDays-1)))
	if err != nil {
		return nil, err
	}

	if recent == nil {
		recent = []RecentBooking{}
	}
	return &DashboardAnalytics{
		TotalRevenue:   totals.Revenue,
		TotalBookings:  totals.TotalBookings,
		TotalEvents:    events,
		TicketsSold:    totals.TicketsSold,
		RecentBookings: recent,
		Weekly:         lastDays(now, weeklyDays, daily),
		GeneratedAt:    now,
	}, nil
}

func (s *service) GetAnalytics(ctx context.Context) (*AdminAnalytics, error) {
	if s.cacheService == nil {
		analytics, err := s.buildAnalytics(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get analytics: %w", err)
		}
		return analytics, nil
	}

	var analytics AdminAnalytics
	err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_ANALYTICS_OVERVIEW, s.ttl, func() (interface{}, error) {
		return s.buildAnalytics(ctx)
	}, &analytics)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics: %w", err)
	}
	return &analytics, nil
}

func (s *service) buildAnalytics(ctx context.Context) (*AdminAnalytics, error) {
	now := s.now().UTC()

	totals, err := s.repo.GetTotals(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.GetCategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.GetDailyRevenue(ctx, startOfDay(now).AddDate(0, 0, -(weeklyDays-1)))
	if err != nil {
		return nil, err
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthly, err := s.repo.GetMonthlyRevenue(ctx, monthStart.AddDate(0, -(trendMonths-1), 0))
	if err != nil {
		return nil, err
	}

	analytics := &AdminAnalytics{
		TotalRevenue:         totals.Revenue,
		AverageOrderValue:    averageOrderValue(totals.Revenue, totals.ConfirmedBookings),
		UniqueCustomers:      totals.UniqueCustomers,
		ConfirmedBookings:    totals.ConfirmedBookings,
		CategoryDistribution: categoryShares(categories),
		WeeklyRevenue:        lastDays(now, weeklyDays, daily),
		MonthlyTrend:         lastMonths(now, trendMonths, monthly),
		GeneratedAt:          now,
	}

	s.log.DebugContext(ctx, "Analytics rebuilt",
		"revenue", analytics.TotalRevenue,
		"confirmed_bookings", analytics.ConfirmedBookings,
	)
	return analytics, nil
}

// averageOrderValue rounds to cents; zero bookings yields zero
func averageOrderValue(revenue int, bookings int64) float64 {
	if bookings == 0 {
		return 0
	}
	return math.Round(float64(revenue)/float64(bookings)*100) / 100
}

func categoryShares(counts []CategoryCount) []CategoryShare {
	var total int64
	for _, c := range counts {
		total += c.Count
	}

	shares := make([]CategoryShare, 0, len(counts))
	for _, c := range counts {
		share := CategoryShare{
			Name:     capitalize(c.Category),
			Category: c.Category,
			Count:    c.Count,
		}
		if total > 0 {
			share.Percentage = math.Round(float64(c.Count)/float64(total)*10000) / 100
		}
		shares = append(shares, share)
	}
	return shares
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// lastDays returns one entry per calendar day ending today, oldest first,
// with days that had no bookings reported as zero.
func lastDays(now time.Time, days int, rows []PeriodRevenue) []DailyMetric {
	byDate := make(map[string]PeriodRevenue, len(rows))
	for _, row := range rows {
		byDate[row.Period.UTC().Format(dateLayout)] = row
	}

	today := startOfDay(now)
	out := make([]DailyMetric, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(dateLayout)
		row := byDate[key]
		out = append(out, DailyMetric{
			Day:      day.Weekday().String()[:3],
			Date:     key,
			Revenue:  row.Revenue,
			Bookings: row.Bookings,
		})
	}
	return out
}

// lastMonths is lastDays at month granularity
func lastMonths(now time.Time, months int, rows []PeriodRevenue) []MonthlyMetric {
	byMonth := make(map[string]PeriodRevenue, len(rows))
	for _, row := range rows {
		byMonth[row.Period.UTC().Format(monthLayout)] = row
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]MonthlyMetric, 0, months)
	for i := months - 1; i >= 0; i-- {
		key := first.AddDate(0, -i, 0).Format(monthLayout)
		row := byMonth[key]
		out = append(out, MonthlyMetric{
			Month:    key,
			Revenue:  row.Revenue,
			Bookings: row.Bookings,
		})
	}
	return out
}
