package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Totals are the booking aggregates behind both admin screens
type Totals struct {
	Revenue           int   `json:"revenue"`
	ConfirmedBookings int64 `json:"confirmed_bookings"`
	TotalBookings     int64 `json:"total_bookings"`
	TicketsSold       int64 `json:"tickets_sold"`
	UniqueCustomers   int64 `json:"unique_customers"`
}

type RecentBooking struct {
	ID            uuid.UUID `json:"id"`
	EventTitle    string    `json:"event_title"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name"`
	TicketCount   int       `json:"ticket_count"`
	TotalAmount   int       `json:"total_amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// PeriodRevenue is one row of a revenue series grouped by day or month
type PeriodRevenue struct {
	Period   time.Time `json:"period"`
	Revenue  int       `json:"revenue"`
	Bookings int64     `json:"bookings"`
}

type DailyMetric struct {
	Day      string `json:"day"`
	Date     string `json:"date"`
	Revenue  int    `json:"revenue"`
	Bookings int64  `json:"bookings"`
}

type MonthlyMetric struct {
	Month    string `json:"month"`
	Revenue  int    `json:"revenue"`
	Bookings int64  `json:"bookings"`
}

type CategoryShare struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DashboardAnalytics is the admin landing page
type DashboardAnalytics struct {
	TotalRevenue   int             `json:"total_revenue"`
	TotalBookings  int64           `json:"total_bookings"`
	TotalEvents    int64           `json:"total_events"`
	TicketsSold    int64           `json:"tickets_sold"`
	RecentBookings []RecentBooking `json:"recent_bookings"`
	Weekly         []DailyMetric   `json:"weekly"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// AdminAnalytics is the analytics screen. Revenue figures count confirmed bookings only.
type AdminAnalytics struct {
	TotalRevenue         int             `json:"total_revenue"`
	AverageOrderValue    float64         `json:"average_order_value"`
	UniqueCustomers      int64           `json:"unique_customers"`
	ConfirmedBookings    int64           `json:"confirmed_bookings"`
	CategoryDistribution []CategoryShare `json:"category_distribution"`
	WeeklyRevenue        []DailyMetric   `json:"weekly_revenue"`
	MonthlyTrend         []MonthlyMetric `json:"monthly_trend"`
	GeneratedAt          time.Time       `json:"generated_at"`
}
