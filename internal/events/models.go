package events

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryMovie   Category = "movie"
	CategoryConcert Category = "concert"
	CategoryComedy  Category = "comedy"
	CategorySports  Category = "sports"
)

// Categories lists the closed set of event categories.
func Categories() []Category {
	return []Category{CategoryMovie, CategoryConcert, CategoryComedy, CategorySports}
}

func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

type Event struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title          string    `json:"title" gorm:"not null;size:255"`
	Description    string    `json:"description" gorm:"type:text"`
	Category       Category  `json:"category" gorm:"type:varchar(20);not null;index"`
	ImageURL       string    `json:"image_url" gorm:"size:500"`
	Date           string    `json:"date" gorm:"type:varchar(10);not null;index"`
	Time           string    `json:"time" gorm:"type:varchar(20)"`
	Venue          string    `json:"venue" gorm:"not null;size:255"`
	City           string    `json:"city" gorm:"not null;size:120;index"`
	PriceMin       int       `json:"price_min" gorm:"not null;check:price_min >= 0"`
	PriceMax       int       `json:"price_max" gorm:"not null;check:price_max >= price_min"`
	Rating         *float64  `json:"rating,omitempty"`
	Trending       bool      `json:"trending" gorm:"default:false"`
	Featured       bool      `json:"featured" gorm:"default:false"`
	TotalSeats     int       `json:"total_seats" gorm:"not null;default:100;check:total_seats > 0"`
	AvailableSeats int       `json:"available_seats" gorm:"not null;check:available_seats >= 0"`
	CreatedBy      string    `json:"-" gorm:"size:64"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

type EventResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       Category  `json:"category"`
	ImageURL       string    `json:"image_url"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Venue          string    `json:"venue"`
	City           string    `json:"city"`
	PriceMin       int       `json:"price_min"`
	PriceMax       int       `json:"price_max"`
	Rating         *float64  `json:"rating,omitempty"`
	Trending       bool      `json:"trending"`
	Featured       bool      `json:"featured"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	SoldOut        bool      `json:"sold_out"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateEventRequest struct {
	Title       string   `json:"title" binding:"required,min=2,max=255"`
	Description string   `json:"description" binding:"max=2000"`
	Category    string   `json:"category" binding:"required,event_category"`
	ImageURL    string   `json:"image_url" binding:"omitempty,url,max=500"`
	Date        string   `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string   `json:"time" binding:"max=20"`
	Venue       string   `json:"venue" binding:"required,max=255"`
	City        string   `json:"city" binding:"required,max=120"`
	PriceMin    int      `json:"price_min" binding:"min=0"`
	PriceMax    int      `json:"price_max" binding:"gtefield=PriceMin"`
	Rating      *float64 `json:"rating" binding:"omitempty,min=0,max=10"`
	Trending    bool     `json:"trending"`
	Featured    bool     `json:"featured"`
	TotalSeats  int      `json:"total_seats" binding:"omitempty,min=1,max=100000"`
}

type UpdateEventRequest struct {
	Title          *string  `json:"title" binding:"omitempty,min=2,max=255"`
	Description    *string  `json:"description" binding:"omitempty,max=2000"`
	Category       *string  `json:"category" binding:"omitempty,event_category"`
	ImageURL       *string  `json:"image_url" binding:"omitempty,url,max=500"`
	Date           *string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time           *string  `json:"time" binding:"omitempty,max=20"`
	Venue          *string  `json:"venue" binding:"omitempty,max=255"`
	City           *string  `json:"city" binding:"omitempty,max=120"`
	PriceMin       *int     `json:"price_min" binding:"omitempty,min=0"`
	PriceMax       *int     `json:"price_max" binding:"omitempty,min=0"`
	Rating         *float64 `json:"rating" binding:"omitempty,min=0,max=10"`
	Trending       *bool    `json:"trending"`
	Featured       *bool    `json:"featured"`
	TotalSeats     *int     `json:"total_seats" binding:"omitempty,min=1,max=100000"`
	AvailableSeats *int     `json:"available_seats" binding:"omitempty,min=0"`
}

// EventListQuery filters the catalog. Price bounds apply to the starting price.
type EventListQuery struct {
	Category string `form:"category" binding:"omitempty,event_category"`
	MinPrice *int   `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice *int   `form:"max_price" binding:"omitempty,min=0"`
	Search   string `form:"search" binding:"max=100"`
	City     string `form:"city" binding:"max=120"`
	Trending *bool  `form:"trending"`
	Featured *bool  `form:"featured"`
	Sort     string `form:"sort" binding:"omitempty,oneof=date newest price"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func (e *Event) ToResponse() EventResponse {
	available := e.AvailableSeats
	if available < 0 {
		available = 0
	}

	return EventResponse{
		ID:             e.ID.String(),
		Title:          e.Title,
		Description:    e.Description,
		Category:       e.Category,
		ImageURL:       e.ImageURL,
		Date:           e.Date,
		Time:           e.Time,
		Venue:          e.Venue,
		City:           e.City,
		PriceMin:       e.PriceMin,
		PriceMax:       e.PriceMax,
		Rating:         e.Rating,
		Trending:       e.Trending,
		Featured:       e.Featured,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: available,
		SoldOut:        available == 0,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
