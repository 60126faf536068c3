package events

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
			return err
		}
		if err := tx.Model(&event).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&event).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	var events []Event
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Event{})

	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}

	if query.MinPrice != nil {
		db = db.Where("price_min >= ?", *query.MinPrice)
	}

	if query.MaxPrice != nil {
		db = db.Where("price_min <= ?", *query.MaxPrice)
	}

	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(venue) LIKE ? OR LOWER(city) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	if query.City != "" {
		db = db.Where("LOWER(city) = ?", strings.ToLower(query.City))
	}

	if query.Trending != nil {
		db = db.Where("trending = ?", *query.Trending)
	}

	if query.Featured != nil {
		db = db.Where("featured = ?", *query.Featured)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit

	err := db.Order(orderClause(query.Sort)).
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error

	return events, totalCount, err
}

func orderClause(sort string) string {
	switch sort {
	case "newest":
		return "created_at DESC"
	case "price":
		return "price_min ASC, date ASC"
	default:
		return "date ASC, created_at DESC"
	}
}
