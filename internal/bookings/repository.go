package bookings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neontix/internal/events"
)

type Repository interface {
	// CreateWithSeats inserts the booking and takes its seats from the event in one transaction
	CreateWithSeats(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	OccupiedSeatIDs(ctx context.Context, eventID uuid.UUID) ([]string, error)
	// UpdateStatus returns the updated booking and the status it had before
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Booking, Status, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func holdingStatuses() []Status {
	return []Status{StatusConfirmed, StatusPending}
}

func (r *repository) CreateWithSeats(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, booking.EventID)
		if err != nil {
			return err
		}

		if booking.Status.HoldsSeats() {
			if err := takeSeats(tx, event, booking.ID, booking.Seats); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Create(booking).Error; err != nil {
			return err
		}

		booking.Event = event
		return nil
	})
}

func lockEvent(tx *gorm.DB, eventID uuid.UUID) (*events.Event, error) {
	var event events.Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", eventID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, events.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// takeSeats checks capacity and seat overlap against other holding bookings, then
// decrements the event's availability. The event row must already be locked.
func takeSeats(tx *gorm.DB, event *events.Event, bookingID uuid.UUID, seats SeatList) error {
	if event.AvailableSeats < len(seats) {
		return ErrSoldOut
	}

	q := tx.Model(&Booking{}).
		Where("event_id = ? AND status IN ?", event.ID, holdingStatuses())
	if bookingID != uuid.Nil {
		q = q.Where("id <> ?", bookingID)
	}

	var held []SeatList
	if err := q.Pluck("seats", &held).Error; err != nil {
		return err
	}

	taken := make(map[string]struct{})
	for _, list := range held {
		for _, s := range list {
			taken[s.ID] = struct{}{}
		}
	}
	for _, s := range seats {
		if _, ok := taken[s.ID]; ok {
			return ErrSeatTaken
		}
	}

	return tx.Model(&events.Event{}).
		Where("id = ?", event.ID).
		UpdateColumn("available_seats", gorm.Expr("available_seats - ?", len(seats))).Error
}

func releaseSeats(tx *gorm.DB, eventID uuid.UUID, count int) error {
	return tx.Model(&events.Event{}).
		Where("id = ?", eventID).
		UpdateColumn("available_seats", gorm.Expr("LEAST(available_seats + ?, total_seats)", count)).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Booking{}).Joins("Event")

	if query.Status != "" {
		db = db.Where("bookings.status = ?", query.Status)
	}

	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where(`LOWER("Event"."title") LIKE ? OR CAST(bookings.id AS TEXT) LIKE ?`, searchTerm, searchTerm)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := db.Order("bookings.created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

func (r *repository) OccupiedSeatIDs(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	var held []SeatList
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("event_id = ? AND status IN ?", eventID, holdingStatuses()).
		Pluck("seats", &held).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0)
	for _, list := range held {
		ids = append(ids, list.IDs()...)
	}
	return ids, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Booking, Status, error) {
	var previous Status
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&booking).Error
		if err != nil {
			return err
		}

		previous = booking.Status
		if previous == status {
			return nil
		}

		switch {
		case previous.HoldsSeats() && !status.HoldsSeats():
			if err := releaseSeats(tx, booking.EventID, booking.TicketCount); err != nil {
				return err
			}
		case !previous.HoldsSeats() && status.HoldsSeats():
			event, err := lockEvent(tx, booking.EventID)
			if err != nil {
				return err
			}
			if err := takeSeats(tx, event, booking.ID, booking.Seats); err != nil {
				return err
			}
		}

		return tx.Model(&Booking{}).Where("id = ?", id).Update("status", status).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrBookingNotFound
		}
		return nil, "", err
	}

	booking, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return booking, previous, nil
}
