package events

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"neontix/internal/shared/constants"
	"neontix/internal/shared/validation"
	"neontix/pkg/cache"
	"neontix/pkg/logger"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	defaultSeats    = 100
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	CreateEvent(ctx context.Context, adminID string, req CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	InvalidateEvent(ctx context.Context, id uuid.UUID)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	log          *logger.Logger
	detailTTL    time.Duration
	listTTL      time.Duration
}

func NewService(repo Repository) Service {
	return &service{
		repo:      repo,
		log:       logger.GetDefault(),
		detailTTL: constants.TTL_CATALOG_DETAIL,
		listTTL:   constants.TTL_CATALOG_LIST,
	}
}

// NewServiceWithTTL overrides the catalog cache lifetimes
func NewServiceWithTTL(repo Repository, detailTTL, listTTL time.Duration) Service {
	s := NewService(repo).(*service)
	if detailTTL > 0 {
		s.detailTTL = detailTTL
	}
	if listTTL > 0 {
		s.listTTL = listTTL
	}
	return s
}

// RegisterValidators installs the event_category binding tag
func RegisterValidators() error {
	names := make([]string, 0, len(Categories()))
	for _, c := range Categories() {
		names = append(names, string(c))
	}
	return validation.RegisterEnum("event_category", names...)
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateEvent(ctx context.Context, adminID string, req CreateEventRequest) (*EventResponse, error) {
	if !Category(req.Category).IsValid() {
		return nil, ErrInvalidCategory
	}
	if req.PriceMax < req.PriceMin {
		return nil, ErrInvalidPrice
	}

	seats := req.TotalSeats
	if seats == 0 {
		seats = defaultSeats
	}

	event := &Event{
		Title:          req.Title,
		Description:    req.Description,
		Category:       Category(req.Category),
		ImageURL:       req.ImageURL,
		Date:           req.Date,
		Time:           req.Time,
		Venue:          req.Venue,
		City:           req.City,
		PriceMin:       req.PriceMin,
		PriceMax:       req.PriceMax,
		Rating:         req.Rating,
		Trending:       req.Trending,
		Featured:       req.Featured,
		TotalSeats:     seats,
		AvailableSeats: seats,
		CreatedBy:      adminID,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.invalidateLists(ctx)
	s.log.LogEventCreated(ctx, event.ID.String(), adminID)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	if s.cacheService == nil {
		return s.fetchEvent(ctx, id)
	}

	var resp EventResponse
	err := s.cacheService.GetOrSet(ctx, constants.BuildEventDetailKey(id.String()), s.detailTTL, func() (interface{}, error) {
		return s.fetchEvent(ctx, id)
	}, &resp)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (s *service) fetchEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		if !Category(*req.Category).IsValid() {
			return nil, ErrInvalidCategory
		}
		updates["category"] = *req.Category
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}
	if req.Time != nil {
		updates["time"] = *req.Time
	}
	if req.Venue != nil {
		updates["venue"] = *req.Venue
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.Trending != nil {
		updates["trending"] = *req.Trending
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	priceMin, priceMax := current.PriceMin, current.PriceMax
	if req.PriceMin != nil {
		priceMin = *req.PriceMin
		updates["price_min"] = priceMin
	}
	if req.PriceMax != nil {
		priceMax = *req.PriceMax
		updates["price_max"] = priceMax
	}
	if priceMax < priceMin {
		return nil, ErrInvalidPrice
	}

	total, available := current.TotalSeats, current.AvailableSeats
	if req.TotalSeats != nil {
		// Resizing the house keeps the number of sold seats.
		sold := current.TotalSeats - current.AvailableSeats
		total = *req.TotalSeats
		available = total - sold
		if available < 0 {
			available = 0
		}
		updates["total_seats"] = total
		updates["available_seats"] = available
	}
	if req.AvailableSeats != nil {
		available = *req.AvailableSeats
		updates["available_seats"] = available
	}
	if available > total {
		return nil, ErrSeatsExceedTotal
	}

	if len(updates) == 0 {
		resp := current.ToResponse()
		return &resp, nil
	}

	event, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.InvalidateEvent(ctx, id)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.InvalidateEvent(ctx, id)
	return nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = defaultPageSize
	}

	if s.cacheService == nil {
		return s.fetchEvents(ctx, query)
	}

	var result PaginatedEvents
	err := s.cacheService.GetOrSet(ctx, listKey(query), s.listTTL, func() (interface{}, error) {
		return s.fetchEvents(ctx, query)
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) fetchEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	events, total, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, len(events))
	for i := range events {
		responses[i] = events[i].ToResponse()
	}

	return &PaginatedEvents{
		Events:     responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}, nil
}

// InvalidateEvent drops the cached detail and every cached listing
func (s *service) InvalidateEvent(ctx context.Context, id uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildEventDetailKey(id.String())); err != nil {
		s.log.WarnContext(ctx, "Failed to invalidate event cache", "event_id", id.String(), "error", err.Error())
	}
	s.invalidateLists(ctx)
}

func (s *service) invalidateLists(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_LIST); err != nil {
		s.log.WarnContext(ctx, "Failed to invalidate event list cache", "error", err.Error())
	}
}

func listKey(q EventListQuery) string {
	return constants.BuildEventListKey(
		"category", q.Category,
		"min", intParam(q.MinPrice),
		"max", intParam(q.MaxPrice),
		"search", q.Search,
		"city", q.City,
		"trending", boolParam(q.Trending),
		"featured", boolParam(q.Featured),
		"sort", q.Sort,
		"page", strconv.Itoa(q.Page),
		"limit", strconv.Itoa(q.Limit),
	)
}

func intParam(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolParam(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
