package bookings

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"neontix/internal/checkout"
	"neontix/internal/notifications"
	"neontix/internal/shared/constants"
	"neontix/internal/shared/validation"
	"neontix/pkg/cache"
	"neontix/pkg/logger"
)

const defaultPageSize = 20

// EventCache drops cached catalog entries whose availability changed
type EventCache interface {
	InvalidateEvent(ctx context.Context, id uuid.UUID)
}

type Service interface {
	checkout.BookingSink
	SetCacheService(cacheService cache.Service)
	OccupiedSeats(ctx context.Context, eventID uuid.UUID) ([]string, error)
	ListBookings(ctx context.Context, query BookingListQuery) (*PaginatedBookings, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*BookingResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*BookingResponse, error)
}

type service struct {
	repo         Repository
	publisher    notifications.Publisher
	eventCache   EventCache
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository, publisher notifications.Publisher, eventCache EventCache) Service {
	if publisher == nil {
		publisher = notifications.NewNoopPublisher(nil)
	}
	return &service{
		repo:       repo,
		publisher:  publisher,
		eventCache: eventCache,
		log:        logger.GetDefault(),
	}
}

// RegisterValidators installs the booking_status binding tag
func RegisterValidators() error {
	names := make([]string, 0, len(Statuses()))
	for _, s := range Statuses() {
		names = append(names, string(s))
	}
	return validation.RegisterEnum("booking_status", names...)
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// SubmitBooking persists a confirmed checkout and returns the booking id.
func (s *service) SubmitBooking(ctx context.Context, req checkout.BookingRequest) (string, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return "", ErrInvalidEventID
	}
	if len(req.Seats) == 0 {
		return "", ErrNoSeats
	}

	status := Status(req.Status)
	if status == "" {
		status = StatusConfirmed
	}
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}

	booking := &Booking{
		SessionID:        req.SessionID,
		UserID:           req.Buyer.UserID,
		CustomerEmail:    req.Buyer.Email,
		CustomerName:     req.Buyer.Name,
		EventID:          eventID,
		Seats:            SeatList(req.Seats),
		TicketCount:      len(req.Seats),
		TotalAmount:      req.TotalAmount,
		BookingFee:       req.BookingFee,
		Tax:              req.Tax,
		Status:           status,
		PaymentReference: req.PaymentReference,
		PaymentMethod:    req.PaymentMethod,
	}
	if !req.CreatedAt.IsZero() {
		booking.CreatedAt = req.CreatedAt
	}

	if err := s.repo.CreateWithSeats(ctx, booking); err != nil {
		return "", fmt.Errorf("failed to create booking: %w", err)
	}

	bookingID := booking.ID.String()
	s.log.LogBookingCreated(ctx, bookingID, req.EventID, booking.TicketCount, booking.TotalAmount)
	s.afterSeatsChanged(ctx, eventID)

	var title string
	if booking.Event != nil {
		title = booking.Event.Title
	}
	notification := notifications.NewNotificationBuilder().
		WithType(notifications.NotificationTypeBookingConfirmed).
		WithRecipient(booking.CustomerEmail, booking.CustomerName).
		WithEvent(req.EventID, title).
		WithBooking(bookingID, string(booking.Status)).
		WithSession(req.SessionID).
		WithSeats(booking.Seats.IDs(), booking.TotalAmount).
		Build()
	s.publish(ctx, notification)

	return bookingID, nil
}

// OccupiedSeats lists the seat ids held by confirmed or pending bookings
func (s *service) OccupiedSeats(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	if s.cacheService == nil {
		return s.repo.OccupiedSeatIDs(ctx, eventID)
	}

	var ids []string
	err := s.cacheService.GetOrSet(ctx, constants.BuildOccupancyKey(eventID.String()), constants.TTL_OCCUPANCY, func() (interface{}, error) {
		return s.repo.OccupiedSeatIDs(ctx, eventID)
	}, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *service) ListBookings(ctx context.Context, query BookingListQuery) (*PaginatedBookings, error) {
	if query.Status != "" && !Status(query.Status).IsValid() {
		return nil, ErrInvalidStatus
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = defaultPageSize
	}

	bookings, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = bookings[i].ToResponse()
	}

	return &PaginatedBookings{
		Bookings:   responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}, nil
}

func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*BookingResponse, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	booking, previous, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	resp := booking.ToResponse()
	if previous == status {
		return &resp, nil
	}

	s.log.LogBookingStatusChanged(ctx, resp.ID, string(previous), string(status))
	s.afterSeatsChanged(ctx, booking.EventID)

	if booking.CustomerEmail != "" {
		notification := notifications.NewNotificationBuilder().
			WithType(notifications.NotificationTypeBookingStatusChanged).
			WithRecipient(booking.CustomerEmail, booking.CustomerName).
			WithEvent(resp.EventID, resp.EventTitle).
			WithBooking(resp.ID, string(status)).
			WithSession(booking.SessionID).
			WithSeats(booking.Seats.IDs(), booking.TotalAmount).
			Build()
		s.publish(ctx, notification)
	}

	return &resp, nil
}

func (s *service) publish(ctx context.Context, n *notifications.Notification) {
	// The booking is already committed; a lost notification is logged, not returned
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.log.WarnContext(ctx, "Failed to publish booking notification",
			"booking_id", n.BookingID,
			"type", string(n.Type),
			"error", err.Error(),
		)
	}
}

func (s *service) afterSeatsChanged(ctx context.Context, eventID uuid.UUID) {
	if s.eventCache != nil {
		s.eventCache.InvalidateEvent(ctx, eventID)
	}
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildOccupancyKey(eventID.String())); err != nil {
		s.log.WarnContext(ctx, "Failed to invalidate occupancy cache", "event_id", eventID.String(), "error", err.Error())
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ANALYTICS); err != nil {
		s.log.WarnContext(ctx, "Failed to invalidate analytics cache", "error", err.Error())
	}
}
