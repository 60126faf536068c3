package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBookingConfirmed     NotificationType = "BOOKING_CONFIRMED"
	NotificationTypeBookingStatusChanged NotificationType = "BOOKING_STATUS_CHANGED"
	NotificationTypeCheckoutExpired      NotificationType = "CHECKOUT_EXPIRED"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusSending NotificationStatus = "SENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Notification is the message carried on the booking and checkout topics.
type Notification struct {
	ID   uuid.UUID        `json:"id"`
	Type NotificationType `json:"type"`

	// Recipient is optional; guest checkouts that expire have none
	RecipientEmail string `json:"recipient_email,omitempty"`
	RecipientName  string `json:"recipient_name,omitempty"`
	Subject        string `json:"subject"`

	EventID       string   `json:"event_id,omitempty"`
	EventTitle    string   `json:"event_title,omitempty"`
	BookingID     string   `json:"booking_id,omitempty"`
	BookingStatus string   `json:"booking_status,omitempty"`
	SessionID     string   `json:"session_id,omitempty"`
	SeatIDs       []string `json:"seat_ids,omitempty"`
	TotalAmount   int      `json:"total_amount,omitempty"`

	Status    NotificationStatus `json:"status"`
	LastError *string            `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	SentAt    *time.Time         `json:"sent_at,omitempty"`
}

type NotificationBuilder struct {
	notification *Notification
}

func NewNotificationBuilder() *NotificationBuilder {
	now := time.Now()
	return &NotificationBuilder{
		notification: &Notification{
			ID:        uuid.New(),
			Status:    NotificationStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	return nb
}

func (nb *NotificationBuilder) WithRecipient(email, name string) *NotificationBuilder {
	nb.notification.RecipientEmail = email
	nb.notification.RecipientName = name
	return nb
}

func (nb *NotificationBuilder) WithEvent(eventID, title string) *NotificationBuilder {
	nb.notification.EventID = eventID
	nb.notification.EventTitle = title
	return nb
}

func (nb *NotificationBuilder) WithBooking(bookingID, status string) *NotificationBuilder {
	nb.notification.BookingID = bookingID
	nb.notification.BookingStatus = status
	return nb
}

func (nb *NotificationBuilder) WithSession(sessionID string) *NotificationBuilder {
	nb.notification.SessionID = sessionID
	return nb
}

func (nb *NotificationBuilder) WithSeats(seatIDs []string, total int) *NotificationBuilder {
	nb.notification.SeatIDs = seatIDs
	nb.notification.TotalAmount = total
	return nb
}

func (nb *NotificationBuilder) Build() *Notification {
	if nb.notification.Subject == "" {
		nb.notification.Subject = defaultSubject(nb.notification)
	}
	return nb.notification
}

func defaultSubject(n *Notification) string {
	switch n.Type {
	case NotificationTypeBookingConfirmed:
		if n.EventTitle != "" {
			return fmt.Sprintf("Booking confirmed for %s", n.EventTitle)
		}
		return "Your booking is confirmed"
	case NotificationTypeBookingStatusChanged:
		return fmt.Sprintf("Your booking is now %s", n.BookingStatus)
	case NotificationTypeCheckoutExpired:
		return "Your seat hold has expired"
	default:
		return "Notification from NeonTix"
	}
}

// GetPartitionKey keeps every message about one event on one partition.
func (n *Notification) GetPartitionKey() string {
	if n.EventID != "" {
		return n.EventID
	}
	return n.SessionID
}

func (n *Notification) HasRecipient() bool {
	return n.RecipientEmail != ""
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func (n *Notification) MarkSent() {
	now := time.Now()
	n.Status = NotificationStatusSent
	n.SentAt = &now
	n.UpdatedAt = now
}

func (n *Notification) MarkFailed(err error) {
	n.Status = NotificationStatusFailed
	n.UpdatedAt = time.Now()

	errorStr := err.Error()
	n.LastError = &errorStr
}
