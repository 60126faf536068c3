package bookings

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"neontix/internal/checkout"
	"neontix/internal/events"
)

// SeatList is stored as a jsonb array on the booking row
type SeatList []checkout.BookedSeat

func (s SeatList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SeatList) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SeatList", value)
	}
	return json.Unmarshal(data, s)
}

func (s SeatList) IDs() []string {
	ids := make([]string, len(s))
	for i, seat := range s {
		ids[i] = seat.ID
	}
	return ids
}

type Booking struct {
	ID               uuid.UUID     `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID        string        `json:"session_id" gorm:"size:64;index"`
	UserID           string        `json:"user_id,omitempty" gorm:"size:64;index"`
	CustomerEmail    string        `json:"customer_email,omitempty" gorm:"size:255"`
	CustomerName     string        `json:"customer_name,omitempty" gorm:"size:255"`
	EventID          uuid.UUID     `json:"event_id" gorm:"type:uuid;not null;index"`
	Event            *events.Event `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Seats            SeatList      `json:"seats" gorm:"type:jsonb;not null"`
	TicketCount      int           `json:"ticket_count" gorm:"not null;check:ticket_count > 0"`
	TotalAmount      int           `json:"total_amount" gorm:"not null;check:total_amount >= 0"`
	BookingFee       int           `json:"booking_fee" gorm:"not null;default:0"`
	Tax              int           `json:"tax" gorm:"not null;default:0"`
	Status           Status        `json:"status" gorm:"type:varchar(20);not null;default:'confirmed';index"`
	PaymentReference string        `json:"payment_reference,omitempty" gorm:"size:128"`
	PaymentMethod    string        `json:"payment_method,omitempty" gorm:"size:32"`
	CreatedAt        time.Time     `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt        time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}
