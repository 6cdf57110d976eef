// Package model defines the core domain types for the event booking marketplace.
package model

import "time"

// Role is the kind of actor a signed-in account represents.
type Role string

const (
	// RoleUser books events.
	RoleUser Role = "user"
	// RoleLister creates and owns events and approves bookings against them.
	RoleLister Role = "lister"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleLister
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
)

// User is a signed-up account, either a booker or a lister.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated actor attached to a request.
type Identity struct {
	UserID string
	Role   Role
}

// Event represents a bookable event created by a lister.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
	Images      []string  `json:"images"`
	ListerID    string    `json:"lister_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Booking reserves a slot (event, date, time) for a user. References to the
// user and event are weak: lookup only, no ownership.
type Booking struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	EventID       string        `json:"event_id"`
	PhoneNumber   string        `json:"phone_number"`
	IDCardNumber  string        `json:"id_card_number"`
	BookingDate   time.Time     `json:"booking_date"`
	BookingTime   string        `json:"booking_time"`
	Note          string        `json:"note"`
	Status        BookingStatus `json:"status"`
	ListerMessage string        `json:"lister_message,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Active reports whether the booking still holds its slot.
func (b *Booking) Active() bool {
	return b.Status != StatusCancelled
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in DateLayout (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Category    string   `json:"category"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Price       float64  `json:"price"`
	Capacity    int      `json:"capacity"`
	Images      []string `json:"images"`
}

// UpdateEventRequest carries a partial event update; nil fields keep their
// current value.
type UpdateEventRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Category    *string   `json:"category"`
	Date        *string   `json:"date"`
	Time        *string   `json:"time"`
	Price       *float64  `json:"price"`
	Capacity    *int      `json:"capacity"`
	Images      *[]string `json:"images"`
}

// CreateBookingRequest is the payload for reserving a slot.
type CreateBookingRequest struct {
	EventID      string `json:"event_id"`
	PhoneNumber  string `json:"phone_number"`
	IDCardNumber string `json:"id_card_number"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Note         string `json:"note"`
}

// ErrorResponse is a standard JSON error envelope. Redirect, when present,
// names the route a denied actor should be sent to.
type ErrorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}
