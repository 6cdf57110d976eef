package service

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
	"github.com/hamzarq/event-booking-marketplace/internal/notify"
)

// BookingStore is the persistence surface the ledger needs. Create must
// enforce the duplicate-slot invariant atomically; UpdateStatus must apply
// the from-status precondition atomically.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, listerMessage string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Booking, error)
	ListByLister(ctx context.Context, listerID string) ([]model.Booking, error)
}

// EventResolver resolves booking references to events, for existence and
// ownership checks.
type EventResolver interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// Publisher emits notification messages. Implementations must not be relied
// on for correctness; the ledger treats every publish as fire-and-forget.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Loose structural check only; real-world phone formats vary too much for
// anything stricter to help.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{6,19}$`)

// cancellable are the states a booking's user may cancel from. Cancelled is
// absent: re-cancelling is handled as a no-op, not a transition.
var cancellable = []model.BookingStatus{
	model.StatusPending, model.StatusConfirmed, model.StatusRejected,
}

// Ledger owns the booking state machine and the duplicate-slot guard.
type Ledger struct {
	bookings BookingStore
	events   EventResolver
	pub      Publisher // nil disables notifications
}

// NewLedger constructs a Ledger. pub may be nil when no broker is configured.
func NewLedger(bookings BookingStore, events EventResolver, pub Publisher) *Ledger {
	return &Ledger{bookings: bookings, events: events, pub: pub}
}

// CreateBooking validates the request and records a new pending booking for
// userID. The duplicate-slot invariant is enforced by the store, atomically;
// a lost race surfaces as a conflict here exactly like a plain duplicate.
func (l *Ledger) CreateBooking(ctx context.Context, req model.CreateBookingRequest, userID string) (*model.Booking, error) {
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.IDCardNumber = strings.TrimSpace(req.IDCardNumber)

	if !phonePattern.MatchString(req.PhoneNumber) {
		return nil, apperror.New(apperror.Validation, "phone number is not valid")
	}
	if len(req.IDCardNumber) < 6 {
		return nil, apperror.New(apperror.Validation, "id card number must be at least 6 characters")
	}
	if req.Time == "" {
		return nil, apperror.New(apperror.Validation, "booking time is required")
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, apperror.Newf(apperror.Validation, "date must be in %s format", model.DateLayout)
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return nil, apperror.New(apperror.Validation, "booking date cannot be in the past")
	}

	// The event reference is weak, but it has to resolve at creation time.
	if _, err := l.events.GetByID(ctx, req.EventID); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		UserID:       userID,
		EventID:      req.EventID,
		PhoneNumber:  req.PhoneNumber,
		IDCardNumber: req.IDCardNumber,
		BookingDate:  date,
		BookingTime:  req.Time,
		Note:         req.Note,
	}
	if err := l.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// resolveLister checks that requestorID owns the event the booking references.
func (l *Ledger) resolveLister(ctx context.Context, b *model.Booking, requestorID string) error {
	event, err := l.events.GetByID(ctx, b.EventID)
	if err != nil {
		return err
	}
	if event.ListerID != requestorID {
		return apperror.New(apperror.Authorization, "only the event's lister may manage this booking")
	}
	return nil
}

// Confirm transitions a pending booking to confirmed. Only the lister owning
// the booked event may confirm. The notification hook is invoked after the
// transition commits; its failure is logged and otherwise ignored.
func (l *Ledger) Confirm(ctx context.Context, bookingID, requestorID string) (*model.Booking, error) {
	booking, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := l.resolveLister(ctx, booking, requestorID); err != nil {
		return nil, err
	}

	confirmed, err := l.bookings.UpdateStatus(ctx, bookingID,
		[]model.BookingStatus{model.StatusPending}, model.StatusConfirmed, "")
	if err != nil {
		return nil, err
	}

	l.publishConfirmed(ctx, confirmed)
	return confirmed, nil
}

func (l *Ledger) publishConfirmed(ctx context.Context, b *model.Booking) {
	if l.pub == nil {
		return
	}
	msg := notify.BookingConfirmed{
		BookingID:   b.ID,
		BookingDate: b.BookingDate.Format(model.DateLayout),
		BookingTime: b.BookingTime,
	}
	if err := l.pub.PublishJSON(ctx, notify.KeyBookingConfirmed, msg); err != nil {
		log.Printf("publish %s for booking %s: %v", notify.KeyBookingConfirmed, b.ID, err)
	}
}

// Reject transitions a pending booking to rejected, storing the required
// reason as the lister message.
func (l *Ledger) Reject(ctx context.Context, bookingID, requestorID, reason string) (*model.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.New(apperror.Validation, "a rejection reason is required")
	}

	booking, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := l.resolveLister(ctx, booking, requestorID); err != nil {
		return nil, err
	}

	return l.bookings.UpdateStatus(ctx, bookingID,
		[]model.BookingStatus{model.StatusPending}, model.StatusRejected, reason)
}

// Cancel transitions a booking to cancelled. Only the booking's own user may
// cancel, from pending, confirmed, or rejected. Cancelling an
// already-cancelled booking is a no-op success.
func (l *Ledger) Cancel(ctx context.Context, bookingID, requestorID string) (*model.Booking, error) {
	booking, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != requestorID {
		return nil, apperror.New(apperror.Authorization, "only the booking's user may cancel it")
	}
	if booking.Status == model.StatusCancelled {
		return booking, nil
	}

	return l.bookings.UpdateStatus(ctx, bookingID, cancellable, model.StatusCancelled, "")
}

// ListByUser returns every booking created by the given user.
func (l *Ledger) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return l.bookings.ListByUser(ctx, userID)
}

// ListByEvent returns every booking against the given event.
func (l *Ledger) ListByEvent(ctx context.Context, eventID string) ([]model.Booking, error) {
	return l.bookings.ListByEvent(ctx, eventID)
}

// ListByLister returns bookings for every event owned by the given lister.
func (l *Ledger) ListByLister(ctx context.Context, listerID string) ([]model.Booking, error) {
	return l.bookings.ListByLister(ctx, listerID)
}
