package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
)

const uniqueViolation = "23505"

const bookingColumns = `id, user_id, event_id, phone_number, id_card_number,
	booking_date, booking_time, note, status, lister_message, created_at, updated_at`

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.EventID, &b.PhoneNumber, &b.IDCardNumber,
		&b.BookingDate, &b.BookingTime, &b.Note, &b.Status, &b.ListerMessage,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new pending booking.
//
// The duplicate-slot invariant is enforced here, atomically, by the partial
// unique index over (user_id, event_id, booking_date, booking_time) among
// non-cancelled rows. Two sessions racing for the same slot cannot both
// succeed: the loser's insert fails with a unique violation, surfaced as a
// conflict. A check-then-insert in the caller would be racy and is at most
// an optimisation.
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	b.ID = uuid.New().String()
	b.Status = model.StatusPending
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO bookings (id, user_id, event_id, phone_number, id_card_number,
		                       booking_date, booking_time, note, status, lister_message,
		                       created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.UserID, b.EventID, b.PhoneNumber, b.IDCardNumber,
		b.BookingDate, b.BookingTime, b.Note, b.Status, b.ListerMessage,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.New(apperror.Conflict,
				"an active booking already exists for this slot")
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID returns a single booking, or a not-found error.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.Newf(apperror.NotFound, "booking %s not found", id)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// UpdateStatus transitions a booking to status `to`, but only while its
// current status is one of `from`. The WHERE clause re-checks the precondition
// atomically, so a transition racing with another writer fails cleanly instead
// of clobbering the newer state. A non-empty listerMessage replaces the stored
// one (used by reject).
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from []model.BookingStatus, to model.BookingStatus, listerMessage string) (*model.Booking, error) {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	b, err := scanBooking(r.db.QueryRow(ctx,
		`UPDATE bookings
		 SET status = $2,
		     lister_message = CASE WHEN $3 <> '' THEN $3 ELSE lister_message END,
		     updated_at = $4
		 WHERE id = $1 AND status = ANY($5)
		 RETURNING `+bookingColumns,
		id, string(to), listerMessage, time.Now().UTC(), allowed,
	))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	// No row matched: distinguish a missing booking from a state-machine
	// violation.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperror.Newf(apperror.InvalidTransition,
		"booking is %s, cannot transition to %s", current.Status, to)
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// ListByUser returns every booking created by the given user.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE user_id = $1 ORDER BY created_at ASC`, userID)
}

// ListByEvent returns every booking against the given event.
func (r *BookingRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
}

// ListByLister returns bookings for every event owned by the given lister,
// joining through the events table for ownership resolution.
func (r *BookingRepository) ListByLister(ctx context.Context, listerID string) ([]model.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT b.id, b.user_id, b.event_id, b.phone_number, b.id_card_number,
		        b.booking_date, b.booking_time, b.note, b.status, b.lister_message,
		        b.created_at, b.updated_at
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 WHERE e.lister_id = $1
		 ORDER BY b.created_at ASC`, listerID)
}

// CountActiveByEvent counts non-cancelled bookings against an event. Used by
// the catalog to refuse deleting events with live bookings.
func (r *BookingRepository) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status <> $2`,
		eventID, model.StatusCancelled,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active bookings: %w", err)
	}
	return n, nil
}
