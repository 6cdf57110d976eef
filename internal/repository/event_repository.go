// Package repository implements all database queries for the marketplace.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
)

const eventColumns = `id, title, description, location, category, event_date,
	event_time, price, capacity, images, lister_id, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Category,
		&e.Date, &e.Time, &e.Price, &e.Capacity, &e.Images, &e.ListerID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event, assigning it a UUID and creation time.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()
	if e.Images == nil {
		e.Images = []string{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, location, category, event_date,
		                     event_time, price, capacity, images, lister_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.Title, e.Description, e.Location, e.Category, e.Date,
		e.Time, e.Price, e.Capacity, e.Images, e.ListerID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// List returns every event in catalog order (insertion order). Filtering
// happens above this layer and must not re-sort.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event, or a not-found error.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.Newf(apperror.NotFound, "event %s not found", id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update writes the full event row back.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, location = $4, category = $5,
		     event_date = $6, event_time = $7, price = $8, capacity = $9, images = $10
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Location, e.Category,
		e.Date, e.Time, e.Price, e.Capacity, e.Images,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Newf(apperror.NotFound, "event %s not found", e.ID)
	}
	return nil
}

// Delete removes the event row. Existing bookings keep their (now dangling)
// event reference; the service layer guards against deleting events that
// still have active bookings.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Newf(apperror.NotFound, "event %s not found", id)
	}
	return nil
}
