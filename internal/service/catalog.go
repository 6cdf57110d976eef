// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
)

// EventStore is the persistence surface the catalog needs.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
}

// ActiveBookingCounter resolves how many live bookings an event has. The
// catalog uses it to refuse deleting events that are still booked.
type ActiveBookingCounter interface {
	CountActiveByEvent(ctx context.Context, eventID string) (int, error)
}

// Catalog maintains the known event set and the current filter criteria, and
// computes the filtered view the browsing surface renders.
type Catalog struct {
	events   EventStore
	bookings ActiveBookingCounter

	mu      sync.Mutex
	filters model.FilterCriteria
}

// NewCatalog constructs a Catalog with default filter criteria.
func NewCatalog(events EventStore, bookings ActiveBookingCounter) *Catalog {
	return &Catalog{
		events:   events,
		bookings: bookings,
		filters:  model.DefaultFilters(),
	}
}

// SetFilters merges the given fields into the current criteria. Unspecified
// fields keep their prior value.
func (c *Catalog) SetFilters(u model.FilterUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = c.filters.Apply(u)
}

// ResetFilters restores the criteria to defaults.
func (c *Catalog) ResetFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = model.DefaultFilters()
}

// Filters returns a snapshot of the current criteria.
func (c *Catalog) Filters() model.FilterCriteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// FilteredEvents returns a restartable sequence of every event satisfying all
// active predicates in the held criteria, in catalog order.
func (c *Catalog) FilteredEvents(ctx context.Context) (iter.Seq[model.Event], error) {
	return c.EventsMatching(ctx, c.Filters())
}

// EventsMatching is the stateless filtering path: it fetches the current
// catalog snapshot and lazily yields the events matching the given criteria,
// preserving the snapshot's order. Filtering is a pure function of
// (snapshot, criteria); it never re-sorts.
func (c *Catalog) EventsMatching(ctx context.Context, criteria model.FilterCriteria) (iter.Seq[model.Event], error) {
	snapshot, err := c.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return func(yield func(model.Event) bool) {
		for _, e := range snapshot {
			if !criteria.Matches(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}, nil
}

// GetEvent returns a single event by id.
func (c *Catalog) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return c.events.GetByID(ctx, id)
}

// CreateEvent validates the request and appends a new event owned by ownerID.
func (c *Catalog) CreateEvent(ctx context.Context, req model.CreateEventRequest, ownerID string) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	req.Category = strings.TrimSpace(req.Category)

	switch {
	case req.Title == "":
		return nil, apperror.New(apperror.Validation, "title is required")
	case req.Location == "":
		return nil, apperror.New(apperror.Validation, "location is required")
	case req.Category == "":
		return nil, apperror.New(apperror.Validation, "category is required")
	case req.Date == "":
		return nil, apperror.New(apperror.Validation, "date is required")
	case req.Time == "":
		return nil, apperror.New(apperror.Validation, "time is required")
	case req.Price < 0:
		return nil, apperror.New(apperror.Validation, "price cannot be negative")
	case req.Capacity < 1:
		return nil, apperror.New(apperror.Validation, "capacity must be at least 1")
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, apperror.Newf(apperror.Validation, "date must be in %s format", model.DateLayout)
	}

	event := &model.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Date:        date,
		Time:        req.Time,
		Price:       req.Price,
		Capacity:    req.Capacity,
		Images:      req.Images,
		ListerID:    ownerID,
	}
	if err := c.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent merges the provided fields into the event. Only the owning
// lister may mutate it.
func (c *Catalog) UpdateEvent(ctx context.Context, id string, req model.UpdateEventRequest, requestorID string) (*model.Event, error) {
	event, err := c.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.ListerID != requestorID {
		return nil, apperror.New(apperror.Authorization, "only the owning lister may update this event")
	}

	// Required fields stay required: an update may change them but never
	// blank them.
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperror.New(apperror.Validation, "title cannot be empty")
		}
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		if strings.TrimSpace(*req.Location) == "" {
			return nil, apperror.New(apperror.Validation, "location cannot be empty")
		}
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			return nil, apperror.New(apperror.Validation, "category cannot be empty")
		}
		event.Category = strings.TrimSpace(*req.Category)
	}
	if req.Date != nil {
		date, err := model.ParseDate(*req.Date)
		if err != nil {
			return nil, apperror.Newf(apperror.Validation, "date must be in %s format", model.DateLayout)
		}
		event.Date = date
	}
	if req.Time != nil {
		if strings.TrimSpace(*req.Time) == "" {
			return nil, apperror.New(apperror.Validation, "time cannot be empty")
		}
		event.Time = *req.Time
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperror.New(apperror.Validation, "price cannot be negative")
		}
		event.Price = *req.Price
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, apperror.New(apperror.Validation, "capacity must be at least 1")
		}
		event.Capacity = *req.Capacity
	}
	if req.Images != nil {
		event.Images = *req.Images
	}

	if err := c.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent removes an event. Only the owning lister may delete it, and not
// while non-cancelled bookings still reference it.
func (c *Catalog) DeleteEvent(ctx context.Context, id, requestorID string) error {
	event, err := c.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.ListerID != requestorID {
		return apperror.New(apperror.Authorization, "only the owning lister may delete this event")
	}

	active, err := c.bookings.CountActiveByEvent(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperror.Newf(apperror.Conflict,
			"event still has %d active booking(s)", active)
	}

	return c.events.Delete(ctx, id)
}
