package handler

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hamzarq/event-booking-marketplace/internal/model"
	"github.com/hamzarq/event-booking-marketplace/internal/service"
)

// EventHandler holds the HTTP handlers for the event catalog.
type EventHandler struct {
	catalog *service.Catalog
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(catalog *service.Catalog) *EventHandler {
	return &EventHandler{catalog: catalog}
}

// criteriaFromQuery builds per-request filter criteria from URL query
// parameters on top of the defaults. Malformed values are not errors: they
// produce criteria that match nothing, so the response is an empty list.
func criteriaFromQuery(r *http.Request) model.FilterCriteria {
	q := r.URL.Query()
	criteria := model.DefaultFilters()

	criteria.SearchQuery = q.Get("search")
	criteria.Location = q.Get("location")
	criteria.Category = q.Get("category")

	malformed := false
	if s := q.Get("price_min"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			malformed = true
		} else {
			criteria.PriceRange.Min = v
		}
	}
	if s := q.Get("price_max"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			malformed = true
		} else {
			criteria.PriceRange.Max = v
		}
	}
	if malformed {
		// An inverted price range matches no event, regardless of any
		// well-formed bound alongside the bad one.
		criteria.PriceRange = model.PriceRange{Min: 1, Max: 0}
	}

	from, to := q.Get("date_from"), q.Get("date_to")
	if from != "" || to != "" {
		dr := model.DateRange{
			Start: time.Time{},
			End:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
		}
		var err error
		if from != "" {
			dr.Start, err = model.ParseDate(from)
		}
		if err == nil && to != "" {
			dr.End, err = model.ParseDate(to)
		}
		if err != nil {
			// An inverted range matches no event.
			dr = model.DateRange{Start: time.Unix(1, 0).UTC(), End: time.Unix(0, 0).UTC()}
		}
		criteria.DateRange = &dr
	}

	return criteria
}

// ListEvents handles GET /events
// Returns the events matching the query's filter criteria, in catalog order.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	seq, err := h.catalog.EventsMatching(r.Context(), criteriaFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}

	events := slices.Collect(seq)
	// Empty array, never null.
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.catalog.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /events (lister only)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.catalog.CreateEvent(r.Context(), req, identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PATCH /events/{id} (owning lister only)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.catalog.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req, identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id} (owning lister only)
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	if err := h.catalog.DeleteEvent(r.Context(), chi.URLParam(r, "id"), identity.UserID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
