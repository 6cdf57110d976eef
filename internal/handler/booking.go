package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hamzarq/event-booking-marketplace/internal/model"
	"github.com/hamzarq/event-booking-marketplace/internal/service"
)

// BookingHandler holds the HTTP handlers for the booking ledger.
type BookingHandler struct {
	ledger *service.Ledger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(ledger *service.Ledger) *BookingHandler {
	return &BookingHandler{ledger: ledger}
}

func writeBookings(w http.ResponseWriter, bookings []model.Booking) {
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// CreateBooking handles POST /bookings (user only)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.ledger.CreateBooking(r.Context(), req, identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// ListMine handles GET /bookings (user only)
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	bookings, err := h.ledger.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeBookings(w, bookings)
}

// ListManaged handles GET /bookings/managed (lister only)
// Returns bookings for every event the lister owns.
func (h *BookingHandler) ListManaged(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	bookings, err := h.ledger.ListByLister(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeBookings(w, bookings)
}

// ListByEvent handles GET /events/{id}/bookings (lister only)
func (h *BookingHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.ledger.ListByEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeBookings(w, bookings)
}

// Confirm handles POST /bookings/{id}/confirm (owning lister only)
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	booking, err := h.ledger.Confirm(r.Context(), chi.URLParam(r, "id"), identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// Reject handles POST /bookings/{id}/reject (owning lister only)
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.ledger.Reject(r.Context(), chi.URLParam(r, "id"), identity.UserID, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// Cancel handles POST /bookings/{id}/cancel (booking's user only)
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	booking, err := h.ledger.Cancel(r.Context(), chi.URLParam(r, "id"), identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
