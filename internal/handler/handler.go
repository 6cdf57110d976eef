// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
)

type ctxKey int

const identityKey ctxKey = iota

// IdentityFrom extracts the authenticated actor from a request context.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

func withIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// respondError maps a service error to the HTTP response by its kind. Remote
// faults are logged and masked; every other kind carries a message meant for
// the user.
func respondError(w http.ResponseWriter, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.Remote {
		log.Printf("remote failure: %v", err)
		writeJSON(w, apperror.HTTPStatus(kind), model.ErrorResponse{
			Error: "something went wrong, please try again",
			Kind:  string(kind),
		})
		return
	}
	writeJSON(w, apperror.HTTPStatus(kind), model.ErrorResponse{
		Error: err.Error(),
		Kind:  string(kind),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
