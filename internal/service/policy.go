package service

import (
	"slices"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
)

// Decision is the outcome of the role policy: either the actor may proceed,
// or the route they should land on instead.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Decide is the single role policy for the whole surface. It maps the actor's
// role and the roles a resource requires to an allow/redirect decision. An
// empty requirement allows everyone; an unknown (unauthenticated) role is
// sent to login; a known role lacking the requirement is sent back to its own
// home.
func Decide(actor model.Role, required ...model.Role) Decision {
	if len(required) == 0 {
		return Decision{Allowed: true}
	}
	if !actor.Valid() {
		return Decision{Redirect: "/login"}
	}
	if slices.Contains(required, actor) {
		return Decision{Allowed: true}
	}
	if actor == model.RoleLister {
		return Decision{Redirect: "/dashboard"}
	}
	return Decision{Redirect: "/events"}
}

// Authorize wraps Decide for callers that just need an error.
func Authorize(actor model.Role, required ...model.Role) error {
	if d := Decide(actor, required...); !d.Allowed {
		return apperror.Newf(apperror.Authorization, "role %q is not permitted here", actor)
	}
	return nil
}
