package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hamzarq/event-booking-marketplace/internal/apperror"
	"github.com/hamzarq/event-booking-marketplace/internal/model"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name     string
		actor    model.Role
		required []model.Role
		want     Decision
	}{
		{"no requirement allows anyone", "", nil, Decision{Allowed: true}},
		{"user allowed on user route", model.RoleUser, []model.Role{model.RoleUser}, Decision{Allowed: true}},
		{"lister allowed on lister route", model.RoleLister, []model.Role{model.RoleLister}, Decision{Allowed: true}},
		{"either role accepted", model.RoleUser, []model.Role{model.RoleUser, model.RoleLister}, Decision{Allowed: true}},
		{"unknown role sent to login", "", []model.Role{model.RoleUser}, Decision{Redirect: "/login"}},
		{"garbage role sent to login", "admin", []model.Role{model.RoleUser}, Decision{Redirect: "/login"}},
		{"user denied lister route", model.RoleUser, []model.Role{model.RoleLister}, Decision{Redirect: "/events"}},
		{"lister denied user route", model.RoleLister, []model.Role{model.RoleUser}, Decision{Redirect: "/dashboard"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.actor, tc.required...))
		})
	}
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(model.RoleUser, model.RoleUser))
	err := Authorize(model.RoleUser, model.RoleLister)
	assert.Equal(t, apperror.Authorization, apperror.KindOf(err))
}
