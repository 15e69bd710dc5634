// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package authz holds the two authorization decisions every mutating route
// depends on: the role gate and the owner-or-admin check. Both are pure.
package authz

import (
	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// Reason explains a denial.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "UNAUTHENTICATED"
	ReasonForbidden       Reason = "FORBIDDEN"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var (
	allow         = Decision{Allowed: true}
	denyAnonymous = Decision{Reason: ReasonUnauthenticated}
	denyForbidden = Decision{Reason: ReasonForbidden}
)

// Err converts a denial into a classified error, or nil when allowed.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return apperr.Unauthenticated("Unauthorized!")
	default:
		return apperr.Forbidden("Forbidden! You don't have permission to access this resource.")
	}
}

// Authorize decides whether p may use a route that requires one of the
// given roles. A nil principal is anonymous. Routes always declare at least
// one role; an empty set is a wiring bug and panics.
func Authorize(p *models.Principal, required ...models.Role) Decision {
	if len(required) == 0 {
		panic("authz: Authorize called without required roles")
	}
	if p == nil {
		return denyAnonymous
	}
	for _, r := range required {
		if p.Role == r {
			return allow
		}
	}
	return denyForbidden
}

// CheckOwnership decides whether p may mutate a resource authored by
// authorID. Admins pass only when allowAdminOverride is set.
func CheckOwnership(p models.Principal, authorID string, allowAdminOverride bool) Decision {
	if p.ID != "" && p.ID == authorID {
		return allow
	}
	if allowAdminOverride && p.IsAdmin() {
		return allow
	}
	return denyForbidden
}
