// Package gate provides profile-based authorization with no knowledge of the
// application's models. A Gate resolves a subject (a user id, a role name, a
// claims struct) to a Profile and checks a "resource:action" permission against it.
package gate

import (
	"context"
	"fmt"
)

// Gate is the single authorization checkpoint. The zero value of S is treated
// as "no subject".
type Gate[S comparable] struct {
	resolver Resolver[S]
}

func New[S comparable](resolver Resolver[S]) *Gate[S] {
	return &Gate[S]{resolver: resolver}
}

// Authorize returns nil when subject may perform action on resource,
// ErrUnauthenticated for the zero subject and ErrForbidden otherwise.
// Resolver failures are wrapped and returned as is.
func (g *Gate[S]) Authorize(ctx context.Context, subject S, action Action, resource string) error {
	var zero S
	if subject == zero {
		return ErrUnauthenticated
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return fmt.Errorf("resolve profile: %w", err)
	}
	if profile == nil || !profile.HasPermission(NewPermission(resource, action)) {
		return ErrForbidden
	}
	return nil
}

// Can is Authorize as a boolean.
func (g *Gate[S]) Can(ctx context.Context, subject S, action Action, resource string) bool {
	return g.Authorize(ctx, subject, action, resource) == nil
}

// ProfileOf returns the subject's profile, or nil.
func (g *Gate[S]) ProfileOf(ctx context.Context, subject S) Profile {
	var zero S
	if subject == zero {
		return nil
	}
	p, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return nil
	}
	return p
}
