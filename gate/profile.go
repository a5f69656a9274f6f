package gate

import (
	"context"
	"sort"
)

// Profile is a named set of permissions.
type Profile interface {
	Name() string
	HasPermission(Permission) bool
	Permissions() []Permission
}

// Resolver maps a subject to its profile. A nil profile with a nil error means
// the subject has no profile and is denied everything.
type Resolver[S comparable] interface {
	Resolve(ctx context.Context, subject S) (Profile, error)
}

// StaticProfile is an in-memory Profile.
type StaticProfile struct {
	name  string
	perms []Permission
}

// NewStaticProfile builds a profile from a fixed list of permissions.
func NewStaticProfile(name string, perms ...Permission) *StaticProfile {
	cp := append([]Permission(nil), perms...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	return &StaticProfile{name: name, perms: cp}
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns a sorted copy of the granted permissions.
func (p *StaticProfile) Permissions() []Permission {
	return append([]Permission(nil), p.perms...)
}

func (p *StaticProfile) HasPermission(requested Permission) bool {
	for _, held := range p.perms {
		if held.Grants(requested) {
			return true
		}
	}
	return false
}

// StaticResolver resolves subjects from a fixed table.
type StaticResolver[S comparable] struct {
	profiles map[S]Profile
}

func NewStaticResolver[S comparable]() *StaticResolver[S] {
	return &StaticResolver[S]{profiles: make(map[S]Profile)}
}

// Set binds a subject to a profile. It is not safe to call concurrently with Resolve.
func (r *StaticResolver[S]) Set(subject S, p Profile) *StaticResolver[S] {
	r.profiles[subject] = p
	return r
}

func (r *StaticResolver[S]) Resolve(_ context.Context, subject S) (Profile, error) {
	return r.profiles[subject], nil
}
