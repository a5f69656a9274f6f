package gate

import "strings"

// Permission is a "resource:action" pair, e.g. "order:create".
// Either half may be the wildcard "*".
type Permission string

const (
	Wildcard = "*"
	// PermissionAll grants every action on every resource.
	PermissionAll Permission = "*:*"
)

// NewPermission joins a resource and an action.
func NewPermission(resource string, action Action) Permission {
	return Permission(resource + ":" + string(action))
}

// Split returns the resource and action halves, or empty strings when p is malformed.
func (p Permission) Split() (string, Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok || res == "" || act == "" {
		return "", ""
	}
	return res, Action(act)
}

// Grants reports whether holding p allows the requested permission.
func (p Permission) Grants(requested Permission) bool {
	if p == requested {
		return true
	}
	res, act := p.Split()
	reqRes, reqAct := requested.Split()
	if res == "" || reqRes == "" {
		return false
	}
	return (res == Wildcard || res == reqRes) && (act == Wildcard || act == reqAct)
}
