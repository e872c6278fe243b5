package policy

import "strings"

// Role is the closed set of actor roles recognised by the engine.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// roleRank is the total order used for minimum-role checks. Comparison always
// goes through ranks, never through the role strings themselves.
var roleRank = map[Role]int{
	RoleViewer:   0,
	RoleOperator: 1,
	RoleAdmin:    2,
}

// ParseRole normalises a free-form role value. Unknown or empty input maps to
// viewer so that a malformed caller never gains privileges.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleOperator:
		return RoleOperator
	case RoleAdmin:
		return RoleAdmin
	}
	return RoleViewer
}

// Rank returns the role position in the total order.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether the role ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}

// Actor identifies who is asking for a tool invocation.
type Actor struct {
	ID   string `json:"actor_id"`
	Role Role   `json:"actor_role"`
}

// ResolveActor builds an actor from raw request values.
func ResolveActor(id, role string) Actor {
	if id == "" {
		id = "anonymous"
	}
	return Actor{ID: id, Role: ParseRole(role)}
}
