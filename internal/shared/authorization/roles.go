package authorization

import "strings"

// Role is the coarse caller class asserted by the gateway in X-Principal-Role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleSystem   Role = "system"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleOperator || r == RoleSystem
}

// ParseRole normalizes a header value. Unknown roles parse to the empty role,
// which grants nothing on its own.
func ParseRole(s string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if role.IsValid() {
		return role
	}
	return ""
}
