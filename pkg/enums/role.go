package enums

import "fmt"

// Role is the bucket a seen flag lives under. A user can act as both a
// donor and a collector, so the buckets are independent.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleCollector Role = "collector"
)

var validRoles = []Role{RoleDonor, RoleCollector}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
