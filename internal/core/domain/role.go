package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles a credential record can carry.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// Capability names an action guarded by a role gate.
type Capability string

const (
	// CapManageTasks covers creating and listing tasks.
	CapManageTasks Capability = "tasks:manage"
	// CapReviewTasks covers approving and rejecting tasks.
	CapReviewTasks Capability = "tasks:review"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleAdmin:   {CapManageTasks: {}, CapReviewTasks: {}},
	RoleManager: {CapManageTasks: {}, CapReviewTasks: {}},
	RoleUser:    {CapManageTasks: {}},
}

// ParseRole normalises s and maps it onto a known Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
	return r, nil
}

// IsValid reports whether r is one of the predefined roles.
func (r Role) IsValid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability. Unknown roles grant nothing.
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}

func (r Role) String() string { return string(r) }
