package service

import (
	"github.com/atinyakov/credkeeper/internal/models"
	"github.com/atinyakov/credkeeper/internal/repository"
)

// scopeFor returns how far a role's credential visibility reaches.
func scopeFor(role models.Role) repository.Scope {
	switch role {
	case models.RoleAdmin:
		return repository.ScopeAll
	case models.RoleManagement:
		return repository.ScopeOrgUnits
	default:
		return repository.ScopeDivisions
	}
}

func canUpdateCredentials(role models.Role) bool {
	return role == models.RoleManagement || role == models.RoleAdmin
}

func canChangeRoles(role models.Role) bool {
	return role == models.RoleAdmin
}

func canManageMemberships(role models.Role) bool {
	return role == models.RoleManagement || role == models.RoleAdmin
}
