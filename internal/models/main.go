// Package models defines the wire types shared by the credential manager
// client and its backend: user profiles, the credential tree and the JSON
// request/response envelopes of every endpoint.
package models

import (
	"fmt"
	"strings"
)

// Role is a discrete privilege level assigned to a user.
type Role string

const (
	// RoleNormal is the default role of a newly registered user.
	RoleNormal Role = "normal"
	// RoleManagement may administer divisions and update credentials.
	RoleManagement Role = "management"
	// RoleAdmin may do everything, including changing roles.
	RoleAdmin Role = "admin"
)

// Roles lists the valid roles in ascending privilege order.
var Roles = []Role{RoleNormal, RoleManagement, RoleAdmin}

// ParseRole converts a role label in any casing ("Admin", "ADMIN") into a Role.
func ParseRole(label string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(label)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", label)
}

// OrgUnitMembership is one organisational unit a user belongs to, together
// with the names of the divisions inside it the user is a member of.
type OrgUnitMembership struct {
	// ID is the backend identifier of the organisational unit.
	ID string `json:"_id"`
	// Name is the unique display name of the organisational unit.
	Name string `json:"name"`
	// Divisions holds unique division names within the unit.
	Divisions []string `json:"divisions"`
}

// UserProfile is the authorization profile of a user. The same shape is
// used for the logged-in user and for directory entries describing others.
type UserProfile struct {
	ID                  string              `json:"_id"`
	Username            string              `json:"username"`
	Role                Role                `json:"role"`
	OrganisationalUnits []OrgUnitMembership `json:"organisational_units"`
}

// IsZero reports whether p is the logged-out (empty) profile.
func (p UserProfile) IsZero() bool {
	return p.ID == "" && p.Username == "" && p.Role == "" && len(p.OrganisationalUnits) == 0
}

// Clone returns a deep copy of p.
func (p UserProfile) Clone() UserProfile {
	out := p
	if p.OrganisationalUnits != nil {
		out.OrganisationalUnits = make([]OrgUnitMembership, len(p.OrganisationalUnits))
		for i, ou := range p.OrganisationalUnits {
			out.OrganisationalUnits[i] = OrgUnitMembership{
				ID:        ou.ID,
				Name:      ou.Name,
				Divisions: append([]string(nil), ou.Divisions...),
			}
		}
	}
	return out
}

// DivisionsOf returns the division names p holds inside the organisational
// unit called orgUnit, or nil when p does not belong to it.
func (p UserProfile) DivisionsOf(orgUnit string) []string {
	var out []string
	for _, ou := range p.OrganisationalUnits {
		if ou.Name == orgUnit {
			out = append(out, ou.Divisions...)
		}
	}
	return out
}

// Account is a single stored credential.
type Account struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// DivisionCredentials groups the accounts stored under one division.
type DivisionCredentials struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Accounts []Account `json:"accounts"`
}

// OrgUnitCredentials groups the divisions of one organisational unit.
type OrgUnitCredentials struct {
	ID        string                `json:"_id"`
	Name      string                `json:"name"`
	Divisions []DivisionCredentials `json:"divisions"`
}

// CredentialTree is the ordered, authorization-scoped view of
// organisational units → divisions → accounts.
type CredentialTree []OrgUnitCredentials

// Clone returns a deep copy of t.
func (t CredentialTree) Clone() CredentialTree {
	if t == nil {
		return nil
	}
	out := make(CredentialTree, len(t))
	for i, ou := range t {
		out[i] = OrgUnitCredentials{ID: ou.ID, Name: ou.Name}
		if ou.Divisions != nil {
			out[i].Divisions = make([]DivisionCredentials, len(ou.Divisions))
			for j, d := range ou.Divisions {
				out[i].Divisions[j] = DivisionCredentials{
					ID:       d.ID,
					Name:     d.Name,
					Accounts: append([]Account(nil), d.Accounts...),
				}
			}
		}
	}
	return out
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AddCredentialRequest is the body of POST /add-credential.
type AddCredentialRequest struct {
	OrganisationalUnit string `json:"organisational_unit" validate:"required"`
	Division           string `json:"division" validate:"required"`
	Name               string `json:"name" validate:"required"`
	Username           string `json:"username" validate:"required"`
	Password           string `json:"password" validate:"required"`
}

// UpdateCredentialRequest is the body of PUT /update-credential. The
// account is identified by its old name/username/password triple.
type UpdateCredentialRequest struct {
	OrganisationalUnit string `json:"organisational_unit" validate:"required"`
	Division           string `json:"division" validate:"required"`
	OldName            string `json:"old_name" validate:"required"`
	OldUsername        string `json:"old_username" validate:"required"`
	OldPassword        string `json:"old_password" validate:"required"`
	NewName            string `json:"new_name" validate:"required"`
	NewUsername        string `json:"new_username" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required"`
}

// ChangeRoleRequest is the body of PUT /update-role.
type ChangeRoleRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	NewRole Role   `json:"new_role" validate:"required"`
}

// DivisionRequest is the body of POST /assign-division and
// DELETE /unassign-division.
type DivisionRequest struct {
	UserID             string `json:"user_id" validate:"required"`
	OrganisationalUnit string `json:"organisational_unit" validate:"required"`
	Division           string `json:"division" validate:"required"`
}

// TokenResponse is the success body of POST /login.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse is the success body of every mutating endpoint.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every business failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// User is a registered account as stored by the backend.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
}
