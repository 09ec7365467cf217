package orchestrator

import (
	"errors"

	"github.com/atinyakov/credkeeper/internal/client/state"
	"github.com/atinyakov/credkeeper/internal/models"
)

// Local validation messages.
const (
	msgRegisterBothBlank     = "Username and password cannot be blank!"
	msgRegisterUsernameBlank = "Username cannot be blank!"
	msgRegisterPasswordBlank = "Password cannot be blank!"
	msgRegisterMismatch      = "Passwords do not match!"
)

const (
	msgAddNoOrgUnit    = "Cannot add credential. You have not selected an organisational unit and division."
	msgAddNoDivision   = "Cannot add credential. You have not selected a division."
	msgAddAllBlank     = "Cannot add credential. You have not entered an account name, username and password."
	msgAddName         = "Cannot add credential. You have not entered an account name."
	msgAddNamePassword = "Cannot add credential. You have not entered an account name and password."
	msgAddNameUsername = "Cannot add credential. You have not entered an account name and username."
	msgAddUserPassword = "Cannot add credential. You have not entered an account username and password."
	msgAddPassword     = "Cannot add credential. You have not entered an account password."
	msgAddUsername     = "Cannot add credential. You have not entered an account username."
	msgAddMismatch     = "Cannot add credential. Passwords do not match."
)

const (
	msgUpdateMismatch     = "Cannot update credential. Passwords do not match."
	msgRoleNotSelected    = "Cannot update user role. Please select a valid role."
	msgAssignIncomplete   = "Cannot assign user division. Please select an organisational unit and division."
	msgUnassignIncomplete = "Cannot unassign user division. Please select an organisational unit and division."
)

// LoginForm holds the login fields. They are not validated locally.
type LoginForm struct {
	Username string
	Password string
}

// RegisterForm holds the registration fields.
type RegisterForm struct {
	Username        string
	Password        string
	ConfirmPassword string
}

// AddCredentialForm holds the add-credential fields.
type AddCredentialForm struct {
	Target          DivisionSelection
	Name            string
	Username        string
	Password        string
	ConfirmPassword string
}

// UpdateCredentialForm holds the new values for the selected credential.
// A blank field keeps the old value.
type UpdateCredentialForm struct {
	Name            string
	Username        string
	Password        string
	ConfirmPassword string
}

func validateRegister(f RegisterForm) error {
	switch {
	case f.Username == "" && f.Password == "":
		return errors.New(msgRegisterBothBlank)
	case f.Username == "":
		return errors.New(msgRegisterUsernameBlank)
	case f.Password == "":
		return errors.New(msgRegisterPasswordBlank)
	case f.Password != f.ConfirmPassword:
		return errors.New(msgRegisterMismatch)
	}
	return nil
}

func validateAddCredential(f AddCredentialForm) (models.AddCredentialRequest, error) {
	if f.Target.OrgUnit == "" || f.Target.OrgUnit == OrgUnitPlaceholder {
		return models.AddCredentialRequest{}, errors.New(msgAddNoOrgUnit)
	}
	if f.Target.Division == "" || f.Target.Division == DivisionPlaceholder {
		return models.AddCredentialRequest{}, errors.New(msgAddNoDivision)
	}

	name, user, pass := f.Name == "", f.Username == "", f.Password == ""
	var msg string
	switch {
	case name && user && pass:
		msg = msgAddAllBlank
	case name && !user && !pass:
		msg = msgAddName
	case name && !user && pass:
		msg = msgAddNamePassword
	case name && user && !pass:
		msg = msgAddNameUsername
	case !name && user && pass:
		msg = msgAddUserPassword
	case !name && !user && pass:
		msg = msgAddPassword
	case !name && user && !pass:
		msg = msgAddUsername
	case f.Password != f.ConfirmPassword:
		msg = msgAddMismatch
	}
	if msg != "" {
		return models.AddCredentialRequest{}, errors.New(msg)
	}

	return models.AddCredentialRequest{
		OrganisationalUnit: f.Target.OrgUnit,
		Division:           f.Target.Division,
		Name:               f.Name,
		Username:           f.Username,
		Password:           f.Password,
	}, nil
}

// buildUpdateCredential defaults every blank field to the selected
// credential's old value. A defaulted password also defaults its
// confirmation, so only an explicit mismatch can fail.
func buildUpdateCredential(sel state.CredentialSelection, f UpdateCredentialForm) (models.UpdateCredentialRequest, error) {
	if f.Name == "" {
		f.Name = sel.AccountName
	}
	if f.Username == "" {
		f.Username = sel.AccountUsername
	}
	if f.Password == "" {
		f.Password = sel.AccountPassword
		f.ConfirmPassword = sel.AccountPassword
	}
	if f.Password != f.ConfirmPassword {
		return models.UpdateCredentialRequest{}, errors.New(msgUpdateMismatch)
	}

	return models.UpdateCredentialRequest{
		OrganisationalUnit: sel.OrganisationalUnit,
		Division:           sel.Division,
		OldName:            sel.AccountName,
		OldUsername:        sel.AccountUsername,
		OldPassword:        sel.AccountPassword,
		NewName:            f.Name,
		NewUsername:        f.Username,
		NewPassword:        f.Password,
	}, nil
}
