package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/client/gateway"
	"github.com/atinyakov/credkeeper/internal/client/state"
	"github.com/atinyakov/credkeeper/internal/models"
)

// Login authenticates and, on success, installs the token and fetches the
// profile, the credential tree and the directory, strictly in that order.
// A refetch failure only empties its store. A rejected login drops the
// previous session together with its stores and selections.
func (o *Orchestrator) Login(ctx context.Context, f LoginForm) Notification {
	if !o.begin(ActionLogin) {
		return failure(msgBusy)
	}
	defer o.end(ActionLogin)

	token, err := o.gw.Login(ctx, f.Username, f.Password)
	if err != nil {
		reason, ok := gateway.Reason(err)
		if !ok {
			o.log.Error("login failed", zap.Error(err))
			return failure(faultLogin)
		}
		o.st.Reset()
		return failure(reason)
	}

	o.st.Session.Set(token, models.UserProfile{})
	o.st.Selections.ClearCredential()
	o.st.Selections.ClearUser()
	o.resync(ctx, ActionLogin, token)

	o.log.Info("logged in", zap.String("username", f.Username))
	return success(msgLoggedIn)
}

// Logout drops the token, the profile, both stores and both selections.
func (o *Orchestrator) Logout() Notification {
	o.st.Reset()
	return success(msgLoggedOut)
}

// Register creates an account. The session is left untouched.
func (o *Orchestrator) Register(ctx context.Context, f RegisterForm) Notification {
	if !o.begin(ActionRegister) {
		return failure(msgBusy)
	}
	defer o.end(ActionRegister)

	if err := validateRegister(f); err != nil {
		return failure(err.Error())
	}

	msg, err := o.gw.Register(ctx, f.Username, f.Password)
	if err != nil {
		reason, ok := gateway.Reason(err)
		if !ok {
			o.log.Error("register failed", zap.Error(err))
			return failure(faultRegister)
		}
		return failure(reason)
	}
	return success(msg)
}

// AddCredential stores a new account under the chosen division and
// refreshes the credential tree.
func (o *Orchestrator) AddCredential(ctx context.Context, f AddCredentialForm) Notification {
	if !o.begin(ActionAddCredential) {
		return failure(msgBusy)
	}
	defer o.end(ActionAddCredential)

	token := o.st.Session.Token()
	if token == "" {
		return failure(msgNotLoggedIn)
	}
	req, err := validateAddCredential(f)
	if err != nil {
		return failure(err.Error())
	}

	return o.run(ctx, token, mutation{
		action: ActionAddCredential,
		fault:  faultAddCredential,
		call: func(ctx context.Context, token string) (string, error) {
			return o.gw.AddCredential(ctx, token, req)
		},
	})
}

// UpdateCredential rewrites the selected credential. Blank fields keep
// their old values.
func (o *Orchestrator) UpdateCredential(ctx context.Context, f UpdateCredentialForm) Notification {
	if !o.begin(ActionUpdateCredential) {
		return failure(msgBusy)
	}
	defer o.end(ActionUpdateCredential)

	token := o.st.Session.Token()
	if token == "" {
		return failure(msgNotLoggedIn)
	}
	sel, ok := o.st.Selections.Credential()
	if !ok {
		return failure(msgNoCredential)
	}
	req, err := buildUpdateCredential(sel, f)
	if err != nil {
		return failure(err.Error())
	}

	defer o.st.Selections.ClearCredential()
	return o.run(ctx, token, mutation{
		action: ActionUpdateCredential,
		fault:  faultUpdateCredential,
		call: func(ctx context.Context, token string) (string, error) {
			return o.gw.UpdateCredential(ctx, token, req)
		},
	})
}

// ChangeRole sets the selected user's role to the one chosen in p.
func (o *Orchestrator) ChangeRole(ctx context.Context, p *RolePicker) Notification {
	if !o.begin(ActionChangeRole) {
		return failure(msgBusy)
	}
	defer o.end(ActionChangeRole)

	token := o.st.Session.Token()
	if token == "" {
		return failure(msgNotLoggedIn)
	}
	target, ok := o.st.Selections.User()
	if !ok {
		return failure(msgNoUser)
	}
	role, ok := p.Role()
	if !ok {
		return failure(msgRoleNotSelected)
	}
	if _, err := models.ParseRole(string(role)); err != nil {
		return failure(msgRoleNotSelected)
	}

	req := models.ChangeRoleRequest{UserID: target.ID, NewRole: role}
	defer o.st.Selections.ClearUser()
	return o.run(ctx, token, mutation{
		action: ActionChangeRole,
		fault:  faultChangeRole,
		call: func(ctx context.Context, token string) (string, error) {
			return o.gw.ChangeRole(ctx, token, req)
		},
	})
}

// AssignDivision adds the division chosen in p to the selected user.
func (o *Orchestrator) AssignDivision(ctx context.Context, p *DivisionPicker) Notification {
	return o.membership(ctx, ActionAssignDivision, p)
}

// UnassignDivision removes the division chosen in p from the selected user.
func (o *Orchestrator) UnassignDivision(ctx context.Context, p *DivisionPicker) Notification {
	return o.membership(ctx, ActionUnassignDivision, p)
}

func (o *Orchestrator) membership(ctx context.Context, a Action, p *DivisionPicker) Notification {
	incomplete, fault := msgAssignIncomplete, faultAssignDivision
	call := o.gw.AssignDivision
	if a == ActionUnassignDivision {
		incomplete, fault = msgUnassignIncomplete, faultUnassignDivision
		call = o.gw.UnassignDivision
	}

	if !o.begin(a) {
		return failure(msgBusy)
	}
	defer o.end(a)

	token := o.st.Session.Token()
	if token == "" {
		return failure(msgNotLoggedIn)
	}
	target, ok := o.st.Selections.User()
	if !ok {
		return failure(msgNoUser)
	}
	sel := p.Selection()
	if !sel.Complete() {
		return failure(incomplete)
	}

	req := models.DivisionRequest{
		UserID:             target.ID,
		OrganisationalUnit: sel.OrgUnit,
		Division:           sel.Division,
	}
	defer o.st.Selections.ClearUser()
	return o.run(ctx, token, mutation{
		action: a,
		fault:  fault,
		call: func(ctx context.Context, token string) (string, error) {
			return call(ctx, token, req)
		},
	})
}

// RefreshCredentials refetches the credential tree on demand.
func (o *Orchestrator) RefreshCredentials(ctx context.Context) Notification {
	return o.reload(ctx, ActionRefreshCredentials, StoreCredentials, msgCredsRefreshed, faultCredentials)
}

// RefreshDirectory refetches the user directory on demand.
func (o *Orchestrator) RefreshDirectory(ctx context.Context) Notification {
	return o.reload(ctx, ActionRefreshDirectory, StoreDirectory, msgUsersRefreshed, faultUsers)
}

func (o *Orchestrator) reload(ctx context.Context, a Action, s Store, ok, fault string) Notification {
	if !o.begin(a) {
		return failure(msgBusy)
	}
	defer o.end(a)

	token := o.st.Session.Token()
	if token == "" {
		o.clearStore(s)
		return failure(msgNotLoggedIn)
	}
	err := o.refresh(ctx, s, token)
	if err == nil {
		return success(ok)
	}
	if reason, isBusiness := gateway.Reason(err); isBusiness {
		return failure(reason)
	}
	o.log.Error("refresh failed", zap.Stringer("store", s), zap.Error(err))
	return failure(fault)
}

func (o *Orchestrator) clearStore(s Store) {
	switch s {
	case StoreCredentials:
		o.st.Credentials.Clear()
	case StoreDirectory:
		o.st.Directory.Clear()
	}
}

// PickCredential snapshots the account at the given zero-based position of
// the current credential tree as the edit target.
func (o *Orchestrator) PickCredential(org, div, acct int) (state.CredentialSelection, error) {
	sel, err := state.CredentialSelectionAt(o.st.Credentials.All(), org, div, acct)
	if err != nil {
		return state.CredentialSelection{}, err
	}
	o.st.Selections.SelectCredential(sel)
	return sel, nil
}

// PickUser snapshots the directory entry at zero-based position i as the
// user being administered.
func (o *Orchestrator) PickUser(i int) (models.UserProfile, error) {
	u, err := state.UserSelectionAt(o.st.Directory.All(), i)
	if err != nil {
		return models.UserProfile{}, err
	}
	o.st.Selections.SelectUser(u)
	return u, nil
}
