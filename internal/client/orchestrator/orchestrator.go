// Package orchestrator sequences every user action of the credential
// manager client: validate locally, call the gateway, re-synchronize the
// stores the action may have invalidated, and report exactly one
// notification. It is the only writer of the client state.
package orchestrator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/client/gateway"
	"github.com/atinyakov/credkeeper/internal/client/state"
	"github.com/atinyakov/credkeeper/internal/models"
)

// Gateway is the subset of the remote gateway the orchestrator drives.
// Errors are classified with gateway.Reason: a *gateway.BusinessError is
// a business failure, anything else is a fault.
type Gateway interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, token string) (models.UserProfile, error)
	Credentials(ctx context.Context, token string) (models.CredentialTree, error)
	Users(ctx context.Context, token string) ([]models.UserProfile, error)
	AddCredential(ctx context.Context, token string, req models.AddCredentialRequest) (string, error)
	UpdateCredential(ctx context.Context, token string, req models.UpdateCredentialRequest) (string, error)
	ChangeRole(ctx context.Context, token string, req models.ChangeRoleRequest) (string, error)
	AssignDivision(ctx context.Context, token string, req models.DivisionRequest) (string, error)
	UnassignDivision(ctx context.Context, token string, req models.DivisionRequest) (string, error)
}

// Action names a user action; it keys the busy flags and the sync table.
type Action string

const (
	ActionLogin              Action = "login"
	ActionLogout             Action = "logout"
	ActionRegister           Action = "register"
	ActionAddCredential      Action = "add-credential"
	ActionUpdateCredential   Action = "update-credential"
	ActionChangeRole         Action = "change-role"
	ActionAssignDivision     Action = "assign-division"
	ActionUnassignDivision   Action = "unassign-division"
	ActionRefreshCredentials Action = "refresh-credentials"
	ActionRefreshDirectory   Action = "refresh-directory"
)

// Store identifies one re-synchronizable piece of client state.
type Store int

const (
	StoreProfile Store = iota
	StoreCredentials
	StoreDirectory
)

func (s Store) String() string {
	switch s {
	case StoreProfile:
		return "profile"
	case StoreCredentials:
		return "credentials"
	case StoreDirectory:
		return "directory"
	}
	return "unknown"
}

// syncTable lists, in order, the stores refreshed after each action's
// gateway call returned without a fault.
var syncTable = map[Action][]Store{
	ActionLogin:            {StoreProfile, StoreCredentials, StoreDirectory},
	ActionAddCredential:    {StoreCredentials},
	ActionUpdateCredential: {StoreCredentials},
	ActionChangeRole:       {StoreDirectory, StoreProfile},
	ActionAssignDivision:   {StoreDirectory, StoreProfile},
	ActionUnassignDivision: {StoreDirectory, StoreProfile},
}

// SyncPlan returns the ordered stores re-synchronized after a.
func SyncPlan(a Action) []Store {
	return append([]Store(nil), syncTable[a]...)
}

// Orchestrator runs user actions against a Gateway and a State.
type Orchestrator struct {
	gw  Gateway
	st  *state.State
	log *zap.Logger

	mu   sync.Mutex
	busy map[Action]bool
}

// New returns an Orchestrator. A nil logger disables logging.
func New(gw Gateway, st *state.State, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		gw:   gw,
		st:   st,
		log:  log,
		busy: make(map[Action]bool),
	}
}

// State exposes the state for read-only consumers.
func (o *Orchestrator) State() *state.State {
	return o.st
}

// Busy reports whether a is in flight.
func (o *Orchestrator) Busy(a Action) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy[a]
}

func (o *Orchestrator) begin(a Action) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy[a] {
		return false
	}
	o.busy[a] = true
	return true
}

func (o *Orchestrator) end(a Action) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.busy, a)
}

// mutation is one gateway call whose outcome becomes the notification.
type mutation struct {
	action Action
	fault  string
	call   func(ctx context.Context, token string) (string, error)
}

// run performs m and then the sync plan of m.action. A fault aborts
// before any refetch; a business error does not.
func (o *Orchestrator) run(ctx context.Context, token string, m mutation) Notification {
	msg, err := m.call(ctx, token)
	var n Notification
	if err != nil {
		reason, ok := gateway.Reason(err)
		if !ok {
			o.log.Error("action failed", zap.String("action", string(m.action)), zap.Error(err))
			return failure(m.fault)
		}
		n = failure(reason)
	} else {
		n = success(msg)
	}

	o.resync(ctx, m.action, token)
	return n
}

// resync refreshes every store of a's plan in order. Failures are
// absorbed: the store is left empty and the next step still runs.
func (o *Orchestrator) resync(ctx context.Context, a Action, token string) {
	for _, s := range syncTable[a] {
		if err := o.refresh(ctx, s, token); err != nil {
			o.log.Warn("refetch failed",
				zap.String("action", string(a)),
				zap.Stringer("store", s),
				zap.Error(err),
			)
		}
	}
}

// refresh fetches one store with token. On any error the store degrades
// to its empty value and the error is returned.
func (o *Orchestrator) refresh(ctx context.Context, s Store, token string) error {
	switch s {
	case StoreProfile:
		profile, err := o.gw.Profile(ctx, token)
		if err != nil {
			o.st.Session.Set(token, models.UserProfile{})
			return err
		}
		o.st.Session.Set(token, profile)
	case StoreCredentials:
		tree, err := o.gw.Credentials(ctx, token)
		if err != nil {
			o.st.Credentials.Clear()
			return err
		}
		o.st.Credentials.Replace(tree)
	case StoreDirectory:
		users, err := o.gw.Users(ctx, token)
		if err != nil {
			o.st.Directory.Clear()
			return err
		}
		o.st.Directory.Replace(users)
	}
	return nil
}
