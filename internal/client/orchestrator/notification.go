package orchestrator

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "Success"
	KindError   Kind = "Error"
)

// Notification is the single terminal outcome of one user action.
type Notification struct {
	Kind    Kind
	Message string
}

// OK reports whether n is a success.
func (n Notification) OK() bool {
	return n.Kind == KindSuccess
}

func (n Notification) String() string {
	return string(n.Kind) + ": " + n.Message
}

func success(msg string) Notification {
	return Notification{Kind: KindSuccess, Message: msg}
}

func failure(msg string) Notification {
	return Notification{Kind: KindError, Message: msg}
}

const (
	msgLoggedIn       = "You are logged in!"
	msgLoggedOut      = "You are logged out!"
	msgNotLoggedIn    = "You are not logged in."
	msgBusy           = "Please wait, the previous request is still in progress."
	msgNoCredential   = "Cannot update credential. No credential selected."
	msgNoUser         = "No user selected."
	msgCredsRefreshed = "Credentials refreshed."
	msgUsersRefreshed = "Users refreshed."
)

// Generic fault messages; the underlying cause is only logged.
const (
	faultLogin            = "Application error! Could not login!"
	faultRegister         = "Application error! Could not register!"
	faultAddCredential    = "Application error! Could not add credential."
	faultUpdateCredential = "Application error! Cannot update credential."
	faultChangeRole       = "Application error! Cannot change user role!"
	faultAssignDivision   = "Application error! Could not assign user division."
	faultUnassignDivision = "Application error! Could not unassign user division."
	faultCredentials      = "Application error! Could not retrieve credentials!"
	faultUsers            = "Application error! Could not retrieve users."
)
