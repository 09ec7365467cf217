package state

import (
	"fmt"
	"sync"

	"github.com/atinyakov/credkeeper/internal/models"
)

// CredentialSelection is a flat value snapshot of one credential leaf,
// taken when the user picks it for editing.
type CredentialSelection struct {
	OrganisationalUnit string
	Division           string
	AccountName        string
	AccountUsername    string
	AccountPassword    string
}

// CredentialSelectionAt copies the account at the given zero-based
// indices out of tree.
func CredentialSelectionAt(tree models.CredentialTree, org, div, acct int) (CredentialSelection, error) {
	if org < 0 || org >= len(tree) {
		return CredentialSelection{}, fmt.Errorf("organisational unit %d out of range", org+1)
	}
	ou := tree[org]
	if div < 0 || div >= len(ou.Divisions) {
		return CredentialSelection{}, fmt.Errorf("division %d out of range", div+1)
	}
	d := ou.Divisions[div]
	if acct < 0 || acct >= len(d.Accounts) {
		return CredentialSelection{}, fmt.Errorf("account %d out of range", acct+1)
	}
	a := d.Accounts[acct]
	return CredentialSelection{
		OrganisationalUnit: ou.Name,
		Division:           d.Name,
		AccountName:        a.Name,
		AccountUsername:    a.Username,
		AccountPassword:    a.Password,
	}, nil
}

// UserSelectionAt copies the directory entry at zero-based index i.
func UserSelectionAt(users []models.UserProfile, i int) (models.UserProfile, error) {
	if i < 0 || i >= len(users) {
		return models.UserProfile{}, fmt.Errorf("user %d out of range", i+1)
	}
	return users[i].Clone(), nil
}

// Selections holds the credential and the user currently targeted by an
// edit. Both are copies; refreshing the stores never changes them.
type Selections struct {
	mu         sync.Mutex
	credential *CredentialSelection
	user       *models.UserProfile
}

// SelectCredential records c as the credential being edited.
func (s *Selections) SelectCredential(c CredentialSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = &c
}

// Credential returns the selected credential, if any.
func (s *Selections) Credential() (CredentialSelection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credential == nil {
		return CredentialSelection{}, false
	}
	return *s.credential, true
}

// ClearCredential discards the credential selection.
func (s *Selections) ClearCredential() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = nil
}

// SelectUser records u as the user being administered.
func (s *Selections) SelectUser(u models.UserProfile) {
	cp := u.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &cp
}

// User returns the selected user, if any.
func (s *Selections) User() (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.UserProfile{}, false
	}
	return s.user.Clone(), true
}

// ClearUser discards the user selection.
func (s *Selections) ClearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}
