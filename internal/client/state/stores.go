package state

import (
	"sync"

	"github.com/atinyakov/credkeeper/internal/models"
)

// Directory is the list of every registered user as seen by the current user.
type Directory struct {
	mu    sync.RWMutex
	users []models.UserProfile
}

// All returns a deep copy of the directory.
func (d *Directory) All() []models.UserProfile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.UserProfile, len(d.users))
	for i, u := range d.users {
		out[i] = u.Clone()
	}
	return out
}

// Len returns the number of directory entries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// Replace swaps the whole directory for users.
func (d *Directory) Replace(users []models.UserProfile) {
	cp := make([]models.UserProfile, len(users))
	for i, u := range users {
		cp[i] = u.Clone()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = cp
}

// Clear empties the directory.
func (d *Directory) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = nil
}

// Credentials is the credential tree the current user is authorized to see.
type Credentials struct {
	mu   sync.RWMutex
	tree models.CredentialTree
}

// All returns a deep copy of the credential tree.
func (c *Credentials) All() models.CredentialTree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tree == nil {
		return models.CredentialTree{}
	}
	return c.tree.Clone()
}

// Len returns the number of organisational units in the tree.
func (c *Credentials) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tree)
}

// Replace swaps the whole tree for tree.
func (c *Credentials) Replace(tree models.CredentialTree) {
	cp := tree.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = cp
}

// Clear empties the tree.
func (c *Credentials) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = nil
}

// State is the single context object shared by every client surface.
type State struct {
	Session     Session
	Directory   Directory
	Credentials Credentials
	Selections  Selections
}

// New returns an empty, logged-out State.
func New() *State {
	return &State{}
}

// Reset clears every store and selection.
func (s *State) Reset() {
	s.Session.Clear()
	s.Directory.Clear()
	s.Credentials.Clear()
	s.Selections.ClearCredential()
	s.Selections.ClearUser()
}
