package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/credkeeper/internal/models"
)

func sampleTree() models.CredentialTree {
	return models.CredentialTree{
		{ID: "ou1", Name: "News management", Divisions: []models.DivisionCredentials{
			{ID: "d1", Name: "Writing", Accounts: []models.Account{
				{ID: "a1", Name: "WordPress", Username: "writer", Password: "pw1"},
				{ID: "a2", Name: "Slack", Username: "writer2", Password: "pw2"},
			}},
		}},
	}
}

func sampleProfile() models.UserProfile {
	return models.UserProfile{
		ID: "u1", Username: "alice", Role: models.RoleAdmin,
		OrganisationalUnits: []models.OrgUnitMembership{
			{ID: "ou1", Name: "News management", Divisions: []string{"Writing"}},
		},
	}
}

func TestSession_SetAndClear(t *testing.T) {
	var s Session
	assert.False(t, s.LoggedIn())
	assert.True(t, s.Profile().IsZero())

	s.Set("T", sampleProfile())
	token, profile := s.Snapshot()
	assert.Equal(t, "T", token)
	assert.Equal(t, "alice", profile.Username)
	assert.True(t, s.LoggedIn())

	s.Clear()
	token, profile = s.Snapshot()
	assert.Empty(t, token)
	assert.True(t, profile.IsZero())
}

func TestSession_ProfileIsCopied(t *testing.T) {
	var s Session
	p := sampleProfile()
	s.Set("T", p)

	p.OrganisationalUnits[0].Divisions[0] = "mutated"
	got := s.Profile()
	assert.Equal(t, "Writing", got.OrganisationalUnits[0].Divisions[0])

	got.OrganisationalUnits[0].Name = "mutated"
	assert.Equal(t, "News management", s.Profile().OrganisationalUnits[0].Name)
}

func TestStores_ReplaceAndClear(t *testing.T) {
	var d Directory
	d.Replace([]models.UserProfile{sampleProfile()})
	assert.Equal(t, 1, d.Len())
	d.Clear()
	assert.Empty(t, d.All())

	var c Credentials
	assert.NotNil(t, c.All())
	c.Replace(sampleTree())
	assert.Equal(t, 1, c.Len())
	all := c.All()
	all[0].Divisions[0].Accounts[0].Password = "leak"
	assert.Equal(t, "pw1", c.All()[0].Divisions[0].Accounts[0].Password)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCredentialSelectionAt(t *testing.T) {
	tree := sampleTree()

	sel, err := CredentialSelectionAt(tree, 0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, CredentialSelection{
		OrganisationalUnit: "News management",
		Division:           "Writing",
		AccountName:        "Slack",
		AccountUsername:    "writer2",
		AccountPassword:    "pw2",
	}, sel)

	_, err = CredentialSelectionAt(tree, 1, 0, 0)
	assert.Error(t, err)
	_, err = CredentialSelectionAt(tree, 0, 3, 0)
	assert.Error(t, err)
	_, err = CredentialSelectionAt(tree, 0, 0, 9)
	assert.Error(t, err)
}

func TestSelections_AreSnapshots(t *testing.T) {
	st := New()
	st.Credentials.Replace(sampleTree())

	sel, err := CredentialSelectionAt(st.Credentials.All(), 0, 0, 0)
	require.NoError(t, err)
	st.Selections.SelectCredential(sel)

	// A refresh that renames the account must not move the edit target.
	refreshed := sampleTree()
	refreshed[0].Divisions[0].Accounts[0].Name = "Renamed"
	st.Credentials.Replace(refreshed)

	got, ok := st.Selections.Credential()
	require.True(t, ok)
	assert.Equal(t, "WordPress", got.AccountName)

	users := []models.UserProfile{sampleProfile()}
	u, err := UserSelectionAt(users, 0)
	require.NoError(t, err)
	st.Selections.SelectUser(u)
	users[0].Role = models.RoleNormal

	selected, ok := st.Selections.User()
	require.True(t, ok)
	assert.Equal(t, models.RoleAdmin, selected.Role)

	_, err = UserSelectionAt(users, 5)
	assert.Error(t, err)
}

func TestState_Reset(t *testing.T) {
	st := New()
	st.Session.Set("T", sampleProfile())
	st.Directory.Replace([]models.UserProfile{sampleProfile()})
	st.Credentials.Replace(sampleTree())
	st.Selections.SelectCredential(CredentialSelection{AccountName: "x"})
	st.Selections.SelectUser(sampleProfile())

	st.Reset()

	assert.False(t, st.Session.LoggedIn())
	assert.True(t, st.Session.Profile().IsZero())
	assert.Zero(t, st.Directory.Len())
	assert.Zero(t, st.Credentials.Len())
	_, ok := st.Selections.Credential()
	assert.False(t, ok)
	_, ok = st.Selections.User()
	assert.False(t, ok)
}
