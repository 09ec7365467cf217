package prompt

import (
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/credkeeper/internal/models"
)

// Profile prints the logged-in user's account details.
func Profile(w io.Writer, p models.UserProfile) {
	if p.IsZero() {
		fmt.Fprintln(w, "No profile loaded.")
		return
	}
	fmt.Fprintf(w, "Username: %s\nRole: %s\n", p.Username, p.Role)
	memberships(w, p.OrganisationalUnits, "")
}

// Tree prints the credential tree with one-based positions usable by
// pick-cred.
func Tree(w io.Writer, tree models.CredentialTree) {
	if len(tree) == 0 {
		fmt.Fprintln(w, "No credentials.")
		return
	}
	for i, ou := range tree {
		fmt.Fprintf(w, "%d. %s\n", i+1, ou.Name)
		for j, d := range ou.Divisions {
			fmt.Fprintf(w, "  %d.%d. %s\n", i+1, j+1, d.Name)
			if len(d.Accounts) == 0 {
				fmt.Fprintln(w, "      (no accounts)")
			}
			for k, a := range d.Accounts {
				fmt.Fprintf(w, "    %d.%d.%d. %s  username: %s  password: %s\n",
					i+1, j+1, k+1, a.Name, a.Username, a.Password)
			}
		}
	}
}

// Directory prints every user with a one-based position usable by
// pick-user.
func Directory(w io.Writer, users []models.UserProfile) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users.")
		return
	}
	for i, u := range users {
		fmt.Fprintf(w, "%d. %s (%s)\n", i+1, u.Username, u.Role)
		memberships(w, u.OrganisationalUnits, "   ")
	}
}

func memberships(w io.Writer, units []models.OrgUnitMembership, indent string) {
	if len(units) == 0 {
		fmt.Fprintf(w, "%sDivisions: none\n", indent)
		return
	}
	for _, ou := range units {
		fmt.Fprintf(w, "%s%s: %s\n", indent, ou.Name, strings.Join(ou.Divisions, ", "))
	}
}
