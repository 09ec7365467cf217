package orchestrator

import (
	"fmt"
	"strings"

	"github.com/atinyakov/credkeeper/internal/models"
)

// Unselected sentinels shown as the first entry of every dropdown.
const (
	OrgUnitPlaceholder  = "<Organisational Unit>"
	DivisionPlaceholder = "<Division>"
	RolePlaceholder     = "<Role>"
)

// DivisionSelection is the (organisational unit, division) pair chosen in
// a pair of dependent dropdowns.
type DivisionSelection struct {
	OrgUnit  string
	Division string
}

// Complete reports whether both halves hold a real choice.
func (s DivisionSelection) Complete() bool {
	return s.OrgUnit != "" && s.OrgUnit != OrgUnitPlaceholder &&
		s.Division != "" && s.Division != DivisionPlaceholder
}

// DivisionPicker models an organisational-unit dropdown and the division
// dropdown that depends on it. Options come from the logged-in user's
// profile captured at construction.
type DivisionPicker struct {
	profile  models.UserProfile
	orgUnit  string
	division string
	options  []string
}

// NewDivisionPicker returns a picker with nothing selected.
func NewDivisionPicker(profile models.UserProfile) *DivisionPicker {
	return &DivisionPicker{
		profile:  profile.Clone(),
		orgUnit:  OrgUnitPlaceholder,
		division: DivisionPlaceholder,
	}
}

// OrgUnits lists the organisational units offered in the first dropdown.
func (p *DivisionPicker) OrgUnits() []string {
	seen := make(map[string]bool, len(p.profile.OrganisationalUnits))
	var out []string
	for _, ou := range p.profile.OrganisationalUnits {
		if !seen[ou.Name] {
			seen[ou.Name] = true
			out = append(out, ou.Name)
		}
	}
	return out
}

// SelectOrgUnit chooses an organisational unit. The division options are
// recomputed from the profile and the division choice always resets to
// DivisionPlaceholder, even when the same division name exists under the
// new unit.
func (p *DivisionPicker) SelectOrgUnit(name string) error {
	if name != OrgUnitPlaceholder && !contains(p.OrgUnits(), name) {
		return fmt.Errorf("unknown organisational unit %q", name)
	}
	p.orgUnit = name
	p.division = DivisionPlaceholder
	if name == OrgUnitPlaceholder {
		p.options = nil
		return nil
	}
	p.options = p.profile.DivisionsOf(name)
	return nil
}

// Divisions lists the division options for the selected unit.
func (p *DivisionPicker) Divisions() []string {
	return append([]string(nil), p.options...)
}

// SelectDivision chooses one of the current division options.
func (p *DivisionPicker) SelectDivision(name string) error {
	if name != DivisionPlaceholder && !contains(p.options, name) {
		return fmt.Errorf("unknown division %q", name)
	}
	p.division = name
	return nil
}

// Selection returns the current pair, sentinels included.
func (p *DivisionPicker) Selection() DivisionSelection {
	return DivisionSelection{OrgUnit: p.orgUnit, Division: p.division}
}

// RoleLabels are the dropdown labels of the role selector.
var RoleLabels = []string{"Normal", "Management", "Admin"}

// RolePicker models the role dropdown.
type RolePicker struct {
	label string
}

// NewRolePicker returns a picker showing RolePlaceholder.
func NewRolePicker() *RolePicker {
	return &RolePicker{label: RolePlaceholder}
}

// Choose selects a role label; matching is case-insensitive.
func (p *RolePicker) Choose(label string) error {
	if label == RolePlaceholder {
		p.label = label
		return nil
	}
	for _, known := range RoleLabels {
		if strings.EqualFold(known, strings.TrimSpace(label)) {
			p.label = strings.TrimSpace(label)
			return nil
		}
	}
	return fmt.Errorf("unknown role %q", label)
}

// Label returns the chosen label as entered.
func (p *RolePicker) Label() string {
	return p.label
}

// Role returns the lower-cased role to transmit, or false while the
// placeholder is shown.
func (p *RolePicker) Role() (models.Role, bool) {
	if p.label == RolePlaceholder || p.label == "" {
		return "", false
	}
	return models.Role(strings.ToLower(p.label)), true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
