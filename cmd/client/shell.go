package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/credkeeper/internal/client/orchestrator"
	"github.com/atinyakov/credkeeper/internal/client/prompt"
)

const helpText = `Available commands:
  help                          show this list
  register                      create an account
  login | logout                start or end a session
  account                       show your role and divisions
  creds | refresh-creds         show or refetch the credentials you can see
  add-cred                      add a credential to one of your divisions
  pick-cred <org> <div> <acct>  select a credential to edit
  update-cred                   edit the selected credential
  users | refresh-users         show or refetch the user directory
  pick-user <n>                 select a user to administer
  change-role                   change the selected user's role
  assign | unassign             add or remove a division for the selected user
  exit                          quit`

// shell is the REPL over one orchestrator.
type shell struct {
	orch *orchestrator.Orchestrator
	p    *prompt.Prompter
	out  io.Writer
}

func newShell(orch *orchestrator.Orchestrator, p *prompt.Prompter, out io.Writer) *shell {
	return &shell{orch: orch, p: p, out: out}
}

// run reads commands until exit, end of input or ctx cancellation.
func (s *shell) run(ctx context.Context) {
	for ctx.Err() == nil {
		line, err := s.p.Line("credkeeper> ")
		if err != nil {
			fmt.Fprintln(s.out)
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return
		}
		if err := s.dispatch(ctx, args); err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return
			}
			fmt.Fprintln(s.out, "Error:", err)
		}
	}
}

func (s *shell) dispatch(ctx context.Context, args []string) error {
	st := s.orch.State()

	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "login":
		return s.login(ctx)
	case "logout":
		s.notify(s.orch.Logout())
	case "register":
		return s.register(ctx)
	case "account":
		prompt.Profile(s.out, st.Session.Profile())
	case "creds":
		prompt.Tree(s.out, st.Credentials.All())
	case "refresh-creds":
		s.notify(s.orch.RefreshCredentials(ctx))
	case "users":
		prompt.Directory(s.out, st.Directory.All())
	case "refresh-users":
		s.notify(s.orch.RefreshDirectory(ctx))
	case "add-cred":
		return s.addCredential(ctx)
	case "pick-cred":
		idx, err := prompt.Indices(args[1:], 3)
		if err != nil {
			return fmt.Errorf("usage: pick-cred <org> <div> <acct>: %w", err)
		}
		sel, err := s.orch.PickCredential(idx[0], idx[1], idx[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Selected %s / %s / %s (%s)\n",
			sel.OrganisationalUnit, sel.Division, sel.AccountName, sel.AccountUsername)
	case "update-cred":
		return s.updateCredential(ctx)
	case "pick-user":
		idx, err := prompt.Indices(args[1:], 1)
		if err != nil {
			return fmt.Errorf("usage: pick-user <n>: %w", err)
		}
		u, err := s.orch.PickUser(idx[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Selected %s (%s)\n", u.Username, u.Role)
	case "change-role":
		return s.changeRole(ctx)
	case "assign":
		return s.membership(ctx, s.orch.AssignDivision)
	case "unassign":
		return s.membership(ctx, s.orch.UnassignDivision)
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func (s *shell) notify(n orchestrator.Notification) {
	fmt.Fprintln(s.out, n)
}

func (s *shell) login(ctx context.Context) error {
	var f orchestrator.LoginForm
	var err error
	if f.Username, err = s.p.Line("Username: "); err != nil {
		return err
	}
	if f.Password, err = s.p.Secret("Password: "); err != nil {
		return err
	}
	s.notify(s.orch.Login(ctx, f))
	return nil
}

func (s *shell) register(ctx context.Context) error {
	var f orchestrator.RegisterForm
	var err error
	if f.Username, err = s.p.Line("Username: "); err != nil {
		return err
	}
	if f.Password, err = s.p.Secret("Password: "); err != nil {
		return err
	}
	if f.ConfirmPassword, err = s.p.Secret("Confirm password: "); err != nil {
		return err
	}
	s.notify(s.orch.Register(ctx, f))
	return nil
}

// pickDivision walks the two dependent dropdowns built from the session
// profile.
func (s *shell) pickDivision() (*orchestrator.DivisionPicker, error) {
	picker := orchestrator.NewDivisionPicker(s.orch.State().Session.Profile())

	unit, err := s.p.Choose("Organisational unit", orchestrator.OrgUnitPlaceholder, picker.OrgUnits())
	if err != nil {
		return nil, err
	}
	if err := picker.SelectOrgUnit(unit); err != nil {
		return nil, err
	}
	if unit == orchestrator.OrgUnitPlaceholder {
		return picker, nil
	}

	division, err := s.p.Choose("Division", orchestrator.DivisionPlaceholder, picker.Divisions())
	if err != nil {
		return nil, err
	}
	if err := picker.SelectDivision(division); err != nil {
		return nil, err
	}
	return picker, nil
}

func (s *shell) addCredential(ctx context.Context) error {
	picker, err := s.pickDivision()
	if err != nil {
		return err
	}
	f := orchestrator.AddCredentialForm{Target: picker.Selection()}
	if f.Name, err = s.p.Line("Account name: "); err != nil {
		return err
	}
	if f.Username, err = s.p.Line("Account username: "); err != nil {
		return err
	}
	if f.Password, err = s.p.Secret("Account password: "); err != nil {
		return err
	}
	if f.ConfirmPassword, err = s.p.Secret("Confirm password: "); err != nil {
		return err
	}
	s.notify(s.orch.AddCredential(ctx, f))
	return nil
}

func (s *shell) updateCredential(ctx context.Context) error {
	if sel, ok := s.orch.State().Selections.Credential(); ok {
		fmt.Fprintf(s.out, "Editing %s (%s). Leave a field blank to keep it.\n", sel.AccountName, sel.AccountUsername)
	}
	var f orchestrator.UpdateCredentialForm
	var err error
	if f.Name, err = s.p.Line("New account name: "); err != nil {
		return err
	}
	if f.Username, err = s.p.Line("New account username: "); err != nil {
		return err
	}
	if f.Password, err = s.p.Secret("New password: "); err != nil {
		return err
	}
	if f.ConfirmPassword, err = s.p.Secret("Confirm new password: "); err != nil {
		return err
	}
	s.notify(s.orch.UpdateCredential(ctx, f))
	return nil
}

func (s *shell) changeRole(ctx context.Context) error {
	rp := orchestrator.NewRolePicker()
	label, err := s.p.Choose("Role", orchestrator.RolePlaceholder, orchestrator.RoleLabels)
	if err != nil {
		return err
	}
	if err := rp.Choose(label); err != nil {
		return err
	}
	s.notify(s.orch.ChangeRole(ctx, rp))
	return nil
}

func (s *shell) membership(ctx context.Context, action func(context.Context, *orchestrator.DivisionPicker) orchestrator.Notification) error {
	picker, err := s.pickDivision()
	if err != nil {
		return err
	}
	s.notify(action(ctx, picker))
	return nil
}
