package prompt

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/atinyakov/credkeeper/internal/models"
)

func TestLineAndSecret(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("  alice \n s3cret \nlast"), &out)

	name, err := p.Line("Username: ")
	if err != nil || name != "alice" {
		t.Fatalf("Line = %q, %v; want alice", name, err)
	}
	pw, err := p.Secret("Password: ")
	if err != nil || pw != " s3cret " {
		t.Fatalf("Secret = %q, %v; want blanks kept", pw, err)
	}
	last, err := p.Line("Again: ")
	if err != nil || last != "last" {
		t.Fatalf("Line without newline = %q, %v", last, err)
	}
	if _, err := p.Line("Done: "); !errors.Is(err, io.EOF) {
		t.Errorf("want io.EOF, got %v", err)
	}
	if !strings.Contains(out.String(), "Username: Password: ") {
		t.Errorf("labels not written: %q", out.String())
	}
}

func TestSecretFromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.WriteString("piped\n")
	w.Close()
	defer r.Close()

	p := New(r, io.Discard)
	got, err := p.Secret("Password: ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "piped" {
		t.Errorf("Secret = %q; want %q", got, "piped")
	}
}

func TestChoose(t *testing.T) {
	opts := []string{"Writing", "Finances"}
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2\n", "Finances", false},
		{"0\n", "<Division>", false},
		{"\n", "<Division>", false},
		{"3\n", "", true},
		{"x\n", "", true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		p := New(strings.NewReader(tt.input), &out)
		got, err := p.Choose("Division", "<Division>", opts)
		if (err != nil) != tt.wantErr {
			t.Errorf("Choose(%q) error = %v; wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Choose(%q) = %q; want %q", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "  0) <Division>\n  1) Writing\n  2) Finances\n") {
			t.Errorf("menu not rendered: %q", out.String())
		}
	}
}

func TestIndices(t *testing.T) {
	got, err := Indices([]string{"1", "2", "3"}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("Indices = %v; want [0 1 2]", got)
	}
	if _, err := Indices([]string{"1"}, 3); err == nil {
		t.Error("expected count error")
	}
	if _, err := Indices([]string{"0"}, 1); err == nil {
		t.Error("expected error for position 0")
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Tree(&buf, models.CredentialTree{{
		Name: "News management",
		Divisions: []models.DivisionCredentials{
			{Name: "Writing", Accounts: []models.Account{{Name: "WordPress", Username: "editor", Password: "p1"}}},
			{Name: "Finances"},
		},
	}})
	for _, want := range []string{"1. News management", "1.1. Writing", "1.1.1. WordPress  username: editor  password: p1", "1.2. Finances", "(no accounts)"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("tree output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	Directory(&buf, []models.UserProfile{
		{Username: "alice", Role: models.RoleAdmin, OrganisationalUnits: []models.OrgUnitMembership{{Name: "News management", Divisions: []string{"Writing", "Finances"}}}},
		{Username: "bob", Role: models.RoleNormal},
	})
	for _, want := range []string{"1. alice (admin)", "News management: Writing, Finances", "2. bob (normal)", "Divisions: none"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("directory output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	Profile(&buf, models.UserProfile{})
	if buf.String() != "No profile loaded.\n" {
		t.Errorf("empty profile = %q", buf.String())
	}
}
