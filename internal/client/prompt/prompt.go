// Package prompt reads shell input and renders client state as text.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers line by line from in and writes questions to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

// New returns a Prompter. When in is a terminal, secrets are read without
// echo.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// Line prints label and returns the trimmed answer. io.EOF is returned
// only when no input at all is left.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Secret prints label and reads a password. Leading and trailing blanks
// are kept.
func (p *Prompter) Secret(label string) (string, error) {
	if !p.tty {
		fmt.Fprint(p.out, label)
		s, err := p.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && s != "") {
			return "", err
		}
		return strings.TrimRight(s, "\r\n"), nil
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// Choose renders a numbered menu whose entry 0 is sentinel and returns
// the picked entry. An empty answer picks the sentinel.
func (p *Prompter) Choose(label, sentinel string, options []string) (string, error) {
	fmt.Fprintf(p.out, "%s:\n  0) %s\n", label, sentinel)
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
	answer, err := p.Line("> ")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return sentinel, nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 0 || n > len(options) {
		return "", fmt.Errorf("invalid choice %q", answer)
	}
	if n == 0 {
		return sentinel, nil
	}
	return options[n-1], nil
}

// Indices parses one-based positions typed by the user into zero-based
// indices.
func Indices(args []string, want int) ([]int, error) {
	if len(args) != want {
		return nil, fmt.Errorf("expected %d numbers, got %d", want, len(args))
	}
	out := make([]int, 0, want)
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid position %q", a)
		}
		out = append(out, n-1)
	}
	return out, nil
}
