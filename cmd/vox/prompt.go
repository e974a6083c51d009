package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers line by line from the command's input.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
	// tty is the input's descriptor when it is a terminal, otherwise -1.
	tty int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewScanner(in), out: out, tty: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = int(f.Fd())
	}
	return p
}

// ask prints label and returns the trimmed answer, or def when it is blank.
// ok is false once input is exhausted.
func (p *prompter) ask(label, def string) (string, bool) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	if !p.in.Scan() {
		return def, false
	}
	if v := strings.TrimSpace(p.in.Text()); v != "" {
		return v, true
	}
	return def, true
}

// password reads a secret exactly as typed. On a terminal echo is disabled.
func (p *prompter) password(label string) (string, bool) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.tty >= 0 {
		b, err := term.ReadPassword(p.tty)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSuffix(p.in.Text(), "\r"), true
}

// line prints prompt and returns the next raw line.
func (p *prompter) line(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}
