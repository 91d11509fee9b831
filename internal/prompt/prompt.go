package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Prompter asks questions on w and reads the answers from r.
type Prompter struct {
	reader *bufio.Reader
	w      io.Writer
	// fd is the terminal file descriptor behind r, or -1.
	fd int
}

// New creates a Prompter. When r is a terminal, secrets are read without echo.
func New(r io.Reader, w io.Writer) *Prompter {
	fd := -1
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{reader: bufio.NewReader(r), w: w, fd: fd}
}

// Interactive reports whether answers come from a terminal.
func (p *Prompter) Interactive() bool {
	return p.fd >= 0
}

// Writer returns the writer prompts are printed to.
func (p *Prompter) Writer() io.Writer {
	return p.w
}

// Ask prints label and returns the first non-blank answer, trimmed.
// Blank answers are rejected and the question is asked again.
func (p *Prompter) Ask(label string) (string, error) {
	return p.ask(label, false)
}

// AskSecret is Ask without echoing the answer when reading from a terminal.
func (p *Prompter) AskSecret(label string) (string, error) {
	return p.ask(label, true)
}

func (p *Prompter) ask(label string, secret bool) (string, error) {
	for {
		fmt.Fprintf(p.w, "%s\n-> ", label)

		line, err := p.readLine(secret)
		if answer := strings.TrimSpace(line); answer != "" {
			return answer, nil
		}
		if err != nil {
			return "", err
		}
		fmt.Fprint(p.w, "Invalid input, please try again.\n\n")
	}
}

// Confirm asks a yes/no question. Only y/yes and n/no are accepted, in any case.
func (p *Prompter) Confirm(label string) (bool, error) {
	for {
		answer, err := p.Ask(label)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprint(p.w, "Please answer y or n.\n\n")
	}
}

// WaitEnter prints label and blocks until a line is entered.
func (p *Prompter) WaitEnter(label string) error {
	fmt.Fprint(p.w, label)
	_, err := p.readLine(false)
	return err
}

// Banner prints text inside a rounded border.
func (p *Prompter) Banner(text string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	fmt.Fprintln(p.w, style.Render(text))
}

// readLine returns one line without its terminator. io.EOF with no data is
// reported as io.ErrUnexpectedEOF so callers can tell it from an answer.
func (p *Prompter) readLine(secret bool) (string, error) {
	if secret && p.fd >= 0 {
		b, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.w)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(b), nil
	}

	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return line, nil
			}
			return "", io.ErrUnexpectedEOF
		}
		return line, fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
