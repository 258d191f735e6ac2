package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// prompter reads answers from the command's input
type prompter struct {
	out    io.Writer
	reader *bufio.Reader
	file   *os.File
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	f, _ := in.(*os.File)
	return &prompter{
		out:    cmd.OutOrStdout(),
		reader: bufio.NewReader(in),
		file:   f,
	}
}

// line prints label and returns the trimmed answer
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(s), nil
}

// secret reads a value without echo when the input is a terminal
func (p *prompter) secret(label string) (string, error) {
	if p.file != nil && term.IsTerminal(int(p.file.Fd())) {
		fmt.Fprint(p.out, label)
		b, err := term.ReadPassword(int(p.file.Fd()))
		// newline after hidden input
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	fmt.Fprint(p.out, label)
	s, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// confirm asks a yes/no question
func (p *prompter) confirm(label string, def bool) (bool, error) {
	hint := " [y/N]: "
	if def {
		hint = " [Y/n]: "
	}
	answer, err := p.line(label + hint)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
