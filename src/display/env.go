package display

import (
	"os"
	"runtime"

	"golang.org/x/term"
)

// Package-level function variables for testing
var (
	isTerminalFunc = term.IsTerminal
	getSizeFunc    = term.GetSize
	getenvFunc     = os.Getenv
	goosFunc       = func() string { return runtime.GOOS }
)

// Env is the detected terminal environment
type Env struct {
	// stdin and stdout are both TTYs
	IsTerminal bool
	Cols       int
	Rows       int

	IsSSH  bool
	IsMosh bool

	// A graphical session is available for opening URLs
	HasDisplay bool
}

// Detect inspects stdin, stdout and the environment
func Detect() Env {
	var env Env

	env.IsTerminal = isTerminalFunc(int(os.Stdout.Fd())) && isTerminalFunc(int(os.Stdin.Fd()))
	if env.IsTerminal {
		if cols, rows, err := getSizeFunc(int(os.Stdout.Fd())); err == nil {
			env.Cols = cols
			env.Rows = rows
		}
	}

	env.IsSSH = getenvFunc("SSH_CLIENT") != "" || getenvFunc("SSH_TTY") != "" || getenvFunc("SSH_CONNECTION") != ""
	env.IsMosh = getenvFunc("MOSH") != "" || getenvFunc("MOSH_CONNECTION") != ""
	env.HasDisplay = detectDisplay(env.IsRemote())

	return env
}

// detectDisplay reports whether a desktop session can open a browser
func detectDisplay(remote bool) bool {
	if remote {
		return false
	}
	switch goosFunc() {
	case "darwin", "windows":
		return true
	default:
		return getenvFunc("WAYLAND_DISPLAY") != "" || getenvFunc("DISPLAY") != ""
	}
}

// IsRemote returns true if running in a remote session
func (e Env) IsRemote() bool {
	return e.IsSSH || e.IsMosh
}

// Interactive reports whether prompts and the TUI can be used
func (e Env) Interactive() bool {
	return e.IsTerminal
}

// CanOpenBrowser reports whether URLs can be opened locally
func (e Env) CanOpenBrowser() bool {
	return e.HasDisplay
}

// TerminalSize returns the terminal size or 80x24
func (e Env) TerminalSize() (cols, rows int) {
	if e.Cols > 0 && e.Rows > 0 {
		return e.Cols, e.Rows
	}
	return 80, 24
}
