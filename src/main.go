package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/facetrace/cli/src/cmd"
)

func main() {
	// Panics exit 1 unless --debug asks for the trace
	defer recoverPanic(os.Stderr, debugRequested(os.Args[1:]), os.Exit)

	root := cmd.Command(InitCLI)
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(cmd.VersionString()),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			cmd.ReportError(w, err)
		}),
	); err != nil {
		os.Exit(1)
	}
}

// debugRequested scans args for --debug before flags are parsed
func debugRequested(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "--debug", "--debug=true":
			return true
		}
	}
	return os.Getenv("FACETRACE_DEBUG") == "true" || os.Getenv("FACETRACE_DEBUG") == "1"
}

// recoverPanic turns a panic into exit status 1. In debug mode the panic
// is raised again so the stack trace is printed.
func recoverPanic(w io.Writer, debug bool, exit func(int)) {
	r := recover()
	if r == nil {
		return
	}
	LogError("panic", "error", fmt.Sprint(r))
	if debug {
		panic(r)
	}
	fmt.Fprintf(w, "[-] An error occurred: %v\n", r)
	exit(1)
}
