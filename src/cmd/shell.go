package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/export"
	"github.com/facetrace/cli/src/imagesrc"
)

// shellSupport ties a shell to its cobra generator and the rc line that loads it
type shellSupport struct {
	generate func(w io.Writer) error
	rcLine   string
}

var shells = map[string]shellSupport{
	"bash": {
		generate: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		rcLine:   "source <(%s shell completions bash)",
	},
	"zsh": {
		generate: rootCmd.GenZshCompletion,
		rcLine:   "source <(%s shell completions zsh)",
	},
	"fish": {
		generate: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		rcLine:   "%s shell completions fish | source",
	},
	"powershell": {
		generate: rootCmd.GenPowerShellCompletionWithDesc,
		rcLine:   "Invoke-Expression (& %s shell completions powershell)",
	},
}

// shellNames lists the shells accepted on the command line
var shellNames = []string{"bash", "zsh", "fish", "powershell", "pwsh"}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Shell integration commands",
	Long: `Tab completion for ` + getBinaryName() + `. Completes subcommands, image
files for the search argument, --format values (sherlock, table, json) and
export file types for --output.`,
}

var completionsCmd = &cobra.Command{
	Use:   "completions [bash|zsh|fish|powershell]",
	Short: "Print the completion script",
	Long: `Print the completion script for a shell. Without an argument the shell
is taken from $SHELL.

Examples:
  ` + getBinaryName() + ` shell completions zsh > ~/.zsh/completions/_` + getBinaryName() + `
  ` + getBinaryName() + ` shell completions fish > ~/.config/fish/completions/` + getBinaryName() + `.fish`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: shellNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCompletions(cmd.OutOrStdout(), shellArg(args))
	},
}

var initCmd = &cobra.Command{
	Use:   "init [bash|zsh|fish|powershell]",
	Short: "Print the line that enables completions",
	Long: `Print the line that loads completions when the shell starts.

Add to your shell rc file:
  eval "$(` + getBinaryName() + ` shell init)"`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: shellNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printInit(cmd.OutOrStdout(), shellArg(args))
	},
}

func init() {
	shellCmd.AddCommand(completionsCmd)
	shellCmd.AddCommand(initCmd)
	rootCmd.AddCommand(shellCmd)

	rootCmd.ValidArgsFunction = completeImageArg
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return display.Formats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return trimDots(export.Formats), cobra.ShellCompDirectiveFilterFileExt
	})
}

// completeImageArg offers image files for the single search argument.
// A word that starts a subcommand name is left to cobra.
func completeImageArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if toComplete != "" && !strings.ContainsAny(toComplete, "./~") {
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() && strings.HasPrefix(sub.Name(), toComplete) {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
		}
	}
	return trimDots(imagesrc.SupportedExtensions()), cobra.ShellCompDirectiveFilterFileExt
}

func trimDots(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(out)
	return out
}

func shellArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return detectShell()
}

// detectShell returns the shell named by $SHELL, or bash
func detectShell() string {
	shellPath := os.Getenv("SHELL")
	if shellPath == "" {
		return "bash"
	}
	// $SHELL may hold a Windows path on Git Bash
	base := filepath.Base(shellPath)
	if idx := strings.LastIndex(base, "\\"); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".exe")
}

func lookupShell(shell string) (shellSupport, error) {
	if shell == "pwsh" {
		shell = "powershell"
	}
	s, ok := shells[shell]
	if !ok {
		return shellSupport{}, fmt.Errorf("unsupported shell: %s\nSupported: bash, zsh, fish, powershell", shell)
	}
	return s, nil
}

// printCompletions writes the completion script for shell
func printCompletions(w io.Writer, shell string) error {
	s, err := lookupShell(shell)
	if err != nil {
		return err
	}
	return s.generate(w)
}

// printInit writes the line to eval in a shell rc file
func printInit(w io.Writer, shell string) error {
	s, err := lookupShell(shell)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, s.rcLine+"\n", getBinaryName())
	return err
}
