package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s v%s (%s) built %s\n", getBinaryName(), Version, CommitID, BuildDate)

		sess, err := openStore().Load()
		if err == nil {
			fmt.Fprintf(w, "\nAPI: %s\n", resolveAPIURL(sess))
			if sess.Email != "" {
				fmt.Fprintf(w, "Account: %s\n", sess.Email)
			}
		}

		fmt.Fprintf(w, "\nBuild Info:\n")
		fmt.Fprintf(w, "  Go: %s\n", runtime.Version())
		fmt.Fprintf(w, "  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(w, "  Commit: %s\n", CommitID)
		fmt.Fprintf(w, "  Date: %s\n", BuildDate)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
