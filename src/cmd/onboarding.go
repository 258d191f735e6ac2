package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/session"
)

const welcomeText = `Welcome to FaceTrace!

The reverse face search tool for your terminal.

FaceTrace finds where a face appears online across
50+ platforms including Instagram, Facebook, Twitter,
TikTok, LinkedIn and many more.`

const featuresText = `What you can do with FaceTrace:

  Fast            results in seconds
  Accurate        facial recognition scoring
  Multi-platform  50+ platforms in one search
  Exportable      JSON, CSV and YAML output

You start with 3 free searches to try it out!`

const tipsText = `Tips for best results:

  ✓ Use clear, front-facing photos
  ✓ Higher resolution means better accuracy
  ✓ Avoid blurry or dark images
  ✓ One face per image works best

An average search takes 15-30 seconds.`

// maybeOnboard runs the first run wizard. It reports done when the wizard
// ran and the command should stop.
func maybeOnboard(ctx context.Context, cmd *cobra.Command, store *session.Store, env display.Env) (bool, error) {
	if !env.Interactive() || !store.IsFirstRun() {
		return false, nil
	}
	if _, err := store.Credential(); err == nil {
		return false, nil
	}
	return true, runWizard(ctx, display.NewPrinter(cmd.OutOrStdout()), newPrompter(cmd), store)
}

// runWizard shows the welcome screens and walks through account setup
func runWizard(ctx context.Context, out *display.Printer, in *prompter, store *session.Store) error {
	bin := getBinaryName()
	slog.Debug("onboarding started")

	out.Panel(display.Cyan, welcomeText)
	ready, err := in.confirm("Ready to continue?", true)
	if err != nil {
		return err
	}
	if !ready {
		out.Warning("You can run %s anytime to start!", bin)
		return nil
	}
	out.Blank()

	out.Panel(display.Green, featuresText)
	out.Panel(display.Yellow, tipsText)

	out.Heading("Account Setup")
	out.Blank()
	answer, err := in.line("Do you already have a FaceTrace account? [y/N/s to skip]: ")
	if err != nil {
		return err
	}
	out.Blank()

	switch strings.ToLower(answer) {
	case "s", "skip":
		out.Info("Skipping account setup")
	case "y", "yes":
		out.Info("Great! Let's log you in...")
		out.Blank()
		if err := runLogin(ctx, out, in, store); err != nil {
			ReportError(out.Writer(), err)
			out.Blank()
			out.Warning("No worries! You can login later with: %s login", bin)
			return nil
		}
	default:
		out.Info("Perfect! Let's create your account...")
		out.Blank()
		if err := runRegister(ctx, out, in, store); err != nil {
			ReportError(out.Writer(), err)
			out.Blank()
			out.Warning("No worries! You can register later with: %s register", bin)
			return nil
		}
	}

	if err := store.MarkOnboardingComplete(); err != nil {
		return err
	}
	slog.Debug("onboarding complete")

	out.Blank()
	out.Success("You're all set!")
	out.Blank()
	out.Panel(display.Green, quickStart(bin))
	return nil
}

func quickStart(bin string) string {
	return fmt.Sprintf(`Quick Start - Common Commands:

Search by image:
  %[1]s photo.jpg
  %[1]s https://example.com/photo.jpg

Check your balance:
  %[1]s --balance

Add more credits:
  %[1]s --add-credits 100

Advanced search:
  %[1]s photo.jpg --min-score 85 --open

Help:
  %[1]s --help`, bin)
}
