package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/model"
	"github.com/facetrace/cli/src/session"
)

// minPasswordLength is enforced before registering
const minPasswordLength = 8

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a FaceTrace account",
	Long: `Create a FaceTrace account. New accounts start with free searches and
must verify their email before logging in.

Examples:
  ` + getBinaryName() + ` register`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := display.NewPrinter(cmd.OutOrStdout())
		return runRegister(cmd.Context(), out, newPrompter(cmd), openStore())
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login and save your API key",
	Long: `Login with your email and password. The API key is saved to the
session file in the config directory.

Examples:
  ` + getBinaryName() + ` login`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := display.NewPrinter(cmd.OutOrStdout())
		return runLogin(cmd.Context(), out, newPrompter(cmd), openStore())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session",
	Long: `Remove the saved API key from the config directory.

Examples:
  ` + getBinaryName() + ` logout`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogout(display.NewPrinter(cmd.OutOrStdout()), openStore())
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

// validEmail is the loose check done before contacting the server
func validEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// runRegister prompts until the input is valid, then creates the account
func runRegister(ctx context.Context, out *display.Printer, in *prompter, store *session.Store) error {
	out.Banner()
	out.Info("Create your FaceTrace account")
	out.Blank()

	var email string
	for {
		v, err := in.line("Email: ")
		if err != nil {
			return err
		}
		if v == "" {
			out.Error("Email is required")
			continue
		}
		if !validEmail(v) {
			out.Error("Please enter a valid email address")
			continue
		}
		email = v
		break
	}

	var password string
	for {
		v, err := in.secret(fmt.Sprintf("Password (min %d characters): ", minPasswordLength))
		if err != nil {
			return err
		}
		if len(v) < minPasswordLength {
			out.Error("Password must be at least %d characters", minPasswordLength)
			continue
		}
		confirm, err := in.secret("Confirm password: ")
		if err != nil {
			return err
		}
		if v != confirm {
			out.Error("Passwords do not match")
			continue
		}
		password = v
		break
	}

	out.Info("Creating account...")
	client, _ := newClient(store)
	result, err := client.Register(ctx, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	slog.Info("account registered", "email", email)

	out.Success("Account created successfully!")
	out.Blank()
	out.Info("✓ You have %d free searches", result.FreeSearches)
	out.Info("✓ Verification email sent")
	out.Blank()
	out.Warning("IMPORTANT: Check your email and click the verification link")
	out.Info("After verification, run: %s login", getBinaryName())
	return nil
}

// runLogin exchanges email and password for an API key and saves it
func runLogin(ctx context.Context, out *display.Printer, in *prompter, store *session.Store) error {
	out.Banner()
	out.Info("Login to your FaceTrace account")
	out.Blank()

	email, err := in.line("Email: ")
	if err != nil {
		return err
	}
	if email == "" {
		return &model.ValidationError{Message: "Email is required"}
	}
	password, err := in.secret("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return &model.ValidationError{Message: "Password is required"}
	}

	out.Info("Logging in...")
	client, _ := newClient(store)
	result, err := client.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if result.APIKey == "" {
		return errors.New("login failed: no API key received")
	}

	if err := store.Login(model.Credential{Token: result.APIKey, Email: email}, server); err != nil {
		return err
	}
	slog.Info("logged in", "email", email)

	out.Success("Logged in successfully!")
	out.Blank()
	out.Info("✓ Email: %s", email)
	out.Info("✓ Credits: %d searches available", result.Balance)
	out.Blank()
	out.Info("You can now use: %s <image> to search", getBinaryName())

	if result.Balance == 0 {
		out.Blank()
		out.Warning("You have no credits remaining")
		out.Info("To add credits, run: %s --add-credits <amount>", getBinaryName())
	}
	return nil
}

// runLogout removes the saved session
func runLogout(out *display.Printer, store *session.Store) error {
	cred, err := store.Credential()
	if err != nil {
		if errors.Is(err, model.ErrNotAuthenticated) {
			out.Warning("You are not logged in")
			return nil
		}
		return err
	}

	if err := store.Clear(); err != nil {
		return err
	}

	out.Success("Logged out successfully")
	if cred.Email != "" {
		out.Info("Account: %s", cred.Email)
	}
	return nil
}
