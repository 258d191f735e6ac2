// Package cmd implements the facetrace command line
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/facetrace/cli/src/api"
	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/model"
	"github.com/facetrace/cli/src/paths"
	"github.com/facetrace/cli/src/poller"
	"github.com/facetrace/cli/src/session"
)

var (
	// Build info - set via -ldflags at build time
	ProjectName = "facetrace"
	Version     = "dev"
	CommitID    = "unknown"
	BuildDate   = "unknown"

	cfgFile string
	server  string
	timeout int
	debug   bool

	showBalance bool
	addCredits  int
	minScore    int
	platform    string
	openTop     bool
	top         int
	outputFile  string
	format      string
	tuiMode     bool

	// setupHook initializes logging once the config is loaded
	setupHook func(debug bool) error

	// detectEnv is replaced in tests
	detectEnv = display.Detect
)

const (
	defaultMinScore = model.MinScoreFloor
	defaultTop      = 5
)

var rootCmd = &cobra.Command{
	Use:   getBinaryName() + " [image-path-or-url]",
	Short: "Reverse face search across social platforms",
	Long: `facetrace finds where a face appears online.

Give it an image file or an image URL and it searches public profiles on
many platforms, then lists the matches with their similarity score.`,
	Example: `  ` + getBinaryName() + ` register
  ` + getBinaryName() + ` login
  ` + getBinaryName() + ` photo.jpg
  ` + getBinaryName() + ` https://example.com/photo.jpg
  ` + getBinaryName() + ` image.png --min-score 85 --open --top 10
  ` + getBinaryName() + ` photo.jpg --output results.csv
  ` + getBinaryName() + ` --balance
  ` + getBinaryName() + ` --add-credits 100`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if present (ignore errors)
		_ = godotenv.Load()

		if setupHook != nil {
			if err := setupHook(debugEnabled()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not initialize logging: %v\n", err)
			}
		}
		slog.Debug("command started", "command", cmd.CommandPath(), "args", args)
		return nil
	},
	RunE: runRoot,
}

// Command returns the root command. setup runs before every command,
// after the configuration has been read.
func Command(setup func(debug bool) error) *cobra.Command {
	setupHook = setup
	return rootCmd
}

// VersionString is the version shown by --version
func VersionString() string {
	return fmt.Sprintf("%s (%s) built %s", Version, CommitID, BuildDate)
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file path")
	pf.StringVarP(&server, "server", "s", "", "API server address")
	pf.IntVar(&timeout, "timeout", 0, "request timeout in seconds")
	pf.BoolVar(&debug, "debug", false, "enable debug logging and re-raise panics")

	f := rootCmd.Flags()
	f.BoolVar(&showBalance, "balance", false, "check credit balance")
	f.IntVar(&addCredits, "add-credits", 0, "purchase N credits (minimum 10)")
	f.IntVar(&minScore, "min-score", defaultMinScore, "minimum similarity score (70-100)")
	f.StringVar(&platform, "platform", "", "filter by platform (instagram, facebook, twitter, ...)")
	f.BoolVar(&openTop, "open", false, "open the top matches in the browser")
	f.IntVar(&top, "top", defaultTop, "number of top matches to open (with --open)")
	f.StringVarP(&outputFile, "output", "o", "", "export results to FILE (.json, .csv, .yaml)")
	f.StringVarP(&format, "format", "f", display.FormatSherlock, "output format: sherlock, table, json")
	f.BoolVar(&tuiMode, "tui", false, "browse results interactively")
}

func initConfig() {
	configPath, err := paths.ResolveConfigPath(cfgFile)
	if err != nil {
		return
	}
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("FACETRACE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.address", "")
	viper.SetDefault("server.timeout", 30)
	viper.SetDefault("search.poll_interval", poller.DefaultInterval.String())
	viper.SetDefault("search.max_attempts", poller.DefaultMaxAttempts)
	viper.SetDefault("search.min_score", defaultMinScore)
	viper.SetDefault("search.top", defaultTop)
	viper.SetDefault("output.format", display.FormatSherlock)
	viper.SetDefault("logging.level", "warn")
	viper.SetDefault("logging.file", "")
	viper.SetDefault("logging.max_size", 10)
	viper.SetDefault("logging.max_files", 5)

	_ = viper.ReadInConfig()
}

func getBinaryName() string {
	return filepath.Base(os.Args[0])
}

func debugEnabled() bool {
	return debug || viper.GetBool("debug")
}

// runRoot dispatches to the credit operations or a search
func runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := display.NewPrinter(cmd.OutOrStdout())
	store := openStore()
	env := detectEnv()

	if done, err := maybeOnboard(ctx, cmd, store, env); done {
		return err
	}

	switch {
	case showBalance:
		return runBalance(ctx, out, store)
	case cmd.Flags().Changed("add-credits"):
		return runAddCredits(ctx, out, store, env, addCredits)
	case len(args) == 1:
		opts, err := searchOptionsFromFlags(cmd, args[0])
		if err != nil {
			return err
		}
		return runSearch(ctx, cmd, store, env, opts)
	}

	out.Error("No command or image provided")
	out.Info("Usage:")
	bin := getBinaryName()
	out.Info("  %s register           Create account", bin)
	out.Info("  %s login              Login", bin)
	out.Info("  %s <image>            Search", bin)
	out.Info("  %s --balance          Check credits", bin)
	out.Info("  %s --add-credits N    Buy credits", bin)
	out.Blank()
	out.Info("Run '%s --help' for more help", bin)
	return errReported
}

// openStore returns the session store in the config directory
func openStore() *session.Store {
	return session.NewStore(paths.SessionFile())
}

// resolveAPIURL picks the API base URL: --server, then config or
// environment, then the address saved at login, then the default.
func resolveAPIURL(sess *session.Session) string {
	if server != "" {
		return server
	}
	if addr := viper.GetString("server.address"); addr != "" {
		return addr
	}
	if sess != nil && sess.APIURL != "" {
		return sess.APIURL
	}
	return api.DefaultBaseURL
}

// resolveTimeout returns the request timeout in seconds
func resolveTimeout() int {
	if timeout > 0 {
		return timeout
	}
	return viper.GetInt("server.timeout")
}

// newClient builds an API client for the stored session. The token is
// empty when nobody is logged in.
func newClient(store *session.Store) (*api.Client, *session.Session) {
	sess, err := store.Load()
	if err != nil {
		slog.Warn("could not read session", "path", store.Path(), "error", err)
		sess = &session.Session{}
	}
	client := api.NewClient(resolveAPIURL(sess), sess.APIKey, resolveTimeout())
	client.UserAgent = userAgent()
	return client, sess
}

func userAgent() string {
	return fmt.Sprintf("%s-cli/%s", ProjectName, Version)
}

// authenticatedClient is newClient for operations that need a login
func authenticatedClient(store *session.Store) (*api.Client, error) {
	if _, err := store.Credential(); err != nil {
		return nil, err
	}
	client, _ := newClient(store)
	return client, nil
}

// intSetting returns the flag value when set on the command line,
// otherwise the config value
func intSetting(cmd *cobra.Command, flag string, value int, key string) int {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		return value
	}
	return viper.GetInt(key)
}

func stringSetting(cmd *cobra.Command, flag, value, key string) string {
	if cmd.Flags().Changed(flag) || viper.GetString(key) == "" {
		return value
	}
	return viper.GetString(key)
}

// pollSettings returns the poll interval and attempt bound. A plain
// number for the interval is read as seconds.
func pollSettings() (time.Duration, int, error) {
	interval := poller.DefaultInterval
	if raw := strings.TrimSpace(viper.GetString("search.poll_interval")); raw != "" {
		d, err := parseInterval(raw)
		if err != nil {
			return 0, 0, err
		}
		interval = d
	}
	attempts := viper.GetInt("search.max_attempts")
	if attempts <= 0 {
		attempts = poller.DefaultMaxAttempts
	}
	return interval, attempts, nil
}

func parseInterval(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		secs, convErr := strconv.ParseFloat(raw, 64)
		if convErr != nil {
			return 0, &model.ValidationError{
				Field:   "search.poll_interval",
				Message: fmt.Sprintf("%q is not a duration (examples: 2, 2s, 1500ms)", raw),
			}
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d <= 0 {
		return 0, &model.ValidationError{Field: "search.poll_interval", Message: "must be positive"}
	}
	return d, nil
}

// interrupted reports whether err came from the user cancelling ctx
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

// statusWriter is where progress and notices go. JSON output keeps
// stdout clean for the document.
func statusWriter(cmd *cobra.Command, format string) io.Writer {
	if format == display.FormatJSON {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
