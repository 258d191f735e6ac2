package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/export"
	"github.com/facetrace/cli/src/imagesrc"
	"github.com/facetrace/cli/src/model"
	"github.com/facetrace/cli/src/poller"
	"github.com/facetrace/cli/src/session"
	"github.com/facetrace/cli/src/tui"
)

// runTUI is replaced in tests
var runTUI = tui.Run

// searchOptions are the validated search flags
type searchOptions struct {
	Image    string
	MinScore int
	Platform string
	Open     bool
	Top      int
	Output   string
	Format   string
	TUI      bool

	PollInterval time.Duration
	MaxAttempts  int
}

// searchOptionsFromFlags merges flags with the config file and validates
// everything before the network is touched
func searchOptionsFromFlags(cmd *cobra.Command, image string) (searchOptions, error) {
	opts := searchOptions{
		Image:    image,
		MinScore: intSetting(cmd, "min-score", minScore, "search.min_score"),
		Platform: strings.TrimSpace(platform),
		Open:     openTop,
		Top:      intSetting(cmd, "top", top, "search.top"),
		Output:   outputFile,
		Format:   strings.ToLower(stringSetting(cmd, "format", format, "output.format")),
		TUI:      tuiMode,
	}
	interval, attempts, err := pollSettings()
	if err != nil {
		return opts, err
	}
	opts.PollInterval, opts.MaxAttempts = interval, attempts
	return opts, opts.validate()
}

func (o searchOptions) validate() error {
	if err := model.ValidateMinScore(o.MinScore); err != nil {
		return err
	}
	if o.Top <= 0 {
		return &model.ValidationError{Field: "--top", Message: "must be a positive number"}
	}
	if !display.ValidFormat(o.Format) {
		return &model.ValidationError{
			Field:   "--format",
			Message: fmt.Sprintf("must be one of %s", strings.Join(display.Formats, ", ")),
		}
	}
	if o.Output != "" {
		if err := export.Check(o.Output); err != nil {
			return err
		}
	}
	return nil
}

// runSearch submits the image, follows the job and presents the matches
func runSearch(ctx context.Context, cmd *cobra.Command, store *session.Store, env display.Env, opts searchOptions) error {
	client, err := authenticatedClient(store)
	if err != nil {
		return err
	}

	status := display.NewPrinter(statusWriter(cmd, opts.Format))
	if opts.Format != display.FormatJSON {
		status.Banner()
	}

	resolver := imagesrc.NewResolver()
	if imagesrc.IsURL(opts.Image) {
		status.Info("Downloading image from URL...")
	}
	image, err := resolver.Resolve(ctx, opts.Image)
	if err != nil {
		if interrupted(ctx, err) {
			status.Warning("Interrupted by user")
			return nil
		}
		return err
	}
	if _, ok := image.(model.URLImage); ok {
		status.Success("Image downloaded")
	}
	status.Info("Analyzing image: %s", image.Describe())

	req, err := model.NewSearchRequest(image, opts.MinScore, opts.Platform)
	if err != nil {
		return err
	}

	status.Info("Starting face search...")
	jobID, err := client.StartSearch(ctx, req)
	if err != nil {
		if interrupted(ctx, err) {
			status.Warning("Interrupted by user")
			return nil
		}
		return fmt.Errorf("search failed: %w", err)
	}
	slog.Info("search submitted", "job_id", jobID, "min_score", opts.MinScore, "platform", opts.Platform)

	p := poller.New(client)
	p.Interval, p.MaxAttempts = opts.PollInterval, opts.MaxAttempts

	progress := display.NewProgressLine(status.Writer())
	outcome, err := p.Poll(ctx, jobID, progress)
	progress.Done()
	if err != nil {
		if interrupted(ctx, err) {
			status.Warning("Interrupted by user")
			return nil
		}
		last := p.Job()
		slog.Warn("search stopped", "job_id", jobID, "status", last.Status.String(), "progress", last.Progress, "found", last.Found)
		return fmt.Errorf("progress check failed: %w", err)
	}
	slog.Info("search complete", "job_id", jobID, "matches", len(outcome.Matches), "attempts", outcome.Attempts)

	return presentResults(ctx, cmd, env, opts, outcome)
}

// presentResults renders the outcome, then exports and opens as requested
func presentResults(ctx context.Context, cmd *cobra.Command, env display.Env, opts searchOptions, outcome *poller.Outcome) error {
	out := display.NewPrinter(cmd.OutOrStdout())
	status := display.NewPrinter(statusWriter(cmd, opts.Format))
	matches := outcome.Matches

	if opts.Format == display.FormatJSON {
		if err := display.WriteJSON(cmd.OutOrStdout(), matches, outcome.RemainingCredits); err != nil {
			return err
		}
	} else if len(matches) == 0 {
		out.Warning("No matches found above %d%% similarity", opts.MinScore)
		out.Info("Try lowering --min-score or use a different image")
		out.Blank()
		out.Info("Remaining credits: %d searches", outcome.RemainingCredits)
		return nil
	} else {
		switch {
		case opts.TUI && env.Interactive():
			cols, rows := env.TerminalSize()
			if err := runTUI(matches, func(url string) error {
				return newOpener().Open(ctx, url)
			}, cols, rows); err != nil {
				return err
			}
		case opts.TUI:
			out.Warning("--tui needs an interactive terminal, showing the listing instead")
			out.Results(matches)
		case opts.Format == display.FormatTable:
			out.Table(matches)
		default:
			out.Results(matches)
		}
		out.Blank()
		out.Success("Remaining credits: %d searches", outcome.RemainingCredits)
	}

	if opts.Output != "" {
		if err := export.Write(opts.Output, matches); err != nil {
			return err
		}
		status.Success("Results exported to: %s", opts.Output)
	}

	if opts.Open && len(matches) > 0 {
		openMatches(ctx, status, env, matches, opts.Top)
	}
	return nil
}

// openMatches opens the first n match URLs, or lists them when no
// browser can be launched
func openMatches(ctx context.Context, out *display.Printer, env display.Env, matches []model.Match, n int) {
	if n > len(matches) {
		n = len(matches)
	}
	urls := make([]string, 0, n)
	for _, m := range matches[:n] {
		urls = append(urls, m.URL)
	}

	if !env.CanOpenBrowser() {
		out.Warning("No browser available, open these URLs manually:")
		for _, u := range urls {
			out.Info("  %s", u)
		}
		return
	}

	out.Info("Opening top %d match(es) in browser...", len(urls))
	opened, err := newOpener().OpenAll(ctx, urls)
	if err != nil {
		out.Warning("Interrupted after opening %d of %d", opened, len(urls))
		return
	}
	if opened < len(urls) {
		out.Warning("Opened %d of %d, see the log for failures", opened, len(urls))
	}
}
