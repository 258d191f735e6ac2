// Package browser opens match URLs in the user's web browser.
package browser

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/time/rate"
)

// DefaultPace is the minimum gap between two opened tabs
const DefaultPace = 500 * time.Millisecond

// openURLFunc launches the system browser; replaced in tests
var openURLFunc = browser.OpenURL

// Opener opens URLs at a bounded rate
type Opener struct {
	limiter *rate.Limiter
	open    func(string) error
}

// NewOpener creates an opener allowing one URL per pace
func NewOpener(pace time.Duration) *Opener {
	if pace <= 0 {
		pace = DefaultPace
	}
	return &Opener{
		limiter: rate.NewLimiter(rate.Every(pace), 1),
		open:    openURLFunc,
	}
}

// Open waits for the limiter then opens url
func (o *Opener) Open(ctx context.Context, url string) error {
	if err := o.limiter.Wait(ctx); err != nil {
		return err
	}
	return o.open(url)
}

// OpenAll opens each URL in order and returns how many were launched.
// A URL that fails to open is logged and skipped. Cancellation stops
// the loop and is returned.
func (o *Opener) OpenAll(ctx context.Context, urls []string) (int, error) {
	opened := 0
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := o.Open(ctx, u); err != nil {
			if ctx.Err() != nil {
				return opened, ctx.Err()
			}
			slog.Warn("failed to open url", "url", u, "error", err)
			continue
		}
		slog.Debug("opened url", "url", u)
		opened++
	}
	return opened, nil
}
