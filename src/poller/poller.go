// Package poller drives a remote search job to a terminal outcome.
//
// A poll issues one status query per attempt, reports progress to a sink and
// sleeps a fixed interval between attempts. It stops on the first terminal
// status, the first query error, or once the attempt bound is spent. Query
// errors are never retried.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/facetrace/cli/src/api"
	"github.com/facetrace/cli/src/model"
)

const (
	// DefaultInterval is the pause between status queries
	DefaultInterval = 2 * time.Second
	// DefaultMaxAttempts bounds the number of status queries
	DefaultMaxAttempts = 60
)

// StatusSource answers status queries for a search job
type StatusSource interface {
	SearchStatus(ctx context.Context, jobID string) (*api.StatusResponse, error)
}

// Sink receives progress updates. Calls are made synchronously from the
// polling loop in attempt order.
type Sink interface {
	Progress(percent, found int, label string)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(percent, found int, label string)

// Progress calls f
func (f SinkFunc) Progress(percent, found int, label string) { f(percent, found, label) }

// Outcome is the result of a successful poll
type Outcome struct {
	JobID            string
	Matches          []model.Match
	RemainingCredits int
	Attempts         int
}

// Poller polls a single job at a time
type Poller struct {
	Source      StatusSource
	Interval    time.Duration
	MaxAttempts int

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error

	state State
	job   model.JobState
}

// New creates a poller with the default interval and attempt bound
func New(source StatusSource) *Poller {
	return &Poller{
		Source:      source,
		Interval:    DefaultInterval,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// State returns the lifecycle state of the most recent poll
func (p *Poller) State() State {
	return p.state
}

// Job returns the last observed job state
func (p *Poller) Job() model.JobState {
	return p.job
}

// Poll queries jobID until it completes, fails, or the attempt bound is
// reached. Errors from the status source are returned as is.
func (p *Poller) Poll(ctx context.Context, jobID string, sink Sink) (*Outcome, error) {
	if jobID == "" {
		return nil, &model.ValidationError{Field: "job id", Message: "is required"}
	}
	if sink == nil {
		sink = SinkFunc(func(int, int, string) {})
	}

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	interval := p.Interval
	if interval < 0 {
		interval = 0
	}

	p.state = StateIdle
	p.job = model.JobState{Status: model.JobPending}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		p.transition(StatePolling)

		resp, err := p.Source.SearchStatus(ctx, jobID)
		if err != nil {
			p.transition(StateFailed)
			slog.Debug("status query failed", "job_id", jobID, "attempt", attempt, "error", err)
			return nil, err
		}

		status := resp.JobStatus()
		p.job = model.JobState{
			Status:   status,
			Progress: clampPercent(resp.Progress),
			Found:    resp.Found,
		}
		slog.Debug("status query",
			"job_id", jobID,
			"attempt", attempt,
			"status", status.String(),
			"progress", p.job.Progress,
			"found", p.job.Found,
		)

		switch status {
		case model.JobComplete:
			p.job.Progress = 100
			p.transition(StateSucceeded)

			found := resp.Found
			if found == 0 {
				found = len(resp.Results)
			}
			sink.Progress(100, found, status.String())

			out := &Outcome{
				JobID:    jobID,
				Matches:  resp.Results,
				Attempts: attempt,
			}
			if resp.RemainingCredits != nil {
				out.RemainingCredits = *resp.RemainingCredits
			}
			return out, nil

		case model.JobFailed:
			p.transition(StateFailed)
			return nil, &model.RemoteJobFailedError{JobID: jobID, Message: resp.Error}
		}

		sink.Progress(p.job.Progress, p.job.Found, status.String())

		if attempt == maxAttempts {
			break
		}
		if err := p.sleep(ctx, interval); err != nil {
			p.transition(StateFailed)
			return nil, err
		}
	}

	p.transition(StateFailed)
	return nil, &model.PollTimeoutError{JobID: jobID, Attempts: maxAttempts}
}

func (p *Poller) transition(to State) {
	if !IsTransitionAllowed(p.state, to) {
		panic(fmt.Sprintf("poller: invalid transition %s -> %s", p.state, to))
	}
	p.state = to
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
