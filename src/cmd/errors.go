package cmd

import (
	"errors"
	"io"
	"strings"

	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/model"
)

// errReported is returned when the message has already been printed and
// only the exit status is left to set
var errReported = errors.New("error already reported")

// ReportError prints err for the user with a hint on how to recover.
// This is the only place that turns errors into messages.
func ReportError(w io.Writer, err error) {
	if err == nil || errors.Is(err, errReported) {
		return
	}
	p := display.NewPrinter(w)
	bin := getBinaryName()

	var (
		apiErr     *model.APIError
		timeoutErr *model.PollTimeoutError
	)
	switch {
	case errors.Is(err, model.ErrInsufficientCredits):
		p.Error("No credits remaining")
		p.Info("To add credits, run: %s --add-credits <amount>", bin)

	case errors.Is(err, model.ErrNotAuthenticated):
		p.Error("You are not logged in")
		p.Info("To login, run: %s login", bin)
		p.Info("To create account, run: %s register", bin)

	case errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message), "verify your email"):
		p.Error("%v", err)
		p.Blank()
		p.Info("Please check your email for the verification link")

	case errors.As(err, &apiErr) && apiErr.Code() == model.ErrCodeUnauthorized:
		p.Error("%v", err)
		p.Info("The server rejected your credentials. To login again, run: %s login", bin)

	case errors.As(err, &timeoutErr):
		p.Error("%v", err)
		p.Info("The search may still be running; try again in a few minutes")

	case model.IsTransport(err):
		p.Error("%v", err)
		p.Info("Check your internet connection or the server address (--server)")

	case model.IsValidation(err):
		p.Error("%v", err)
		p.Info("Run '%s --help' for usage", bin)

	default:
		p.Error("%v", err)
	}
}
