package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/facetrace/cli/src/browser"
	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/model"
	"github.com/facetrace/cli/src/session"
)

const (
	// MinCreditPurchase is the smallest --add-credits amount
	MinCreditPurchase = 10
	// CreditPriceUSD is the price of one search
	CreditPriceUSD = 0.40
)

// newOpener is replaced in tests
var newOpener = func() urlOpener { return browser.NewOpener(browser.DefaultPace) }

// urlOpener opens URLs in a browser
type urlOpener interface {
	Open(ctx context.Context, url string) error
	OpenAll(ctx context.Context, urls []string) (int, error)
}

// runBalance prints the credit balance
func runBalance(ctx context.Context, out *display.Printer, store *session.Store) error {
	client, err := authenticatedClient(store)
	if err != nil {
		return err
	}

	out.Info("Checking balance...")
	result, err := client.Balance(ctx)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	out.Success("Credit Balance")
	out.Blank()
	out.Info("✓ Available: %d searches", result.Balance)
	out.Info("✓ Total used: %d searches", result.TotalSearches)

	if result.Balance == 0 {
		out.Blank()
		out.Warning("You have no credits remaining")
		out.Info("To add credits, run: %s --add-credits <amount>", getBinaryName())
	}
	return nil
}

// runAddCredits creates a payment invoice and opens it
func runAddCredits(ctx context.Context, out *display.Printer, store *session.Store, env display.Env, amount int) error {
	if amount < MinCreditPurchase {
		return &model.ValidationError{Message: fmt.Sprintf("Minimum purchase is %d credits", MinCreditPurchase)}
	}
	client, err := authenticatedClient(store)
	if err != nil {
		return err
	}

	out.Info("Creating payment invoice for %d searches...", amount)
	out.Info("Total: $%.2f USD", float64(amount)*CreditPriceUSD)

	invoice, err := client.CreateInvoice(ctx, amount)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	slog.Info("invoice created", "credits", amount, "usd", invoice.USDAmount)

	out.Success("Invoice created!")
	out.Blank()
	out.Info("Credits: %d searches", amount)
	out.Info("Amount: $%.2f USD", invoice.USDAmount)
	out.Info("Payment: Cryptocurrency (BTC, ETH, USDT, etc.)")
	out.Blank()

	if env.CanOpenBrowser() {
		out.Warning("Opening payment page in browser...")
		if err := newOpener().Open(ctx, invoice.InvoiceURL); err != nil {
			slog.Warn("failed to open invoice", "error", err)
			out.Info("Open this URL to pay: %s", invoice.InvoiceURL)
		}
	} else {
		out.Info("Open this URL to pay: %s", invoice.InvoiceURL)
	}
	out.Info("Complete payment to add credits to your account")

	out.Blank()
	out.Info("After payment, check balance with: %s --balance", getBinaryName())
	return nil
}
