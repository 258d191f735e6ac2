package api

import (
	"context"
	"net/http"
)

// RegisterResponse is returned after account creation
type RegisterResponse struct {
	Message      string `json:"message"`
	FreeSearches int    `json:"free_searches"`
}

// LoginResponse carries the API key issued on login
type LoginResponse struct {
	APIKey  string `json:"api_key"`
	Balance int    `json:"balance"`
}

// BalanceResponse reports the credit balance
type BalanceResponse struct {
	Balance       int `json:"balance"`
	TotalSearches int `json:"total_searches"`
}

// InvoiceResponse points at the payment page for a credit purchase
type InvoiceResponse struct {
	InvoiceURL string  `json:"invoice_url"`
	USDAmount  float64 `json:"usd_amount"`
	Credits    int     `json:"credits,omitempty"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, email, password string) (*RegisterResponse, error) {
	body, err := jsonBody(credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	result := RegisterResponse{FreeSearches: 3}
	err = c.do(ctx, request{
		op:          "register",
		method:      http.MethodPost,
		path:        "/auth/register.php",
		body:        body,
		contentType: "application/json",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Login exchanges email and password for an API key
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body, err := jsonBody(credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var result LoginResponse
	err = c.do(ctx, request{
		op:          "login",
		method:      http.MethodPost,
		path:        "/auth/login.php",
		body:        body,
		contentType: "application/json",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Balance returns the current credit balance
func (c *Client) Balance(ctx context.Context) (*BalanceResponse, error) {
	var result BalanceResponse
	err := c.do(ctx, request{
		op:     "balance",
		method: http.MethodGet,
		path:   "/credits/balance.php",
		auth:   true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateInvoice starts a credit purchase and returns the payment page
func (c *Client) CreateInvoice(ctx context.Context, credits int) (*InvoiceResponse, error) {
	body, err := jsonBody(map[string]int{"credits": credits})
	if err != nil {
		return nil, err
	}

	var result InvoiceResponse
	err = c.do(ctx, request{
		op:          "create invoice",
		method:      http.MethodPost,
		path:        "/credits/add.php",
		body:        body,
		contentType: "application/json",
		auth:        true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
