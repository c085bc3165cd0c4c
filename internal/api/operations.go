package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/solidgen/solidgen-go/internal/model"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUploadRequest struct {
	ContentType string `json:"content_type"`
	FileExt     string `json:"file_ext"`
}

type checkoutRequest struct {
	Credits int `json:"credits"`
}

type invoiceRequest struct {
	Credits     int    `json:"credits"`
	PayCurrency string `json:"pay_currency"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

type invoiceResponse struct {
	InvoiceURL string `json:"invoice_url"`
	InvoiceID  string `json:"invoice_id"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (model.AuthResult, error) {
	var out model.AuthResult
	err := c.call(ctx, http.MethodPost, "/v1/auth/login", "", credentialsRequest{Email: email, Password: password}, &out)
	return out, err
}

// Signup registers a new account and returns an access token.
func (c *Client) Signup(ctx context.Context, email, password string) (model.AuthResult, error) {
	var out model.AuthResult
	err := c.call(ctx, http.MethodPost, "/v1/auth/signup", "", credentialsRequest{Email: email, Password: password}, &out)
	return out, err
}

// Me returns the account profile including the credits balance.
func (c *Client) Me(ctx context.Context, token string) (model.Profile, error) {
	var out model.Profile
	err := c.call(ctx, http.MethodGet, "/v1/me", token, nil, &out)
	return out, err
}

// SignUpload requests a single-use signed upload target for the given
// content type.
func (c *Client) SignUpload(ctx context.Context, token, contentType, fileExt string) (model.SignedUpload, error) {
	var out model.SignedUpload
	err := c.call(ctx, http.MethodPost, "/v1/uploads/sign", token, signUploadRequest{ContentType: contentType, FileExt: fileExt}, &out)
	return out, err
}

// CreateJob submits a generation job referencing an uploaded object.
func (c *Client) CreateJob(ctx context.Context, token string, req model.CreateJobRequest) (model.JobReceipt, error) {
	var out model.JobReceipt
	err := c.call(ctx, http.MethodPost, "/v1/jobs", token, req, &out)
	return out, err
}

// GetJob fetches the full job record.
func (c *Client) GetJob(ctx context.Context, token, jobID string) (model.Job, error) {
	var out model.Job
	err := c.call(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(jobID), token, nil, &out)
	return out, err
}

// ListJobs fetches the most recent jobs of the account.
func (c *Client) ListJobs(ctx context.Context, token string) (model.JobList, error) {
	var out model.JobList
	err := c.call(ctx, http.MethodGet, "/v1/jobs", token, nil, &out)
	return out, err
}

// StripeCheckout requests a card checkout-session URL for the given credit
// quantity.
func (c *Client) StripeCheckout(ctx context.Context, token string, credits int) (string, error) {
	var out checkoutResponse
	if err := c.call(ctx, http.MethodPost, "/v1/billing/stripe/checkout-session", token, checkoutRequest{Credits: credits}, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// CryptoInvoice requests a crypto invoice for the given credit quantity,
// settled in payCurrency.
func (c *Client) CryptoInvoice(ctx context.Context, token string, credits int, payCurrency string) (model.PaymentIntent, error) {
	var out invoiceResponse
	if err := c.call(ctx, http.MethodPost, "/v1/billing/nowpayments/invoice", token, invoiceRequest{Credits: credits, PayCurrency: payCurrency}, &out); err != nil {
		return model.PaymentIntent{}, err
	}
	return model.PaymentIntent{RedirectURL: out.InvoiceURL, InvoiceID: out.InvoiceID}, nil
}

// Health probes backend liveness.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.call(ctx, http.MethodGet, "/healthz", "", nil, &out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("backend reported not ok")
	}
	return nil
}
