// Package api is the typed HTTP client for the solidgen backend.
//
// Every meaningful operation (auth, upload signing, job submission, billing)
// is delegated to the backend over HTTPS/JSON; this package owns the single
// point of contact and converts non-success responses into typed failures.
// Single-attempt, fail-fast: no retry, no caching. Transient failures are
// surfaced to the caller for manual retry.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/solidgen/solidgen-go/internal/errs"
	"github.com/solidgen/solidgen-go/internal/model"
)

// Backend captures the remote operations used by higher-level flows.
// *Client is the production implementation; tests substitute fakes.
type Backend interface {
	// Login exchanges credentials for an access token.
	Login(ctx context.Context, email, password string) (model.AuthResult, error)
	// Signup registers a new account and returns an access token.
	Signup(ctx context.Context, email, password string) (model.AuthResult, error)
	// Me returns the account profile including the credits balance.
	Me(ctx context.Context, token string) (model.Profile, error)
	// SignUpload requests a single-use signed upload target.
	SignUpload(ctx context.Context, token, contentType, fileExt string) (model.SignedUpload, error)
	// CreateJob submits a generation job referencing an uploaded object.
	CreateJob(ctx context.Context, token string, req model.CreateJobRequest) (model.JobReceipt, error)
	// GetJob fetches the full job record.
	GetJob(ctx context.Context, token, jobID string) (model.Job, error)
	// ListJobs fetches the most recent jobs of the account.
	ListJobs(ctx context.Context, token string) (model.JobList, error)
	// StripeCheckout requests a card checkout-session URL.
	StripeCheckout(ctx context.Context, token string, credits int) (string, error)
	// CryptoInvoice requests a crypto invoice URL and identifier.
	CryptoInvoice(ctx context.Context, token string, credits int, payCurrency string) (model.PaymentIntent, error)
	// Health probes backend liveness.
	Health(ctx context.Context) error
}

// Client issues requests against a configured base URL, attaching bearer
// authorization and JSON content-type headers.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger
}

var _ Backend = (*Client)(nil)

// New constructs a Client. A zero timeout disables the client-wide limit
// (per-call deadlines still apply through ctx). A nil logger is replaced
// with a no-op one.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// call performs a single JSON request. A non-2xx response yields *HTTPError
// with the status and best-effort body text; a 2xx body is decoded into out
// when out is non-nil.
func (c *Client) call(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if rid, err := uuid.NewV4(); err == nil {
		req.Header.Set("X-Request-Id", rid.String())
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &HTTPError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// HTTPError is a non-2xx backend response.
type HTTPError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%d %s", e.Status, e.StatusText)
	}
	return fmt.Sprintf("%d %s %s", e.Status, e.StatusText, e.Body)
}

// Is maps well-known statuses onto package sentinels so callers can use
// errors.Is without inspecting the code themselves.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case errs.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case errs.ErrNotFound:
		return e.Status == http.StatusNotFound
	case errs.ErrInsufficientCredits:
		return e.Status == http.StatusPaymentRequired
	}
	return false
}
