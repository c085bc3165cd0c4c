// Package model defines domain entities exchanged with the solidgen backend.
package model

import "time"

// JobStatus is the backend-owned lifecycle state of a generation job.
type JobStatus string

// Job lifecycle states. Transitions are monotonic:
// QUEUED -> RUNNING -> {SUCCEEDED | FAILED}.
const (
	StatusQueued    JobStatus = "QUEUED"
	StatusRunning   JobStatus = "RUNNING"
	StatusSucceeded JobStatus = "SUCCEEDED"
	StatusFailed    JobStatus = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// AuthResult is the outcome of a login or signup call.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Profile is the read-only account projection returned by /v1/me.
type Profile struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	CreditsBalance int    `json:"credits_balance"`
}

// SignedUpload describes a single-use, time-limited upload target.
type SignedUpload struct {
	UploadURL        string `json:"upload_url"`
	GCSURI           string `json:"gcs_uri"`
	ObjectName       string `json:"object_name"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

// JobParams are the generation knobs fixed at job creation.
type JobParams struct {
	Resolution       int `json:"resolution"`
	Seed             int `json:"seed"`
	DecimationTarget int `json:"decimation_target"`
	TextureSize      int `json:"texture_size"`
}

// DefaultJobParams mirrors the defaults of the original submission form.
func DefaultJobParams() JobParams {
	return JobParams{
		Resolution:       1024,
		Seed:             0,
		DecimationTarget: 500000,
		TextureSize:      2048,
	}
}

// CreateJobRequest is the job-submission payload. InputGCSURI comes from a
// completed signed upload.
type CreateJobRequest struct {
	InputGCSURI      string `json:"input_gcs_uri"`
	Resolution       int    `json:"resolution"`
	Seed             int    `json:"seed"`
	DecimationTarget int    `json:"decimation_target"`
	TextureSize      int    `json:"texture_size"`
}

// JobReceipt acknowledges a created job with its initial state and charge.
type JobReceipt struct {
	JobID       string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	CostCredits int       `json:"cost_credits"`
}

// Job is the full read-only job record. Output fields are present only when
// SUCCEEDED; ErrorText only when FAILED. The download URL is time-limited.
type Job struct {
	JobID             string    `json:"job_id"`
	Status            JobStatus `json:"status"`
	CreatedAt         string    `json:"created_at"`
	UpdatedAt         string    `json:"updated_at"`
	InputGCSURI       string    `json:"input_gcs_uri"`
	OutputGCSURI      string    `json:"output_gcs_uri,omitempty"`
	OutputDownloadURL string    `json:"output_download_url,omitempty"`
	ErrorText         string    `json:"error_text,omitempty"`
	CostCredits       int       `json:"cost_credits"`
	Params            JobParams `json:"params"`
}

// JobSummary is the compact listing row returned by the jobs index.
type JobSummary struct {
	JobID       string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
	Resolution  int       `json:"resolution,omitempty"`
	CostCredits int       `json:"cost_credits"`
}

// JobList wraps the jobs index response.
type JobList struct {
	Jobs []JobSummary `json:"jobs"`
}

// PaymentIntent is an ephemeral checkout target. InvoiceID is set only on
// the crypto path. It carries no settlement state: the credits ledger is
// reconciled server-side and observed via a later Profile fetch.
type PaymentIntent struct {
	RedirectURL string
	InvoiceID   string
}

// TokenInfo is the locally persisted session record. ExpiresAt is extracted
// from the JWT for diagnostics only; validity is decided by the backend.
type TokenInfo struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}
