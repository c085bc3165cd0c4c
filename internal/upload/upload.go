// Package upload orchestrates the three-step submission flow: sign an
// upload target, push the image bytes to storage, register the object as a
// job input. Failure at any step aborts the whole flow with no committed job.
package upload

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/solidgen/solidgen-go/internal/model"
)

// API is the subset of backend operations the upload flow depends on.
type API interface {
	SignUpload(ctx context.Context, token, contentType, fileExt string) (model.SignedUpload, error)
	CreateJob(ctx context.Context, token string, req model.CreateJobRequest) (model.JobReceipt, error)
}

// ObjectPutter pushes raw bytes to a pre-signed storage URL. The PUT goes to
// the storage provider directly, not through the API client.
type ObjectPutter interface {
	Put(ctx context.Context, url, contentType string, data []byte) error
}

// DetectImageType maps a filename to the upload file extension and content
// type. Supported: png, jpg/jpeg, webp; anything else falls back to png.
func DetectImageType(filename string) (fileExt, contentType string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "jpg", "jpeg":
		return ext, "image/jpeg"
	case "webp":
		return "webp", "image/webp"
	default:
		return "png", "image/png"
	}
}

// Flow runs the ordered submission sequence.
type Flow struct {
	api    API
	putter ObjectPutter
	log    *zap.Logger
}

// NewFlow constructs a Flow. A nil logger is replaced with a no-op one.
func NewFlow(api API, putter ObjectPutter, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{api: api, putter: putter, log: log}
}

// Run submits data under filename's inferred content type and creates a job
// with the given params. Steps execute strictly sequentially; the first
// failure is returned and no later step is attempted.
func (f *Flow) Run(ctx context.Context, token, filename string, data []byte, params model.JobParams) (model.JobReceipt, error) {
	if len(data) == 0 {
		return model.JobReceipt{}, fmt.Errorf("validation: empty image data")
	}
	if err := validateParams(params); err != nil {
		return model.JobReceipt{}, err
	}

	fileExt, contentType := DetectImageType(filename)

	signed, err := f.api.SignUpload(ctx, token, contentType, fileExt)
	if err != nil {
		return model.JobReceipt{}, fmt.Errorf("sign upload: %w", err)
	}
	f.log.Debug("upload target signed",
		zap.String("object", signed.ObjectName),
		zap.Int("expires_min", signed.ExpiresInMinutes),
	)

	if err := f.putter.Put(ctx, signed.UploadURL, contentType, data); err != nil {
		return model.JobReceipt{}, fmt.Errorf("upload object: %w", err)
	}
	f.log.Debug("object uploaded", zap.String("uri", signed.GCSURI), zap.Int("bytes", len(data)))

	receipt, err := f.api.CreateJob(ctx, token, model.CreateJobRequest{
		InputGCSURI:      signed.GCSURI,
		Resolution:       params.Resolution,
		Seed:             params.Seed,
		DecimationTarget: params.DecimationTarget,
		TextureSize:      params.TextureSize,
	})
	if err != nil {
		return model.JobReceipt{}, fmt.Errorf("create job: %w", err)
	}
	f.log.Info("job created",
		zap.String("job_id", receipt.JobID),
		zap.String("status", string(receipt.Status)),
		zap.Int("cost_credits", receipt.CostCredits),
	)
	return receipt, nil
}

func validateParams(p model.JobParams) error {
	switch p.Resolution {
	case 512, 1024, 1536:
	default:
		return fmt.Errorf("validation: resolution %d not in {512,1024,1536}", p.Resolution)
	}
	switch p.TextureSize {
	case 1024, 2048, 4096:
	default:
		return fmt.Errorf("validation: texture_size %d not in {1024,2048,4096}", p.TextureSize)
	}
	if p.DecimationTarget <= 0 {
		return fmt.Errorf("validation: decimation_target must be positive")
	}
	return nil
}
