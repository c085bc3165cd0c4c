// Package artifact fetches generated assets from their signed download URLs.
package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Downloader streams signed URLs to a writer. Signed URLs expire quickly, so
// the fetch goes straight to storage, not through the API client.
type Downloader struct {
	httpc *http.Client
	log   *zap.Logger
}

// NewDownloader constructs a Downloader. A zero timeout disables the
// client-wide limit; a nil logger is replaced with a no-op one.
func NewDownloader(timeout time.Duration, log *zap.Logger) *Downloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Downloader{httpc: &http.Client{Timeout: timeout}, log: log}
}

// Fetch streams url into w. A non-2xx response fails without writing to w.
func (d *Downloader) Fetch(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := d.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("download failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download interrupted: %w", err)
	}
	d.log.Debug("artifact downloaded", zap.Int64("bytes", n))
	return n, nil
}
