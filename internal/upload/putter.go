package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPPutter uploads bytes to a pre-signed URL with a plain HTTP PUT.
type HTTPPutter struct {
	httpc *http.Client
}

var _ ObjectPutter = (*HTTPPutter)(nil)

// NewHTTPPutter constructs an HTTPPutter. A zero timeout disables the
// client-wide limit.
func NewHTTPPutter(timeout time.Duration) *HTTPPutter {
	return &HTTPPutter{httpc: &http.Client{Timeout: timeout}}
}

// Put sends data to url with the declared content type. Any non-2xx response
// is a terminal failure of the upload flow.
func (p *HTTPPutter) Put(ctx context.Context, url, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &PutError{Status: resp.StatusCode, Message: msg}
	}
	return nil
}

// PutError is a non-2xx response from the storage provider.
type PutError struct {
	Status  int
	Message string
}

func (e *PutError) Error() string {
	return fmt.Sprintf("upload failed: %d %s", e.Status, e.Message)
}
