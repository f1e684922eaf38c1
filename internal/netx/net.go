// Package netx contains plain HTTP helpers used next to the gRPC transport.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultClient is used when no client is supplied.
var DefaultClient = &http.Client{Timeout: 60 * time.Second}

// PutPresigned uploads body to a presigned object-storage URL with an HTTP PUT.
// Any status other than 200 is reported as an error that includes the
// response body.
func PutPresigned(ctx context.Context, hc *http.Client, url string, body []byte) error {
	if hc == nil {
		hc = DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
