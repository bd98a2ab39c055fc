package mgapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mevzuatgpt/mevzuatctl/pkg/sse"
	"github.com/mevzuatgpt/mevzuatctl/pkg/whttp"
)

// ScanRequest identifies the institution to enumerate. Detsis and Type are
// opaque attributes passed through to the backend.
type ScanRequest struct {
	InstitutionID string `json:"institution_id"`
	Detsis        string `json:"detsis"`
	Type          string `json:"type"`
}

// StreamScan opens the scan stream and hands every decoded frame to fn in
// arrival order; fn returning false stops consumption. No client-side
// deadline is imposed: scan duration is the backend's business.
func (c *Client) StreamScan(ctx context.Context, req ScanRequest, fn func(sse.Frame) bool) error {
	return c.stream(ctx, c.BaseURL+"/admin/scan/stream", req, fn)
}

// stream POSTs a JSON body and decodes the framed response. Retrying a
// stream would replay events, so this path bypasses the retrying client.
func (c *Client) stream(ctx context.Context, url string, payload interface{}, fn func(sse.Frame) bool) error {
	auth, err := c.bearer()
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set(auth.Name, auth.Value)

	resp, err := c.streamClient().Do(httpReq)
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return apiError(&whttp.Response{StatusCode: resp.StatusCode, BodyString: string(bodyBytes)})
	}

	return sse.ReadStream(ctx, resp.Body, fn)
}

func (c *Client) streamClient() *http.Client {
	rc := c.HTTP
	if rc == nil {
		rc = whttp.GetDefaultClient()
	}
	return rc.HTTPClient
}
