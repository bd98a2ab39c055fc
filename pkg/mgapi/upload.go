package mgapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mevzuatgpt/mevzuatctl/pkg/sse"
	"github.com/mevzuatgpt/mevzuatctl/pkg/truthy"
)

// UploadRequest submits one document for ingestion. Mode selects the target
// store: "m" (MevzuatGPT only), "p" (portal only) or "t" (both).
type UploadRequest struct {
	InstitutionID string `json:"institution_id"`
	Link          string `json:"link"`
	Mode          string `json:"mode"`
	Category      string `json:"category"`
	DocumentName  string `json:"document_name"`
	Detsis        string `json:"detsis"`
	Type          string `json:"type"`
	UseOcr        bool   `json:"use_ocr"`
}

// uploadOutcome is the terminal result payload. Success arrives as bool,
// number or string depending on which worker answered.
type uploadOutcome struct {
	Success truthy.Flex `json:"success"`
	Message string      `json:"message"`
}

// UploadDocument submits the document and consumes the response stream
// until the terminal result or error frame; started/keepalive frames are
// liveness only and ignored. Returns the server's completion message.
func (c *Client) UploadDocument(ctx context.Context, req UploadRequest) (string, error) {
	var (
		message  string
		termErr  error
		terminal bool
	)

	err := c.stream(ctx, c.BaseURL+"/admin/documents/upload/stream", req, func(f sse.Frame) bool {
		switch f.Event {
		case "result":
			var out uploadOutcome
			if jerr := json.Unmarshal([]byte(f.Data), &out); jerr != nil {
				termErr = errors.New("server response could not be processed")
			} else if !out.Success.Bool() && out.Message != "" {
				termErr = errors.New(out.Message)
			} else {
				message = out.Message
			}
			terminal = true
			return false
		case "error":
			termErr = remoteError(f.Data)
			terminal = true
			return false
		}
		return true
	})
	if err != nil {
		return "", err
	}
	if termErr != nil {
		return "", termErr
	}
	if !terminal {
		return "", errors.New("upload stream ended without a result")
	}
	return message, nil
}

// remoteError turns an error event's data into an error, falling back to
// the raw text when it is not structured.
func remoteError(data string) error {
	if msg := extractMessage(data); msg != "" {
		return errors.New(msg)
	}
	if data == "" {
		return errors.New("remote error")
	}
	return fmt.Errorf("%s", data)
}
