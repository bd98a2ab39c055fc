package mgapi

import (
	"context"
	"net/http"

	"github.com/mevzuatgpt/mevzuatctl/pkg/whttp"
	"github.com/tidwall/gjson"
)

// QueueAck reports the outcome of a queue mutation. Remote rejections come
// back as a filled ack with OK=false rather than an error, so callers can
// render them without a second error path; errors are reserved for
// transport and precondition failures.
type QueueAck struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// QueueSnapshot is the remote job queue state.
type QueueSnapshot struct {
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Raw       string `json:"-"`
}

// SubmitBulk posts a prepared bulk payload to the ingestion queue.
func (c *Client) SubmitBulk(ctx context.Context, payload []byte) (*QueueAck, error) {
	return c.queuePost(ctx, c.BaseURL+"/admin/queue/bulk-upload", payload)
}

// ClearQueue empties the remote queue. Confirmation is the caller's job.
func (c *Client) ClearQueue(ctx context.Context) (*QueueAck, error) {
	return c.queuePost(ctx, c.BaseURL+"/admin/queue/clear", nil)
}

func (c *Client) queuePost(ctx context.Context, url string, body []byte) (*QueueAck, error) {
	auth, err := c.bearer()
	if err != nil {
		return nil, err
	}

	res, err := whttp.Send(ctx, &whttp.Request{
		Method:  http.MethodPost,
		URL:     url,
		Body:    body,
		Headers: []whttp.Header{auth},
	}, c.HTTP)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &QueueAck{OK: false, Message: apiError(res).Error()}, nil
	}
	return &QueueAck{OK: true, Message: extractMessage(res.BodyString)}, nil
}

// QueueStatus fetches the remote queue snapshot. No request body.
func (c *Client) QueueStatus(ctx context.Context) (*QueueSnapshot, error) {
	auth, err := c.bearer()
	if err != nil {
		return nil, err
	}

	res, err := whttp.Send(ctx, &whttp.Request{
		Method:  http.MethodGet,
		URL:     c.BaseURL + "/admin/queue/status",
		Headers: []whttp.Header{auth},
	}, c.HTTP)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, apiError(res)
	}

	snap := &QueueSnapshot{
		Pending:   int(gjson.Get(res.BodyString, "pending").Int()),
		Active:    int(gjson.Get(res.BodyString, "active").Int()),
		Completed: int(gjson.Get(res.BodyString, "completed").Int()),
		Failed:    int(gjson.Get(res.BodyString, "failed").Int()),
		Raw:       res.BodyString,
	}
	return snap, nil
}
