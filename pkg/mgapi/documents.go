package mgapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/mevzuatgpt/mevzuatctl/pkg/whttp"
	"github.com/tidwall/gjson"
)

// listPageSize is the effectively-all cap on existing-document listings.
// A store larger than this produces false negatives (an uploaded document
// looks missing); accepted, matching the backend's own admin listing limit.
const listPageSize = 5000

// DocTitle carries both title attributes of a stored document. They often
// differ (one is the original filename), so both participate in the
// existing-title index.
type DocTitle struct {
	Title         string
	DocumentTitle string
}

// ListDocumentTitles fetches the document listing of the MevzuatGPT store
// in one large page.
func (c *Client) ListDocumentTitles(ctx context.Context) ([]DocTitle, error) {
	auth, err := c.bearer()
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/admin/documents?page=1&per_page=%d", c.BaseURL, listPageSize)

	var res *whttp.Response
	err = retry.Do(func() error {
		r, err := whttp.Send(ctx, &whttp.Request{
			Method:  http.MethodGet,
			URL:     url,
			Headers: []whttp.Header{auth},
		}, c.HTTP)
		if err != nil {
			return err
		}
		if r.StatusCode != http.StatusOK {
			return apiError(r)
		}
		res = r
		return nil
	}, retry.Attempts(3), retry.Context(ctx), retry.LastErrorOnly(true))
	if err != nil {
		return nil, err
	}

	var titles []DocTitle
	gjson.Get(res.BodyString, "documents").ForEach(func(_, d gjson.Result) bool {
		titles = append(titles, DocTitle{
			Title:         d.Get("title").String(),
			DocumentTitle: d.Get("document_title").String(),
		})
		return true
	})
	return titles, nil
}
