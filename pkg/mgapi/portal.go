package mgapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mevzuatgpt/mevzuatctl/pkg/whttp"
	"github.com/tidwall/gjson"
)

// ErrNoPortalKey mirrors ErrNoToken for the portal store.
var ErrNoPortalKey = errors.New("no portal API key configured (set portal.apikey in ~/.mevzuatctl.yaml)")

// Portal reads the secondary metadata store, a hosted Postgres REST
// surface keyed by an apikey header.
type Portal struct {
	BaseURL string
	APIKey  string
	HTTP    *retryablehttp.Client // nil = shared whttp default
}

func NewPortal(baseURL, apiKey string) *Portal {
	return &Portal{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey}
}

// ListMetadataTitles fetches the pdf_adi attribute of every metadata row,
// capped at the same effectively-all page size as the primary listing.
func (p *Portal) ListMetadataTitles(ctx context.Context) ([]string, error) {
	if p == nil || p.APIKey == "" {
		return nil, ErrNoPortalKey
	}

	url := fmt.Sprintf("%s/rest/v1/belge_metadata?select=pdf_adi&limit=%d", p.BaseURL, listPageSize)

	var res *whttp.Response
	err := retry.Do(func() error {
		r, err := whttp.Send(ctx, &whttp.Request{
			Method: http.MethodGet,
			URL:    url,
			Headers: []whttp.Header{
				{Name: "apikey", Value: p.APIKey},
				{Name: "Authorization", Value: "Bearer " + p.APIKey},
			},
		}, p.HTTP)
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

	var titles []string
	gjson.Parse(res.BodyString).ForEach(func(_, row gjson.Result) bool {
		titles = append(titles, row.Get("pdf_adi").String())
		return true
	})
	return titles, nil
}
