// Package existing builds the per-scan index of already-uploaded document
// titles: one normalized-title set per store. The index is rebuilt at the
// start of every scan and read-only afterwards.
package existing

import (
	"context"
	"sync"

	"github.com/mevzuatgpt/mevzuatctl/internal/utils"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
	"github.com/mevzuatgpt/mevzuatctl/pkg/titlekey"
)

// PrimaryLister lists documents of the MevzuatGPT store.
type PrimaryLister interface {
	ListDocumentTitles(ctx context.Context) ([]mgapi.DocTitle, error)
}

// PortalLister lists metadata rows of the portal store.
type PortalLister interface {
	ListMetadataTitles(ctx context.Context) ([]string, error)
}

// Index holds membership sets of normalized titles, one per store.
type Index struct {
	primary map[string]struct{}
	portal  map[string]struct{}
}

func (ix *Index) HasPrimary(normTitle string) bool {
	_, ok := ix.primary[normTitle]
	return ok
}

func (ix *Index) HasPortal(normTitle string) bool {
	_, ok := ix.portal[normTitle]
	return ok
}

// PrimaryCount and PortalCount report set sizes, for logging and the
// dashboard only.
func (ix *Index) PrimaryCount() int { return len(ix.primary) }
func (ix *Index) PortalCount() int  { return len(ix.portal) }

// Build fetches both stores concurrently. Either fetch failing degrades
// that store to an empty set: the scan still runs, items just look
// not-yet-uploaded for that store. Failures are logged, never surfaced.
func Build(ctx context.Context, primary PrimaryLister, portal PortalLister) *Index {
	ix := &Index{
		primary: make(map[string]struct{}),
		portal:  make(map[string]struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		docs, err := primary.ListDocumentTitles(ctx)
		if err != nil {
			utils.Log.Warnf("existing-document listing failed, continuing with empty set: %v", err)
			return
		}
		for _, d := range docs {
			insert(ix.primary, titlekey.Normalize(d.Title))
			if d.DocumentTitle != d.Title {
				insert(ix.primary, titlekey.Normalize(d.DocumentTitle))
			}
		}
	}()

	go func() {
		defer wg.Done()
		titles, err := portal.ListMetadataTitles(ctx)
		if err != nil {
			utils.Log.Warnf("portal metadata listing failed, continuing with empty set: %v", err)
			return
		}
		for _, t := range titles {
			insert(ix.portal, titlekey.Normalize(t))
		}
	}()

	wg.Wait()
	return ix
}

func insert(set map[string]struct{}, key string) {
	if key == "" {
		return
	}
	set[key] = struct{}{}
}
