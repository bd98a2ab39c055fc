package existing

import (
	"context"
	"errors"
	"testing"

	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
)

type fakePrimary struct {
	docs []mgapi.DocTitle
	err  error
}

func (f fakePrimary) ListDocumentTitles(ctx context.Context) ([]mgapi.DocTitle, error) {
	return f.docs, f.err
}

type fakePortal struct {
	titles []string
	err    error
}

func (f fakePortal) ListMetadataTitles(ctx context.Context) ([]string, error) {
	return f.titles, f.err
}

func TestBuild(t *testing.T) {
	ix := Build(context.Background(),
		fakePrimary{docs: []mgapi.DocTitle{
			{Title: "Yönetmelik X", DocumentTitle: "yonetmelik_x.pdf"},
			{Title: "Genelge A", DocumentTitle: "Genelge A"},
		}},
		fakePortal{titles: []string{"ÖZEL Tebliğ!", ""}},
	)

	if !ix.HasPrimary("yonetmelik x") {
		t.Fatalf("expected normalized title in primary set")
	}
	if !ix.HasPrimary("yonetmelik_xpdf") {
		t.Fatalf("expected distinct document_title to be indexed too")
	}
	// Identical title/document_title pairs are inserted once.
	if ix.PrimaryCount() != 3 {
		t.Fatalf("expected 3 primary entries, got %d", ix.PrimaryCount())
	}

	if !ix.HasPortal("ozel teblig") {
		t.Fatalf("expected normalized portal title")
	}
	if ix.PortalCount() != 1 {
		t.Fatalf("empty titles must not be indexed, got %d entries", ix.PortalCount())
	}
}

func TestBuildDegradesOnFailure(t *testing.T) {
	ix := Build(context.Background(),
		fakePrimary{err: errors.New("boom")},
		fakePortal{titles: []string{"Tebliğ"}},
	)

	if ix.PrimaryCount() != 0 {
		t.Fatalf("failed primary fetch must degrade to an empty set")
	}
	if !ix.HasPortal("teblig") {
		t.Fatalf("portal fetch must survive a primary failure")
	}

	ix = Build(context.Background(),
		fakePrimary{docs: []mgapi.DocTitle{{Title: "Kanun"}}},
		fakePortal{err: errors.New("down")},
	)
	if !ix.HasPrimary("kanun") || ix.PortalCount() != 0 {
		t.Fatalf("portal failure must not affect the primary set")
	}
}
