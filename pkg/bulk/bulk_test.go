package bulk

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mevzuatgpt/mevzuatctl/pkg/mevzuat"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
)

func sampleResult() *mevzuat.ScanResult {
	return &mevzuat.ScanResult{
		Sections: []mevzuat.Section{
			{
				Title: "Yönetmelikler",
				Items: []mevzuat.ScanItem{
					{ID: "1", Title: "Yönetmelik X", Link: "https://x/1.pdf"},
					{ID: "2", Title: "Yönetmelik Y", Link: "https://x/2.pdf"},
				},
			},
			{
				Title: "Genelgeler",
				Items: []mevzuat.ScanItem{
					{ID: "1", Title: "Genelge A", Link: "https://x/3.pdf"},
				},
			},
		},
	}
}

var inst = Institution{ID: "42", Detsis: "12345678", Type: "bakanlik", Category: "mevzuat"}

func TestBuildPayload(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(mevzuat.ItemKey{Section: "Yönetmelikler", ID: "2"})
	sel.Toggle(mevzuat.ItemKey{Section: "Genelgeler", ID: "1"})

	p := BuildPayload(sel, sampleResult(), inst)
	if p.BatchID == "" {
		t.Fatalf("expected a batch id")
	}
	if len(p.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(p.Items))
	}

	// Result order, not selection order.
	if p.Items[0].DocumentName != "Yönetmelik Y" || p.Items[1].DocumentName != "Genelge A" {
		t.Fatalf("unexpected item order: %#v", p.Items)
	}

	for _, it := range p.Items {
		if it.Mode != "t" {
			t.Fatalf("bulk jobs must target both stores, got mode %q", it.Mode)
		}
		if it.UseOcr {
			t.Fatalf("bulk jobs must not enable OCR")
		}
		if it.InstitutionID != "42" || it.Detsis != "12345678" || it.Type != "bakanlik" || it.Category != "mevzuat" {
			t.Fatalf("institution attributes not projected: %#v", it)
		}
	}
}

func TestBuildPayloadDropsStaleKeys(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(mevzuat.ItemKey{Section: "Yönetmelikler", ID: "1"})
	// Selected before a re-scan removed the section.
	sel.Toggle(mevzuat.ItemKey{Section: "Kaldırılan Bölüm", ID: "9"})

	p := BuildPayload(sel, sampleResult(), inst)
	if len(p.Items) != 1 {
		t.Fatalf("stale key must be dropped silently, got %d items", len(p.Items))
	}
	if p.Items[0].Link != "https://x/1.pdf" {
		t.Fatalf("wrong surviving item: %#v", p.Items[0])
	}
}

func TestBuildPayloadSameIDAcrossSections(t *testing.T) {
	sel := NewSelection()
	// Both sections carry an item with id 1; only Genelgeler is selected.
	sel.Toggle(mevzuat.ItemKey{Section: "Genelgeler", ID: "1"})

	p := BuildPayload(sel, sampleResult(), inst)
	if len(p.Items) != 1 || p.Items[0].DocumentName != "Genelge A" {
		t.Fatalf("composite-key lookup leaked across sections: %#v", p.Items)
	}
}

func TestBuildPayloadNilResult(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(mevzuat.ItemKey{Section: "A", ID: "1"})
	if p := BuildPayload(sel, nil, inst); len(p.Items) != 0 {
		t.Fatalf("nil result must yield an empty payload")
	}
}

func TestSelectionToggle(t *testing.T) {
	sel := NewSelection()
	key := mevzuat.ItemKey{Section: "A", ID: "1"}

	if !sel.Toggle(key) || !sel.Has(key) || sel.Len() != 1 {
		t.Fatalf("first toggle must select")
	}
	if sel.Toggle(key) || sel.Has(key) || sel.Len() != 0 {
		t.Fatalf("second toggle must deselect")
	}
}

type captureQueue struct {
	body []byte
}

func (c *captureQueue) SubmitBulk(ctx context.Context, payload []byte) (*mgapi.QueueAck, error) {
	c.body = payload
	return &mgapi.QueueAck{OK: true, Message: "kuyruğa alındı"}, nil
}

func (c *captureQueue) QueueStatus(ctx context.Context) (*mgapi.QueueSnapshot, error) {
	return &mgapi.QueueSnapshot{}, nil
}

func (c *captureQueue) ClearQueue(ctx context.Context) (*mgapi.QueueAck, error) {
	return &mgapi.QueueAck{OK: true}, nil
}

func TestSubmitMarshalsPayload(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(mevzuat.ItemKey{Section: "Yönetmelikler", ID: "1"})
	p := BuildPayload(sel, sampleResult(), inst)

	q := &captureQueue{}
	ack, err := Submit(context.Background(), q, p)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !ack.OK {
		t.Fatalf("expected OK ack")
	}

	var decoded Payload
	if err := json.Unmarshal(q.body, &decoded); err != nil {
		t.Fatalf("submitted body is not valid JSON: %v", err)
	}
	if decoded.BatchID != p.BatchID || len(decoded.Items) != 1 {
		t.Fatalf("round-trip mismatch: %#v", decoded)
	}
}
