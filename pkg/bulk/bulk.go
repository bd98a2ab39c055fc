// Package bulk turns a user selection into a submitted job batch for the
// remote ingestion queue.
package bulk

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mevzuat"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
)

// Selection is the set of composite item keys the user has picked. It is
// mutated only by explicit toggles and survives a successful submit (the
// dashboard never auto-cleared it either).
type Selection map[mevzuat.ItemKey]struct{}

func NewSelection() Selection {
	return make(Selection)
}

// Toggle flips membership for a key and reports the new state.
func (s Selection) Toggle(key mevzuat.ItemKey) bool {
	if _, ok := s[key]; ok {
		delete(s, key)
		return false
	}
	s[key] = struct{}{}
	return true
}

func (s Selection) Has(key mevzuat.ItemKey) bool {
	_, ok := s[key]
	return ok
}

func (s Selection) Len() int { return len(s) }

// Institution carries the scan-target attributes projected into every job.
type Institution struct {
	ID       string
	Detsis   string
	Type     string
	Category string
}

// Item is one job descriptor in the bulk payload. Bulk jobs always target
// both stores and never use OCR.
type Item struct {
	InstitutionID string `json:"institution_id"`
	Detsis        string `json:"detsis"`
	Type          string `json:"type"`
	Link          string `json:"link"`
	Mode          string `json:"mode"`
	Category      string `json:"category"`
	DocumentName  string `json:"document_name"`
	UseOcr        bool   `json:"use_ocr"`
}

// Payload is the submitted job batch.
type Payload struct {
	BatchID string `json:"batch_id"`
	Items   []Item `json:"items"`
}

// BuildPayload projects every selected item still present in the result
// into a job descriptor, in result order. Keys that no longer resolve
// (a re-scan removed the item) are dropped silently: stale selections are
// tolerated, not errors. Rebuilt from scratch on every call.
func BuildPayload(sel Selection, res *mevzuat.ScanResult, inst Institution) Payload {
	p := Payload{BatchID: uuid.NewString()}
	if res == nil {
		return p
	}

	for _, sec := range res.Sections {
		for _, it := range sec.Items {
			if !sel.Has(mevzuat.ItemKey{Section: sec.Title, ID: it.ID}) {
				continue
			}
			p.Items = append(p.Items, Item{
				InstitutionID: inst.ID,
				Detsis:        inst.Detsis,
				Type:          inst.Type,
				Link:          it.Link,
				Mode:          "t",
				Category:      inst.Category,
				DocumentName:  it.Title,
				UseOcr:        false,
			})
		}
	}
	return p
}

// QueueAPI is the remote queue control surface; satisfied by *mgapi.Client.
type QueueAPI interface {
	SubmitBulk(ctx context.Context, payload []byte) (*mgapi.QueueAck, error)
	QueueStatus(ctx context.Context) (*mgapi.QueueSnapshot, error)
	ClearQueue(ctx context.Context) (*mgapi.QueueAck, error)
}

// Submit marshals and posts the payload. Remote rejections come back in
// the ack, transport failures as the error.
func Submit(ctx context.Context, api QueueAPI, p Payload) (*mgapi.QueueAck, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return api.SubmitBulk(ctx, body)
}
