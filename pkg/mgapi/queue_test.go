package mgapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-retryablehttp"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil

	c := NewClient(srv.URL, StaticToken("secret"))
	c.HTTP = rc
	return c
}

func TestSubmitBulkAck(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/queue/bulk-upload" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("missing bearer header, got %q", got)
		}
		w.Write([]byte(`{"message":"kuyruğa alındı"}`))
	})

	ack, err := c.SubmitBulk(context.Background(), []byte(`{"items":[]}`))
	if err != nil {
		t.Fatalf("SubmitBulk failed: %v", err)
	}
	if !ack.OK || ack.Message != "kuyruğa alındı" {
		t.Fatalf("unexpected ack: %#v", ack)
	}
}

func TestSubmitBulkRejectionIsNotAnError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"kuyruk dolu"}`))
	})

	ack, err := c.SubmitBulk(context.Background(), []byte(`{}`))
	if err != nil {
		t.Fatalf("remote rejection must come back as an ack, got error: %v", err)
	}
	if ack.OK {
		t.Fatalf("rejection must have OK=false")
	}
	if ack.Message == "" {
		t.Fatalf("rejection message lost")
	}
}

func TestSubmitBulkNoToken(t *testing.T) {
	c := NewClient("http://unused", StaticToken(""))
	if _, err := c.SubmitBulk(context.Background(), nil); err != ErrNoToken {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestQueueStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/queue/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"pending":4,"active":1,"completed":20,"failed":2}`))
	})

	snap, err := c.QueueStatus(context.Background())
	if err != nil {
		t.Fatalf("QueueStatus failed: %v", err)
	}
	if snap.Pending != 4 || snap.Active != 1 || snap.Completed != 20 || snap.Failed != 2 {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}
