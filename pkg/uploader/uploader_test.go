package uploader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mevzuatgpt/mevzuatctl/pkg/mevzuat"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
)

// blockingSubmitter holds every upload until release is closed.
type blockingSubmitter struct {
	started chan string
	release chan struct{}
	err     error
}

func (b *blockingSubmitter) UploadDocument(ctx context.Context, req mgapi.UploadRequest) (string, error) {
	if b.started != nil {
		b.started <- req.Mode
	}
	if b.release != nil {
		<-b.release
	}
	return "tamam", b.err
}

type stubSubmitter struct {
	err   error
	calls int
}

func (s *stubSubmitter) UploadDocument(ctx context.Context, req mgapi.UploadRequest) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "yüklendi", nil
}

func TestSubmitPatchesFlags(t *testing.T) {
	cases := []struct {
		mode     Mode
		wantMGPT bool
		wantPort bool
	}{
		{ModeMevzuatGPT, true, false},
		{ModePortal, false, true},
		{ModeBoth, true, true},
	}

	for _, c := range cases {
		u := New(&stubSubmitter{})
		item := &mevzuat.ScanItem{ID: "1", Title: "Yönetmelik X"}
		if _, err := u.Submit(context.Background(), item, c.mode, mgapi.UploadRequest{}); err != nil {
			t.Fatalf("mode %s: Submit failed: %v", c.mode, err)
		}
		if item.MevzuatGPT != c.wantMGPT || item.Portal != c.wantPort {
			t.Fatalf("mode %s: flags = %v/%v, want %v/%v",
				c.mode, item.MevzuatGPT, item.Portal, c.wantMGPT, c.wantPort)
		}
	}
}

func TestClassifyConnectivity(t *testing.T) {
	err := Classify(errors.New("sunucuya bağlantı kurulamadı"))
	if !strings.Contains(err.Error(), "arka planda") || !strings.Contains(err.Error(), "dakika") {
		t.Fatalf("connectivity error must mention background completion and a multi-minute wait, got %q", err)
	}

	err = Classify(errors.New("dial tcp: connection refused"))
	if !strings.Contains(err.Error(), "arka planda") {
		t.Fatalf("english connectivity vocabulary must classify too, got %q", err)
	}
}

func TestClassifyTimeout(t *testing.T) {
	for _, in := range []string{"request timed out", "504 Gateway Timeout", "zaman aşımı"} {
		err := Classify(errors.New(in))
		if !strings.Contains(err.Error(), "2 saate kadar") {
			t.Fatalf("timeout error %q must mention the two-hour processing window, got %q", in, err)
		}
	}
}

func TestClassifyPassthrough(t *testing.T) {
	orig := errors.New("kategori zorunludur")
	if err := Classify(orig); err != orig {
		t.Fatalf("unrecognized errors must pass through unchanged, got %v", err)
	}
	if err := Classify(nil); err != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestFailedMarkerLifecycle(t *testing.T) {
	sub := &stubSubmitter{err: errors.New("bağlantı hatası")}
	u := New(sub)
	item := &mevzuat.ScanItem{ID: "7"}
	key := Key{ItemID: "7", Mode: ModeMevzuatGPT}

	if _, err := u.Submit(context.Background(), item, ModeMevzuatGPT, mgapi.UploadRequest{}); err == nil {
		t.Fatalf("expected failure")
	}
	msg, ok := u.FailedMessage(key)
	if !ok {
		t.Fatalf("failed marker must be remembered until the next attempt")
	}
	if !strings.Contains(msg, "arka planda") {
		t.Fatalf("marker must carry the classified message, got %q", msg)
	}
	if item.MevzuatGPT {
		t.Fatalf("flags must not be patched on failure")
	}

	// Next attempt clears the marker optimistically and succeeds.
	sub.err = nil
	if _, err := u.Submit(context.Background(), item, ModeMevzuatGPT, mgapi.UploadRequest{}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if _, ok := u.FailedMessage(key); ok {
		t.Fatalf("failed marker must be cleared by the retry")
	}
	if !item.MevzuatGPT {
		t.Fatalf("retry success must patch the flag")
	}
}

func TestMutualExclusionRules(t *testing.T) {
	sub := &blockingSubmitter{started: make(chan string, 1), release: make(chan struct{})}
	u := New(sub)
	item := &mevzuat.ScanItem{ID: "3"}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = u.Submit(context.Background(), item, ModeMevzuatGPT, mgapi.UploadRequest{})
	}()
	<-sub.started

	// m in flight: t is blocked, p is not, m itself is blocked.
	if u.CanSubmit("3", ModeBoth) {
		t.Fatalf("t must be blocked while m is in flight")
	}
	if u.CanSubmit("3", ModeMevzuatGPT) {
		t.Fatalf("m must be blocked against itself")
	}
	if !u.CanSubmit("3", ModePortal) {
		t.Fatalf("p must stay independent of m")
	}
	// Other items are never affected.
	if !u.CanSubmit("4", ModeBoth) {
		t.Fatalf("other items must be unaffected")
	}

	if _, err := u.Submit(context.Background(), item, ModeBoth, mgapi.UploadRequest{}); err == nil {
		t.Fatalf("submitting t while m is in flight must be rejected")
	}

	close(sub.release)
	wg.Wait()

	if !u.CanSubmit("3", ModeBoth) {
		t.Fatalf("t must be allowed again after m resolves")
	}
}

func TestBothModeBlocksSiblings(t *testing.T) {
	sub := &blockingSubmitter{started: make(chan string, 1), release: make(chan struct{})}
	u := New(sub)
	item := &mevzuat.ScanItem{ID: "5"}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = u.Submit(context.Background(), item, ModeBoth, mgapi.UploadRequest{})
	}()
	<-sub.started

	if u.CanSubmit("5", ModeMevzuatGPT) || u.CanSubmit("5", ModePortal) {
		t.Fatalf("t in flight must block both m and p")
	}

	close(sub.release)
	wg.Wait()
}

func TestOffered(t *testing.T) {
	fresh := &mevzuat.ScanItem{}
	half := &mevzuat.ScanItem{MevzuatGPT: true}
	done := &mevzuat.ScanItem{MevzuatGPT: true, Portal: true}

	if !Offered(fresh, ModeMevzuatGPT) || !Offered(fresh, ModePortal) || !Offered(fresh, ModeBoth) {
		t.Fatalf("all controls offered for a fresh item")
	}
	if Offered(half, ModeMevzuatGPT) {
		t.Fatalf("m not offered once the mevzuatgpt flag is set")
	}
	if !Offered(half, ModePortal) || !Offered(half, ModeBoth) {
		t.Fatalf("p and t still offered while the portal flag is false")
	}
	if Offered(done, ModeBoth) {
		t.Fatalf("t not offered when both flags are set")
	}
}

func TestParseMode(t *testing.T) {
	for _, ok := range []string{"m", "p", "t"} {
		if _, err := ParseMode(ok); err != nil {
			t.Fatalf("ParseMode(%q) failed: %v", ok, err)
		}
	}
	if _, err := ParseMode("x"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}
