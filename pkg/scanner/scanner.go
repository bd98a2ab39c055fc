// Package scanner drives one scan: builds the existing-title index, opens
// the scan stream, reconciles every result event against the index and the
// server flags, and guards stream completion with a bounded grace period.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mevzuatgpt/mevzuatctl/internal/utils"
	"github.com/mevzuatgpt/mevzuatctl/pkg/existing"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mevzuat"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
	"github.com/mevzuatgpt/mevzuatctl/pkg/sse"
	"github.com/mevzuatgpt/mevzuatctl/pkg/titlekey"
	"github.com/tidwall/gjson"
)

// State is the lifecycle of one scan invocation.
type State int32

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateReconciling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateReconciling:
		return "reconciling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	// The done event can overtake a slow final result frame, so stream
	// completion without a result is given graceIterations polls before
	// the scan is declared failed.
	graceIterations      = 15
	defaultGraceInterval = time.Second
)

const (
	msgProtocol   = "Sunucu yanıtı işlenemedi"
	msgNoResult   = "Tarama sonucu alınamadı, lütfen tekrar deneyin"
	msgConnPrefix = "Tarama başlatılamadı: "
)

// Streamer opens the scan stream; satisfied by *mgapi.Client.
type Streamer interface {
	StreamScan(ctx context.Context, req mgapi.ScanRequest, fn func(sse.Frame) bool) error
}

// Scanner holds the shared state of a scan. Nothing prevents two Runs from
// racing on the same Scanner; the last result written wins, matching the
// dashboard behavior this replaces.
type Scanner struct {
	stream  Streamer
	primary existing.PrimaryLister
	portal  existing.PortalLister

	// GraceInterval is the wait between grace-period polls. One second in
	// production; tests shorten it.
	GraceInterval time.Duration

	mu         sync.Mutex
	state      State
	result     *mevzuat.ScanResult
	errMsg     string
	framesSeen bool
}

func New(stream Streamer, primary existing.PrimaryLister, portal existing.PortalLister) *Scanner {
	return &Scanner{
		stream:        stream,
		primary:       primary,
		portal:        portal,
		GraceInterval: defaultGraceInterval,
		state:         StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the last reconciled result, if any.
func (s *Scanner) Result() *mevzuat.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// ErrMessage returns the current error message. It can coexist with a
// result: a remote error after a successful result does not clear it.
func (s *Scanner) ErrMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Run performs one scan and returns the reconciled result. The
// existing-title index is rebuilt fresh before the stream is opened and is
// read-only for the remainder of the scan.
func (s *Scanner) Run(ctx context.Context, req mgapi.ScanRequest) (*mevzuat.ScanResult, error) {
	s.mu.Lock()
	s.state = StateRequesting
	s.result = nil
	s.errMsg = ""
	s.framesSeen = false
	s.mu.Unlock()

	idx := existing.Build(ctx, s.primary, s.portal)
	utils.Log.Debugf("existing-title index built: %d mevzuatgpt, %d portal",
		idx.PrimaryCount(), idx.PortalCount())

	s.setState(StateStreaming)

	doneCh := make(chan struct{})
	streamDone := make(chan error, 1)
	go func() {
		streamDone <- s.stream.StreamScan(ctx, req, func(f sse.Frame) bool {
			s.handleFrame(idx, f, doneCh)
			return true
		})
	}()

	// A done event releases the wait early; the goroutine may still be
	// decoding a trailing result frame, which the grace loop picks up.
	var streamErr error
	select {
	case streamErr = <-streamDone:
	case <-doneCh:
	}

	if res := s.Result(); res != nil {
		return s.finishDone(res)
	}
	if msg := s.ErrMessage(); msg != "" {
		return s.finishFailed(msg)
	}
	if streamErr != nil && !s.sawFrames() {
		return s.finishFailed(msgConnPrefix + streamErr.Error())
	}

	for i := 0; i < graceIterations; i++ {
		select {
		case <-ctx.Done():
			return s.finishFailed(ctx.Err().Error())
		case <-time.After(s.GraceInterval):
		}
		if res := s.Result(); res != nil {
			return s.finishDone(res)
		}
		if msg := s.ErrMessage(); msg != "" {
			return s.finishFailed(msg)
		}
	}
	return s.finishFailed(msgNoResult)
}

func (s *Scanner) handleFrame(idx *existing.Index, f sse.Frame, doneCh chan struct{}) {
	s.mu.Lock()
	s.framesSeen = true
	s.mu.Unlock()

	switch f.Event {
	case "started", "keepalive":
		// Liveness only.
	case "result":
		s.setState(StateReconciling)
		res, err := mevzuat.ParseResult(f.Data)
		if err != nil {
			utils.Log.Warnf("discarding unparsable result frame: %v", err)
			// Surface as the scan's error, but never abort a result that
			// already arrived.
			s.mu.Lock()
			s.errMsg = msgProtocol
			s.mu.Unlock()
			return
		}
		reconcile(res, idx)
		s.mu.Lock()
		s.result = res
		s.errMsg = ""
		s.mu.Unlock()
	case "error":
		msg := errorMessage(f.Data)
		utils.Log.Warnf("scan stream reported error: %s", msg)
		s.mu.Lock()
		s.errMsg = msg
		s.mu.Unlock()
	case "done":
		// Terminal signal only; the authoritative payload is always the
		// last result event.
		select {
		case <-doneCh:
		default:
			close(doneCh)
		}
	}
}

// reconcile merges index membership into the server-reported flags. Both
// sources are authoritative, so the merge is a logical OR: a true flag is
// never downgraded.
func reconcile(res *mevzuat.ScanResult, idx *existing.Index) {
	for si := range res.Sections {
		sec := &res.Sections[si]
		for ii := range sec.Items {
			it := &sec.Items[ii]
			key := titlekey.Normalize(it.Title)
			it.MevzuatGPT = it.MevzuatGPT || idx.HasPrimary(key)
			it.Portal = it.Portal || idx.HasPortal(key)
		}
	}
	res.RecomputeStats()
}

// errorMessage extracts the message of an error event, falling back to the
// raw data text when it is not structured.
func errorMessage(data string) string {
	if gjson.Valid(data) {
		for _, field := range []string{"message", "detail", "error"} {
			if v := gjson.Get(data, field); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	if data == "" {
		return "Tarama sırasında hata oluştu"
	}
	return data
}

func (s *Scanner) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Scanner) sawFrames() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.framesSeen
}

func (s *Scanner) finishDone(res *mevzuat.ScanResult) (*mevzuat.ScanResult, error) {
	s.setState(StateDone)
	return res, nil
}

func (s *Scanner) finishFailed(msg string) (*mevzuat.ScanResult, error) {
	s.mu.Lock()
	s.state = StateFailed
	s.errMsg = msg
	s.mu.Unlock()
	return nil, errors.New(msg)
}
