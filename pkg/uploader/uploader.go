// Package uploader runs per-item document submissions. Every submission is
// tracked under its (item id, mode) key: uploads of different items are
// fully independent, m and p for the same item may run concurrently, and t
// is mutually exclusive with both.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mevzuatgpt/mevzuatctl/internal/utils"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mevzuat"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
)

// Mode selects the upload target store.
type Mode string

const (
	ModeMevzuatGPT Mode = "m" // primary store only
	ModePortal     Mode = "p" // portal store only
	ModeBoth       Mode = "t" // both stores
)

// ParseMode validates a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMevzuatGPT, ModePortal, ModeBoth:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q (want m, p or t)", s)
}

// Key identifies one submission flow: one item against one target mode.
type Key struct {
	ItemID string
	Mode   Mode
}

// Submitter performs the actual upload call; satisfied by *mgapi.Client.
type Submitter interface {
	UploadDocument(ctx context.Context, req mgapi.UploadRequest) (string, error)
}

// Uploader tracks in-flight and failed submissions across items.
type Uploader struct {
	api Submitter

	mu         sync.Mutex
	submitting map[Key]bool
	failed     map[Key]string
}

func New(api Submitter) *Uploader {
	return &Uploader{
		api:        api,
		submitting: make(map[Key]bool),
		failed:     make(map[Key]string),
	}
}

// Offered reports whether a control for this mode makes sense for the
// item's current flags: m and p only while their flag is false, t while at
// least one flag is false.
func Offered(item *mevzuat.ScanItem, mode Mode) bool {
	switch mode {
	case ModeMevzuatGPT:
		return !item.MevzuatGPT
	case ModePortal:
		return !item.Portal
	case ModeBoth:
		return !item.MevzuatGPT || !item.Portal
	}
	return false
}

// CanSubmit reports whether a submission for this key may start now.
// t conflicts with everything on the same item; m and p conflict with t
// and with themselves but not with each other. Advisory only: it guards
// this process, not other clients of the same backend.
func (u *Uploader) CanSubmit(itemID string, mode Mode) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.conflictLocked(itemID, mode) == ""
}

func (u *Uploader) conflictLocked(itemID string, mode Mode) Mode {
	for k, active := range u.submitting {
		if !active || k.ItemID != itemID {
			continue
		}
		if k.Mode == mode || k.Mode == ModeBoth || mode == ModeBoth {
			return k.Mode
		}
	}
	return ""
}

// Submitting reports whether this exact key is in flight.
func (u *Uploader) Submitting(key Key) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.submitting[key]
}

// FailedMessage returns the remembered failure for a key, if any. The
// marker survives until the next submission attempt for that exact key.
func (u *Uploader) FailedMessage(key Key) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	msg, ok := u.failed[key]
	return msg, ok
}

// Submit runs one upload for the item under the given mode and patches the
// item's flags locally on success (no re-fetch). The failed marker for the
// key is cleared optimistically before the attempt resolves.
func (u *Uploader) Submit(ctx context.Context, item *mevzuat.ScanItem, mode Mode, req mgapi.UploadRequest) (string, error) {
	key := Key{ItemID: item.ID, Mode: mode}

	u.mu.Lock()
	if c := u.conflictLocked(item.ID, mode); c != "" {
		u.mu.Unlock()
		return "", fmt.Errorf("submission already in flight for item %s (mode %s)", item.ID, c)
	}
	u.submitting[key] = true
	delete(u.failed, key)
	u.mu.Unlock()

	req.Mode = string(mode)
	msg, err := u.api.UploadDocument(ctx, req)

	u.mu.Lock()
	delete(u.submitting, key)
	if err != nil {
		err = Classify(err)
		u.failed[key] = err.Error()
		u.mu.Unlock()
		utils.Log.Warnf("upload failed for item %s mode %s: %v", item.ID, mode, err)
		return "", err
	}
	u.mu.Unlock()

	switch mode {
	case ModeMevzuatGPT:
		item.MevzuatGPT = true
	case ModePortal:
		item.Portal = true
	case ModeBoth:
		item.MevzuatGPT = true
		item.Portal = true
	}
	return msg, nil
}

// Error-vocabulary classification. Backend and proxy messages arrive in a
// mix of Turkish and English.
var (
	connectivityVocab = []string{"bağlan", "baglan", "connection", "network", "refused", "unreachable"}
	timeoutVocab      = []string{"timeout", "timed out", "zaman aşımı", "zamanasimi", "504"}
)

const (
	msgConnectivity = "Bağlantı hatası: yükleme arka planda devam ediyor olabilir. Birkaç dakika sonra tekrar deneyin."
	msgTimeout      = "İşlem zaman aşımına uğradı: büyük belgelerin işlenmesi 2 saate kadar sürebilir."
)

// Classify rewrites connectivity and timeout failures into actionable
// messages; anything else passes through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	lower := strings.ToLower(err.Error())
	for _, v := range connectivityVocab {
		if strings.Contains(lower, v) {
			return errors.New(msgConnectivity)
		}
	}
	for _, v := range timeoutVocab {
		if strings.Contains(lower, v) {
			return errors.New(msgTimeout)
		}
	}
	return err
}
