package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeOfferWatcher struct {
	mu         sync.Mutex
	handlers   map[string]func(OfferDocument)
	subscribes int
	releases   int
	err        error
}

func newFakeOfferWatcher() *fakeOfferWatcher {
	return &fakeOfferWatcher{handlers: make(map[string]func(OfferDocument))}
}

func (w *fakeOfferWatcher) SubscribeOffer(candidateID string, fn func(OfferDocument)) (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	w.subscribes++
	w.handlers[candidateID] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.releases++
		delete(w.handlers, candidateID)
	}, nil
}

func (w *fakeOfferWatcher) deliver(candidateID string, doc OfferDocument) {
	w.mu.Lock()
	fn := w.handlers[candidateID]
	w.mu.Unlock()
	if fn != nil {
		fn(doc)
	}
}

func (w *fakeOfferWatcher) releaseCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.releases
}

type fakePatcher struct {
	mu      sync.Mutex
	patches []patchCall
	err     error
}

func (p *fakePatcher) PatchCandidate(_ context.Context, candidateID string, patch CandidatePatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.patches = append(p.patches, patchCall{candidateID: candidateID, patch: patch})
	return nil
}

func (p *fakePatcher) calls() []patchCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]patchCall(nil), p.patches...)
}

func (p *fakePatcher) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func signedOfferDoc(candidateID string, at time.Time) OfferDocument {
	return OfferDocument{
		CandidateID: candidateID,
		Sent:        true,
		Signed:      true,
		SentAt:      &at,
		SignedAt:    &at,
		UpdatedAt:   at,
	}
}

func TestOfferListenerMergesSignature(t *testing.T) {
	watcher := newFakeOfferWatcher()
	patcher := &fakePatcher{}

	listener, err := AttachOfferListener(watcher, patcher, "cand-1")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	defer listener.Close()

	signedAt := time.Date(2025, time.August, 12, 15, 30, 0, 0, time.UTC)
	watcher.deliver("cand-1", signedOfferDoc("cand-1", signedAt))

	calls := patcher.calls()
	if len(calls) != 1 {
		t.Fatalf("patch count = %d, want 1", len(calls))
	}
	patch := calls[0].patch
	if patch.PreLicenseOffer == nil {
		t.Fatal("expected a pre-license offer patch")
	}
	if patch.Interview != nil || patch.BackgroundCheck != nil || patch.FullAgentOffer != nil ||
		patch.Licensing != nil || patch.ClassAssignment != nil || patch.Status != nil {
		t.Fatal("offer merge must touch only the pre-license offer branch")
	}
	if !*patch.PreLicenseOffer.Signed {
		t.Fatal("signed flag not carried over")
	}
	if !patch.PreLicenseOffer.SignedAtSet || !patch.PreLicenseOffer.SignedAt.Equal(signedAt) {
		t.Fatalf("signedAt = %v, want %s", patch.PreLicenseOffer.SignedAt, signedAt)
	}
}

func TestOfferListenerIgnoresDuplicateDelivery(t *testing.T) {
	watcher := newFakeOfferWatcher()
	patcher := &fakePatcher{}

	listener, err := AttachOfferListener(watcher, patcher, "cand-1")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	defer listener.Close()

	at := time.Date(2025, time.August, 12, 15, 30, 0, 0, time.UTC)
	doc := signedOfferDoc("cand-1", at)
	watcher.deliver("cand-1", doc)
	watcher.deliver("cand-1", doc)

	if got := len(patcher.calls()); got != 1 {
		t.Fatalf("patch count = %d, want 1 for identical redeliveries", got)
	}

	// A real change goes through again.
	later := at.Add(time.Hour)
	changed := doc
	changed.SignedAt = &later
	watcher.deliver("cand-1", changed)
	if got := len(patcher.calls()); got != 2 {
		t.Fatalf("patch count = %d, want 2 after a changed document", got)
	}
}

func TestOfferListenerRetriesAfterPatchFailure(t *testing.T) {
	watcher := newFakeOfferWatcher()
	patcher := &fakePatcher{}
	patcher.setErr(errors.New("store unavailable"))

	listener, err := AttachOfferListener(watcher, patcher, "cand-1")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	defer listener.Close()

	doc := signedOfferDoc("cand-1", time.Date(2025, time.August, 12, 15, 30, 0, 0, time.UTC))
	watcher.deliver("cand-1", doc)
	if got := len(patcher.calls()); got != 0 {
		t.Fatalf("patch count = %d, want 0 while the store fails", got)
	}

	patcher.setErr(nil)
	watcher.deliver("cand-1", doc)
	if got := len(patcher.calls()); got != 1 {
		t.Fatalf("patch count = %d, want 1 after retry", got)
	}
}

func TestOfferListenerCloseReleasesSubscription(t *testing.T) {
	watcher := newFakeOfferWatcher()
	patcher := &fakePatcher{}

	listener, err := AttachOfferListener(watcher, patcher, "cand-1")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	listener.Close()
	listener.Close()
	if got := watcher.releaseCount(); got != 1 {
		t.Fatalf("release count = %d, want 1", got)
	}

	watcher.deliver("cand-1", signedOfferDoc("cand-1", time.Now().UTC()))
	if got := len(patcher.calls()); got != 0 {
		t.Fatalf("patch count after close = %d, want 0", got)
	}
}

func TestOfferListenerManagerAttachIsIdempotent(t *testing.T) {
	watcher := newFakeOfferWatcher()
	manager := NewOfferListenerManager(watcher, &fakePatcher{})

	releaseA, err := manager.Attach("cand-1")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	releaseB, err := manager.Attach("cand-1")
	if err != nil {
		t.Fatalf("second attach: %v", err)
	}
	if watcher.subscribes != 1 {
		t.Fatalf("subscribe count = %d, want 1", watcher.subscribes)
	}

	releaseA()
	releaseB()
	if got := watcher.releaseCount(); got != 1 {
		t.Fatalf("release count = %d, want 1", got)
	}

	if _, err := manager.Attach("cand-1"); err != nil {
		t.Fatalf("re-attach after release: %v", err)
	}
	if watcher.subscribes != 2 {
		t.Fatalf("subscribe count = %d, want 2 after re-attach", watcher.subscribes)
	}
	manager.CloseAll()
}
