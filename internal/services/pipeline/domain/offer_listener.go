package domain

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// OfferDocument is the e-signature vendor's view of one candidate's
// pre-license offer, stored as its own aggregate and merged into the
// candidate record by the listener.
type OfferDocument struct {
	CandidateID string
	Sent        bool
	Signed      bool
	SentAt      *time.Time
	SignedAt    *time.Time
	UpdatedAt   time.Time
}

// OfferWatcher delivers offer document updates for one candidate, starting
// with the current stored state when a document already exists. Delivery is
// at-least-once and may repeat identical snapshots.
type OfferWatcher interface {
	SubscribeOffer(candidateID string, fn func(OfferDocument)) (func(), error)
}

type offerFingerprint struct {
	sent     bool
	signed   bool
	sentAt   int64
	signedAt int64
}

func fingerprintOf(doc OfferDocument) offerFingerprint {
	fp := offerFingerprint{sent: doc.Sent, signed: doc.Signed}
	if doc.SentAt != nil {
		fp.sentAt = doc.SentAt.UTC().UnixMilli()
	}
	if doc.SignedAt != nil {
		fp.signedAt = doc.SignedAt.UTC().UnixMilli()
	}
	return fp
}

// OfferListener mirrors one candidate's offer document into the candidate
// record. Every delivered update is fingerprinted against the last-seen
// state; an unchanged fingerprint is a verified no-op, so duplicate
// subscription pushes never produce duplicate writes. Only the
// pre-license offer branch of the candidate is ever patched.
type OfferListener struct {
	candidateID string
	patcher     CandidatePatcher
	logf        func(format string, args ...any)

	mu          sync.Mutex
	lastSeen    *offerFingerprint
	unsubscribe func()
	closed      bool
}

// AttachOfferListener subscribes to one candidate's offer document and
// returns the listener handle. Close releases the subscription; listeners
// must not outlive the view that created them.
func AttachOfferListener(watcher OfferWatcher, patcher CandidatePatcher, candidateID string) (*OfferListener, error) {
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return nil, ErrCandidateIDRequired
	}
	if watcher == nil || patcher == nil {
		return nil, ErrStoreNotConfigured
	}

	listener := &OfferListener{
		candidateID: candidateID,
		patcher:     patcher,
		logf:        log.Printf,
	}
	unsubscribe, err := watcher.SubscribeOffer(candidateID, listener.handleUpdate)
	if err != nil {
		return nil, err
	}
	listener.mu.Lock()
	listener.unsubscribe = unsubscribe
	closed := listener.closed
	listener.mu.Unlock()
	if closed {
		unsubscribe()
	}
	return listener, nil
}

// CandidateID returns the candidate this listener watches.
func (l *OfferListener) CandidateID() string {
	if l == nil {
		return ""
	}
	return l.candidateID
}

// Close releases the underlying subscription. It is safe to call more than
// once.
func (l *OfferListener) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	unsubscribe := l.unsubscribe
	l.unsubscribe = nil
	l.closed = true
	l.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (l *OfferListener) handleUpdate(doc OfferDocument) {
	if l == nil {
		return
	}
	fp := fingerprintOf(doc)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if l.lastSeen != nil && *l.lastSeen == fp {
		l.mu.Unlock()
		return
	}
	l.lastSeen = &fp
	l.mu.Unlock()

	patch := OfferPatch{
		Sent:   &doc.Sent,
		Signed: &doc.Signed,
	}
	if doc.SentAt != nil {
		sentAt := doc.SentAt.UTC()
		patch.SentAt = &sentAt
		patch.SentAtSet = true
	}
	if doc.SignedAt != nil {
		signedAt := doc.SignedAt.UTC()
		patch.SignedAt = &signedAt
		patch.SignedAtSet = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), offerMergeTimeout)
	defer cancel()
	if err := l.patcher.PatchCandidate(ctx, l.candidateID, CandidatePatch{PreLicenseOffer: &patch}); err != nil {
		// Drop the cached fingerprint so the next delivery retries the merge.
		l.mu.Lock()
		l.lastSeen = nil
		l.mu.Unlock()
		l.logf("offer listener %s: merge offer update: %v", l.candidateID, err)
	}
}

const offerMergeTimeout = 5 * time.Second

// OfferListenerManager owns at most one offer listener per candidate,
// mirroring the lifetime of candidate views in the consuming UI layer.
type OfferListenerManager struct {
	watcher OfferWatcher
	patcher CandidatePatcher

	mu        sync.Mutex
	listeners map[string]*OfferListener
}

// NewOfferListenerManager builds an empty listener registry.
func NewOfferListenerManager(watcher OfferWatcher, patcher CandidatePatcher) *OfferListenerManager {
	return &OfferListenerManager{
		watcher:   watcher,
		patcher:   patcher,
		listeners: make(map[string]*OfferListener),
	}
}

// Attach ensures a listener for the candidate and returns a release
// function. Attaching an already-watched candidate is a no-op.
func (m *OfferListenerManager) Attach(candidateID string) (func(), error) {
	if m == nil {
		return nil, ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return nil, ErrCandidateIDRequired
	}

	m.mu.Lock()
	if _, exists := m.listeners[candidateID]; exists {
		m.mu.Unlock()
		return func() { m.Release(candidateID) }, nil
	}
	m.mu.Unlock()

	listener, err := AttachOfferListener(m.watcher, m.patcher, candidateID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, exists := m.listeners[candidateID]; exists {
		m.mu.Unlock()
		listener.Close()
		return func() { m.Release(candidateID) }, nil
	}
	m.listeners[candidateID] = listener
	m.mu.Unlock()

	return func() { m.Release(candidateID) }, nil
}

// Release tears down the listener for one candidate, if any.
func (m *OfferListenerManager) Release(candidateID string) {
	if m == nil {
		return
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return
	}

	m.mu.Lock()
	listener, exists := m.listeners[candidateID]
	if exists {
		delete(m.listeners, candidateID)
	}
	m.mu.Unlock()
	if exists {
		listener.Close()
	}
}

// CloseAll tears down every listener, for runtime shutdown.
func (m *OfferListenerManager) CloseAll() {
	if m == nil {
		return
	}
	m.mu.Lock()
	listeners := make([]*OfferListener, 0, len(m.listeners))
	for _, listener := range m.listeners {
		listeners = append(listeners, listener)
	}
	m.listeners = make(map[string]*OfferListener)
	m.mu.Unlock()
	for _, listener := range listeners {
		listener.Close()
	}
}
