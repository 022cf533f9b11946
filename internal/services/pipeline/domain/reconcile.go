package domain

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CandidateReader loads candidates with an open background-check case.
type CandidateReader interface {
	ListOpenBackgroundChecks(ctx context.Context) ([]Candidate, error)
}

// CandidatePatcher applies one field-level partial update to a candidate.
type CandidatePatcher interface {
	PatchCandidate(ctx context.Context, candidateID string, patch CandidatePatch) error
}

// VendorClient is the background-check vendor polling boundary. Both
// network and auth failures are transient: the case is retried on the next
// scheduled run.
type VendorClient interface {
	PollStatus(ctx context.Context, caseID string) (string, error)
}

// StatusTransition describes one detected background-check status change.
type StatusTransition struct {
	CandidateID    string
	CandidateName  string
	PreviousStatus BackgroundCheckStatus
	NewStatus      BackgroundCheckStatus
	OccurredAt     time.Time
}

// TransitionNotifier records one deduplicated notification per detected
// transition.
type TransitionNotifier interface {
	NotifyStatusChange(ctx context.Context, transition StatusTransition) error
}

// ReconcileResult is one per-candidate outcome of a reconciliation run.
type ReconcileResult struct {
	CandidateID    string
	CaseID         string
	PreviousStatus BackgroundCheckStatus
	NewStatus      BackgroundCheckStatus
	Changed        bool
	Err            error
}

// ReconcilerStore combines the read and patch capabilities the loop needs.
type ReconcilerStore interface {
	CandidateReader
	CandidatePatcher
}

// Reconciler converges stored background-check statuses with the vendor's
// authoritative state. Runs are idempotent: an unchanged vendor status is a
// verified no-op, so overlapping or repeated runs produce no duplicate
// writes or notifications.
type Reconciler struct {
	store    ReconcilerStore
	vendor   VendorClient
	notifier TransitionNotifier
	clock    func() time.Time
	logf     func(format string, args ...any)
}

// NewReconciler constructs a background-check reconciler.
func NewReconciler(store ReconcilerStore, vendor VendorClient, notifier TransitionNotifier, clock func() time.Time) *Reconciler {
	if clock == nil {
		clock = time.Now
	}
	return &Reconciler{
		store:    store,
		vendor:   vendor,
		notifier: notifier,
		clock:    clock,
		logf:     log.Printf,
	}
}

// SetLogf overrides the diagnostic log sink, primarily for tests.
func (r *Reconciler) SetLogf(logf func(format string, args ...any)) {
	if r == nil || logf == nil {
		return
	}
	r.logf = logf
}

// Run polls the vendor for every candidate with an open case and applies
// at-most-once status updates and notifications. A single candidate's
// vendor failure is recorded in its result entry and never aborts the rest
// of the batch. Run returns an error only for configuration-level failures.
func (r *Reconciler) Run(ctx context.Context) ([]ReconcileResult, error) {
	if r == nil || r.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if r.vendor == nil {
		return nil, ErrVendorNotConfigured
	}

	candidates, err := r.store.ListOpenBackgroundChecks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open background checks: %w", err)
	}

	results := make([]ReconcileResult, 0, len(candidates))
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.reconcileCandidate(ctx, candidate))
	}
	return results, nil
}

func (r *Reconciler) reconcileCandidate(ctx context.Context, candidate Candidate) ReconcileResult {
	result := ReconcileResult{
		CandidateID:    candidate.ID,
		CaseID:         candidate.BackgroundCheck.CaseID,
		PreviousStatus: candidate.BackgroundCheck.Status,
		NewStatus:      candidate.BackgroundCheck.Status,
	}
	if !candidate.HasOpenBackgroundCheck() {
		// Listed set may lag a concurrent update; nothing to poll.
		return result
	}

	code, err := r.vendor.PollStatus(ctx, candidate.BackgroundCheck.CaseID)
	if err != nil {
		r.logf("reconcile candidate %s: poll case %s: %v", candidate.ID, candidate.BackgroundCheck.CaseID, err)
		result.Err = fmt.Errorf("poll vendor status: %w", err)
		return result
	}

	mapped, known := MapVendorStatus(code)
	if !known {
		r.logf("reconcile candidate %s: unmapped vendor status %q, keeping case open", candidate.ID, code)
	}
	if mapped == candidate.BackgroundCheck.Status {
		// Idempotence guarantee: no write, no notification.
		return result
	}

	now := r.clock().UTC()
	patch := BackgroundCheckPatch{Status: &mapped}
	if mapped == BackgroundCheckCompleted {
		passedAt := now
		patch.PassedAt = &passedAt
		patch.PassedAtSet = true
	}
	if err := r.store.PatchCandidate(ctx, candidate.ID, CandidatePatch{BackgroundCheck: &patch}); err != nil {
		result.Err = fmt.Errorf("patch background check status: %w", err)
		return result
	}

	result.NewStatus = mapped
	result.Changed = true

	if r.notifier != nil {
		if err := r.notifier.NotifyStatusChange(ctx, StatusTransition{
			CandidateID:    candidate.ID,
			CandidateName:  candidate.Name,
			PreviousStatus: candidate.BackgroundCheck.Status,
			NewStatus:      mapped,
			OccurredAt:     now,
		}); err != nil {
			// The status write stands; the dedupe key makes the retry safe.
			r.logf("reconcile candidate %s: notify transition: %v", candidate.ID, err)
			result.Err = fmt.Errorf("notify status change: %w", err)
		}
	}
	return result
}
