package app

import (
	"context"

	notificationsdomain "github.com/hirecrest/talentline/internal/services/notifications/domain"
	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
)

// TransitionRecorder forwards detected background-check transitions to the
// notifications inbox. Dedupe lives in the notifications service, so a
// repeated transition is safe to forward.
type TransitionRecorder struct {
	notifications *notificationsdomain.Service
}

// NewTransitionRecorder constructs an inbox-backed transition notifier.
func NewTransitionRecorder(notifications *notificationsdomain.Service) *TransitionRecorder {
	return &TransitionRecorder{notifications: notifications}
}

// NotifyStatusChange records one inbox notification for a transition.
func (r *TransitionRecorder) NotifyStatusChange(ctx context.Context, transition domain.StatusTransition) error {
	if r == nil || r.notifications == nil {
		return nil
	}
	_, err := r.notifications.CreateStatusTransition(ctx, notificationsdomain.CreateTransitionInput{
		CandidateID:    transition.CandidateID,
		CandidateName:  transition.CandidateName,
		PreviousStatus: string(transition.PreviousStatus),
		NewStatus:      string(transition.NewStatus),
		OccurredAt:     transition.OccurredAt,
	})
	return err
}
