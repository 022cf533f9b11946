package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hirecrest/talentline/internal/platform/id"
)

var (
	// ErrNotFound indicates a notification record was not found.
	ErrNotFound = errors.New("notification not found")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("notification store is not configured")
	// ErrCandidateIDRequired indicates the subject candidate is required.
	ErrCandidateIDRequired = errors.New("candidate id is required")
	// ErrStatusRequired indicates the new status is required.
	ErrStatusRequired = errors.New("new status is required")
	// ErrNotificationIDRequired indicates notification ID is required.
	ErrNotificationIDRequired = errors.New("notification id is required")
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// TopicBackgroundCheckStatus identifies a background-check status transition
// notification.
const TopicBackgroundCheckStatus = "pipeline.background_check.status"

const (
	// PriorityNormal is the default inbox priority.
	PriorityNormal = "normal"
	// PriorityHigh marks transitions that need prompt recruiter action.
	PriorityHigh = "high"
)

// Notification is one recruiter-facing inbox item about a candidate.
type Notification struct {
	ID             string
	CandidateID    string
	CandidateName  string
	Topic          string
	PreviousStatus string
	NewStatus      string
	Priority       string
	DedupeKey      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ReadAt         *time.Time
}

// Read reports whether the notification has been acknowledged.
func (n Notification) Read() bool {
	return n.ReadAt != nil
}

// NotificationPage is a paged inbox view.
type NotificationPage struct {
	Notifications []Notification
	NextPageToken string
}

// CreateTransitionInput describes one detected status transition.
type CreateTransitionInput struct {
	CandidateID    string
	CandidateName  string
	PreviousStatus string
	NewStatus      string
	OccurredAt     time.Time
}

// ListInboxInput configures inbox listing.
type ListInboxInput struct {
	OnlyUnread bool
	PageSize   int
	PageToken  string
}

// Store is the domain persistence boundary for notification lifecycle
// behavior.
type Store interface {
	GetUnreadNotificationByDedupeKey(ctx context.Context, dedupeKey string) (Notification, error)
	PutNotification(ctx context.Context, notification Notification) error
	ListNotifications(ctx context.Context, onlyUnread bool, pageSize int, pageToken string) (NotificationPage, error)
	CountUnreadNotifications(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, notificationID string, readAt time.Time) (Notification, error)
	MarkAllNotificationsRead(ctx context.Context, candidateID string, readAt time.Time) (int, error)
}

// Service orchestrates the recruiter inbox lifecycle.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs notification domain use-cases.
func NewService(store Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// TransitionDedupeKey builds the uniqueness key for one candidate status
// transition. An unread notification with the same key suppresses a new one;
// an acknowledged one does not, so a case that re-enters review can notify
// again later.
func TransitionDedupeKey(candidateID string, newStatus string) string {
	return fmt.Sprintf("status:%s:%s", strings.TrimSpace(candidateID), strings.TrimSpace(newStatus))
}

// CreateStatusTransition records one inbox item for a detected transition,
// de-duplicating against unread notifications for the same candidate and
// target status.
func (s *Service) CreateStatusTransition(ctx context.Context, input CreateTransitionInput) (Notification, error) {
	if s == nil || s.store == nil {
		return Notification{}, ErrStoreNotConfigured
	}
	candidateID := strings.TrimSpace(input.CandidateID)
	if candidateID == "" {
		return Notification{}, ErrCandidateIDRequired
	}
	newStatus := strings.TrimSpace(input.NewStatus)
	if newStatus == "" {
		return Notification{}, ErrStatusRequired
	}

	dedupeKey := TransitionDedupeKey(candidateID, newStatus)
	existing, err := s.store.GetUnreadNotificationByDedupeKey(ctx, dedupeKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Notification{}, err
	}

	notificationID, err := s.newID()
	if err != nil {
		return Notification{}, err
	}
	now := s.nowUTC()
	createdAt := now
	if !input.OccurredAt.IsZero() {
		createdAt = input.OccurredAt.UTC()
	}
	notification := Notification{
		ID:             notificationID,
		CandidateID:    candidateID,
		CandidateName:  strings.TrimSpace(input.CandidateName),
		Topic:          TopicBackgroundCheckStatus,
		PreviousStatus: strings.TrimSpace(input.PreviousStatus),
		NewStatus:      newStatus,
		Priority:       transitionPriority(newStatus),
		DedupeKey:      dedupeKey,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}
	if err := s.store.PutNotification(ctx, notification); err != nil {
		return Notification{}, err
	}
	return notification, nil
}

// ListInbox lists inbox notifications newest first.
func (s *Service) ListInbox(ctx context.Context, input ListInboxInput) (NotificationPage, error) {
	if s == nil || s.store == nil {
		return NotificationPage{}, ErrStoreNotConfigured
	}
	pageSize := input.PageSize
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return s.store.ListNotifications(ctx, input.OnlyUnread, pageSize, strings.TrimSpace(input.PageToken))
}

// CountUnread returns the number of unacknowledged inbox items.
func (s *Service) CountUnread(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return s.store.CountUnreadNotifications(ctx)
}

// MarkRead acknowledges one notification. Acknowledging an already-read
// notification is a no-op that returns the stored record.
func (s *Service) MarkRead(ctx context.Context, notificationID string) (Notification, error) {
	if s == nil || s.store == nil {
		return Notification{}, ErrStoreNotConfigured
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return Notification{}, ErrNotificationIDRequired
	}
	return s.store.MarkNotificationRead(ctx, notificationID, s.nowUTC())
}

// MarkAllRead acknowledges every unread notification and returns how many
// rows changed. A non-empty candidateID limits the sweep to that candidate.
// Calling it on an empty inbox is a no-op.
func (s *Service) MarkAllRead(ctx context.Context, candidateID string) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return s.store.MarkAllNotificationsRead(ctx, strings.TrimSpace(candidateID), s.nowUTC())
}

// transitionPriority grades one transition for the inbox. Denied and
// needs-review outcomes demand recruiter action; everything else is routine.
func transitionPriority(newStatus string) string {
	switch newStatus {
	case "failed", "review":
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}
