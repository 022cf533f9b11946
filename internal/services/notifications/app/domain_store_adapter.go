// Package app wires the notifications domain service to its storage backend
// and adapts between domain and storage shapes.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/hirecrest/talentline/internal/services/notifications/domain"
	"github.com/hirecrest/talentline/internal/services/notifications/storage"
)

// DomainStoreAdapter exposes a storage.Store through the domain.Store
// contract, translating records and sentinel errors.
type DomainStoreAdapter struct {
	store storage.Store
}

// NewDomainStoreAdapter wraps one storage backend for domain use.
func NewDomainStoreAdapter(store storage.Store) *DomainStoreAdapter {
	return &DomainStoreAdapter{store: store}
}

// GetUnreadNotificationByDedupeKey loads one unread notification by key.
func (a *DomainStoreAdapter) GetUnreadNotificationByDedupeKey(ctx context.Context, dedupeKey string) (domain.Notification, error) {
	if a == nil || a.store == nil {
		return domain.Notification{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetUnreadNotificationByDedupeKey(ctx, dedupeKey)
	if err != nil {
		return domain.Notification{}, mapStorageError(err)
	}
	return toDomainNotification(record), nil
}

// PutNotification persists one notification.
func (a *DomainStoreAdapter) PutNotification(ctx context.Context, notification domain.Notification) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.PutNotification(ctx, toStorageRecord(notification)))
}

// ListNotifications lists inbox notifications newest first.
func (a *DomainStoreAdapter) ListNotifications(ctx context.Context, onlyUnread bool, pageSize int, pageToken string) (domain.NotificationPage, error) {
	if a == nil || a.store == nil {
		return domain.NotificationPage{}, domain.ErrStoreNotConfigured
	}
	page, err := a.store.ListNotifications(ctx, onlyUnread, pageSize, pageToken)
	if err != nil {
		return domain.NotificationPage{}, mapStorageError(err)
	}
	out := domain.NotificationPage{
		Notifications: make([]domain.Notification, 0, len(page.Notifications)),
		NextPageToken: page.NextPageToken,
	}
	for _, record := range page.Notifications {
		out.Notifications = append(out.Notifications, toDomainNotification(record))
	}
	return out, nil
}

// CountUnreadNotifications returns the unread inbox count.
func (a *DomainStoreAdapter) CountUnreadNotifications(ctx context.Context) (int, error) {
	if a == nil || a.store == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	count, err := a.store.CountUnreadNotifications(ctx)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return count, nil
}

// MarkNotificationRead marks one notification as read.
func (a *DomainStoreAdapter) MarkNotificationRead(ctx context.Context, notificationID string, readAt time.Time) (domain.Notification, error) {
	if a == nil || a.store == nil {
		return domain.Notification{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.MarkNotificationRead(ctx, notificationID, readAt)
	if err != nil {
		return domain.Notification{}, mapStorageError(err)
	}
	return toDomainNotification(record), nil
}

// MarkAllNotificationsRead marks every unread notification as read,
// optionally scoped to one candidate.
func (a *DomainStoreAdapter) MarkAllNotificationsRead(ctx context.Context, candidateID string, readAt time.Time) (int, error) {
	if a == nil || a.store == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	affected, err := a.store.MarkAllNotificationsRead(ctx, candidateID, readAt)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return affected, nil
}

func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func toDomainNotification(record storage.NotificationRecord) domain.Notification {
	return domain.Notification{
		ID:             record.ID,
		CandidateID:    record.CandidateID,
		CandidateName:  record.CandidateName,
		Topic:          record.Topic,
		PreviousStatus: record.PreviousStatus,
		NewStatus:      record.NewStatus,
		Priority:       record.Priority,
		DedupeKey:      record.DedupeKey,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
		ReadAt:         record.ReadAt,
	}
}

func toStorageRecord(notification domain.Notification) storage.NotificationRecord {
	return storage.NotificationRecord{
		ID:             notification.ID,
		CandidateID:    notification.CandidateID,
		CandidateName:  notification.CandidateName,
		Topic:          notification.Topic,
		PreviousStatus: notification.PreviousStatus,
		NewStatus:      notification.NewStatus,
		Priority:       notification.Priority,
		DedupeKey:      notification.DedupeKey,
		CreatedAt:      notification.CreatedAt,
		UpdatedAt:      notification.UpdatedAt,
		ReadAt:         notification.ReadAt,
	}
}
