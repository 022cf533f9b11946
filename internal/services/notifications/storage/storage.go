// Package storage defines persistence boundary types for the notifications
// service. Records mirror domain notifications with storage-friendly shapes;
// the app layer adapts between the two.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// NotificationRecord is one stored inbox row.
type NotificationRecord struct {
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

// NotificationPage is one page of inbox rows.
type NotificationPage struct {
	Notifications []NotificationRecord
	NextPageToken string
}

// Store is the notifications persistence contract.
type Store interface {
	PutNotification(ctx context.Context, record NotificationRecord) error
	GetUnreadNotificationByDedupeKey(ctx context.Context, dedupeKey string) (NotificationRecord, error)
	ListNotifications(ctx context.Context, onlyUnread bool, pageSize int, pageToken string) (NotificationPage, error)
	CountUnreadNotifications(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, notificationID string, readAt time.Time) (NotificationRecord, error)
	MarkAllNotificationsRead(ctx context.Context, candidateID string, readAt time.Time) (int, error)
	Close() error
}
