package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"shardit/internal/models"
	"shardit/internal/repository"
)

// Envelope is the wire format pushed to websocket clients.
type Envelope struct {
	Type    string               `json:"type"`
	Payload *models.Notification `json:"payload"`
}

// Sink stores a notification row for the feed and publishes it to the
// recipient's Redis channel for real-time delivery.
type Sink struct {
	repo     repository.NotificationRepository
	notifier *Notifier
}

// NewSink creates a Sink. notifier may wrap a nil Redis client, in which case
// notifications are feed-only.
func NewSink(repo repository.NotificationRepository, notifier *Notifier) *Sink {
	return &Sink{repo: repo, notifier: notifier}
}

// Notify persists the notification and pushes it to connected clients.
func (s *Sink) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	payload, err := json.Marshal(Envelope{Type: "notification", Payload: n})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := s.notifier.PublishUser(ctx, n.RecipientID, string(payload)); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
