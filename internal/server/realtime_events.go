package server

import (
	"context"
	"encoding/json"
	"log"

	"shardit/internal/models"
)

// Event type constants prevent typos in event names.
const (
	EventRequestCreated   = "request_created"
	EventRequestAccepted  = "request_accepted"
	EventRequestDeclined  = "request_declined"
	EventRequestCancelled = "request_cancelled"
	EventRequestPickedUp  = "request_picked_up"
	EventRequestReturned  = "request_returned"
	EventRequestCompleted = "request_completed"
)

// publishRequestEvent pushes a live state update for a request to both of its
// parties, so an open tracking page refreshes without polling. This is
// separate from the persisted notification feed, which only addresses the
// counterparty of the acting user.
func (s *Server) publishRequestEvent(req *models.BorrowRequest, eventType string) {
	event := map[string]interface{}{
		"type": eventType,
		"payload": map[string]interface{}{
			"request_id": req.ID,
			"item_id":    req.ItemID,
			"status":     req.Status,
			"updated_at": req.UpdatedAt,
		},
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)

	// With Redis available the event travels through pub/sub so every
	// instance's hub picks it up; without Redis, fall back to the local hub.
	for _, userID := range []uint{req.BorrowerID, req.LenderID} {
		if s.redis != nil {
			if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
				log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
			}
			continue
		}
		if s.hub != nil {
			s.hub.Broadcast(userID, message)
		}
	}
}
