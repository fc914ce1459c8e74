package models

import "time"

// Notification is a stored message for a user about activity on one of their
// borrow requests. Delivery to connected clients is best-effort; the row is
// the source of truth for the notification list.
type Notification struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RecipientID      uint      `gorm:"not null;index:idx_notifications_recipient" json:"recipient_id"`
	Message          string    `gorm:"type:text;not null" json:"message"`
	RelatedRequestID uint      `gorm:"index" json:"related_request_id"`
	Read             bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
