package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is one append-only audit record: who did what to which entity, when
type Activity struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        ActivityType
	Description string
	RelatedKind EntityKind
	RelatedID   uuid.UUID
	Metadata    map[string]interface{} // JSONB
	CreatedAt   time.Time
}

// DefaultNotificationTTL is the notification expiry applied when none is given.
const DefaultNotificationTTL = 30 * 24 * time.Hour

// Notification is a per-recipient message about a lifecycle event
type Notification struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        NotificationType
	Title       string
	Message     string
	IsRead      bool
	RelatedKind EntityKind
	RelatedID   uuid.UUID
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
