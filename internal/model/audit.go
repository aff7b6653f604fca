package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of a mutating action: who, what, when,
// and sanitized before/after snapshots.
type AuditLog struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	ActorID     uuid.UUID       `db:"actor_id" json:"actor_id"`
	Action      string          `db:"action" json:"action"`
	EntityType  string          `db:"entity_type" json:"entity_type"`
	EntityID    uuid.UUID       `db:"entity_id" json:"entity_id"`
	Description string          `db:"description" json:"description"`
	OldValues   json.RawMessage `db:"old_values" json:"old_values,omitempty"`
	NewValues   json.RawMessage `db:"new_values" json:"new_values,omitempty"`
	IPAddress   string          `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent   string          `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// AuditFilter filters the audit log listing.
type AuditFilter struct {
	Pagination
	EntityType string     `form:"entityType"`
	EntityID   *uuid.UUID `form:"entityId"`
	ActorID    *uuid.UUID `form:"actorId"`
	Action     string     `form:"action"`
}
