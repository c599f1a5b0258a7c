package dto

import (
	"encoding/json"
	"time"
)

// AuditLogResponse entrada del registro de auditoría.
type AuditLogResponse struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	UserID     *string         `json:"user_id,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
