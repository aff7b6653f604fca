package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// OutboxEvent is a domain event persisted in the same store as the
// mutation that produced it. A worker relays pending rows to the broker.
type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       string          `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Event type names published by the clinic service.
const (
	EventClinicCreated         = "clinic.created"
	EventClinicUpdated         = "clinic.updated"
	EventClinicDeleted         = "clinic.deleted"
	EventClinicDoctorAdded     = "clinic.doctor_added"
	EventClinicDoctorRemoved   = "clinic.doctor_removed"
	EventClinicPatientAdded    = "clinic.patient_added"
	EventClinicRoomAdded       = "clinic.room_added"
	EventClinicRoomUpdated     = "clinic.room_updated"
	EventClinicRoomDeactivated = "clinic.room_deactivated"
)
