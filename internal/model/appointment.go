package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus values owned by the scheduling module. This module only
// reads them for destructive-operation guards and stats.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentNoShow    AppointmentStatus = "NO_SHOW"
)

// AppointmentGuard identifies the scope of a future-appointment check:
// clinic-wide, or narrowed to one doctor or one room.
type AppointmentGuard struct {
	ClinicID uuid.UUID
	DoctorID *uuid.UUID
	RoomID   *uuid.UUID
	From     time.Time
}

// StatsRange is the date range for clinic statistics. Start is inclusive,
// End exclusive, so a whole calendar day is [midnight, next midnight).
type StatsRange struct {
	Start time.Time
	End   time.Time
}
