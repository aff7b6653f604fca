package model

import "github.com/google/uuid"

// Room is a physical space owned by exactly one clinic. Names are unique
// per clinic, enforced by the (clinic_id, name) index. Rooms are
// deactivated, never hard-deleted.
type Room struct {
	Base
	ClinicID    uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	Name        string     `db:"name" json:"name"`
	Code        *string    `db:"code" json:"code,omitempty"`
	Floor       *string    `db:"floor" json:"floor,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
	Equipment   StringList `db:"equipment" json:"equipment"`
	Active      bool       `db:"active" json:"active"`
}
