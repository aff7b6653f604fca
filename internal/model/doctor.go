package model

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is the public profile of a doctor, owned by the professionals
// module. Read-only here: memberships embed this summary.
type Doctor struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	FullName            string     `db:"full_name" json:"full_name"`
	Email               string     `db:"email" json:"email"`
	CRM                 string     `db:"crm" json:"crm"`
	Specialties         StringList `db:"specialties" json:"specialties"`
	TelemedicineEnabled bool       `db:"telemedicine_enabled" json:"telemedicine_enabled"`
	Active              bool       `db:"active" json:"active"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}
