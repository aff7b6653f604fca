package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the public profile of a patient, owned by the patients
// module. Read-only here: memberships embed this summary.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	CPF       string    `db:"cpf" json:"cpf"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	BirthDate time.Time `db:"birth_date" json:"birth_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
