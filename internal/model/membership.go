package model

import (
	"time"

	"github.com/google/uuid"
)

// ClinicDoctor links a doctor to a clinic with clinic-specific overrides.
// Unique per (clinic_id, doctor_id).
type ClinicDoctor struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	ClinicID     uuid.UUID    `db:"clinic_id" json:"clinic_id"`
	DoctorID     uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	IsPrimary    bool         `db:"is_primary" json:"is_primary"`
	Specialties  StringList   `db:"specialties" json:"specialties"`
	WorkingHours WorkingHours `db:"working_hours" json:"working_hours"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// ClinicDoctorDetail is a membership row with the doctor's public profile
// embedded, as returned to callers.
type ClinicDoctorDetail struct {
	ClinicDoctor
	Doctor Doctor `json:"doctor"`
}

// ClinicPatient links a patient to a clinic and carries the clinic-local
// medical-record number. Unique per (clinic_id, patient_id).
type ClinicPatient struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	ClinicID            uuid.UUID `db:"clinic_id" json:"clinic_id"`
	PatientID           uuid.UUID `db:"patient_id" json:"patient_id"`
	MedicalRecordNumber string    `db:"medical_record_number" json:"medical_record_number"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// ClinicPatientDetail is a membership row with the patient's public
// profile embedded.
type ClinicPatientDetail struct {
	ClinicPatient
	Patient Patient `json:"patient"`
}

// DoctorMembershipFilter filters a clinic's doctor listing.
type DoctorMembershipFilter struct {
	Pagination
	Specialty    string `form:"specialty"`
	Telemedicine *bool  `form:"telemedicine"`
}

// PatientMembershipFilter filters a clinic's patient listing. Search
// matches name substrings or digits-only CPF substrings.
type PatientMembershipFilter struct {
	Pagination
	Search string `form:"search"`
}
