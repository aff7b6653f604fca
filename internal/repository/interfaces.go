package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/healthflow/clinic-api/internal/model"
)

// Sentinel errors translated by implementations from their backing store.
// Services map these to the typed API error taxonomy.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnsupportedFilter is returned for accepted-but-unsupported filter
	// combinations, currently the geographic radius search.
	ErrUnsupportedFilter = errors.New("unsupported filter")
)

type ClinicRepository interface {
	// Create inserts the clinic and any initial rooms in one transaction.
	Create(ctx context.Context, clinic *model.Clinic, rooms []*model.Room) error
	Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	// GetByCNPJ and GetByCNES return (nil, nil) when absent; they back
	// pre-creation duplicate checks, not user-facing lookups.
	GetByCNPJ(ctx context.Context, cnpj string) (*model.Clinic, error)
	GetByCNES(ctx context.Context, cnes string) (*model.Clinic, error)
	List(ctx context.Context, filter *model.ClinicFilter) ([]*model.ClinicSummary, int64, error)
	Update(ctx context.Context, clinic *model.Clinic) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	Counts(ctx context.Context, clinicID uuid.UUID) (*model.ClinicCounts, error)
}

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	Get(ctx context.Context, clinicID, roomID uuid.UUID) (*model.Room, error)
	Update(ctx context.Context, room *model.Room) error
	Deactivate(ctx context.Context, clinicID, roomID uuid.UUID) error
	ListByClinic(ctx context.Context, clinicID uuid.UUID, activeOnly bool) ([]*model.Room, error)
}

type MembershipRepository interface {
	AddDoctor(ctx context.Context, m *model.ClinicDoctor) error
	GetDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) (*model.ClinicDoctor, error)
	RemoveDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) error
	ListDoctors(ctx context.Context, clinicID uuid.UUID, filter *model.DoctorMembershipFilter) ([]*model.ClinicDoctorDetail, int64, error)

	AddPatient(ctx context.Context, m *model.ClinicPatient) error
	GetPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*model.ClinicPatient, error)
	ListPatients(ctx context.Context, clinicID uuid.UUID, filter *model.PatientMembershipFilter) ([]*model.ClinicPatientDetail, int64, error)
}

// AppointmentRepository is the read-only guard surface into the scheduling
// module's data.
type AppointmentRepository interface {
	CountFuture(ctx context.Context, guard model.AppointmentGuard) (int64, error)
	Stats(ctx context.Context, clinicID uuid.UUID, rng model.StatsRange) (*model.ClinicStats, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
}

type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
}

type AuditRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, int64, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error
}
