package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/internal/repository"
	"github.com/healthflow/clinic-api/pkg/cnpj"
)

type membershipRepository struct {
	BaseRepository
}

func NewMembershipRepository(base BaseRepository) repository.MembershipRepository {
	return &membershipRepository{base}
}

func (r *membershipRepository) AddDoctor(ctx context.Context, m *model.ClinicDoctor) error {
	query := `
		INSERT INTO clinic_doctors (
			id, clinic_id, doctor_id, is_primary, specialties, working_hours, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.ClinicID,
		m.DoctorID,
		m.IsPrimary,
		m.Specialties,
		m.WorkingHours,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add doctor membership: %w", translateErr(err))
	}
	return nil
}

func (r *membershipRepository) GetDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) (*model.ClinicDoctor, error) {
	query := `
		SELECT id, clinic_id, doctor_id, is_primary, specialties, working_hours, created_at
		FROM clinic_doctors
		WHERE clinic_id = $1 AND doctor_id = $2
	`
	var m model.ClinicDoctor
	if err := r.db.GetContext(ctx, &m, query, clinicID, doctorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get doctor membership: %w", err)
	}
	return &m, nil
}

func (r *membershipRepository) RemoveDoctor(ctx context.Context, clinicID, doctorID uuid.UUID) error {
	query := `DELETE FROM clinic_doctors WHERE clinic_id = $1 AND doctor_id = $2`
	result, err := r.db.ExecContext(ctx, query, clinicID, doctorID)
	if err != nil {
		return fmt.Errorf("failed to remove doctor membership: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

const doctorDetailColumns = `
	cd.id, cd.clinic_id, cd.doctor_id, cd.is_primary, cd.specialties,
	cd.working_hours, cd.created_at,
	d.id AS "doctor.id", d.full_name AS "doctor.full_name",
	d.email AS "doctor.email", d.crm AS "doctor.crm",
	d.specialties AS "doctor.specialties",
	d.telemedicine_enabled AS "doctor.telemedicine_enabled",
	d.active AS "doctor.active", d.created_at AS "doctor.created_at"
`

func (r *membershipRepository) ListDoctors(ctx context.Context, clinicID uuid.UUID, filter *model.DoctorMembershipFilter) ([]*model.ClinicDoctorDetail, int64, error) {
	conds := []string{"cd.clinic_id = $1"}
	args := []interface{}{clinicID}

	if filter.Specialty != "" {
		args = append(args, filter.Specialty)
		conds = append(conds, fmt.Sprintf("cd.specialties ? $%d", len(args)))
	}
	if filter.Telemedicine != nil {
		args = append(args, *filter.Telemedicine)
		conds = append(conds, fmt.Sprintf("d.telemedicine_enabled = $%d", len(args)))
	}
	where := "WHERE " + strings.Join(conds, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM clinic_doctors cd
		JOIN doctors d ON d.id = cd.doctor_id
	` + where
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctor memberships: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM clinic_doctors cd
		JOIN doctors d ON d.id = cd.doctor_id
		%s
		ORDER BY d.full_name
		LIMIT $%d OFFSET $%d
	`, doctorDetailColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	memberships := []*model.ClinicDoctorDetail{}
	if err := r.db.SelectContext(ctx, &memberships, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctor memberships: %w", err)
	}
	return memberships, total, nil
}

func (r *membershipRepository) AddPatient(ctx context.Context, m *model.ClinicPatient) error {
	query := `
		INSERT INTO clinic_patients (
			id, clinic_id, patient_id, medical_record_number, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.ClinicID,
		m.PatientID,
		m.MedicalRecordNumber,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add patient membership: %w", translateErr(err))
	}
	return nil
}

func (r *membershipRepository) GetPatient(ctx context.Context, clinicID, patientID uuid.UUID) (*model.ClinicPatient, error) {
	query := `
		SELECT id, clinic_id, patient_id, medical_record_number, created_at
		FROM clinic_patients
		WHERE clinic_id = $1 AND patient_id = $2
	`
	var m model.ClinicPatient
	if err := r.db.GetContext(ctx, &m, query, clinicID, patientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient membership: %w", err)
	}
	return &m, nil
}

const patientDetailColumns = `
	cp.id, cp.clinic_id, cp.patient_id, cp.medical_record_number, cp.created_at,
	p.id AS "patient.id", p.full_name AS "patient.full_name",
	p.cpf AS "patient.cpf", p.email AS "patient.email",
	p.phone AS "patient.phone", p.birth_date AS "patient.birth_date",
	p.created_at AS "patient.created_at"
`

func (r *membershipRepository) ListPatients(ctx context.Context, clinicID uuid.UUID, filter *model.PatientMembershipFilter) ([]*model.ClinicPatientDetail, int64, error) {
	conds := []string{"cp.clinic_id = $1"}
	args := []interface{}{clinicID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		cond := fmt.Sprintf("p.full_name ILIKE $%d", len(args))
		// Digitless terms normalize to '%%' and would match every CPF.
		if digits := cnpj.Normalize(filter.Search); digits != "" {
			args = append(args, "%"+digits+"%")
			cond += fmt.Sprintf(" OR p.cpf LIKE $%d", len(args))
		}
		conds = append(conds, "("+cond+")")
	}
	where := "WHERE " + strings.Join(conds, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM clinic_patients cp
		JOIN patients p ON p.id = cp.patient_id
	` + where
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patient memberships: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM clinic_patients cp
		JOIN patients p ON p.id = cp.patient_id
		%s
		ORDER BY p.full_name
		LIMIT $%d OFFSET $%d
	`, patientDetailColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	memberships := []*model.ClinicPatientDetail{}
	if err := r.db.SelectContext(ctx, &memberships, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patient memberships: %w", err)
	}
	return memberships, total, nil
}
