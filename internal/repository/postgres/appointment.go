package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/internal/repository"
)

// appointmentRepository reads the scheduling module's tables for guard
// counts and statistics. Never writes.
type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) CountFuture(ctx context.Context, guard model.AppointmentGuard) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE clinic_id = $1
		  AND status IN ($2, $3)
		  AND scheduled_at >= $4
	`
	args := []interface{}{
		guard.ClinicID,
		model.AppointmentScheduled,
		model.AppointmentConfirmed,
		guard.From,
	}
	if guard.DoctorID != nil {
		args = append(args, *guard.DoctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if guard.RoomID != nil {
		args = append(args, *guard.RoomID)
		query += fmt.Sprintf(" AND room_id = $%d", len(args))
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count future appointments: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) Stats(ctx context.Context, clinicID uuid.UUID, rng model.StatsRange) (*model.ClinicStats, error) {
	// One pass over the range with conditional aggregation instead of a
	// query per counter.
	query := `
		SELECT
			COUNT(*) AS total_appointments,
			COUNT(*) FILTER (WHERE status = $4) AS completed_appointments,
			COUNT(*) FILTER (WHERE status = $5) AS cancelled_appointments,
			COUNT(*) FILTER (WHERE status = $6) AS no_show_appointments,
			COUNT(*) FILTER (WHERE telemedicine) AS telemedicine_appointments,
			(SELECT COUNT(*) FROM clinic_patients cp WHERE cp.clinic_id = $1) AS total_patients,
			(SELECT COUNT(*) FROM clinic_doctors cd
			   JOIN doctors d ON d.id = cd.doctor_id
			  WHERE cd.clinic_id = $1 AND d.active) AS active_doctors,
			(SELECT COUNT(*) FROM clinic_patients cp
			  WHERE cp.clinic_id = $1 AND cp.created_at >= $2 AND cp.created_at < $3) AS new_patients
		FROM appointments
		WHERE clinic_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3
	`
	var stats model.ClinicStats
	err := r.db.GetContext(ctx, &stats, query,
		clinicID,
		rng.Start,
		rng.End,
		model.AppointmentCompleted,
		model.AppointmentCancelled,
		model.AppointmentNoShow,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic stats: %w", err)
	}
	return &stats, nil
}
