package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthflow/clinic-api/internal/model"
)

func TestCountFutureNarrowsToDoctor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewBaseRepository(db))
	clinicID := uuid.New()
	doctorID := uuid.New()
	from := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE clinic_id = \$1 AND status IN \(\$2, \$3\) AND scheduled_at >= \$4 AND doctor_id = \$5`).
		WithArgs(clinicID, model.AppointmentScheduled, model.AppointmentConfirmed, from, doctorID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountFuture(context.Background(), model.AppointmentGuard{
		ClinicID: clinicID,
		DoctorID: &doctorID,
		From:     from,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRangeIsHalfOpen(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewBaseRepository(db))
	clinicID := uuid.New()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	// [start, end): an exclusive upper bound keeps a whole calendar day in
	// range without the BETWEEN midnight cutoff dropping its appointments.
	mock.ExpectQuery(`WHERE clinic_id = \$1 AND scheduled_at >= \$2 AND scheduled_at < \$3`).
		WithArgs(clinicID, start, end,
			model.AppointmentCompleted, model.AppointmentCancelled, model.AppointmentNoShow).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_appointments", "completed_appointments", "cancelled_appointments",
			"no_show_appointments", "telemedicine_appointments",
			"total_patients", "active_doctors", "new_patients",
		}).AddRow(10, 7, 1, 1, 3, 40, 5, 4))

	stats, err := repo.Stats(context.Background(), clinicID, model.StatsRange{Start: start, End: end})
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalAppointments)
	assert.Equal(t, int64(7), stats.CompletedAppointments)
	assert.NoError(t, mock.ExpectationsWereMet())
}
