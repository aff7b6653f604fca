package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthflow/clinic-api/internal/model"
)

func TestListPatientsTextualSearchSkipsCPF(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMembershipRepository(NewBaseRepository(db))
	clinicID := uuid.New()

	// A digitless term must only match names; a '%%' CPF pattern would
	// match every patient of the clinic.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clinic_patients cp JOIN patients p ON p\.id = cp\.patient_id WHERE cp\.clinic_id = \$1 AND \(p\.full_name ILIKE \$2\)`).
		WithArgs(clinicID, "%Maria%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM clinic_patients cp JOIN patients p ON p\.id = cp\.patient_id WHERE cp\.clinic_id = \$1 AND \(p\.full_name ILIKE \$2\) ORDER BY p\.full_name LIMIT \$3 OFFSET \$4`).
		WithArgs(clinicID, "%Maria%", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	filter := &model.PatientMembershipFilter{
		Pagination: model.Pagination{Page: 1, Limit: 20},
		Search:     "Maria",
	}
	memberships, total, err := repo.ListPatients(context.Background(), clinicID, filter)
	require.NoError(t, err)
	assert.Empty(t, memberships)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPatientsDigitSearchMatchesCPF(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMembershipRepository(NewBaseRepository(db))
	clinicID := uuid.New()

	// Formatted CPF fragments match on the digits-only column value.
	mock.ExpectQuery(`WHERE cp\.clinic_id = \$1 AND \(p\.full_name ILIKE \$2 OR p\.cpf LIKE \$3\)`).
		WithArgs(clinicID, "%123.456%", "%123456%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`LIMIT \$4 OFFSET \$5`).
		WithArgs(clinicID, "%123.456%", "%123456%", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	filter := &model.PatientMembershipFilter{
		Pagination: model.Pagination{Page: 1, Limit: 20},
		Search:     "123.456",
	}
	_, _, err := repo.ListPatients(context.Background(), clinicID, filter)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
