package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/internal/repository"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func clinicRows(id uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "legal_name", "trade_name", "cnpj", "cnes", "email", "phone", "website",
		"address", "settings", "working_hours", "logo_url", "brand_color", "timezone",
		"active", "created_at", "updated_at", "deleted_at",
	}).AddRow(
		id, "Clínica Boa Saúde LTDA", "Boa Saúde", "11222333000181", nil,
		"contato@boasaude.example", "+55 11 4002-8922", nil,
		[]byte(`{"street":"Rua das Flores","city":"São Paulo","state":"SP"}`),
		[]byte(`{"telemedicine_enabled":true}`),
		[]byte(`{}`),
		nil, nil, "America/Sao_Paulo", true, now, now, nil,
	)
}

func TestClinicGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClinicRepository(NewBaseRepository(db))
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM clinics WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(clinicRows(id))

	clinic, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, clinic.ID)
	assert.Equal(t, "Boa Saúde", clinic.TradeName)
	assert.True(t, clinic.Settings.TelemedicineEnabled)
	assert.Equal(t, "São Paulo", clinic.Address.City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClinicRepository(NewBaseRepository(db))
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM clinics WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClinicGetByCNPJNormalizesAndMisses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClinicRepository(NewBaseRepository(db))

	// Formatted input queries with digits only; absence is (nil, nil).
	mock.ExpectQuery(`SELECT .* FROM clinics WHERE cnpj = \$1`).
		WithArgs("11222333000181").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	clinic, err := repo.GetByCNPJ(context.Background(), "11.222.333/0001-81")
	require.NoError(t, err)
	assert.Nil(t, clinic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClinicRepository(NewBaseRepository(db))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO clinics`).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})
	mock.ExpectRollback()

	clinic := &model.Clinic{
		Base: model.Base{ID: uuid.New()},
		CNPJ: "11222333000181",
	}
	err := repo.Create(context.Background(), clinic, nil)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicListRadiusUnsupported(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewClinicRepository(NewBaseRepository(db))

	radius := 10.0
	_, _, err := repo.List(context.Background(), &model.ClinicFilter{RadiusKm: &radius})
	assert.ErrorIs(t, err, repository.ErrUnsupportedFilter)
}

func TestClinicListBuildsFilteredQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClinicRepository(NewBaseRepository(db))

	active := true
	filter := &model.ClinicFilter{
		Pagination: model.Pagination{Page: 1, Limit: 20},
		Search:     "saúde",
		State:      "sp",
		Active:     &active,
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clinics c WHERE c\.deleted_at IS NULL AND \(c\.trade_name ILIKE \$1 .* AND UPPER\(c\.address->>'state'\) = UPPER\(\$2\) AND c\.active = \$3`).
		WithArgs("%saúde%", "sp", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT c\.\*, .* FROM clinics c\s+WHERE .* ORDER BY c\.created_at DESC\s+LIMIT \$4 OFFSET \$5`).
		WithArgs("%saúde%", "sp", true, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	summaries, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildClinicWhere(t *testing.T) {
	city := "Campinas"
	telemedicine := true
	where, args := buildClinicWhere(&model.ClinicFilter{
		City:            city,
		HasTelemedicine: &telemedicine,
	})

	assert.Contains(t, where, "c.deleted_at IS NULL")
	assert.Contains(t, where, "c.address->>'city' ILIKE $1")
	assert.Contains(t, where, "(c.settings->>'telemedicine_enabled')::boolean")
	assert.Equal(t, []interface{}{city, telemedicine}, args)

	where, args = buildClinicWhere(&model.ClinicFilter{IncludeDeleted: true})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildClinicWhereTextualSearchSkipsCNPJ(t *testing.T) {
	// A digitless term must not contribute a cnpj predicate: it would
	// normalize to '%%' and the OR chain would match every clinic.
	where, args := buildClinicWhere(&model.ClinicFilter{Search: "Santa"})

	assert.NotContains(t, where, "c.cnpj")
	assert.Contains(t, where, "c.trade_name ILIKE $1")
	assert.Contains(t, where, "c.legal_name ILIKE $1")
	assert.Equal(t, []interface{}{"%Santa%"}, args)
}

func TestBuildClinicWhereNumericSearchMatchesCNPJ(t *testing.T) {
	where, args := buildClinicWhere(&model.ClinicFilter{Search: "11.222"})

	assert.Contains(t, where, "c.cnpj LIKE $2")
	assert.Equal(t, []interface{}{"%11.222%", "%11222%"}, args)
}

func TestClinicSoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClinicRepository(NewBaseRepository(db))
	id := uuid.New()
	at := time.Now()

	mock.ExpectExec(`UPDATE clinics\s+SET active = false, deleted_at = \$1`).
		WithArgs(at, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), id, at))

	// Already-deleted rows match nothing and report not found.
	mock.ExpectExec(`UPDATE clinics\s+SET active = false, deleted_at = \$1`).
		WithArgs(at, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), id, at)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicUpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClinicRepository(NewBaseRepository(db))

	mock.ExpectExec(`UPDATE clinics`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.Clinic{Base: model.Base{ID: uuid.New()}})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
