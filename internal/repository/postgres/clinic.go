package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/internal/repository"
	"github.com/healthflow/clinic-api/pkg/cnpj"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

const clinicColumns = `
	id, legal_name, trade_name, cnpj, cnes, email, phone, website,
	address, settings, working_hours, logo_url, brand_color, timezone,
	active, created_at, updated_at, deleted_at
`

const clinicCountColumns = `
	(SELECT COUNT(*) FROM clinic_doctors cd WHERE cd.clinic_id = c.id) AS doctor_count,
	(SELECT COUNT(*) FROM clinic_patients cp WHERE cp.clinic_id = c.id) AS patient_count,
	(SELECT COUNT(*) FROM clinic_employees ce WHERE ce.clinic_id = c.id) AS employee_count,
	(SELECT COUNT(*) FROM appointments a WHERE a.clinic_id = c.id) AS appointment_count,
	(SELECT COUNT(*) FROM rooms r WHERE r.clinic_id = c.id AND r.active) AS room_count
`

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic, rooms []*model.Room) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO clinics (
				id, legal_name, trade_name, cnpj, cnes, email, phone, website,
				address, settings, working_hours, logo_url, brand_color, timezone,
				active, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
			)
		`
		_, err := tx.ExecContext(ctx, query,
			clinic.ID,
			clinic.LegalName,
			clinic.TradeName,
			clinic.CNPJ,
			clinic.CNES,
			clinic.Email,
			clinic.Phone,
			clinic.Website,
			clinic.Address,
			clinic.Settings,
			clinic.WorkingHours,
			clinic.LogoURL,
			clinic.BrandColor,
			clinic.Timezone,
			clinic.Active,
			clinic.CreatedAt,
			clinic.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create clinic: %w", translateErr(err))
		}

		for _, room := range rooms {
			if err := insertRoom(ctx, tx, room); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = $1`
	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) GetByCNPJ(ctx context.Context, raw string) (*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE cnpj = $1`
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, query, cnpj.Normalize(raw))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic by cnpj: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) GetByCNES(ctx context.Context, cnes string) (*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE cnes = $1`
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, query, cnes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic by cnes: %w", err)
	}
	return &clinic, nil
}

// clinicSortColumns whitelists sortable fields against injection.
var clinicSortColumns = map[string]string{
	"created_at": "c.created_at",
	"trade_name": "c.trade_name",
	"legal_name": "c.legal_name",
	"city":       "c.address->>'city'",
}

type clinicSummaryRow struct {
	model.Clinic
	model.ClinicCounts
}

func (r *clinicRepository) List(ctx context.Context, filter *model.ClinicFilter) ([]*model.ClinicSummary, int64, error) {
	if filter.RadiusKm != nil {
		return nil, 0, repository.ErrUnsupportedFilter
	}

	where, args := buildClinicWhere(filter)

	countQuery := `SELECT COUNT(*) FROM clinics c ` + where
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count clinics: %w", err)
	}

	orderBy := "c.created_at"
	if col, ok := clinicSortColumns[filter.SortBy]; ok {
		orderBy = col
	}
	dir := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		dir = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT c.*, %s
		FROM clinics c
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, clinicCountColumns, where, orderBy, dir, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	var rows []*clinicSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list clinics: %w", err)
	}

	summaries := make([]*model.ClinicSummary, 0, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, &model.ClinicSummary{
			Clinic: row.Clinic,
			Counts: row.ClinicCounts,
			Rooms:  []*model.Room{},
		})
		ids = append(ids, row.Clinic.ID)
	}

	if err := r.attachRooms(ctx, summaries, ids); err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

// buildClinicWhere assembles the dynamic WHERE clause from the typed
// filter. Every optional field contributes one predicate.
func buildClinicWhere(filter *model.ClinicFilter) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeDeleted {
		conds = append(conds, "c.deleted_at IS NULL")
	}
	if filter.Search != "" {
		like := arg("%" + filter.Search + "%")
		parts := []string{
			fmt.Sprintf("c.trade_name ILIKE %[1]s OR c.legal_name ILIKE %[1]s OR c.cnes LIKE %[1]s", like),
		}
		// Only match against cnpj when the term carries digits; a
		// digitless term would normalize to '%%' and match every row.
		if digits := cnpj.Normalize(filter.Search); digits != "" {
			parts = append(parts, fmt.Sprintf("c.cnpj LIKE %s", arg("%"+digits+"%")))
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}
	if filter.City != "" {
		conds = append(conds, fmt.Sprintf("c.address->>'city' ILIKE %s", arg(filter.City)))
	}
	if filter.State != "" {
		conds = append(conds, fmt.Sprintf("UPPER(c.address->>'state') = UPPER(%s)", arg(filter.State)))
	}
	if filter.Active != nil {
		conds = append(conds, fmt.Sprintf("c.active = %s", arg(*filter.Active)))
	}
	if filter.HasTelemedicine != nil {
		conds = append(conds, fmt.Sprintf("COALESCE((c.settings->>'telemedicine_enabled')::boolean, false) = %s", arg(*filter.HasTelemedicine)))
	}
	if filter.HasOnlineBooking != nil {
		conds = append(conds, fmt.Sprintf("COALESCE((c.settings->>'online_booking_enabled')::boolean, false) = %s", arg(*filter.HasOnlineBooking)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *clinicRepository) attachRooms(ctx context.Context, summaries []*model.ClinicSummary, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT id, clinic_id, name, code, floor, description, equipment, active,
		       created_at, updated_at, deleted_at
		FROM rooms
		WHERE clinic_id = ANY($1) AND active
		ORDER BY name
	`
	var rooms []*model.Room
	if err := r.db.SelectContext(ctx, &rooms, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load clinic rooms: %w", err)
	}

	byClinic := make(map[uuid.UUID][]*model.Room, len(ids))
	for _, room := range rooms {
		byClinic[room.ClinicID] = append(byClinic[room.ClinicID], room)
	}
	for _, s := range summaries {
		if clinicRooms, ok := byClinic[s.ID]; ok {
			s.Rooms = clinicRooms
		}
	}
	return nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET legal_name = $1, trade_name = $2, cnes = $3, email = $4, phone = $5,
		    website = $6, address = $7, settings = $8, working_hours = $9,
		    logo_url = $10, brand_color = $11, timezone = $12, active = $13,
		    updated_at = $14
		WHERE id = $15
	`
	clinic.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		clinic.LegalName,
		clinic.TradeName,
		clinic.CNES,
		clinic.Email,
		clinic.Phone,
		clinic.Website,
		clinic.Address,
		clinic.Settings,
		clinic.WorkingHours,
		clinic.LogoURL,
		clinic.BrandColor,
		clinic.Timezone,
		clinic.Active,
		clinic.UpdatedAt,
		clinic.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", translateErr(err))
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

func (r *clinicRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE clinics
		SET active = false, deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete clinic: %w", err)
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

func (r *clinicRepository) Counts(ctx context.Context, clinicID uuid.UUID) (*model.ClinicCounts, error) {
	query := `SELECT ` + clinicCountColumns + ` FROM clinics c WHERE c.id = $1`
	var counts model.ClinicCounts
	if err := r.db.GetContext(ctx, &counts, query, clinicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinic counts: %w", err)
	}
	return &counts, nil
}
