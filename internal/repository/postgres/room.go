package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/internal/repository"
)

type roomRepository struct {
	BaseRepository
}

func NewRoomRepository(base BaseRepository) repository.RoomRepository {
	return &roomRepository{base}
}

const roomColumns = `
	id, clinic_id, name, code, floor, description, equipment, active,
	created_at, updated_at, deleted_at
`

func insertRoom(ctx context.Context, ext sqlx.ExtContext, room *model.Room) error {
	query := `
		INSERT INTO rooms (
			id, clinic_id, name, code, floor, description, equipment, active,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`
	_, err := ext.ExecContext(ctx, query,
		room.ID,
		room.ClinicID,
		room.Name,
		room.Code,
		room.Floor,
		room.Description,
		room.Equipment,
		room.Active,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", translateErr(err))
	}
	return nil
}

func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return insertRoom(ctx, r.db, room)
}

func (r *roomRepository) Get(ctx context.Context, clinicID, roomID uuid.UUID) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 AND clinic_id = $2`
	var room model.Room
	if err := r.db.GetContext(ctx, &room, query, roomID, clinicID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

func (r *roomRepository) Update(ctx context.Context, room *model.Room) error {
	query := `
		UPDATE rooms
		SET name = $1, code = $2, floor = $3, description = $4, equipment = $5,
		    active = $6, updated_at = $7
		WHERE id = $8 AND clinic_id = $9
	`
	room.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		room.Name,
		room.Code,
		room.Floor,
		room.Description,
		room.Equipment,
		room.Active,
		room.UpdatedAt,
		room.ID,
		room.ClinicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", translateErr(err))
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

func (r *roomRepository) Deactivate(ctx context.Context, clinicID, roomID uuid.UUID) error {
	query := `
		UPDATE rooms
		SET active = false, updated_at = $1
		WHERE id = $2 AND clinic_id = $3 AND active
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), roomID, clinicID)
	if err != nil {
		return fmt.Errorf("failed to deactivate room: %w", err)
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

func (r *roomRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID, activeOnly bool) ([]*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE clinic_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY name`

	rooms := []*model.Room{}
	if err := r.db.SelectContext(ctx, &rooms, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}
