package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/internal/repository"
)

// Service writes the append-only audit trail of mutating actions.
type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

// LogOptions carries optional before/after snapshots and request metadata.
type LogOptions struct {
	OldValues interface{}
	NewValues interface{}
	IPAddress string
	UserAgent string
}

// Log creates an audit log entry. Snapshots are marshalled as-is; callers
// sanitize relations and aggregates before passing them in.
func (s *Service) Log(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, description string, opts *LogOptions) error {
	entry := &model.AuditLog{
		ID:          uuid.New(),
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if opts != nil {
		var err error
		if opts.OldValues != nil {
			if entry.OldValues, err = json.Marshal(opts.OldValues); err != nil {
				return fmt.Errorf("failed to marshal old values: %w", err)
			}
		}
		if opts.NewValues != nil {
			if entry.NewValues, err = json.Marshal(opts.NewValues); err != nil {
				return fmt.Errorf("failed to marshal new values: %w", err)
			}
		}
		entry.IPAddress = opts.IPAddress
		entry.UserAgent = opts.UserAgent
	}

	return s.repo.Create(ctx, entry)
}

func (s *Service) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, int64, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
