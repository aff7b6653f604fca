package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/internal/repository"
	"github.com/healthflow/clinic-api/pkg/messaging"
)

// Service implements messaging.Publisher by writing outbox rows. The row
// shares the mutation's failure domain; the worker relays it to the broker.
type Service struct {
	repo repository.OutboxRepository
}

var _ messaging.Publisher = (*Service)(nil)

func NewService(repo repository.OutboxRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Publish(ctx context.Context, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return s.repo.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	})
}
