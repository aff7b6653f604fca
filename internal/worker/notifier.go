package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/healthflow/clinic-api/internal/email"
	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/pkg/logger"
	"github.com/healthflow/clinic-api/pkg/messaging"
)

// Notifier listens for clinic lifecycle events on the broker and mails
// the platform admin.
type Notifier struct {
	broker     messaging.Broker
	sender     email.Sender
	adminEmail string
	logger     *logger.Logger
}

func NewNotifier(broker messaging.Broker, sender email.Sender, adminEmail string, log *logger.Logger) *Notifier {
	return &Notifier{
		broker:     broker,
		sender:     sender,
		adminEmail: adminEmail,
		logger:     log,
	}
}

// Start subscribes to the lifecycle channels and blocks until the context
// is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	created, err := n.broker.Subscribe(ctx, model.EventClinicCreated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.EventClinicCreated, err)
	}
	deleted, err := n.broker.Subscribe(ctx, model.EventClinicDeleted)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.EventClinicDeleted, err)
	}

	n.logger.Info("starting clinic lifecycle notifier")

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("shutting down clinic lifecycle notifier")
			return nil
		case msg, ok := <-created:
			if !ok {
				created = nil
				continue
			}
			n.notifyCreated(msg)
		case msg, ok := <-deleted:
			if !ok {
				deleted = nil
				continue
			}
			n.notifyDeleted(msg)
		}
	}
}

// clinicEvent holds the fields the notifier cares about; the payloads
// carry more, which is ignored.
type clinicEvent struct {
	ID        string `json:"id"`
	TradeName string `json:"trade_name"`
	CNPJ      string `json:"cnpj"`
}

func (n *Notifier) notifyCreated(payload []byte) {
	event, err := decodeClinicEvent(payload)
	if err != nil {
		n.logger.Error(err, "failed to decode clinic.created payload")
		return
	}

	subject := fmt.Sprintf("Nova clínica cadastrada: %s", event.TradeName)
	body := fmt.Sprintf("A clínica %s (CNPJ %s) foi cadastrada na plataforma.\nID: %s\n", event.TradeName, event.CNPJ, event.ID)
	if err := n.sender.Send(n.adminEmail, subject, body); err != nil {
		n.logger.Error(err, "failed to send clinic.created notification", "clinic_id", event.ID)
	}
}

func (n *Notifier) notifyDeleted(payload []byte) {
	event, err := decodeClinicEvent(payload)
	if err != nil {
		n.logger.Error(err, "failed to decode clinic.deleted payload")
		return
	}

	subject := "Clínica desativada"
	body := fmt.Sprintf("A clínica %s foi desativada na plataforma.\n", event.ID)
	if err := n.sender.Send(n.adminEmail, subject, body); err != nil {
		n.logger.Error(err, "failed to send clinic.deleted notification", "clinic_id", event.ID)
	}
}

func decodeClinicEvent(payload []byte) (*clinicEvent, error) {
	var event clinicEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal clinic event: %w", err)
	}
	return &event, nil
}
