package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ecocycle/connect/internal/mq"
	"github.com/ecocycle/connect/types"
)

// AccountEvents publishes account events to a broker channel. A nil
// *AccountEvents publishes nothing.
type AccountEvents struct {
	mq      *mq.MQ
	channel string
	clock   clockwork.Clock
	logger  *slog.Logger
}

func NewAccountEvents(queue *mq.MQ, channel string, clock clockwork.Clock, logger *slog.Logger) *AccountEvents {
	if queue == nil {
		return nil
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountEvents{mq: queue, channel: channel, clock: clock, logger: logger}
}

// Registered announces a new account.
func (e *AccountEvents) Registered(ctx context.Context, account types.Identity) {
	e.publish(ctx, newAccountEvent(types.EventAccountRegistered, account))
}

// ResetRequested hands a reset token to whoever delivers it to the user.
func (e *AccountEvents) ResetRequested(ctx context.Context, account types.Identity, token string, expiresAt time.Time) {
	event := newAccountEvent(types.EventPasswordResetRequested, account)
	event.ResetToken = token
	event.ExpiresAt = &expiresAt
	e.publish(ctx, event)
}

// Publishing is best effort: a broker outage must not fail the request.
func (e *AccountEvents) publish(ctx context.Context, event types.AccountEvent) {
	if e == nil {
		return
	}
	event.OccurredAt = e.clock.Now().UTC()
	id, err := e.mq.PublishJSON(ctx, e.channel, event, map[string]string{"type": string(event.Type)})
	if err != nil {
		e.logger.Warn("publish account event", "type", event.Type, "user_id", event.UserID, "error", err)
		return
	}
	e.logger.Debug("account event published", "type", event.Type, "message_id", id)
}

func newAccountEvent(kind types.AccountEventType, account types.Identity) types.AccountEvent {
	return types.AccountEvent{
		Type:   kind,
		UserID: account.ID,
		Email:  account.Email,
		Name:   account.Name,
		Role:   account.Role,
	}
}

// LogMailer returns a handler that writes outgoing account mail to the log.
// It stands in for a mail relay during development.
func LogMailer(logger *slog.Logger) mq.Handler {
	return func(ctx context.Context, msg mq.Message) error {
		var event types.AccountEvent
		if err := msg.Decode(&event); err != nil {
			logger.Error("malformed account event", "message_id", msg.ID, "error", err)
			return nil
		}
		switch event.Type {
		case types.EventAccountRegistered:
			logger.Info("mail: welcome", "to", event.Email, "name", event.Name)
		case types.EventPasswordResetRequested:
			logger.Info("mail: password reset", "to", event.Email, "reset_token", event.ResetToken)
		default:
			return fmt.Errorf("unknown account event %q", event.Type)
		}
		return nil
	}
}
