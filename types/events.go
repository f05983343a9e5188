package types

import "time"

// AccountEventType names something that happened to an account.
type AccountEventType string

const (
	EventAccountRegistered      AccountEventType = "account.registered"
	EventPasswordResetRequested AccountEventType = "password.reset_requested"
)

// AccountEvent is published for consumers outside the API, such as a mailer.
type AccountEvent struct {
	Type   AccountEventType `json:"type"`
	UserID string           `json:"user_id"`
	Email  string           `json:"email"`
	Name   string           `json:"name"`
	Role   Role             `json:"role"`

	// ResetToken and ExpiresAt are set on password reset requests.
	ResetToken string     `json:"reset_token,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
