package events

import (
	"time"

	"github.com/spec-kit/docdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionStarted     EventType = "session_started"
	EventSessionEnded       EventType = "session_ended"
	EventSessionExpired     EventType = "session_expired"
	EventCredentialRejected EventType = "credential_rejected"
	EventLoginRedirect      EventType = "login_redirect"
)

// EndReason says why a session ended.
type EndReason string

const (
	EndReasonLogout    EndReason = "logout"
	EndReasonExpired   EndReason = "expired"
	EndReasonRejected  EndReason = "rejected"
	EndReasonBootstrap EndReason = "bootstrap"
)

// Event represents a session lifecycle event.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Username  string      `json:"username,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	Session *domain.Session `json:"session"`
	// Restored is true when the session came from a persisted token.
	Restored bool `json:"restored"`
}

// SessionEndedPayload payload.
type SessionEndedPayload struct {
	Reason EndReason `json:"reason"`
}

// CredentialRejectedPayload payload.
type CredentialRejectedPayload struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code"`
	// Ready reports whether bootstrap had completed when the rejection arrived.
	Ready bool `json:"ready"`
}

// LoginRedirectPayload payload.
type LoginRedirectPayload struct {
	Target string `json:"target"`
	From   string `json:"from,omitempty"`
	Reason string `json:"reason"`
}
