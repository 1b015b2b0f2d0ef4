package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/events"
)

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice texts.
const (
	MessageLoginSucceeded = "Authentication successful"
	MessageSessionExpired = "Session expired, please log in again"
)

// Notice is a short message shown to the user.
type Notice struct {
	Level   NoticeLevel
	Message string
	At      time.Time
}

// Notifier displays notices.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NoticeService turns session events into notices.
type NoticeService struct {
	dispatcher events.Dispatcher
	notifier   Notifier
	logger     *zap.Logger
}

// NewNoticeService creates the service.
func NewNoticeService(dispatcher events.Dispatcher, notifier Notifier, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events and returns a function that
// removes the subscriptions.
func (n *NoticeService) RegisterHandlers() func() {
	if n.dispatcher == nil || n.notifier == nil {
		return func() {}
	}
	unsubscribe := []func(){
		n.dispatcher.Subscribe(events.EventSessionStarted, n.handleSessionStarted),
		n.dispatcher.Subscribe(events.EventSessionExpired, n.handleSessionExpired),
	}
	return func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}
}

// A restored session is silent; only an interactive login is announced.
func (n *NoticeService) handleSessionStarted(ctx context.Context, event events.Event) error {
	if payload, ok := event.Payload.(events.SessionStartedPayload); ok && payload.Restored {
		return nil
	}
	n.logger.Debug("SessionStarted", zap.String("username", event.Username))
	n.notifier.Notify(ctx, Notice{Level: NoticeSuccess, Message: MessageLoginSucceeded, At: event.Timestamp})
	return nil
}

func (n *NoticeService) handleSessionExpired(ctx context.Context, event events.Event) error {
	n.logger.Debug("SessionExpired", zap.String("username", event.Username))
	n.notifier.Notify(ctx, Notice{Level: NoticeWarning, Message: MessageSessionExpired, At: event.Timestamp})
	return nil
}
