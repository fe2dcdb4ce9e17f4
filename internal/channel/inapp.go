package channel

import (
	"context"
	"strconv"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/ws"

	"go.uber.org/zap"
)

// InAppAdapter pushes to the recipient's live websocket connections.
// Fire-and-forget: an offline user is still a successful delivery because the
// persisted recipient row is what the client fetches on next open.
type InAppAdapter struct {
	hub *ws.Hub
	log *zap.Logger
}

func NewInAppAdapter(hub *ws.Hub, log *zap.Logger) *InAppAdapter {
	return &InAppAdapter{hub: hub, log: log}
}

func (a *InAppAdapter) Name() string {
	return domain.ChannelInApp
}

func (a *InAppAdapter) Deliver(_ context.Context, rcpt Recipient, title, message string, payload map[string]string) (bool, string) {
	env := ws.Envelope{
		Type:    "notification",
		Title:   title,
		Message: message,
		Data:    payload,
	}
	if payload != nil {
		env.Category = payload["category"]
		env.Priority = payload["priority"]
		env.ActionURL = payload["action_url"]
		env.Code = payload["code"]
		if id, err := strconv.ParseUint(payload["notification_id"], 10, 64); err == nil {
			env.NotificationID = uint(id)
		}
	}
	reached := a.hub.SendToUser(rcpt.UserID, env)
	a.log.Debug("in-app push",
		zap.Uint("user_id", rcpt.UserID),
		zap.Int("connections", reached),
	)
	return true, ""
}

func (a *InAppAdapter) ValidateSettings(context.Context) error {
	return nil
}
