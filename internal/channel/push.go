package channel

import (
	"context"
	"fmt"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// fcmClient is the subset of the FCM messaging client the adapter calls.
type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendDryRun(ctx context.Context, message *messaging.Message) (string, error)
}

// deviceTokens abstracts the push-device registry: the adapter reads a user's
// tokens and prunes the ones FCM reports as dead.
type deviceTokens interface {
	TokensForUser(userID uint) ([]string, error)
	DeleteToken(token string) error
}

// PushAdapter delivers mobile push via Firebase Cloud Messaging to every
// device a user has registered.
type PushAdapter struct {
	client  fcmClient
	devices deviceTokens
	log     *zap.Logger
}

// NewPushAdapter builds the FCM client from a service-account file. Returns an
// error (channel stays disabled) when Firebase is not configured properly.
func NewPushAdapter(ctx context.Context, serviceAccountPath string, devices deviceTokens, log *zap.Logger) (*PushAdapter, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &PushAdapter{client: client, devices: devices, log: log}, nil
}

func (a *PushAdapter) Name() string {
	return domain.ChannelPush
}

func (a *PushAdapter) Deliver(ctx context.Context, rcpt Recipient, title, message string, payload map[string]string) (bool, string) {
	tokens, err := a.devices.TokensForUser(rcpt.UserID)
	if err != nil {
		return false, "load device tokens: " + err.Error()
	}
	if len(tokens) == 0 {
		return false, "no registered devices"
	}
	sent := 0
	var lastErr string
	for _, token := range tokens {
		msg := &messaging.Message{
			Notification: &messaging.Notification{
				Title: title,
				Body:  message,
			},
			Data:  payload,
			Token: token,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
			},
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Sound: "default",
					},
				},
			},
		}
		if _, err := a.client.Send(ctx, msg); err != nil {
			if messaging.IsUnregistered(err) {
				// token belongs to an uninstalled app; drop it
				_ = a.devices.DeleteToken(token)
				a.log.Debug("pruned dead fcm token", zap.Uint("user_id", rcpt.UserID))
				lastErr = "token no longer registered"
				continue
			}
			lastErr = err.Error()
			continue
		}
		sent++
	}
	if sent == 0 {
		if lastErr == "" {
			lastErr = "no device accepted the message"
		}
		return false, lastErr
	}
	return true, ""
}

// ValidateSettings runs a dry-run send against a sentinel token. FCM
// rejecting the token still proves credentials and connectivity; transport
// and auth errors do not.
func (a *PushAdapter) ValidateSettings(ctx context.Context) error {
	_, err := a.client.SendDryRun(ctx, &messaging.Message{Token: "healthcheck-invalid-token"})
	if err == nil || messaging.IsUnregistered(err) || errorutils.IsInvalidArgument(err) {
		return nil
	}
	return err
}
