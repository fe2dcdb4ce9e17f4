package channel

import (
	"context"
	"fmt"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/config"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// mailDialer is the slice of gomail.Dialer the adapter uses, extracted so
// tests can fake the SMTP round trip.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
	Dial() (gomail.SendCloser, error)
}

// EmailAdapter wraps one SMTP provider behind the common adapter contract.
type EmailAdapter struct {
	dialer mailDialer
	from   string
	log    *zap.Logger
}

func NewEmailAdapter(cfg *config.SMTPConfig, log *zap.Logger) *EmailAdapter {
	return &EmailAdapter{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

func (a *EmailAdapter) Name() string {
	return domain.ChannelEmail
}

func (a *EmailAdapter) Deliver(ctx context.Context, rcpt Recipient, title, message string, payload map[string]string) (bool, string) {
	if rcpt.Email == "" {
		return false, "recipient has no email address"
	}
	m := gomail.NewMessage()
	m.SetHeader("From", a.from)
	m.SetAddressHeader("To", rcpt.Email, rcpt.Name)
	m.SetHeader("Subject", title)
	m.SetBody("text/plain", message)
	if url := payload["action_url"]; url != "" {
		m.SetBody("text/plain", message+"\n\n"+url)
	}

	// gomail has no context support, so the send runs in a goroutine and the
	// caller's deadline bounds the wait. A hung SMTP server must not stall a
	// worker pass.
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("smtp send panicked: %v", r)
			}
		}()
		done <- a.dialer.DialAndSend(m)
	}()
	select {
	case err := <-done:
		if err != nil {
			a.log.Warn("email send failed", zap.String("to", rcpt.Email), zap.Error(err))
			return false, err.Error()
		}
		return true, ""
	case <-ctx.Done():
		return false, "smtp send timed out: " + ctx.Err().Error()
	}
}

// ValidateSettings dials the SMTP server and hangs up without sending.
func (a *EmailAdapter) ValidateSettings(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		closer, err := a.dialer.Dial()
		if err != nil {
			done <- err
			return
		}
		done <- closer.Close()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
