package channel

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sendErr error
	dialErr error
	sent    []*gomail.Message
	block   chan struct{} // when set, DialAndSend blocks until closed
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.block != nil {
		<-f.block
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, m...)
	return nil
}

func (f *fakeDialer) Dial() (gomail.SendCloser, error) {
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	return nopSendCloser{}, nil
}

type nopSendCloser struct{}

func (nopSendCloser) Send(string, []string, io.WriterTo) error { return nil }
func (nopSendCloser) Close() error                             { return nil }

func newTestEmailAdapter(d mailDialer) *EmailAdapter {
	return &EmailAdapter{dialer: d, from: "noreply@schoolhub.local", log: zap.NewNop()}
}

func TestEmailAdapter_Deliver(t *testing.T) {
	d := &fakeDialer{}
	a := newTestEmailAdapter(d)

	ok, errMsg := a.Deliver(context.Background(), Recipient{
		UserID: 1, Name: "Sara", Email: "sara@example.com",
	}, "Fee due", "Pay by Friday.", nil)

	require.True(t, ok)
	assert.Empty(t, errMsg)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"Fee due"}, d.sent[0].GetHeader("Subject"))
}

func TestEmailAdapter_MissingAddress(t *testing.T) {
	a := newTestEmailAdapter(&fakeDialer{})
	ok, errMsg := a.Deliver(context.Background(), Recipient{UserID: 1}, "t", "m", nil)
	assert.False(t, ok)
	assert.Contains(t, errMsg, "no email address")
}

func TestEmailAdapter_ProviderErrorNormalized(t *testing.T) {
	a := newTestEmailAdapter(&fakeDialer{sendErr: errors.New("550 mailbox unavailable")})
	ok, errMsg := a.Deliver(context.Background(), Recipient{Email: "x@example.com"}, "t", "m", nil)
	assert.False(t, ok)
	assert.Equal(t, "550 mailbox unavailable", errMsg)
}

func TestEmailAdapter_ContextDeadlineBoundsHungServer(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	a := newTestEmailAdapter(&fakeDialer{block: block})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ok, errMsg := a.Deliver(ctx, Recipient{Email: "x@example.com"}, "t", "m", nil)
	assert.False(t, ok)
	assert.Contains(t, errMsg, "timed out")
}

func TestEmailAdapter_ValidateSettings(t *testing.T) {
	assert.NoError(t, newTestEmailAdapter(&fakeDialer{}).ValidateSettings(context.Background()))

	bad := newTestEmailAdapter(&fakeDialer{dialErr: errors.New("connection refused")})
	assert.Error(t, bad.ValidateSettings(context.Background()))
}
