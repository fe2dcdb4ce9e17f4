package channel

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFCM struct {
	failTokens map[string]error
	sent       []string
}

func (f *fakeFCM) Send(_ context.Context, m *messaging.Message) (string, error) {
	if err, ok := f.failTokens[m.Token]; ok {
		return "", err
	}
	f.sent = append(f.sent, m.Token)
	return "msg-id", nil
}

func (f *fakeFCM) SendDryRun(_ context.Context, m *messaging.Message) (string, error) {
	if err, ok := f.failTokens[m.Token]; ok {
		return "", err
	}
	return "msg-id", nil
}

type fakeDevices struct {
	tokens  []string
	deleted []string
	err     error
}

func (f *fakeDevices) TokensForUser(uint) ([]string, error) {
	return f.tokens, f.err
}

func (f *fakeDevices) DeleteToken(token string) error {
	f.deleted = append(f.deleted, token)
	return nil
}

func newTestPushAdapter(client fcmClient, devices deviceTokens) *PushAdapter {
	return &PushAdapter{client: client, devices: devices, log: zap.NewNop()}
}

func TestPushAdapter_DeliverToAllDevices(t *testing.T) {
	fcm := &fakeFCM{}
	a := newTestPushAdapter(fcm, &fakeDevices{tokens: []string{"tok-phone", "tok-tablet"}})

	ok, errMsg := a.Deliver(context.Background(), Recipient{UserID: 1}, "Exam", "Math exam Friday.", map[string]string{"code": "NTF-1"})
	require.True(t, ok)
	assert.Empty(t, errMsg)
	assert.Equal(t, []string{"tok-phone", "tok-tablet"}, fcm.sent)
}

func TestPushAdapter_NoDevices(t *testing.T) {
	a := newTestPushAdapter(&fakeFCM{}, &fakeDevices{})
	ok, errMsg := a.Deliver(context.Background(), Recipient{UserID: 1}, "t", "m", nil)
	assert.False(t, ok)
	assert.Contains(t, errMsg, "no registered devices")
}

func TestPushAdapter_TokenRegistryError(t *testing.T) {
	a := newTestPushAdapter(&fakeFCM{}, &fakeDevices{err: errors.New("db down")})
	ok, errMsg := a.Deliver(context.Background(), Recipient{UserID: 1}, "t", "m", nil)
	assert.False(t, ok)
	assert.Contains(t, errMsg, "db down")
}

func TestPushAdapter_PartialFailureStillSucceeds(t *testing.T) {
	fcm := &fakeFCM{failTokens: map[string]error{"tok-dead": errors.New("internal error")}}
	a := newTestPushAdapter(fcm, &fakeDevices{tokens: []string{"tok-dead", "tok-live"}})

	ok, _ := a.Deliver(context.Background(), Recipient{UserID: 1}, "t", "m", nil)
	assert.True(t, ok, "one reachable device counts as delivered")
	assert.Equal(t, []string{"tok-live"}, fcm.sent)
}

func TestPushAdapter_AllDevicesFail(t *testing.T) {
	fcm := &fakeFCM{failTokens: map[string]error{"a": errors.New("quota exceeded"), "b": errors.New("quota exceeded")}}
	a := newTestPushAdapter(fcm, &fakeDevices{tokens: []string{"a", "b"}})

	ok, errMsg := a.Deliver(context.Background(), Recipient{UserID: 1}, "t", "m", nil)
	assert.False(t, ok)
	assert.Equal(t, "quota exceeded", errMsg)
}

func TestPushAdapter_ValidateSettings(t *testing.T) {
	assert.NoError(t, newTestPushAdapter(&fakeFCM{}, &fakeDevices{}).ValidateSettings(context.Background()))

	down := &fakeFCM{failTokens: map[string]error{"healthcheck-invalid-token": errors.New("unauthenticated")}}
	assert.Error(t, newTestPushAdapter(down, &fakeDevices{}).ValidateSettings(context.Background()))
}
