package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/channel"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	notification *models.Notification
	fanouts      []repository.RecipientFanout
	err          error
}

func (f *fakeStore) CreateWithFanout(n *models.Notification, fanouts []repository.RecipientFanout) error {
	if f.err != nil {
		return f.err
	}
	n.ID = 101
	for i := range fanouts {
		fanouts[i].Recipient.ID = uint(200 + i)
		fanouts[i].Recipient.NotificationID = n.ID
	}
	f.notification = n
	f.fanouts = fanouts
	return nil
}

func (f *fakeStore) GetByID(uint) (*models.Notification, error) {
	return f.notification, nil
}

type fakeCanceller struct {
	cancelled int64
	gotID     uint
	err       error
}

func (f *fakeCanceller) CancelPending(id uint) (int64, error) {
	f.gotID = id
	return f.cancelled, f.err
}

type fakeAdapter struct {
	mu        sync.Mutex
	name      string
	delivered []channel.Recipient
	panics    bool
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Deliver(_ context.Context, rcpt channel.Recipient, _, _ string, _ map[string]string) (bool, string) {
	if f.panics {
		panic("adapter blew up")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, rcpt)
	return true, ""
}

func (f *fakeAdapter) ValidateSettings(context.Context) error { return nil }

type notifierFixture struct {
	notifier  *Notifier
	store     *fakeStore
	canceller *fakeCanceller
	inApp     *fakeAdapter
	templates *fakeTemplateRepo
	kicked    int
}

func newNotifierFixture(t *testing.T, users []models.User) *notifierFixture {
	t.Helper()
	dir := &fakeDirectory{byID: users, byRoles: users}
	resolver := newTestResolver(dir, &fakePrefs{})

	repo := newFakeTemplateRepo()
	tmplStore := NewTemplateStore(repo, nil, zap.NewNop())
	_, _, err := tmplStore.SeedDefaults(context.Background())
	require.NoError(t, err)

	fx := &notifierFixture{
		store:     &fakeStore{},
		canceller: &fakeCanceller{},
		inApp:     &fakeAdapter{name: domain.ChannelInApp},
		templates: repo,
	}
	adapters := map[string]channel.Adapter{
		domain.ChannelInApp: fx.inApp,
		domain.ChannelEmail: &fakeAdapter{name: domain.ChannelEmail},
		domain.ChannelPush:  &fakeAdapter{name: domain.ChannelPush},
	}
	fx.notifier = NewNotifier(tmplStore, resolver, testRenderer(),
		fx.store, fx.canceller, adapters, 3,
		func() { fx.kicked++ }, zap.NewNop())
	fx.notifier.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	return fx
}

func TestNotifier_SendFromTemplate(t *testing.T) {
	fx := newNotifierFixture(t, []models.User{user(1, domain.RoleParent), user(2, domain.RoleParent)})

	res := fx.notifier.SendFromTemplate(context.Background(), SendRequest{
		TemplateCode: "GRADE_PUBLISHED",
		Recipients:   RecipientSpec{UserIDs: []uint{1, 2}},
		Variables: map[string]string{
			"student_name": "Sara",
			"subject":      "Math",
			"grade":        "A",
			"exam_name":    "Midterm",
		},
		Channels:   []string{domain.ChannelInApp, domain.ChannelEmail},
		SenderID:   9,
		SenderName: "Ms. Alemu",
	})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, uint(101), res.NotificationID)
	assert.NotEmpty(t, res.NotificationCode)
	assert.Equal(t, 2, res.RecipientCount)
	assert.Equal(t, 2, res.Queued, "email goes through the queue")
	assert.Equal(t, 2, res.Delivery[domain.ChannelInApp])
	assert.Equal(t, 2, res.Delivery[domain.ChannelEmail])

	n := fx.store.notification
	require.NotNil(t, n)
	assert.Contains(t, n.Title, "Math")
	assert.NotContains(t, n.Message, "{student_name}")
	assert.Equal(t, domain.NotificationSent, n.Status)
	assert.Equal(t, 2, n.TotalRecipients)

	// in-app delivered synchronously after persist, email jobs queued
	assert.Len(t, fx.inApp.delivered, 2)
	assert.Equal(t, 1, fx.kicked)
	for _, fo := range fx.store.fanouts {
		assert.Equal(t, domain.DeliverySent, fo.Recipient.InAppStatus)
		assert.Equal(t, domain.DeliveryScheduled, fo.Recipient.EmailStatus)
		assert.Equal(t, domain.DeliveryNotApplicable, fo.Recipient.SMSStatus)
		require.Len(t, fo.Jobs, 1)
		assert.Equal(t, domain.ChannelEmail, fo.Jobs[0].Channel)
		assert.Equal(t, 3, fo.Jobs[0].MaxAttempts)
	}

	// template defaults applied and usage recorded
	tmpl, _ := fx.templates.GetByCode("GRADE_PUBLISHED")
	assert.Equal(t, tmpl.Category, n.Category)
	assert.EqualValues(t, 1, tmpl.UsageCount)
}

func TestNotifier_SendFromTemplate_UnknownCode(t *testing.T) {
	fx := newNotifierFixture(t, []models.User{user(1, domain.RoleParent)})

	res := fx.notifier.SendFromTemplate(context.Background(), SendRequest{
		TemplateCode: "DOES_NOT_EXIST",
		Recipients:   RecipientSpec{UserIDs: []uint{1}},
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "DOES_NOT_EXIST")
	assert.Nil(t, fx.store.notification, "nothing may be persisted")
}

func TestNotifier_SendImmediate(t *testing.T) {
	fx := newNotifierFixture(t, []models.User{user(1, domain.RoleStudent)})

	res := fx.notifier.SendImmediate(context.Background(), SendRequest{
		Title:      "Gate closed",
		Message:    "Use the east entrance today.",
		Recipients: RecipientSpec{Group: domain.GroupStudents},
	})

	require.True(t, res.Success, res.Message)
	n := fx.store.notification
	require.NotNil(t, n)
	assert.Equal(t, domain.CategoryAnnouncement, n.Category)
	assert.Equal(t, domain.PriorityNormal, n.Priority)
	assert.Equal(t, []string{domain.ChannelInApp}, n.ChannelList())
	assert.Zero(t, res.Queued)
	assert.Zero(t, fx.kicked)
}

func TestNotifier_SendImmediate_RequiresContent(t *testing.T) {
	fx := newNotifierFixture(t, []models.User{user(1, domain.RoleStudent)})

	res := fx.notifier.SendImmediate(context.Background(), SendRequest{
		Message:    "body only",
		Recipients: RecipientSpec{UserIDs: []uint{1}},
	})
	assert.False(t, res.Success)
}

func TestNotifier_NoRecipientsIsNotAnError(t *testing.T) {
	fx := newNotifierFixture(t, nil)

	res := fx.notifier.SendImmediate(context.Background(), SendRequest{
		Title:      "t",
		Message:    "m",
		Recipients: RecipientSpec{Group: domain.GroupTeachers},
	})
	assert.False(t, res.Success)
	assert.Equal(t, "no recipients", res.Message)
	assert.Nil(t, fx.store.notification)
}

func TestNotifier_UnknownChannelFails(t *testing.T) {
	fx := newNotifierFixture(t, []models.User{user(1, domain.RoleStudent)})

	res := fx.notifier.SendImmediate(context.Background(), SendRequest{
		Title:      "t",
		Message:    "m",
		Recipients: RecipientSpec{UserIDs: []uint{1}},
		Channels:   []string{"CARRIER_PIGEON"},
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "CARRIER_PIGEON")
}

func TestNotifier_UnconfiguredChannelSkipped(t *testing.T) {
	// SMS adapter is absent from the fixture
	fx := newNotifierFixture(t, []models.User{user(1, domain.RoleParent)})

	res := fx.notifier.SendImmediate(context.Background(), SendRequest{
		Title:      "t",
		Message:    "m",
		Recipients: RecipientSpec{UserIDs: []uint{1}},
		Channels:   []string{domain.ChannelInApp, domain.ChannelSMS},
	})
	require.True(t, res.Success)
	assert.Zero(t, res.Delivery[domain.ChannelSMS])
	assert.Equal(t, domain.DeliveryNotApplicable, fx.store.fanouts[0].Recipient.SMSStatus)
}

func TestNotifier_ChannelPreferenceRespected(t *testing.T) {
	noEmail := models.DefaultPreference(1)
	noEmail.EmailEnabled = false

	dir := &fakeDirectory{byID: []models.User{user(1, domain.RoleParent)}}
	resolver := newTestResolver(dir, &fakePrefs{prefs: map[uint]*models.NotificationPreference{1: noEmail}})

	repo := newFakeTemplateRepo()
	tmplStore := NewTemplateStore(repo, nil, zap.NewNop())
	store := &fakeStore{}
	adapters := map[string]channel.Adapter{
		domain.ChannelInApp: &fakeAdapter{name: domain.ChannelInApp},
		domain.ChannelEmail: &fakeAdapter{name: domain.ChannelEmail},
	}
	n := NewNotifier(tmplStore, resolver, testRenderer(), store, &fakeCanceller{}, adapters, 3, nil, zap.NewNop())

	res := n.SendImmediate(context.Background(), SendRequest{
		Title:      "t",
		Message:    "m",
		Recipients: RecipientSpec{UserIDs: []uint{1}},
		Channels:   []string{domain.ChannelInApp, domain.ChannelEmail},
	})
	require.True(t, res.Success)
	assert.Equal(t, domain.DeliveryNotApplicable, store.fanouts[0].Recipient.EmailStatus)
	assert.Equal(t, domain.DeliverySent, store.fanouts[0].Recipient.InAppStatus)
	assert.Zero(t, res.Queued)
}

func TestNotifier_ScheduledSendQueuesEverything(t *testing.T) {
	fx := newNotifierFixture(t, []models.User{user(1, domain.RoleParent)})
	future := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	res := fx.notifier.SendImmediate(context.Background(), SendRequest{
		Title:       "Reminder",
		Message:     "Parent meeting tomorrow.",
		Recipients:  RecipientSpec{UserIDs: []uint{1}},
		Channels:    []string{domain.ChannelInApp, domain.ChannelEmail},
		ScheduleFor: &future,
	})

	require.True(t, res.Success)
	assert.Equal(t, 2, res.Queued, "in-app is queued too for future sends")
	assert.Empty(t, fx.inApp.delivered)

	n := fx.store.notification
	assert.Equal(t, domain.NotificationScheduled, n.Status)
	require.NotNil(t, n.ScheduledFor)

	fo := fx.store.fanouts[0]
	assert.Equal(t, domain.DeliveryScheduled, fo.Recipient.InAppStatus)
	require.Len(t, fo.Jobs, 2)
	for _, job := range fo.Jobs {
		assert.Equal(t, future, job.ScheduledFor)
	}
}

func TestNotifier_PersistenceFailure(t *testing.T) {
	fx := newNotifierFixture(t, []models.User{user(1, domain.RoleParent)})
	fx.store.err = errors.New("connection lost")

	res := fx.notifier.SendImmediate(context.Background(), SendRequest{
		Title:      "t",
		Message:    "m",
		Recipients: RecipientSpec{UserIDs: []uint{1}},
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "persist")
	assert.Empty(t, fx.inApp.delivered, "no delivery without a persisted row")
	assert.Zero(t, fx.kicked)
}

func TestNotifier_PanicBecomesFailureResult(t *testing.T) {
	fx := newNotifierFixture(t, []models.User{user(1, domain.RoleParent)})
	fx.inApp.panics = true

	var res SendResult
	assert.NotPanics(t, func() {
		res = fx.notifier.SendImmediate(context.Background(), SendRequest{
			Title:      "t",
			Message:    "m",
			Recipients: RecipientSpec{UserIDs: []uint{1}},
		})
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "internal error")
}

func TestNotifier_CancelScheduled(t *testing.T) {
	fx := newNotifierFixture(t, nil)
	fx.canceller.cancelled = 4

	n, err := fx.notifier.CancelScheduled(77)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, uint(77), fx.canceller.gotID)
}
