package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/channel"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationStore persists a notification together with its recipient
// fan-out in one transaction.
type NotificationStore interface {
	CreateWithFanout(n *models.Notification, fanouts []repository.RecipientFanout) error
	GetByID(id uint) (*models.Notification, error)
}

// JobCanceller revokes the pending queue jobs of a scheduled notification.
type JobCanceller interface {
	CancelPending(notificationID uint) (int64, error)
}

// SendRequest is the single entry shape for both template and ad-hoc sends.
// Zero-valued optional fields fall back to template or system defaults.
type SendRequest struct {
	TemplateCode string            `json:"template_code,omitempty"`
	Title        string            `json:"title,omitempty"`
	Message      string            `json:"message,omitempty"`
	Recipients   RecipientSpec     `json:"recipients"`
	Variables    map[string]string `json:"variables,omitempty"`
	Category     string            `json:"category,omitempty"`
	Priority     string            `json:"priority,omitempty"`
	Channels     []string          `json:"channels,omitempty"`
	SenderID     uint              `json:"-"`
	SenderName   string            `json:"-"`
	SenderRole   string            `json:"-"`
	BranchID     *uint             `json:"branch_id,omitempty"`
	ScheduleFor  *time.Time        `json:"schedule_for,omitempty"`
	ActionURL    string            `json:"action_url,omitempty"`
	ActionText   string            `json:"action_text,omitempty"`
	Attachments  []string          `json:"attachments,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SendResult is always returned, even on failure: callers inspect Success
// instead of handling errors, so a broken notification pipeline can never
// abort the business operation that triggered it.
type SendResult struct {
	Success          bool           `json:"success"`
	NotificationID   uint           `json:"notification_id,omitempty"`
	NotificationCode string         `json:"notification_code,omitempty"`
	RecipientCount   int            `json:"recipient_count"`
	Queued           int            `json:"queued"`
	Delivery         map[string]int `json:"delivery,omitempty"` // channel -> recipients targeted
	Message          string         `json:"message,omitempty"`
}

// Notifier orchestrates the full send pipeline: template lookup, recipient
// resolution, rendering, atomic persistence of the fan-out, synchronous
// in-app delivery and queueing of the async channels.
type Notifier struct {
	templates *TemplateStore
	resolver  *Resolver
	renderer  *Renderer
	store     NotificationStore
	queue     JobCanceller
	adapters  map[string]channel.Adapter

	maxAttempts int
	kick        func() // wakes the queue worker after new jobs land
	now         func() time.Time
	log         *zap.Logger
}

func NewNotifier(
	templates *TemplateStore,
	resolver *Resolver,
	renderer *Renderer,
	store NotificationStore,
	queue JobCanceller,
	adapters map[string]channel.Adapter,
	maxAttempts int,
	kick func(),
	log *zap.Logger,
) *Notifier {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if kick == nil {
		kick = func() {}
	}
	return &Notifier{
		templates:   templates,
		resolver:    resolver,
		renderer:    renderer,
		store:       store,
		queue:       queue,
		adapters:    adapters,
		maxAttempts: maxAttempts,
		kick:        kick,
		now:         time.Now,
		log:         log,
	}
}

// SendFromTemplate renders a stored template and dispatches it. Any panic in
// the pipeline is converted into a failed result.
func (n *Notifier) SendFromTemplate(ctx context.Context, req SendRequest) (res SendResult) {
	defer n.recoverInto(&res)

	var branchID uint
	if req.BranchID != nil {
		branchID = *req.BranchID
	}
	tmpl, err := n.templates.Get(ctx, req.TemplateCode, branchID)
	if err != nil {
		n.log.Error("template lookup failed",
			zap.String("code", req.TemplateCode), zap.Error(err))
		return failure(fmt.Sprintf("template %q not available: %v", req.TemplateCode, err))
	}

	if req.Category == "" {
		req.Category = tmpl.Category
	}
	if req.Priority == "" {
		req.Priority = tmpl.DefaultPriority
	}
	if len(req.Channels) == 0 {
		req.Channels = tmpl.ChannelList()
	}
	req.Title = n.renderer.Render(tmpl.TitleTemplate, req.Variables, req.SenderName)
	req.Message = n.renderer.Render(tmpl.BodyTemplate, req.Variables, req.SenderName)

	res = n.dispatch(ctx, req, &tmpl.ID)
	if res.Success {
		if err := n.templates.MarkUsed(tmpl.ID); err != nil {
			n.log.Warn("template usage bookkeeping failed",
				zap.Uint("template_id", tmpl.ID), zap.Error(err))
		}
	}
	return res
}

// SendImmediate dispatches caller-provided title and message without any
// template involvement.
func (n *Notifier) SendImmediate(ctx context.Context, req SendRequest) (res SendResult) {
	defer n.recoverInto(&res)

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		return failure("title and message are required")
	}
	if req.Category == "" {
		req.Category = domain.CategoryAnnouncement
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityNormal
	}
	if len(req.Channels) == 0 {
		req.Channels = []string{domain.ChannelInApp}
	}
	return n.dispatch(ctx, req, nil)
}

// CancelScheduled revokes a future-dated notification's pending jobs. Jobs
// already claimed by the worker are past the point of no return.
func (n *Notifier) CancelScheduled(notificationID uint) (int64, error) {
	cancelled, err := n.queue.CancelPending(notificationID)
	if err != nil {
		return 0, fmt.Errorf("cancel notification %d: %w", notificationID, err)
	}
	n.log.Info("scheduled notification cancelled",
		zap.Uint("notification_id", notificationID),
		zap.Int64("jobs_cancelled", cancelled))
	return cancelled, nil
}

func (n *Notifier) dispatch(ctx context.Context, req SendRequest, templateID *uint) SendResult {
	for _, ch := range req.Channels {
		if !domain.IsChannel(ch) {
			return failure(fmt.Sprintf("unknown channel %q", ch))
		}
	}

	recipients, err := n.resolver.Resolve(req.Recipients, req.Category, req.Priority)
	if err != nil {
		n.log.Error("recipient resolution failed", zap.Error(err))
		return failure(fmt.Sprintf("resolve recipients: %v", err))
	}
	if len(recipients) == 0 {
		// valid outcome: everyone opted out, or the group is empty
		return SendResult{Success: false, Message: "no recipients"}
	}

	now := n.now()
	scheduled := req.ScheduleFor != nil && req.ScheduleFor.After(now)
	dueAt := now
	if scheduled {
		dueAt = *req.ScheduleFor
	}

	notif := n.buildNotification(req, templateID, scheduled)
	fanouts := make([]repository.RecipientFanout, 0, len(recipients))
	delivery := make(map[string]int, len(req.Channels))
	queued := 0

	for _, rc := range recipients {
		fo := repository.RecipientFanout{
			Recipient: models.NotificationRecipient{
				UserID:   rc.UserID,
				UserName: rc.Name,
				UserRole: rc.Role,
				Email:    rc.Email,
				Phone:    rc.Phone,
				BranchID: rc.BranchID,
			},
		}
		for _, ch := range n.activeChannels(req.Channels, rc) {
			delivery[ch]++
			if !scheduled && ch == domain.ChannelInApp {
				// delivered synchronously right after the transaction commits
				fo.Recipient.SetChannelStatus(ch, domain.DeliverySent)
				continue
			}
			fo.Recipient.SetChannelStatus(ch, domain.DeliveryScheduled)
			fo.Jobs = append(fo.Jobs, models.QueueJob{
				UserID:       rc.UserID,
				Channel:      ch,
				Priority:     req.Priority,
				Title:        req.Title,
				Message:      req.Message,
				Payload:      n.jobPayload(notif, req),
				ScheduledFor: dueAt,
				MaxAttempts:  n.maxAttempts,
				Status:       domain.JobScheduled,
			})
			queued++
		}
		fanouts = append(fanouts, fo)
	}
	notif.TotalRecipients = len(fanouts)

	if err := n.store.CreateWithFanout(notif, fanouts); err != nil {
		n.log.Error("notification persistence failed",
			zap.String("code", notif.Code), zap.Error(err))
		return failure(fmt.Sprintf("persist notification: %v", err))
	}

	if !scheduled {
		n.deliverInApp(ctx, notif, fanouts)
	}
	if queued > 0 {
		n.kick()
	}

	n.log.Info("notification dispatched",
		zap.String("code", notif.Code),
		zap.String("category", notif.Category),
		zap.Int("recipients", len(fanouts)),
		zap.Int("queued", queued),
		zap.Bool("scheduled", scheduled))

	return SendResult{
		Success:          true,
		NotificationID:   notif.ID,
		NotificationCode: notif.Code,
		RecipientCount:   len(fanouts),
		Queued:           queued,
		Delivery:         delivery,
	}
}

func (n *Notifier) buildNotification(req SendRequest, templateID *uint, scheduled bool) *models.Notification {
	notif := &models.Notification{
		Code:       notificationCode(),
		TemplateID: templateID,
		Title:      req.Title,
		Message:    req.Message,
		Category:   req.Category,
		Priority:   req.Priority,
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		SenderRole: req.SenderRole,
		BranchID:   req.BranchID,
		Status:     domain.NotificationSent,
		ActionURL:  req.ActionURL,
		ActionText: req.ActionText,
	}
	if scheduled {
		notif.Status = domain.NotificationScheduled
		notif.ScheduledFor = req.ScheduleFor
	}
	notif.SetChannelList(req.Channels)
	notif.SetMetadata(req.Metadata)
	if spec, err := json.Marshal(req.Recipients); err == nil {
		notif.RecipientSpec = string(spec)
	}
	if len(req.Attachments) > 0 {
		notif.Attachments = models.EncodeStringList(req.Attachments)
	}
	return notif
}

// activeChannels intersects the requested channels with the adapters that are
// actually configured and the recipient's channel preferences, preserving the
// canonical channel order.
func (n *Notifier) activeChannels(requested []string, rc ResolvedRecipient) []string {
	want := make(map[string]struct{}, len(requested))
	for _, ch := range requested {
		want[ch] = struct{}{}
	}
	out := make([]string, 0, len(requested))
	for _, ch := range domain.AllChannels {
		if _, ok := want[ch]; !ok {
			continue
		}
		if _, ok := n.adapters[ch]; !ok {
			continue
		}
		if rc.Preference != nil && !rc.Preference.AllowsChannel(ch) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func (n *Notifier) deliverInApp(ctx context.Context, notif *models.Notification, fanouts []repository.RecipientFanout) {
	adapter, ok := n.adapters[domain.ChannelInApp]
	if !ok {
		return
	}
	payload := map[string]string{
		"notification_id": strconv.FormatUint(uint64(notif.ID), 10),
		"code":            notif.Code,
		"category":        notif.Category,
		"priority":        notif.Priority,
		"action_url":      notif.ActionURL,
	}
	for i := range fanouts {
		rcpt := &fanouts[i].Recipient
		if rcpt.InAppStatus != domain.DeliverySent {
			continue
		}
		adapter.Deliver(ctx, channel.Recipient{
			UserID: rcpt.UserID,
			Name:   rcpt.UserName,
			Email:  rcpt.Email,
			Phone:  rcpt.Phone,
		}, notif.Title, notif.Message, payload)
	}
}

func (n *Notifier) jobPayload(notif *models.Notification, req SendRequest) string {
	payload := map[string]string{
		"code":       notif.Code,
		"category":   req.Category,
		"priority":   req.Priority,
		"action_url": req.ActionURL,
	}
	for k, v := range req.Metadata {
		if _, taken := payload[k]; !taken {
			payload[k] = v
		}
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func (n *Notifier) recoverInto(res *SendResult) {
	if r := recover(); r != nil {
		n.log.Error("notification pipeline panicked", zap.Any("panic", r))
		*res = failure(fmt.Sprintf("internal error: %v", r))
	}
}

func failure(msg string) SendResult {
	return SendResult{Success: false, Message: msg}
}

func notificationCode() string {
	return "NTF-" + strings.ToUpper(uuid.NewString()[:8])
}
