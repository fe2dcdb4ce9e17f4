// Package queue runs the background delivery worker for the notification
// queue: claim a batch of due jobs, push each through its channel adapter,
// and record delivery or schedule a retry.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/channel"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// JobStore is the claim-and-settle surface of the queue repository. ClaimDue
// must be atomic per job: a job returned here is owned by this worker pass.
type JobStore interface {
	ClaimDue(now time.Time, limit int) ([]models.QueueJob, error)
	MarkDelivered(id uint) error
	MarkFailed(id uint, errMsg string) error
	Reschedule(id uint, at time.Time, errMsg string) error
}

// RecipientStore updates per-recipient channel status and the notification's
// aggregate counters as jobs settle.
type RecipientStore interface {
	GetRecipient(id uint) (*models.NotificationRecipient, error)
	SetChannelStatus(recipientID uint, channel, status string) error
	IncrementDelivered(notificationID uint) error
	IncrementFailed(notificationID uint) error
}

type Options struct {
	Interval       time.Duration
	BatchSize      int
	MaxConcurrent  int
	RetryDelay     time.Duration
	DeliverTimeout time.Duration
}

func (o *Options) fill() {
	if o.Interval <= 0 {
		o.Interval = 30 * time.Second
	}
	if o.BatchSize <= 0 || o.BatchSize > 100 {
		o.BatchSize = 100
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 50
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 5 * time.Minute
	}
	if o.DeliverTimeout <= 0 {
		o.DeliverTimeout = 20 * time.Second
	}
}

// Worker drains due queue jobs on a fixed interval, or immediately when
// kicked after a new fan-out lands. One job's failure never touches its
// batch-mates.
type Worker struct {
	jobs       JobStore
	recipients RecipientStore
	adapters   map[string]channel.Adapter
	opts       Options
	kick       chan struct{}
	now        func() time.Time
	log        *zap.Logger
}

func NewWorker(jobs JobStore, recipients RecipientStore, adapters map[string]channel.Adapter, opts Options, log *zap.Logger) *Worker {
	opts.fill()
	return &Worker{
		jobs:       jobs,
		recipients: recipients,
		adapters:   adapters,
		opts:       opts,
		kick:       make(chan struct{}, 1),
		now:        time.Now,
		log:        log,
	}
}

// Kick asks the worker to process a pass as soon as possible. Safe to call
// from any goroutine; extra kicks while one is pending are coalesced.
func (w *Worker) Kick() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Run processes passes until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	w.log.Info("queue worker started",
		zap.Duration("interval", w.opts.Interval),
		zap.Int("batch_size", w.opts.BatchSize))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("queue worker stopped")
			return
		case <-ticker.C:
		case <-w.kick:
		}
		if n, err := w.ProcessPass(ctx); err != nil {
			w.log.Error("queue pass failed", zap.Error(err))
		} else if n > 0 {
			w.log.Debug("queue pass complete", zap.Int("jobs", n))
		}
	}
}

// ProcessPass claims one batch of due jobs and settles every one of them.
// Returns the number of jobs claimed.
func (w *Worker) ProcessPass(ctx context.Context) (int, error) {
	jobs, err := w.jobs.ClaimDue(w.now(), w.opts.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim due jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	g := new(errgroup.Group)
	g.SetLimit(w.opts.MaxConcurrent)
	for i := range jobs {
		job := jobs[i]
		g.Go(func() error {
			w.processJob(ctx, job)
			return nil
		})
	}
	_ = g.Wait()
	return len(jobs), nil
}

// processJob settles exactly one job. All failure paths are absorbed here so
// a bad job cannot poison the batch.
func (w *Worker) processJob(ctx context.Context, job models.QueueJob) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("job processing panicked",
				zap.Uint("job_id", job.ID), zap.Any("panic", r))
			w.settleFailure(job, fmt.Sprintf("panic: %v", r))
		}
	}()

	adapter, ok := w.adapters[job.Channel]
	if !ok {
		w.settleFailure(job, fmt.Sprintf("channel %s not configured", job.Channel))
		return
	}

	rcpt, err := w.recipients.GetRecipient(job.RecipientID)
	if err != nil {
		w.settleFailure(job, fmt.Sprintf("load recipient %d: %v", job.RecipientID, err))
		return
	}

	var payload map[string]string
	if job.Payload != "" {
		if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
			w.log.Warn("job payload corrupt, delivering without it",
				zap.Uint("job_id", job.ID), zap.Error(err))
		}
	}

	dctx, cancel := context.WithTimeout(ctx, w.opts.DeliverTimeout)
	ok, errMsg := adapter.Deliver(dctx, channel.Recipient{
		UserID: rcpt.UserID,
		Name:   rcpt.UserName,
		Email:  rcpt.Email,
		Phone:  rcpt.Phone,
	}, job.Title, job.Message, payload)
	cancel()

	if ok {
		w.settleSuccess(job)
		return
	}
	w.settleFailure(job, errMsg)
}

func (w *Worker) settleSuccess(job models.QueueJob) {
	if err := w.jobs.MarkDelivered(job.ID); err != nil {
		w.log.Error("mark delivered failed", zap.Uint("job_id", job.ID), zap.Error(err))
		return
	}
	if err := w.recipients.SetChannelStatus(job.RecipientID, job.Channel, domain.DeliveryDelivered); err != nil {
		w.log.Warn("recipient status update failed",
			zap.Uint("recipient_id", job.RecipientID), zap.Error(err))
	}
	if err := w.recipients.IncrementDelivered(job.NotificationID); err != nil {
		w.log.Warn("delivered counter update failed",
			zap.Uint("notification_id", job.NotificationID), zap.Error(err))
	}
}

// settleFailure retries with linear backoff (delay * attempt count) until the
// attempt budget is spent, then records a terminal failure.
func (w *Worker) settleFailure(job models.QueueJob, errMsg string) {
	if job.Attempts < job.MaxAttempts {
		retryAt := w.now().Add(w.opts.RetryDelay * time.Duration(job.Attempts))
		if err := w.jobs.Reschedule(job.ID, retryAt, errMsg); err != nil {
			w.log.Error("reschedule failed", zap.Uint("job_id", job.ID), zap.Error(err))
		}
		w.log.Info("delivery retry scheduled",
			zap.Uint("job_id", job.ID),
			zap.String("channel", job.Channel),
			zap.Int("attempt", job.Attempts),
			zap.Time("retry_at", retryAt),
			zap.String("error", errMsg))
		return
	}

	if err := w.jobs.MarkFailed(job.ID, errMsg); err != nil {
		w.log.Error("mark failed failed", zap.Uint("job_id", job.ID), zap.Error(err))
		return
	}
	if err := w.recipients.SetChannelStatus(job.RecipientID, job.Channel, domain.DeliveryFailed); err != nil {
		w.log.Warn("recipient status update failed",
			zap.Uint("recipient_id", job.RecipientID), zap.Error(err))
	}
	if err := w.recipients.IncrementFailed(job.NotificationID); err != nil {
		w.log.Warn("failed counter update failed",
			zap.Uint("notification_id", job.NotificationID), zap.Error(err))
	}
	w.log.Warn("delivery permanently failed",
		zap.Uint("job_id", job.ID),
		zap.String("channel", job.Channel),
		zap.Int("attempts", job.Attempts),
		zap.String("error", errMsg))
}
