// Package channel holds one delivery adapter per notification channel.
// Adapters never panic and never let provider SDK errors escape: every
// outcome is reported as (ok, errMsg) so failures stay visible as data and
// drive the queue's retry bookkeeping.
package channel

import (
	"context"
)

// Recipient is the delivery-time snapshot an adapter needs. It comes from the
// persisted recipient row, not a live user lookup.
type Recipient struct {
	UserID uint
	Name   string
	Email  string
	Phone  string
}

type Adapter interface {
	Name() string
	// Deliver transmits one message to one recipient. ok=false carries the
	// normalized provider error in errMsg; errMsg is empty on success.
	Deliver(ctx context.Context, rcpt Recipient, title, message string, payload map[string]string) (ok bool, errMsg string)
	// ValidateSettings performs a lightweight connectivity check without
	// sending a real message.
	ValidateSettings(ctx context.Context) error
}
