// Package order performs the final, failure-tolerant submission of an
// assembled order to the remote order gateway: fail-fast validation,
// bounded retries with capped exponential backoff and jitter, cooperative
// cancellation, and advisory progress reporting.
package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
	"github.com/mmaaza/surgical-mart-sub001/gateway"
	"github.com/mmaaza/surgical-mart-sub001/models"
)

// ProgressFunc receives coarse submission milestones: a 0-100 percentage
// and a short status line. Advisory only; monotonic within one attempt but
// may reset to a lower value when a retry starts.
type ProgressFunc func(percent int, status string)

// RetryPolicy tunes the submission retry loop.
type RetryPolicy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	BackoffFactor   float64
	MaxDelay        time.Duration
	MaxReceiptBytes int64
}

// DefaultRetryPolicy mirrors the marketplace defaults: 3 attempts, 1s base
// delay doubling per attempt, capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		BackoffFactor:   2,
		MaxDelay:        10 * time.Second,
		MaxReceiptBytes: MaxReceiptSize,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.BackoffFactor <= 1 {
		p.BackoffFactor = d.BackoffFactor
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.MaxReceiptBytes <= 0 {
		p.MaxReceiptBytes = d.MaxReceiptBytes
	}
	return p
}

// Result is the terminal outcome of a successful submission.
type Result struct {
	Confirmation *models.OrderConfirmation
	Attempts     int
}

// Submitter drives order submission attempts. Attempts are strictly
// sequential; a new one begins only after the previous attempt reached a
// terminal outcome.
//
// The transport carries no idempotency key: a retry after a client-side
// timeout that the server actually served can create a duplicate order.
// Known gap in the marketplace API, flagged rather than papered over.
type Submitter struct {
	gw     gateway.OrderGateway
	policy RetryPolicy
	logger *zap.Logger
}

// NewSubmitter creates a submitter. Zero policy fields fall back to the
// marketplace defaults.
func NewSubmitter(gw gateway.OrderGateway, policy RetryPolicy, logger *zap.Logger) *Submitter {
	return &Submitter{gw: gw, policy: policy.withDefaults(), logger: logger}
}

// Submit validates and sends the order. Cancelling ctx mid-flight aborts
// the in-flight call and yields a Cancelled outcome, never a network error,
// and no further attempts are made. Terminal failures carry the attempt
// count so callers can tell "failed once" from "failed after retries".
func (s *Submitter) Submit(ctx context.Context, payload models.OrderPayload, receipt *models.ReceiptFile, onProgress ProgressFunc) (*Result, error) {
	report := func(percent int, status string) {
		if onProgress != nil {
			onProgress(percent, status)
		}
	}

	report(5, "validating order")
	if err := ValidatePayload(payload, receipt, s.policy.MaxReceiptBytes); err != nil {
		return nil, err
	}
	report(15, "order validated")
	report(25, "payload assembled")

	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			report(20, fmt.Sprintf("retrying submission (attempt %d of %d)", attempt, s.policy.MaxAttempts))
			if err := s.wait(ctx, s.backoffDelay(attempt-1)); err != nil {
				return nil, s.terminal(apperrors.Cancelled(), attempt-1)
			}
		}

		report(40, "uploading order")
		confirmation, err := s.gw.CreateOrder(ctx, payload, receipt)
		if err == nil {
			report(80, "response received")
			report(100, "order placed")
			s.logger.Info("order submitted",
				zap.String("order_id", confirmation.OrderID),
				zap.Int("attempts", attempt),
			)
			return &Result{Confirmation: confirmation, Attempts: attempt}, nil
		}

		if errors.Is(err, apperrors.ErrCancelled) {
			return nil, s.terminal(err, attempt)
		}
		if !apperrors.Retryable(err) {
			return nil, s.terminal(err, attempt)
		}

		lastErr = err
		s.logger.Warn("order submission attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return nil, s.terminal(lastErr, s.policy.MaxAttempts)
}

// backoffDelay returns the wait before the (retry+1)th attempt:
// min(maxDelay, baseDelay * factor^retry) plus up to 10% jitter, so
// synchronized clients do not retry in lockstep.
func (s *Submitter) backoffDelay(retry int) time.Duration {
	delay := s.policy.BaseDelay
	for i := 1; i < retry; i++ {
		delay = time.Duration(float64(delay) * s.policy.BackoffFactor)
		if delay >= s.policy.MaxDelay {
			break
		}
	}
	if delay > s.policy.MaxDelay {
		delay = s.policy.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/10 + 1))
	return delay + jitter
}

func (s *Submitter) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// terminal stamps the attempt count on the outcome.
func (s *Submitter) terminal(err error, attempts int) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		appErr.Attempts = attempts
		return appErr
	}
	return &apperrors.Error{
		Kind:     apperrors.KindNetwork,
		Message:  "order submission failed",
		Attempts: attempts,
		Err:      err,
	}
}
