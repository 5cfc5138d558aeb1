// Package cron runs the scheduled pending-inquiry digest.
package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"sphinx_backend/internal/metrics"
	"sphinx_backend/internal/service"
)

const minInterval = 23 * time.Hour

// PendingCounter reports how many inquiries still have status "new".
type PendingCounter interface {
	Pending(ctx context.Context) (service.PendingCounts, error)
}

// DigestSender emails the operator a summary.
type DigestSender interface {
	SendPendingDigest(ctx context.Context, contacts, quotes int64) error
}

// PendingDigest emails the operator when contacts or quotes are waiting. Runs are
// serialised and a run within 23h of the last delivered digest is skipped.
type PendingDigest struct {
	counter PendingCounter
	sender  DigestSender
	log     *logrus.Entry
	now     func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

func NewPendingDigest(counter PendingCounter, sender DigestSender, log *logrus.Entry) *PendingDigest {
	return &PendingDigest{counter: counter, sender: sender, log: log, now: time.Now}
}

// Run results, also used as metric labels.
const (
	ResultSent    = "sent"
	ResultEmpty   = "empty"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Run performs one digest pass and reports what happened.
func (d *PendingDigest) Run(ctx context.Context) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := d.run(ctx)
	metrics.RecordDigestRun(result)
	return result
}

func (d *PendingDigest) run(ctx context.Context) string {
	now := d.now()
	if !d.lastRun.IsZero() && now.Sub(d.lastRun) < minInterval {
		d.log.Info("pending digest already sent, skipping")
		return ResultSkipped
	}

	counts, err := d.counter.Pending(ctx)
	if err != nil {
		d.log.WithError(err).Error("count pending inquiries")
		return ResultFailed
	}
	if counts.Empty() {
		d.log.Debug("no pending inquiries")
		return ResultEmpty
	}

	if err := d.sender.SendPendingDigest(ctx, counts.Contacts, counts.Quotes); err != nil {
		d.log.WithError(err).Warn("send pending digest")
		return ResultFailed
	}
	d.lastRun = now
	d.log.WithFields(logrus.Fields{"contacts": counts.Contacts, "quotes": counts.Quotes}).Info("pending digest sent")
	return ResultSent
}

// Start schedules the digest on spec (standard five-field cron syntax). The caller
// stops the returned scheduler on shutdown.
func Start(spec string, digest *PendingDigest, log *logrus.Entry) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		digest.Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("could not schedule pending digest %q: %w", spec, err)
	}

	c.Start()
	log.WithField("schedule", spec).Info("pending digest cron initialized")
	return c, nil
}
