package service

import (
	"context"
	"sync"
	"time"

	"github.com/mwantia/goshare/internal/gateway"
	"github.com/mwantia/goshare/pkg/db/models"
	"github.com/mwantia/goshare/pkg/db/store"
	"github.com/mwantia/goshare/pkg/log"
)

type timerKey struct {
	ChatID    int64
	MessageID int
}

// SweepResult summarizes one pass over the due delete-queue entries.
type SweepResult struct {
	Due     int
	Deleted int
	Failed  int
}

// ExpiryScheduler removes delivered messages after their configured
// lifetime. Every scheduled deletion is persisted before a timer is armed;
// the in-process timers are a latency optimization, the periodic sweep over
// the durable queue is the actual guarantee and recovers work lost to a
// restart.
type ExpiryScheduler struct {
	store   store.Store
	gw      gateway.Gateway
	log     log.LoggerService
	sweep   time.Duration
	deleted string // notice template sent after a successful remote delete

	mu      sync.Mutex
	timers  map[timerKey]*time.Timer
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewExpiryScheduler creates a stopped scheduler. deletedNotice may be empty
// to suppress the post-delete notice.
func NewExpiryScheduler(s store.Store, gw gateway.Gateway, sweepInterval time.Duration, deletedNotice string, logger log.LoggerService) *ExpiryScheduler {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &ExpiryScheduler{
		store:   s,
		gw:      gw,
		log:     logger,
		sweep:   sweepInterval,
		deleted: deletedNotice,
		timers:  make(map[timerKey]*time.Timer),
	}
}

// Start runs an immediate recovery sweep and then sweeps periodically until
// Stop or context cancellation.
func (e *ExpiryScheduler) Start(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.running = true
	e.cancel = cancel
	e.done = make(chan struct{})
	e.mu.Unlock()

	go e.run(runCtx)
}

func (e *ExpiryScheduler) run(ctx context.Context) {
	defer close(e.done)

	// Recovery pass for deletions that came due while the process was down.
	if result, err := e.SweepOnce(ctx); err != nil {
		e.log.Warn("Initial expiry sweep failed: %v", err)
	} else if result.Due > 0 {
		e.log.Info("Recovered %d overdue deletion(s) at startup", result.Due)
	}

	ticker := time.NewTicker(e.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.SweepOnce(ctx); err != nil {
				e.log.Warn("Expiry sweep failed: %v", err)
			}
		}
	}
}

// Stop halts the sweep loop and drops all armed timers. Queue rows stay in
// place and are picked up by the next Start's recovery sweep.
func (e *ExpiryScheduler) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel := e.cancel
	done := e.done
	for key, timer := range e.timers {
		timer.Stop()
		delete(e.timers, key)
	}
	e.mu.Unlock()

	cancel()
	<-done
}

// Schedule persists a deletion due after delay and arms a timer for it.
// Rescheduling the same message replaces the due time, last writer wins.
// A non-positive delay or a stopped scheduler makes this a no-op.
func (e *ExpiryScheduler) Schedule(ctx context.Context, chatID int64, messageID int, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	entry := &models.DeleteQueueEntry{
		ChatID:    chatID,
		MessageID: messageID,
		DeleteAt:  time.Now().UTC().Add(delay),
	}
	if err := e.store.UpsertDeleteQueueEntry(ctx, entry); err != nil {
		return err
	}

	key := timerKey{ChatID: chatID, MessageID: messageID}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return nil
	}
	if old, ok := e.timers[key]; ok {
		old.Stop()
	}
	e.timers[key] = time.AfterFunc(delay, func() {
		e.fire(key)
	})
	return nil
}

// Cancel stops a pending deletion and removes its queue row. Cancelling an
// unknown message is a no-op.
func (e *ExpiryScheduler) Cancel(ctx context.Context, chatID int64, messageID int) error {
	key := timerKey{ChatID: chatID, MessageID: messageID}

	e.mu.Lock()
	if timer, ok := e.timers[key]; ok {
		timer.Stop()
		delete(e.timers, key)
	}
	e.mu.Unlock()

	return e.store.RemoveDeleteQueueEntry(ctx, chatID, messageID)
}

func (e *ExpiryScheduler) fire(key timerKey) {
	e.mu.Lock()
	delete(e.timers, key)
	running := e.running
	e.mu.Unlock()
	if !running {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.deleteEntry(ctx, key.ChatID, key.MessageID); err != nil {
		e.log.Warn("Timed deletion of message %d in chat %d failed: %v", key.MessageID, key.ChatID, err)
	}
}

// SweepOnce deletes every entry that is currently due, continuing past
// per-entry failures.
func (e *ExpiryScheduler) SweepOnce(ctx context.Context) (*SweepResult, error) {
	sweepRunsTotal.Inc()

	entries, err := e.store.DueDeleteQueueEntries(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Due: len(entries)}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.deleteEntry(ctx, entry.ChatID, entry.MessageID); err != nil {
			e.log.Warn("Sweep failed to delete message %d in chat %d: %v", entry.MessageID, entry.ChatID, err)
			result.Failed++
			continue
		}
		result.Deleted++
	}
	return result, nil
}

// deleteEntry attempts the remote delete and removes the queue row whether
// or not the remote message still existed, so an already-deleted message
// never wedges the queue.
func (e *ExpiryScheduler) deleteEntry(ctx context.Context, chatID int64, messageID int) error {
	remoteErr := e.gw.DeleteMessage(ctx, chatID, messageID)
	if remoteErr != nil {
		e.log.Debug("Remote delete of message %d in chat %d: %v", messageID, chatID, remoteErr)
	}

	if err := e.store.RemoveDeleteQueueEntry(ctx, chatID, messageID); err != nil {
		return err
	}

	// Any timer still armed for this key is now redundant.
	key := timerKey{ChatID: chatID, MessageID: messageID}
	e.mu.Lock()
	if timer, ok := e.timers[key]; ok {
		timer.Stop()
		delete(e.timers, key)
	}
	e.mu.Unlock()

	if remoteErr == nil {
		messagesDeletedTotal.Inc()
		if e.deleted != "" {
			if _, err := e.gw.SendMessage(ctx, gateway.SendRequest{
				ChatID:    chatID,
				Text:      e.deleted,
				ParseMode: "HTML",
			}); err != nil {
				e.log.Debug("Post-delete notice to chat %d failed: %v", chatID, err)
			}
		}
	}
	return nil
}
