package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwantia/goshare/pkg/db/models"
)

func newTestScheduler(t *testing.T, gw *fakeGateway) *ExpiryScheduler {
	t.Helper()
	s := newTestStore(t)
	sched := NewExpiryScheduler(s, gw, time.Hour, "", testLogger())
	return sched
}

func TestScheduleNonPositiveDelayIsNoop(t *testing.T) {
	gw := newFakeGateway()
	sched := newTestScheduler(t, gw)
	sched.Start(context.Background())
	defer sched.Stop()

	if err := sched.Schedule(context.Background(), 1, 100, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sched.Schedule(context.Background(), 1, 101, -time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, err := sched.store.CountPendingDeletes(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if pending != 0 {
		t.Errorf("pending = %d, want 0", pending)
	}
}

func TestScheduleWhileStoppedIsNoop(t *testing.T) {
	gw := newFakeGateway()
	sched := newTestScheduler(t, gw)

	if err := sched.Schedule(context.Background(), 1, 100, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, _ := sched.store.CountPendingDeletes(context.Background())
	if pending != 0 {
		t.Errorf("pending = %d, want 0 while stopped", pending)
	}
}

func TestSchedulePersistsAndTimerFires(t *testing.T) {
	gw := newFakeGateway()
	sched := newTestScheduler(t, gw)
	sched.Start(context.Background())
	defer sched.Stop()

	if err := sched.Schedule(context.Background(), 1, 100, 20*time.Millisecond); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	pending, _ := sched.store.CountPendingDeletes(context.Background())
	if pending != 1 {
		t.Fatalf("pending = %d, want 1 before the timer fires", pending)
	}

	deadline := time.Now().Add(2 * time.Second)
	for gw.deleteCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if gw.deleteCount() != 1 {
		t.Fatal("timer did not trigger the remote delete")
	}

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pending, _ = sched.store.CountPendingDeletes(context.Background()); pending == 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if pending != 0 {
		t.Errorf("pending = %d, want 0 after deletion", pending)
	}
}

func TestRescheduleReplacesDueTime(t *testing.T) {
	gw := newFakeGateway()
	sched := newTestScheduler(t, gw)
	sched.Start(context.Background())
	defer sched.Stop()

	ctx := context.Background()
	if err := sched.Schedule(ctx, 1, 100, time.Minute); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if err := sched.Schedule(ctx, 1, 100, time.Hour); err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}

	pending, _ := sched.store.CountPendingDeletes(ctx)
	if pending != 1 {
		t.Fatalf("pending = %d, want 1 (reschedule must replace, not duplicate)", pending)
	}

	entries, err := sched.store.DueDeleteQueueEntries(ctx, time.Now().UTC().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if until := time.Until(entries[0].DeleteAt); until < 50*time.Minute {
		t.Errorf("due in %s, want roughly an hour (last writer wins)", until)
	}
}

func TestCancelRemovesPendingDeletion(t *testing.T) {
	gw := newFakeGateway()
	sched := newTestScheduler(t, gw)
	sched.Start(context.Background())
	defer sched.Stop()

	ctx := context.Background()
	if err := sched.Schedule(ctx, 1, 100, 50*time.Millisecond); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if err := sched.Cancel(ctx, 1, 100); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	pending, _ := sched.store.CountPendingDeletes(ctx)
	if pending != 0 {
		t.Errorf("pending = %d, want 0 after cancel", pending)
	}

	// Wait past the original due time, then sweep: neither the timer nor
	// the sweep may touch the message once the deletion is cancelled.
	time.Sleep(150 * time.Millisecond)
	if _, err := sched.SweepOnce(ctx); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if gw.deleteCount() != 0 {
		t.Errorf("remote deletes = %d, want none after cancel", gw.deleteCount())
	}

	// Cancelling something unknown is fine.
	if err := sched.Cancel(ctx, 9, 999); err != nil {
		t.Errorf("cancel of unknown entry errored: %v", err)
	}
}

func TestSweepOnceDeletesOnlyDueEntries(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(t)
	sched := NewExpiryScheduler(s, gw, time.Hour, "", testLogger())

	ctx := context.Background()
	now := time.Now().UTC()
	for _, entry := range []*models.DeleteQueueEntry{
		{ChatID: 1, MessageID: 10, DeleteAt: now.Add(-time.Minute)},
		{ChatID: 1, MessageID: 11, DeleteAt: now.Add(-time.Second)},
		{ChatID: 2, MessageID: 20, DeleteAt: now.Add(time.Hour)},
	} {
		if err := s.UpsertDeleteQueueEntry(ctx, entry); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	result, err := sched.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Due != 2 || result.Deleted != 2 || result.Failed != 0 {
		t.Errorf("result = %+v, want 2 due, 2 deleted", result)
	}
	if gw.deleteCount() != 2 {
		t.Errorf("remote deletes = %d, want 2", gw.deleteCount())
	}

	pending, _ := s.CountPendingDeletes(ctx)
	if pending != 1 {
		t.Errorf("pending = %d, want the future entry to survive", pending)
	}
}

func TestSweepRemovesRowWhenRemoteDeleteFails(t *testing.T) {
	gw := newFakeGateway()
	gw.deleteErr = errors.New("message to delete not found")
	s := newTestStore(t)
	sched := NewExpiryScheduler(s, gw, time.Hour, "", testLogger())

	ctx := context.Background()
	entry := &models.DeleteQueueEntry{ChatID: 1, MessageID: 10, DeleteAt: time.Now().UTC().Add(-time.Minute)}
	if err := s.UpsertDeleteQueueEntry(ctx, entry); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	result, err := sched.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("result = %+v, want the entry consumed despite the remote failure", result)
	}

	pending, _ := s.CountPendingDeletes(ctx)
	if pending != 0 {
		t.Errorf("pending = %d, want 0: a gone message must not wedge the queue", pending)
	}
}

func TestSweepSendsNoticeAfterSuccessfulDelete(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(t)
	sched := NewExpiryScheduler(s, gw, time.Hour, "File removed.", testLogger())

	ctx := context.Background()
	entry := &models.DeleteQueueEntry{ChatID: 7, MessageID: 10, DeleteAt: time.Now().UTC().Add(-time.Minute)}
	if err := s.UpsertDeleteQueueEntry(ctx, entry); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := sched.SweepOnce(ctx); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.sent) != 1 || gw.sent[0].Req.ChatID != 7 {
		t.Errorf("sent = %+v, want one notice to chat 7", gw.sent)
	}
}

func TestStartRunsRecoverySweep(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(t)
	sched := NewExpiryScheduler(s, gw, time.Hour, "", testLogger())

	ctx := context.Background()
	entry := &models.DeleteQueueEntry{ChatID: 1, MessageID: 10, DeleteAt: time.Now().UTC().Add(-time.Hour)}
	if err := s.UpsertDeleteQueueEntry(ctx, entry); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	sched.Start(ctx)
	defer sched.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for gw.deleteCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if gw.deleteCount() != 1 {
		t.Error("startup sweep did not recover the overdue deletion")
	}
}
