package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwantia/goshare/internal/config/server"
	"github.com/mwantia/goshare/pkg/log"
)

func testLogger() log.LoggerService {
	cfg := server.GetServerDefault().Log
	cfg.NoTerminal = true
	return log.NewLoggerService("test", cfg)
}

func TestWithFloodRetrySucceedsWithoutSignal(t *testing.T) {
	calls := 0
	got, err := withFloodRetry(context.Background(), testLogger(), "op", func() (int, error) {
		calls++
		return 7, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 || calls != 1 {
		t.Errorf("got %d after %d calls, want 7 after 1", got, calls)
	}
}

func TestWithFloodRetryRetriesOnce(t *testing.T) {
	calls := 0
	start := time.Now()

	got, err := withFloodRetry(context.Background(), testLogger(), "op", func() (string, error) {
		calls++
		if calls == 1 {
			return "", &FloodWaitError{RetryAfter: 20 * time.Millisecond}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 2 {
		t.Errorf("got %q after %d calls, want ok after 2", got, calls)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("retry happened after %s, expected the dictated wait", elapsed)
	}
}

func TestWithFloodRetrySecondSignalPropagates(t *testing.T) {
	calls := 0
	_, err := withFloodRetry(context.Background(), testLogger(), "op", func() (int, error) {
		calls++
		return 0, &FloodWaitError{RetryAfter: time.Millisecond}
	})

	if calls != 2 {
		t.Fatalf("call count = %d, want exactly 2 (one retry)", calls)
	}
	var flood *FloodWaitError
	if !errors.As(err, &flood) {
		t.Fatalf("error = %v, want FloodWaitError", err)
	}
}

func TestWithFloodRetryOtherErrorsPassThrough(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := withFloodRetry(context.Background(), testLogger(), "op", func() (int, error) {
		calls++
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if calls != 1 {
		t.Errorf("call count = %d, want 1 (no retry for hard failures)", calls)
	}
}

func TestWithFloodRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := withFloodRetry(ctx, testLogger(), "op", func() (int, error) {
		return 0, &FloodWaitError{RetryAfter: time.Hour}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestIsFloodWait(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), &FloodWaitError{RetryAfter: time.Second})
	if _, ok := IsFloodWait(wrapped); !ok {
		t.Error("IsFloodWait missed a wrapped signal")
	}
	if _, ok := IsFloodWait(errors.New("plain")); ok {
		t.Error("IsFloodWait matched a plain error")
	}
}
