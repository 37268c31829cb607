package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken marks a share link that does not decode to the
	// internal token format. User-visible, never retried.
	ErrInvalidToken = errors.New("invalid share token")

	// ErrFileNotFound marks a stale or revoked single-file link.
	ErrFileNotFound = errors.New("file not found")

	// ErrBatchNotFound marks a stale, revoked or deactivated batch link.
	ErrBatchNotFound = errors.New("batch not found")
)

// AccessDeniedError is returned when the subscription gate is unmet. It
// carries the per-channel report so the caller can render join buttons. The
// flow consumes no state on this outcome; the same request may simply be
// retried once the user has joined.
type AccessDeniedError struct {
	Report *Report
}

func (e *AccessDeniedError) Error() string {
	missing := 0
	for _, ch := range e.Report.Channels {
		if !ch.Joined {
			missing++
		}
	}
	return fmt.Sprintf("access denied: %d channel(s) not joined", missing)
}
