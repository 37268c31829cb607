package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mwantia/goshare/internal/gateway"
	"github.com/mwantia/goshare/pkg/db/store"
	"github.com/mwantia/goshare/pkg/format"
	"github.com/mwantia/goshare/pkg/log"
	"github.com/mwantia/goshare/pkg/token"
	"gorm.io/gorm"
)

// DeliveryConfig carries the delivery-time knobs.
type DeliveryConfig struct {
	ArchiveChannelID int64
	ProtectContent   bool
	CaptionTemplate  string
	AutoDelete       time.Duration
}

// BatchResult summarizes a batch delivery. Skipped counts members whose
// token no longer resolved or whose copy failed; the rest of the batch is
// delivered regardless.
type BatchResult struct {
	Requested   int
	Delivered   int
	Skipped     int
	Title       string
	Description string
	MessageIDs  []int
}

// Delivery resolves share tokens and copies the referenced archive messages
// to the requesting user.
type Delivery struct {
	store  store.Store
	gw     gateway.Gateway
	gate   *AccessGate
	expiry *ExpiryScheduler
	cfg    DeliveryConfig
	log    log.LoggerService

	// autoDelete holds the live message lifetime in nanoseconds; admins can
	// change it at runtime.
	autoDelete atomic.Int64
}

func NewDelivery(s store.Store, gw gateway.Gateway, gate *AccessGate, expiry *ExpiryScheduler, cfg DeliveryConfig, logger log.LoggerService) *Delivery {
	d := &Delivery{
		store:  s,
		gw:     gw,
		gate:   gate,
		expiry: expiry,
		cfg:    cfg,
		log:    logger,
	}
	d.autoDelete.Store(int64(cfg.AutoDelete))
	return d
}

// AutoDelete returns the current message lifetime, zero when disabled.
func (d *Delivery) AutoDelete() time.Duration {
	return time.Duration(d.autoDelete.Load())
}

// SetAutoDelete changes the message lifetime for subsequent deliveries.
// Zero or negative disables auto-delete. Already-scheduled deletions keep
// their due time.
func (d *Delivery) SetAutoDelete(lifetime time.Duration) {
	if lifetime < 0 {
		lifetime = 0
	}
	d.autoDelete.Store(int64(lifetime))
}

// DeliverFile resolves a single-file token and copies the file to chatID.
// Order matters: the token is validated and resolved before the gate runs,
// and nothing is consumed on denial, so the same link works unchanged once
// the user has joined. Returns the delivered message id.
func (d *Delivery) DeliverFile(ctx context.Context, userID, chatID int64, rawToken string) (int, error) {
	if _, err := token.ParseFile(rawToken); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	file, err := d.store.GetFile(ctx, rawToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrFileNotFound
		}
		return 0, fmt.Errorf("failed to resolve file token: %w", err)
	}

	if report := d.gate.Check(ctx, userID); !report.AllSatisfied {
		return 0, &AccessDeniedError{Report: report}
	}

	messageID, err := d.copyFile(ctx, chatID, file.MessageID, file.FileName, file.Caption)
	if err != nil {
		return 0, err
	}

	// Counter updates are best-effort; the file is already with the user.
	if err := d.store.IncrementFileAccess(ctx, rawToken); err != nil {
		d.log.Warn("Failed to count access on file %s: %v", rawToken, err)
	}
	if err := d.store.IncrementUserAccess(ctx, userID); err != nil {
		d.log.Warn("Failed to count access for user %d: %v", userID, err)
	}

	d.scheduleExpiry(ctx, chatID, messageID)
	return messageID, nil
}

// DeliverBatch resolves a batch token and copies every still-resolvable
// member in stored order. The gate runs once for the whole batch. A member
// failure is logged and skipped, never aborting the remainder.
func (d *Delivery) DeliverBatch(ctx context.Context, userID, chatID int64, rawToken string) (*BatchResult, error) {
	if _, err := token.ParseBatch(rawToken); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	batch, err := d.store.GetBatch(ctx, rawToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to resolve batch token: %w", err)
	}

	if report := d.gate.Check(ctx, userID); !report.AllSatisfied {
		return nil, &AccessDeniedError{Report: report}
	}

	tokens := batch.Tokens()
	result := &BatchResult{
		Requested:   len(tokens),
		Title:       batch.Title,
		Description: batch.Description,
	}

	for _, fileToken := range tokens {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		file, err := d.store.GetFile(ctx, fileToken)
		if err != nil {
			d.log.Warn("Batch %s: member %s no longer resolves: %v", rawToken, fileToken, err)
			result.Skipped++
			continue
		}

		messageID, err := d.copyFile(ctx, chatID, file.MessageID, file.FileName, file.Caption)
		if err != nil {
			d.log.Warn("Batch %s: failed to deliver member %s: %v", rawToken, fileToken, err)
			result.Skipped++
			continue
		}

		result.Delivered++
		result.MessageIDs = append(result.MessageIDs, messageID)

		if err := d.store.IncrementFileAccess(ctx, fileToken); err != nil {
			d.log.Warn("Failed to count access on file %s: %v", fileToken, err)
		}
		d.scheduleExpiry(ctx, chatID, messageID)
	}

	// The batch counter moves once per request, not once per member.
	if err := d.store.IncrementBatchAccess(ctx, rawToken); err != nil {
		d.log.Warn("Failed to count access on batch %s: %v", rawToken, err)
	}
	if result.Delivered > 0 {
		if err := d.store.IncrementUserAccess(ctx, userID); err != nil {
			d.log.Warn("Failed to count access for user %d: %v", userID, err)
		}
	}

	return result, nil
}

func (d *Delivery) copyFile(ctx context.Context, chatID int64, messageID int, fileName, previousCaption string) (int, error) {
	sentID, err := d.gw.CopyMessage(ctx, gateway.CopyRequest{
		ToChatID:       chatID,
		FromChatID:     d.cfg.ArchiveChannelID,
		MessageID:      messageID,
		Caption:        format.Caption(d.cfg.CaptionTemplate, fileName, previousCaption),
		ParseMode:      "HTML",
		ProtectContent: d.cfg.ProtectContent,
	})
	if err != nil {
		deliveriesFailedTotal.Inc()
		return 0, fmt.Errorf("failed to copy archive message %d: %w", messageID, err)
	}

	filesDeliveredTotal.Inc()
	return sentID, nil
}

func (d *Delivery) scheduleExpiry(ctx context.Context, chatID int64, messageID int) {
	lifetime := d.AutoDelete()
	if lifetime <= 0 || d.expiry == nil {
		return
	}
	if err := d.expiry.Schedule(ctx, chatID, messageID, lifetime); err != nil {
		d.log.Warn("Failed to schedule expiry for message %d in chat %d: %v", messageID, chatID, err)
	}
}
