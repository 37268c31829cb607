package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mwantia/goshare/internal/gateway"
	"github.com/mwantia/goshare/internal/service"
	"github.com/mwantia/goshare/pkg/format"
	"github.com/mwantia/goshare/pkg/token"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	payload := strings.TrimSpace(msg.CommandArguments())
	if payload == "" {
		b.replyMarkup(ctx, msg.Chat.ID,
			b.renderUserTemplate(b.cfg.Messages.Start, msg.From),
			startKeyboard())
		return
	}

	b.deliverPayload(ctx, msg.From, msg.Chat.ID, payload)
}

// deliverPayload runs the delivery flow for a deep-link payload and renders
// the outcome.
func (b *Bot) deliverPayload(ctx context.Context, from *tgbotapi.User, chatID int64, payload string) {
	if token.IsBatch(payload) {
		result, err := b.delivery.DeliverBatch(ctx, from.ID, chatID, payload)
		if err != nil {
			b.renderDeliveryError(ctx, from, chatID, payload, err)
			return
		}
		b.renderBatchResult(ctx, chatID, result)
		return
	}

	if _, err := b.delivery.DeliverFile(ctx, from.ID, chatID, payload); err != nil {
		b.renderDeliveryError(ctx, from, chatID, payload, err)
		return
	}
	b.sendAutoDeleteNotice(ctx, chatID)
}

func (b *Bot) renderBatchResult(ctx context.Context, chatID int64, result *service.BatchResult) {
	if result.Title != "" || result.Description != "" {
		intro := strings.TrimSpace(fmt.Sprintf("<b>%s</b>\n%s", result.Title, result.Description))
		b.reply(ctx, chatID, intro)
	}

	if result.Delivered == 0 {
		b.reply(ctx, chatID, "None of the files in this batch are available anymore.")
		return
	}
	if result.Skipped > 0 {
		b.reply(ctx, chatID, fmt.Sprintf("Delivered %d of %d files. %d are no longer available.",
			result.Delivered, result.Requested, result.Skipped))
	}
	b.sendAutoDeleteNotice(ctx, chatID)
}

func (b *Bot) sendAutoDeleteNotice(ctx context.Context, chatID int64) {
	lifetime := b.delivery.AutoDelete()
	if lifetime <= 0 || b.cfg.Messages.AutoDelete == "" {
		return
	}
	notice := strings.ReplaceAll(b.cfg.Messages.AutoDelete, "{time}", format.Duration(lifetime))
	b.reply(ctx, chatID, notice)
}

func (b *Bot) renderDeliveryError(ctx context.Context, from *tgbotapi.User, chatID int64, payload string, err error) {
	var denied *service.AccessDeniedError
	switch {
	case errors.As(err, &denied):
		b.sendGatePrompt(ctx, from, chatID, payload, denied.Report)
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrFileNotFound),
		errors.Is(err, service.ErrBatchNotFound):
		b.reply(ctx, chatID, "This link is invalid or no longer available.")
	default:
		if flood, ok := gateway.IsFloodWait(err); ok {
			b.reply(ctx, chatID, fmt.Sprintf("Too many requests right now. Please try again in %s.",
				format.Duration(flood.RetryAfter)))
			return
		}
		b.log.Error("Delivery of %s to chat %d failed: %v", payload, chatID, err)
		b.reply(ctx, chatID, "Something went wrong while fetching your file. Please try again later.")
	}
}

// sendGatePrompt renders one join button per unjoined channel plus a retry
// callback carrying the original payload, so the user can re-run the exact
// request after joining.
func (b *Bot) sendGatePrompt(ctx context.Context, from *tgbotapi.User, chatID int64, payload string, report *service.Report) {
	var rows [][]tgbotapi.InlineKeyboardButton
	var pending []tgbotapi.InlineKeyboardButton

	for _, ch := range report.Channels {
		if ch.Joined {
			continue
		}
		pending = append(pending, tgbotapi.NewInlineKeyboardButtonURL("Join "+ch.Title, ch.JoinURL))
		if len(pending) == 2 {
			rows = append(rows, pending)
			pending = nil
		}
	}
	if len(pending) > 0 {
		rows = append(rows, pending)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Try Again ♻️", "retry:"+payload),
	))

	b.replyMarkup(ctx, chatID,
		b.renderUserTemplate(b.cfg.Messages.ForceSub, from),
		tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) renderUserTemplate(template string, from *tgbotapi.User) string {
	return format.Message(template, format.UserFields{
		ID:        from.ID,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Username:  from.UserName,
	})
}

func startKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Help", "help"),
			tgbotapi.NewInlineKeyboardButtonData("Close", "close"),
		),
	)
}

func helpKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "stats"),
			tgbotapi.NewInlineKeyboardButtonData("Close", "close"),
		),
	)
}

func closeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Close", "close"),
		),
	)
}
