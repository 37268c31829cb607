package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `<b>How to use this bot</b>

Open a share link you received and the file appears here.

If join buttons show up, join the listed channels first and press "Try Again".`

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil || query.Message == nil {
		return
	}
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	if b.isBanned(ctx, userID) {
		b.answerCallback(ctx, query.ID, "")
		return
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, "retry:"):
		b.handleRetryCallback(ctx, query, strings.TrimPrefix(data, "retry:"))

	case data == "help":
		b.answerCallback(ctx, query.ID, "")
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID, helpText, helpKeyboard())
		edit.ParseMode = "HTML"
		if err := b.gw.Request(ctx, edit); err != nil {
			b.log.Debug("Failed to edit help message: %v", err)
		}

	case data == "stats":
		if !b.cfg.Telegram.IsAdmin(userID) {
			b.answerCallback(ctx, query.ID, "Not allowed.")
			return
		}
		text, err := b.statsText(ctx)
		if err != nil {
			b.log.Error("Stats snapshot failed: %v", err)
			b.answerCallback(ctx, query.ID, "Failed to collect statistics.")
			return
		}
		b.answerCallback(ctx, query.ID, "")
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID, text, closeKeyboard())
		edit.ParseMode = "HTML"
		if err := b.gw.Request(ctx, edit); err != nil {
			b.log.Debug("Failed to edit stats message: %v", err)
		}

	case data == "close":
		b.answerCallback(ctx, query.ID, "")
		if err := b.gw.DeleteMessage(ctx, chatID, query.Message.MessageID); err != nil {
			b.log.Debug("Failed to close message: %v", err)
		}

	case data == "bcast_yes":
		if !b.cfg.Telegram.IsAdmin(userID) {
			b.answerCallback(ctx, query.ID, "Not allowed.")
			return
		}
		b.answerCallback(ctx, query.ID, "Broadcast started.")
		if err := b.gw.DeleteMessage(ctx, chatID, query.Message.MessageID); err != nil {
			b.log.Debug("Failed to remove confirmation message: %v", err)
		}
		b.runBroadcast(ctx, userID, chatID)

	case data == "bcast_no":
		if !b.cfg.Telegram.IsAdmin(userID) {
			b.answerCallback(ctx, query.ID, "Not allowed.")
			return
		}
		b.mu.Lock()
		delete(b.broadcasts, userID)
		b.mu.Unlock()
		b.answerCallback(ctx, query.ID, "Broadcast cancelled.")
		if err := b.gw.DeleteMessage(ctx, chatID, query.Message.MessageID); err != nil {
			b.log.Debug("Failed to remove confirmation message: %v", err)
		}

	default:
		b.answerCallback(ctx, query.ID, "")
	}
}

// handleRetryCallback re-runs the gated request after a fresh membership
// check. The original prompt is removed on success so the chat does not
// accumulate stale join keyboards.
func (b *Bot) handleRetryCallback(ctx context.Context, query *tgbotapi.CallbackQuery, payload string) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	b.gate.Invalidate(userID)
	report := b.gate.Check(ctx, userID)
	if !report.AllSatisfied {
		b.answerCallbackAlert(ctx, query.ID, "You have not joined all required channels yet.")
		return
	}

	b.answerCallback(ctx, query.ID, "")
	if err := b.gw.DeleteMessage(ctx, chatID, query.Message.MessageID); err != nil {
		b.log.Debug("Failed to remove join prompt: %v", err)
	}
	b.deliverPayload(ctx, query.From, chatID, payload)
}

func (b *Bot) answerCallback(ctx context.Context, callbackID, text string) {
	if err := b.gw.Request(ctx, tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug("Failed to answer callback: %v", err)
	}
}

func (b *Bot) answerCallbackAlert(ctx context.Context, callbackID, text string) {
	if err := b.gw.Request(ctx, tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		b.log.Debug("Failed to answer callback: %v", err)
	}
}
