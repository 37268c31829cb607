package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mwantia/goshare/internal/gateway"
	"github.com/mwantia/goshare/internal/service"
	"github.com/mwantia/goshare/pkg/db/models"
	"github.com/mwantia/goshare/pkg/format"
	"github.com/mwantia/goshare/pkg/token"
)

// maxBatchRange caps how many archive messages one /batch command may
// register.
const maxBatchRange = 100

// handleGenLink turns the replied-to media message into a share link.
func (b *Bot) handleGenLink(ctx context.Context, msg *tgbotapi.Message) {
	replied := msg.ReplyToMessage
	if replied == nil || !hasMedia(replied) {
		b.reply(ctx, msg.Chat.ID, "Reply to a media message with /genlink to create a share link.")
		return
	}

	replied.From = msg.From // attribute the upload to the invoking admin
	tok, err := b.archiveMessage(ctx, msg.Chat.ID, replied)
	if err != nil {
		b.log.Error("genlink failed for admin %d: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, "Failed to store this file. Please try again.")
		return
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Here is your share link:\n\n%s",
		token.DeepLink(b.gw.Username(), tok)))
}

// handleBatchRange registers every still-existing archive message in the
// given id range under one batch link. Each id is probed with a
// forward-and-delete so gaps in the archive surface as skipped rather than
// as broken batch members.
func (b *Bot) handleBatchRange(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		b.reply(ctx, msg.Chat.ID, "Usage: /batch <first message id> <last message id>")
		return
	}

	first, err1 := strconv.Atoi(args[0])
	last, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || first <= 0 || last <= 0 {
		b.reply(ctx, msg.Chat.ID, "Message ids must be positive numbers.")
		return
	}
	if first > last {
		first, last = last, first
	}
	if last-first+1 > maxBatchRange {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("A batch may cover at most %d messages.", maxBatchRange))
		return
	}

	archiveID := b.cfg.Telegram.ArchiveChannelID
	var tokens []string
	skipped := 0

	for id := first; id <= last; id++ {
		if err := ctx.Err(); err != nil {
			return
		}

		probeID, err := b.gw.ForwardMessage(ctx, msg.Chat.ID, archiveID, id)
		if err != nil {
			skipped++
			continue
		}
		if err := b.gw.DeleteMessage(ctx, msg.Chat.ID, probeID); err != nil {
			b.log.Debug("Failed to remove probe message %d: %v", probeID, err)
		}

		tok := token.NewFile()
		err = b.store.CreateFile(ctx, &models.StoredFile{
			Token:      tok,
			MessageID:  id,
			FileType:   "document",
			UploadedBy: msg.From.ID,
			UploadedAt: time.Now().UTC(),
		})
		if err != nil {
			b.log.Warn("Failed to register archive message %d: %v", id, err)
			skipped++
			continue
		}
		tokens = append(tokens, tok)
	}

	if len(tokens) == 0 {
		b.reply(ctx, msg.Chat.ID, "No messages could be registered from that range.")
		return
	}

	batchTok, err := b.createBatch(ctx, msg.From.ID, tokens, "", "")
	if err != nil {
		b.log.Error("Failed to create batch for admin %d: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, "Failed to create the batch link. Please try again.")
		return
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Batch link for %d file(s), %d skipped:\n\n%s",
		len(tokens), skipped, token.DeepLink(b.gw.Username(), batchTok)))
}

func (b *Bot) createBatch(ctx context.Context, createdBy int64, tokens []string, title, description string) (string, error) {
	batch := &models.BatchLink{
		Token:       token.NewBatch(),
		Title:       title,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
		Active:      true,
	}
	batch.SetTokens(tokens)

	if err := b.store.CreateBatch(ctx, batch); err != nil {
		return "", err
	}
	return batch.Token, nil
}

// handleBatchFiles opens an interactive batch-collection session.
func (b *Bot) handleBatchFiles(ctx context.Context, msg *tgbotapi.Message) {
	b.sessions.Create(msg.From.ID)
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"Batch session started. Send me up to %d files, then /done to get the link or /cancel to abort.",
		service.MaxSessionFiles))
}

func (b *Bot) handleBatchDone(ctx context.Context, msg *tgbotapi.Message) {
	tokens, err := b.sessions.Complete(msg.From.ID)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, "You have no open batch session. Start one with /batchfiles.")
		return
	}
	if len(tokens) == 0 {
		b.reply(ctx, msg.Chat.ID, "The session collected no files, nothing to link.")
		return
	}

	batchTok, err := b.createBatch(ctx, msg.From.ID, tokens, "", "")
	if err != nil {
		b.log.Error("Failed to create batch for admin %d: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, "Failed to create the batch link. Please try again.")
		return
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Batch link for %d file(s):\n\n%s",
		len(tokens), token.DeepLink(b.gw.Username(), batchTok)))
}

func (b *Bot) handleBatchCancel(ctx context.Context, msg *tgbotapi.Message) {
	b.sessions.Cancel(msg.From.ID)
	b.reply(ctx, msg.Chat.ID, "Batch session cancelled.")
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	text, err := b.statsText(ctx)
	if err != nil {
		b.log.Error("Stats snapshot failed: %v", err)
		b.reply(ctx, msg.Chat.ID, "Failed to collect statistics.")
		return
	}
	b.reply(ctx, msg.Chat.ID, text)
}

// statsText renders the counters summary shared by the /stats command and
// the stats inline button.
func (b *Bot) statsText(ctx context.Context) (string, error) {
	snapshot, err := b.stats.Snapshot(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("<b>Bot statistics</b>\n\n")
	fmt.Fprintf(&sb, "Users: %d\n", snapshot.Users)
	fmt.Fprintf(&sb, "Files: %d\n", snapshot.Files)
	fmt.Fprintf(&sb, "Batches: %d\n", snapshot.Batches)
	fmt.Fprintf(&sb, "Pending deletions: %d\n", snapshot.PendingDeletes)
	fmt.Fprintf(&sb, "Uptime: %s\n\n", format.Duration(snapshot.Uptime))
	fmt.Fprintf(&sb, "Force-sub channels: %d\n", len(b.cfg.Telegram.ForceSubChannelIDs))
	fmt.Fprintf(&sb, "Protect content: %t\n", b.cfg.Delivery.ProtectContent)
	if lifetime := b.delivery.AutoDelete(); lifetime > 0 {
		fmt.Fprintf(&sb, "Auto-delete after: %s\n", format.Duration(lifetime))
	} else {
		sb.WriteString("Auto-delete: disabled\n")
	}

	return sb.String(), nil
}

func (b *Bot) handleUsers(ctx context.Context, msg *tgbotapi.Message) {
	count, err := b.store.CountUsers(ctx)
	if err != nil {
		b.log.Error("User count failed: %v", err)
		b.reply(ctx, msg.Chat.ID, "Failed to count users.")
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("%d user(s) have contacted this bot.", count))
}

func (b *Bot) handleBan(ctx context.Context, msg *tgbotapi.Message) {
	b.setBanned(ctx, msg, true)
}

func (b *Bot) handleUnban(ctx context.Context, msg *tgbotapi.Message) {
	b.setBanned(ctx, msg, false)
}

func (b *Bot) setBanned(ctx context.Context, msg *tgbotapi.Message, banned bool) {
	arg := strings.TrimSpace(msg.CommandArguments())
	userID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || userID == 0 {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Usage: /%s <user id>", msg.Command()))
		return
	}
	if b.cfg.Telegram.IsAdmin(userID) && banned {
		b.reply(ctx, msg.Chat.ID, "Administrators cannot be banned.")
		return
	}

	if err := b.store.SetUserBanned(ctx, userID, banned); err != nil {
		b.log.Error("Failed to set ban=%t for user %d: %v", banned, userID, err)
		b.reply(ctx, msg.Chat.ID, "Failed to update the user.")
		return
	}

	if banned {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("User %d is now banned.", userID))
	} else {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("User %d is no longer banned.", userID))
	}
}

// autoDeleteSettingKey persists the runtime auto-delete override.
const autoDeleteSettingKey = "auto_delete_seconds"

// handleAutoDelete changes the delivered-message lifetime at runtime and
// persists the override so it survives a restart.
func (b *Bot) handleAutoDelete(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		if lifetime := b.delivery.AutoDelete(); lifetime > 0 {
			b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Delivered files are removed after %s. Use /autodelete <seconds> to change, 0 to disable.",
				format.Duration(lifetime)))
		} else {
			b.reply(ctx, msg.Chat.ID, "Auto-delete is disabled. Use /autodelete <seconds> to enable.")
		}
		return
	}

	seconds, err := strconv.Atoi(arg)
	if err != nil || seconds < 0 {
		b.reply(ctx, msg.Chat.ID, "Usage: /autodelete <seconds>, 0 disables.")
		return
	}

	if err := b.store.SetSetting(ctx, autoDeleteSettingKey, arg); err != nil {
		b.log.Error("Failed to persist auto-delete setting: %v", err)
		b.reply(ctx, msg.Chat.ID, "Failed to save the setting.")
		return
	}

	lifetime := time.Duration(seconds) * time.Second
	b.delivery.SetAutoDelete(lifetime)

	if lifetime > 0 {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Delivered files will now be removed after %s.", format.Duration(lifetime)))
	} else {
		b.reply(ctx, msg.Chat.ID, "Auto-delete disabled.")
	}
}

// handleBroadcast stages the replied-to message and asks for confirmation.
func (b *Bot) handleBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	if msg.ReplyToMessage == nil {
		b.reply(ctx, msg.Chat.ID, "Reply to the message you want to broadcast with /broadcast.")
		return
	}

	b.mu.Lock()
	b.broadcasts[msg.From.ID] = broadcastSource{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ReplyToMessage.MessageID,
	}
	b.mu.Unlock()

	count, err := b.store.CountUsers(ctx)
	if err != nil {
		count = 0
	}

	b.replyMarkup(ctx, msg.Chat.ID,
		fmt.Sprintf("Broadcast this message to %d user(s)?", count),
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Send", "bcast_yes"),
				tgbotapi.NewInlineKeyboardButtonData("Cancel", "bcast_no"),
			),
		))
}

// runBroadcast copies the staged message to every known user, tolerating
// per-user failures.
func (b *Bot) runBroadcast(ctx context.Context, adminID int64, statusChatID int64) {
	b.mu.Lock()
	source, ok := b.broadcasts[adminID]
	delete(b.broadcasts, adminID)
	b.mu.Unlock()
	if !ok {
		b.reply(ctx, statusChatID, "No broadcast is staged.")
		return
	}

	userIDs, err := b.store.ListUserIDs(ctx)
	if err != nil {
		b.log.Error("Failed to list users for broadcast: %v", err)
		b.reply(ctx, statusChatID, "Failed to load the user list.")
		return
	}

	sent, failed := 0, 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return
		}
		_, err := b.gw.CopyMessage(ctx, gateway.CopyRequest{
			ToChatID:   userID,
			FromChatID: source.ChatID,
			MessageID:  source.MessageID,
		})
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				b.log.Debug("Broadcast to user %d failed: %v", userID, err)
			}
			failed++
			continue
		}
		sent++
	}

	b.reply(ctx, statusChatID, fmt.Sprintf("Broadcast finished: %d delivered, %d failed.", sent, failed))
}
