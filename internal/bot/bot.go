// Package bot routes inbound Telegram updates to the delivery, gate and
// admin flows. It is thin glue: all semantics live in internal/service.
package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mwantia/goshare/internal/config/server"
	"github.com/mwantia/goshare/internal/gateway"
	"github.com/mwantia/goshare/internal/service"
	"github.com/mwantia/goshare/pkg/db/models"
	"github.com/mwantia/goshare/pkg/db/store"
	"github.com/mwantia/goshare/pkg/log"
)

// Messenger is the gateway surface the router needs: the typed operations
// plus raw requests for callback answers and message edits.
type Messenger interface {
	gateway.Gateway
	Request(ctx context.Context, c tgbotapi.Chattable) error
}

// broadcastSource remembers the message an admin asked to broadcast while
// the confirmation callback is pending.
type broadcastSource struct {
	ChatID    int64
	MessageID int
}

type Bot struct {
	gw       Messenger
	store    store.Store
	gate     *service.AccessGate
	delivery *service.Delivery
	sessions *service.SessionStore
	stats    *service.Stats
	cfg      *server.BaseServerConfig
	log      log.LoggerService

	mu         sync.Mutex
	broadcasts map[int64]broadcastSource
}

func New(gw Messenger, s store.Store, gate *service.AccessGate, delivery *service.Delivery,
	sessions *service.SessionStore, stats *service.Stats, cfg *server.BaseServerConfig, logger log.LoggerService) *Bot {

	return &Bot{
		gw:         gw,
		store:      s,
		gate:       gate,
		delivery:   delivery,
		sessions:   sessions,
		stats:      stats,
		cfg:        cfg,
		log:        logger,
		broadcasts: make(map[int64]broadcastSource),
	}
}

// Run consumes the update channel until it closes or the context ends.
// Updates are handled concurrently; ordering across users does not matter
// and a slow delivery must not stall the poll loop.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Panic while handling update %d: %v", update.UpdateID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Chat != nil && update.Message.Chat.IsPrivate():
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID

	if err := b.touchUser(ctx, msg.From); err != nil {
		b.log.Warn("Failed to record user %d: %v", userID, err)
	}

	if b.isBanned(ctx, userID) {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// An admin's media either feeds an open batch session or becomes a
	// share link on the spot.
	if b.cfg.Telegram.IsAdmin(userID) && hasMedia(msg) {
		if _, ok := b.sessions.Get(userID); ok {
			b.collectSessionFile(ctx, msg)
		} else {
			b.registerAndReply(ctx, msg)
		}
		return
	}

	b.reply(ctx, msg.Chat.ID, b.renderUserTemplate(b.cfg.Messages.UserReply, msg.From))
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "genlink":
		b.adminOnly(ctx, msg, b.handleGenLink)
	case "batch":
		b.adminOnly(ctx, msg, b.handleBatchRange)
	case "batchfiles":
		b.adminOnly(ctx, msg, b.handleBatchFiles)
	case "done":
		b.adminOnly(ctx, msg, b.handleBatchDone)
	case "cancel":
		b.adminOnly(ctx, msg, b.handleBatchCancel)
	case "stats":
		b.adminOnly(ctx, msg, b.handleStats)
	case "users":
		b.adminOnly(ctx, msg, b.handleUsers)
	case "ban":
		b.adminOnly(ctx, msg, b.handleBan)
	case "unban":
		b.adminOnly(ctx, msg, b.handleUnban)
	case "autodelete":
		b.adminOnly(ctx, msg, b.handleAutoDelete)
	case "broadcast":
		b.adminOnly(ctx, msg, b.handleBroadcast)
	default:
		b.reply(ctx, msg.Chat.ID, b.renderUserTemplate(b.cfg.Messages.UserReply, msg.From))
	}
}

func (b *Bot) adminOnly(ctx context.Context, msg *tgbotapi.Message, handler func(context.Context, *tgbotapi.Message)) {
	if !b.cfg.Telegram.IsAdmin(msg.From.ID) {
		b.reply(ctx, msg.Chat.ID, "This command is restricted to administrators.")
		return
	}
	handler(ctx, msg)
}

// touchUser upserts the sender so first contact and display-field changes
// are recorded.
func (b *Bot) touchUser(ctx context.Context, from *tgbotapi.User) error {
	now := time.Now().UTC()
	return b.store.UpsertUser(ctx, &models.User{
		TelegramID:     from.ID,
		FirstName:      from.FirstName,
		LastName:       from.LastName,
		Username:       from.UserName,
		JoinedAt:       now,
		LastActivityAt: now,
	})
}

// isBanned silently drops banned users; admins are never banned out.
func (b *Bot) isBanned(ctx context.Context, userID int64) bool {
	if b.cfg.Telegram.IsAdmin(userID) {
		return false
	}
	user, err := b.store.GetUser(ctx, userID)
	if err != nil {
		return false
	}
	return user.Banned
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.gw.SendMessage(ctx, gateway.SendRequest{
		ChatID:            chatID,
		Text:              text,
		ParseMode:         "HTML",
		DisableWebPreview: true,
	}); err != nil {
		b.log.Warn("Failed to send reply to chat %d: %v", chatID, err)
	}
}

func (b *Bot) replyMarkup(ctx context.Context, chatID int64, text string, markup any) {
	if _, err := b.gw.SendMessage(ctx, gateway.SendRequest{
		ChatID:            chatID,
		Text:              text,
		ParseMode:         "HTML",
		ReplyMarkup:       markup,
		DisableWebPreview: true,
	}); err != nil {
		b.log.Warn("Failed to send reply to chat %d: %v", chatID, err)
	}
}
