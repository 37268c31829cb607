package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mwantia/goshare/pkg/log"
)

// TelegramGateway implements Gateway on top of the Telegram Bot API.
type TelegramGateway struct {
	api *tgbotapi.BotAPI
	log log.LoggerService
}

// NewTelegramGateway authenticates against the Bot API with the given token.
func NewTelegramGateway(botToken string, logger log.LoggerService) (*TelegramGateway, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate bot: %w", err)
	}

	return &TelegramGateway{
		api: api,
		log: logger,
	}, nil
}

// Username returns the authenticated bot's username.
func (tg *TelegramGateway) Username() string {
	return tg.api.Self.UserName
}

// Updates opens the long-poll update channel consumed by the bot router.
func (tg *TelegramGateway) Updates(timeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	return tg.api.GetUpdatesChan(u)
}

// StopUpdates stops the long-poll loop.
func (tg *TelegramGateway) StopUpdates() {
	tg.api.StopReceivingUpdates()
}

// Request forwards an arbitrary chattable to the Bot API, with the same
// flood-wait handling as the typed calls. Used by the bot router for
// callback answers and message edits.
func (tg *TelegramGateway) Request(ctx context.Context, c tgbotapi.Chattable) error {
	_, err := withFloodRetry(ctx, tg.log, "request", func() (struct{}, error) {
		_, err := tg.api.Request(c)
		return struct{}{}, mapError(err)
	})
	return err
}

func (tg *TelegramGateway) GetChat(ctx context.Context, chatID int64) (*ChatInfo, error) {
	chat, err := withFloodRetry(ctx, tg.log, "getChat", func() (tgbotapi.Chat, error) {
		chat, err := tg.api.GetChat(tgbotapi.ChatInfoConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		})
		return chat, mapError(err)
	})
	if err != nil {
		return nil, err
	}

	return &ChatInfo{
		ID:       chat.ID,
		Title:    chat.Title,
		Username: chat.UserName,
	}, nil
}

func (tg *TelegramGateway) GetChatMember(ctx context.Context, chatID, userID int64) (MemberStatus, error) {
	member, err := withFloodRetry(ctx, tg.log, "getChatMember", func() (tgbotapi.ChatMember, error) {
		member, err := tg.api.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: chatID,
				UserID: userID,
			},
		})
		return member, mapError(err)
	})
	if err != nil {
		return "", err
	}

	return MemberStatus(member.Status), nil
}

func (tg *TelegramGateway) ExportInviteLink(ctx context.Context, chatID int64) (string, error) {
	return withFloodRetry(ctx, tg.log, "exportChatInviteLink", func() (string, error) {
		link, err := tg.api.GetInviteLink(tgbotapi.ChatInviteLinkConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		})
		return link, mapError(err)
	})
}

func (tg *TelegramGateway) SendMessage(ctx context.Context, req SendRequest) (int, error) {
	return withFloodRetry(ctx, tg.log, "sendMessage", func() (int, error) {
		msg := tgbotapi.NewMessage(req.ChatID, req.Text)
		msg.ParseMode = req.ParseMode
		msg.DisableWebPagePreview = req.DisableWebPreview
		if req.ReplyMarkup != nil {
			msg.ReplyMarkup = req.ReplyMarkup
		}

		sent, err := tg.api.Send(msg)
		if err != nil {
			return 0, mapError(err)
		}
		return sent.MessageID, nil
	})
}

// CopyMessage goes through the raw endpoint so protect_content reaches the
// wire regardless of client library coverage.
func (tg *TelegramGateway) CopyMessage(ctx context.Context, req CopyRequest) (int, error) {
	return withFloodRetry(ctx, tg.log, "copyMessage", func() (int, error) {
		params := tgbotapi.Params{}
		params.AddNonZero64("chat_id", req.ToChatID)
		params.AddNonZero64("from_chat_id", req.FromChatID)
		params.AddNonZero("message_id", req.MessageID)
		params.AddNonEmpty("caption", req.Caption)
		params.AddNonEmpty("parse_mode", req.ParseMode)
		params.AddBool("protect_content", req.ProtectContent)

		resp, err := tg.api.MakeRequest("copyMessage", params)
		if err != nil {
			return 0, mapError(err)
		}

		var result struct {
			MessageID int `json:"message_id"`
		}
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return 0, fmt.Errorf("failed to decode copyMessage response: %w", err)
		}
		return result.MessageID, nil
	})
}

func (tg *TelegramGateway) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	return withFloodRetry(ctx, tg.log, "forwardMessage", func() (int, error) {
		sent, err := tg.api.Send(tgbotapi.NewForward(toChatID, fromChatID, messageID))
		if err != nil {
			return 0, mapError(err)
		}
		return sent.MessageID, nil
	})
}

func (tg *TelegramGateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := withFloodRetry(ctx, tg.log, "deleteMessage", func() (struct{}, error) {
		_, err := tg.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
		return struct{}{}, mapError(err)
	})
	return err
}

// mapError converts Bot API rate-limit responses into FloodWaitError so the
// retry wrapper and callers can react to them uniformly.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return &FloodWaitError{RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second}
	}
	return err
}
