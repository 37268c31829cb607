package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mwantia/goshare/pkg/db/models"
	"github.com/mwantia/goshare/pkg/format"
	"github.com/mwantia/goshare/pkg/token"
)

// mediaMeta is the file metadata extracted from an inbound message.
type mediaMeta struct {
	FileName string
	FileSize int64
	FileType string
	MimeType string
}

func hasMedia(msg *tgbotapi.Message) bool {
	return msg.Document != nil || msg.Video != nil || len(msg.Photo) > 0 ||
		msg.Audio != nil || msg.Voice != nil || msg.VideoNote != nil
}

func extractMedia(msg *tgbotapi.Message) (mediaMeta, bool) {
	switch {
	case msg.Document != nil:
		return mediaMeta{
			FileName: msg.Document.FileName,
			FileSize: int64(msg.Document.FileSize),
			FileType: "document",
			MimeType: msg.Document.MimeType,
		}, true
	case msg.Video != nil:
		return mediaMeta{
			FileName: msg.Video.FileName,
			FileSize: int64(msg.Video.FileSize),
			FileType: "video",
			MimeType: msg.Video.MimeType,
		}, true
	case len(msg.Photo) > 0:
		largest := msg.Photo[len(msg.Photo)-1]
		return mediaMeta{
			FileSize: int64(largest.FileSize),
			FileType: "photo",
		}, true
	case msg.Audio != nil:
		return mediaMeta{
			FileName: msg.Audio.FileName,
			FileSize: int64(msg.Audio.FileSize),
			FileType: "audio",
			MimeType: msg.Audio.MimeType,
		}, true
	case msg.Voice != nil:
		return mediaMeta{
			FileSize: int64(msg.Voice.FileSize),
			FileType: "voice",
			MimeType: msg.Voice.MimeType,
		}, true
	case msg.VideoNote != nil:
		return mediaMeta{
			FileSize: int64(msg.VideoNote.FileSize),
			FileType: "video_note",
		}, true
	}
	return mediaMeta{}, false
}

// archiveMessage forwards a media message into the archive channel and
// registers it under a fresh share token.
func (b *Bot) archiveMessage(ctx context.Context, fromChatID int64, msg *tgbotapi.Message) (string, error) {
	meta, ok := extractMedia(msg)
	if !ok {
		return "", errors.New("message carries no media")
	}

	archiveID, err := b.gw.ForwardMessage(ctx, b.cfg.Telegram.ArchiveChannelID, fromChatID, msg.MessageID)
	if err != nil {
		return "", fmt.Errorf("failed to archive message: %w", err)
	}

	tok := token.NewFile()
	err = b.store.CreateFile(ctx, &models.StoredFile{
		Token:      tok,
		MessageID:  archiveID,
		FileName:   meta.FileName,
		FileSize:   meta.FileSize,
		FileType:   meta.FileType,
		MimeType:   meta.MimeType,
		Caption:    msg.Caption,
		UploadedBy: msg.From.ID,
		UploadedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to register file: %w", err)
	}
	return tok, nil
}

// registerAndReply turns an admin's media message into a share link.
func (b *Bot) registerAndReply(ctx context.Context, msg *tgbotapi.Message) {
	tok, err := b.archiveMessage(ctx, msg.Chat.ID, msg)
	if err != nil {
		b.log.Error("Failed to register media from %d: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, "Failed to store this file. Please try again.")
		return
	}

	link := token.DeepLink(b.gw.Username(), tok)
	if meta, ok := extractMedia(msg); ok && meta.FileSize > 0 {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Here is your share link (%s):\n\n%s", format.Size(meta.FileSize), link))
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Here is your share link:\n\n%s", link))
}

// collectSessionFile appends an admin's media message to their open batch
// session.
func (b *Bot) collectSessionFile(ctx context.Context, msg *tgbotapi.Message) {
	tok, err := b.archiveMessage(ctx, msg.Chat.ID, msg)
	if err != nil {
		b.log.Error("Failed to collect media from %d: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, "Failed to store this file, it was not added to the batch.")
		return
	}

	count, err := b.sessions.Append(msg.From.ID, tok)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Could not add the file: %v", err))
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Added file %d to the batch. Send more files, or /done to finish.", count))
}
