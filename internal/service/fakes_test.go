package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mwantia/goshare/internal/config/server"
	"github.com/mwantia/goshare/internal/gateway"
	"github.com/mwantia/goshare/pkg/db/store"
	"github.com/mwantia/goshare/pkg/log"
)

func testLogger() log.LoggerService {
	cfg := server.GetServerDefault().Log
	cfg.NoTerminal = true
	return log.NewLoggerService("test", cfg)
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "goshare.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("failed to connect store: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

type sentCopy struct {
	Req gateway.CopyRequest
}

type sentMessage struct {
	Req gateway.SendRequest
}

// fakeGateway implements gateway.Gateway with scriptable behaviour.
type fakeGateway struct {
	mu sync.Mutex

	username string

	chats   map[int64]*gateway.ChatInfo
	members map[int64]map[int64]gateway.MemberStatus
	invites map[int64]string

	chatErr   map[int64]error
	memberErr map[int64]error
	inviteErr map[int64]error
	copyErr   map[int]error

	sent    []sentMessage
	copies  []sentCopy
	deleted [][2]int64 // chatID, messageID

	deleteErr error

	nextMessageID int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		username:      "goshare_bot",
		chats:         make(map[int64]*gateway.ChatInfo),
		members:       make(map[int64]map[int64]gateway.MemberStatus),
		invites:       make(map[int64]string),
		chatErr:       make(map[int64]error),
		memberErr:     make(map[int64]error),
		inviteErr:     make(map[int64]error),
		copyErr:       make(map[int]error),
		nextMessageID: 1000,
	}
}

func (f *fakeGateway) setMember(chatID, userID int64, status gateway.MemberStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[chatID] == nil {
		f.members[chatID] = make(map[int64]gateway.MemberStatus)
	}
	f.members[chatID][userID] = status
}

func (f *fakeGateway) Username() string {
	return f.username
}

func (f *fakeGateway) GetChat(ctx context.Context, chatID int64) (*gateway.ChatInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.chatErr[chatID]; err != nil {
		return nil, err
	}
	if info, ok := f.chats[chatID]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("chat %d not found", chatID)
}

func (f *fakeGateway) GetChatMember(ctx context.Context, chatID, userID int64) (gateway.MemberStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.memberErr[chatID]; err != nil {
		return "", err
	}
	if status, ok := f.members[chatID][userID]; ok {
		return status, nil
	}
	return gateway.StatusLeft, nil
}

func (f *fakeGateway) ExportInviteLink(ctx context.Context, chatID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.inviteErr[chatID]; err != nil {
		return "", err
	}
	if link, ok := f.invites[chatID]; ok {
		return link, nil
	}
	return "", fmt.Errorf("no invite link for chat %d", chatID)
}

func (f *fakeGateway) SendMessage(ctx context.Context, req gateway.SendRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{Req: req})
	f.nextMessageID++
	return f.nextMessageID, nil
}

func (f *fakeGateway) CopyMessage(ctx context.Context, req gateway.CopyRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.copyErr[req.MessageID]; err != nil {
		return 0, err
	}
	f.copies = append(f.copies, sentCopy{Req: req})
	f.nextMessageID++
	return f.nextMessageID, nil
}

func (f *fakeGateway) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMessageID++
	return f.nextMessageID, nil
}

func (f *fakeGateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, [2]int64{chatID, int64(messageID)})
	return nil
}

func (f *fakeGateway) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

func (f *fakeGateway) copyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.copies)
}
