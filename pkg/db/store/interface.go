package store

import (
	"context"
	"time"

	"github.com/mwantia/goshare/pkg/db/models"
)

// Store defines the interface for database operations
type Store interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// User operations
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	TouchUserActivity(ctx context.Context, telegramID int64) error
	IncrementUserAccess(ctx context.Context, telegramID int64) error
	SetUserBanned(ctx context.Context, telegramID int64, banned bool) error
	CountUsers(ctx context.Context) (int64, error)
	ListUserIDs(ctx context.Context) ([]int64, error)

	// File operations
	CreateFile(ctx context.Context, file *models.StoredFile) error
	GetFile(ctx context.Context, token string) (*models.StoredFile, error)
	IncrementFileAccess(ctx context.Context, token string) error
	SetFileDisabled(ctx context.Context, token string, disabled bool) error
	CountFiles(ctx context.Context) (int64, error)

	// Batch operations
	CreateBatch(ctx context.Context, batch *models.BatchLink) error
	GetBatch(ctx context.Context, token string) (*models.BatchLink, error)
	IncrementBatchAccess(ctx context.Context, token string) error
	DeactivateBatch(ctx context.Context, token string) error
	CountBatches(ctx context.Context) (int64, error)

	// Delete queue operations
	UpsertDeleteQueueEntry(ctx context.Context, entry *models.DeleteQueueEntry) error
	DueDeleteQueueEntries(ctx context.Context, now time.Time) ([]models.DeleteQueueEntry, error)
	RemoveDeleteQueueEntry(ctx context.Context, chatID int64, messageID int) error
	CountPendingDeletes(ctx context.Context) (int64, error)

	// Setting operations
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}
