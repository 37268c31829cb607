package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/goshare/pkg/db/migrations"
	"github.com/mwantia/goshare/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// User operations

// UpsertUser inserts the user on first contact. For an existing user the
// display fields and last-activity timestamp are refreshed; joined timestamp,
// counters and ban flag stay untouched.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "username", "last_activity_at",
		}),
	}).Create(user).Error
}

func (s *SQLiteStore) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLiteStore) TouchUserActivity(ctx context.Context, telegramID int64) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("last_activity_at", time.Now().UTC()).Error
}

func (s *SQLiteStore) IncrementUserAccess(ctx context.Context, telegramID int64) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("files_accessed", gorm.Expr("files_accessed + 1")).Error
}

func (s *SQLiteStore) SetUserBanned(ctx context.Context, telegramID int64, banned bool) error {
	updates := map[string]any{"banned": banned}
	if banned {
		updates["banned_at"] = time.Now().UTC()
	} else {
		updates["banned_at"] = nil
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(updates).Error
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (s *SQLiteStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Pluck("telegram_id", &ids).Error
	return ids, err
}

// File operations

func (s *SQLiteStore) CreateFile(ctx context.Context, file *models.StoredFile) error {
	return s.db.WithContext(ctx).Create(file).Error
}

// GetFile resolves a file by share token. Disabled files are treated as
// absent so revoked links behave like stale ones.
func (s *SQLiteStore) GetFile(ctx context.Context, token string) (*models.StoredFile, error) {
	var file models.StoredFile
	err := s.db.WithContext(ctx).
		Where("token = ? AND disabled = ?", token, false).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *SQLiteStore) IncrementFileAccess(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Model(&models.StoredFile{}).
		Where("token = ?", token).
		Update("access_count", gorm.Expr("access_count + 1")).Error
}

func (s *SQLiteStore) SetFileDisabled(ctx context.Context, token string, disabled bool) error {
	return s.db.WithContext(ctx).Model(&models.StoredFile{}).
		Where("token = ?", token).
		Update("disabled", disabled).Error
}

func (s *SQLiteStore) CountFiles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.StoredFile{}).
		Where("disabled = ?", false).Count(&count).Error
	return count, err
}

// Batch operations

func (s *SQLiteStore) CreateBatch(ctx context.Context, batch *models.BatchLink) error {
	return s.db.WithContext(ctx).Create(batch).Error
}

// GetBatch resolves an active batch by share token.
func (s *SQLiteStore) GetBatch(ctx context.Context, token string) (*models.BatchLink, error) {
	var batch models.BatchLink
	err := s.db.WithContext(ctx).
		Where("token = ? AND active = ?", token, true).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *SQLiteStore) IncrementBatchAccess(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Model(&models.BatchLink{}).
		Where("token = ?", token).
		Update("access_count", gorm.Expr("access_count + 1")).Error
}

func (s *SQLiteStore) DeactivateBatch(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Model(&models.BatchLink{}).
		Where("token = ?", token).
		Update("active", false).Error
}

func (s *SQLiteStore) CountBatches(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.BatchLink{}).
		Where("active = ?", true).Count(&count).Error
	return count, err
}

// Delete queue operations

// UpsertDeleteQueueEntry inserts the entry or, when a row for the same
// (chat, message) pair is already pending, replaces its due time. This keeps
// at most one persisted row per key with the most recent schedule winning.
func (s *SQLiteStore) UpsertDeleteQueueEntry(ctx context.Context, entry *models.DeleteQueueEntry) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"delete_at", "created_at"}),
	}).Create(entry).Error
}

func (s *SQLiteStore) DueDeleteQueueEntries(ctx context.Context, now time.Time) ([]models.DeleteQueueEntry, error) {
	var entries []models.DeleteQueueEntry
	err := s.db.WithContext(ctx).
		Where("delete_at <= ?", now).
		Order("delete_at ASC").
		Find(&entries).Error
	return entries, err
}

// RemoveDeleteQueueEntry deletes the queue row. Removing a row that no longer
// exists is a no-op, which keeps deletion attempts idempotent.
func (s *SQLiteStore) RemoveDeleteQueueEntry(ctx context.Context, chatID int64, messageID int) error {
	return s.db.WithContext(ctx).
		Where("chat_id = ? AND message_id = ?", chatID, messageID).
		Delete(&models.DeleteQueueEntry{}).Error
}

func (s *SQLiteStore) CountPendingDeletes(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.DeleteQueueEntry{}).Count(&count).Error
	return count, err
}

// Setting operations

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return setting.Value, true, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}).Error
}
