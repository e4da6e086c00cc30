package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"food-assistant/internal/infrastructure/config"
	"food-assistant/internal/pkg/common"
)

// SQLiteStore 以 SQLite 保存上下文，過期在讀取時判斷
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore 開啟資料庫並建立資料表
func NewSQLiteStore(cfg config.SessionConfig) (*SQLiteStore, error) {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// 單一寫入連線，避免 database is locked
	db.SetMaxOpenConns(1)

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &SQLiteStore{db: db, ttl: ttl, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if n, err := s.Purge(context.Background()); err == nil && n > 0 {
		common.LogInfo("已清除過期的對話上下文", zap.Int64("count", n))
	}

	common.LogInfo("對話上下文儲存已初始化",
		zap.String("driver", DriverSQLite),
		zap.String("path", cfg.SQLitePath),
		zap.Duration("ttl", ttl),
	)
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS conversation_context (
        sender_id TEXT PRIMARY KEY,
        last_recipe_title TEXT NOT NULL,
        last_recipe_id INTEGER NOT NULL,
        updated_at INTEGER NOT NULL,
        expires_at INTEGER NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_conversation_context_expires_at ON conversation_context(expires_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get 取得上下文
func (s *SQLiteStore) Get(ctx context.Context, senderID string) (*Context, error) {
	query := `
        SELECT last_recipe_title, last_recipe_id, updated_at
        FROM conversation_context
        WHERE sender_id = ? AND expires_at > ?
    `
	var (
		value     Context
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, query, senderID, s.now().UnixNano()).
		Scan(&value.LastRecipeTitle, &value.LastRecipeID, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	value.UpdatedAt = time.Unix(0, updatedAt)
	return &value, nil
}

// Set 寫入或覆蓋上下文
func (s *SQLiteStore) Set(ctx context.Context, senderID string, value *Context) error {
	if err := validSender(senderID); err != nil {
		return err
	}

	now := s.now()
	updatedAt := value.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	query := `
        INSERT INTO conversation_context (sender_id, last_recipe_title, last_recipe_id, updated_at, expires_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(sender_id) DO UPDATE SET
            last_recipe_title = excluded.last_recipe_title,
            last_recipe_id = excluded.last_recipe_id,
            updated_at = excluded.updated_at,
            expires_at = excluded.expires_at
    `
	_, err := s.db.ExecContext(ctx, query,
		senderID, value.LastRecipeTitle, value.LastRecipeID,
		updatedAt.UnixNano(), now.Add(s.ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete 刪除上下文
func (s *SQLiteStore) Delete(ctx context.Context, senderID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_context WHERE sender_id = ?`, senderID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Purge 刪除已過期的資料列
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversation_context WHERE expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// Stats 資料列與連線統計
func (s *SQLiteStore) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"driver":           DriverSQLite,
		"open_connections": s.db.Stats().OpenConnections,
	}
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM conversation_context`).Scan(&count); err == nil {
		stats["size"] = count
	}
	return stats
}

// Close 關閉資料庫
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
