// Package session 保存每個對話最後一次找到的食譜。
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-assistant/internal/infrastructure/config"
)

// ErrNotFound 沒有上下文或已過期
var ErrNotFound = errors.New("session context not found")

// Context 對話上下文
type Context struct {
	LastRecipeTitle string    `json:"last_recipe_title"`
	LastRecipeID    int       `json:"last_recipe_id"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasRecipe 是否已有可說明的食譜
func (c *Context) HasRecipe() bool {
	return c != nil && c.LastRecipeID > 0
}

// Store 對話上下文儲存
type Store interface {
	Get(ctx context.Context, senderID string) (*Context, error)
	Set(ctx context.Context, senderID string, value *Context) error
	Delete(ctx context.Context, senderID string) error
	Stats() map[string]interface{}
	Close() error
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// NewStore 依設定建立儲存
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverMemory:
		return NewMemoryStore(cfg), nil
	case DriverRedis:
		return NewRedisStore(cfg)
	case DriverSQLite:
		return NewSQLiteStore(cfg)
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}

func validSender(senderID string) error {
	if strings.TrimSpace(senderID) == "" {
		return errors.New("sender id is required")
	}
	return nil
}
