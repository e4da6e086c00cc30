package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"food-assistant/internal/infrastructure/config"
	"food-assistant/internal/pkg/common"
)

const (
	defaultTTL             = 24 * time.Hour
	defaultMaxSize         = 10000
	defaultCleanupInterval = 10 * time.Minute
)

// MemoryStore 行程內的上下文儲存，帶 TTL 與 LRU 淘汰
type MemoryStore struct {
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	mu    sync.Mutex
	store map[string]memoryEntry
	stats memoryStats

	stop     chan struct{}
	stopOnce sync.Once
}

// memoryEntry 上下文條目
type memoryEntry struct {
	value       Context
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type memoryStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建記憶體儲存並啟動過期清理
func NewMemoryStore(cfg config.SessionConfig) *MemoryStore {
	m := &MemoryStore{
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		now:     time.Now,
		store:   make(map[string]memoryEntry),
		stop:    make(chan struct{}),
	}
	if m.ttl <= 0 {
		m.ttl = defaultTTL
	}
	if m.maxSize <= 0 {
		m.maxSize = defaultMaxSize
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	go m.startCleanup(interval)

	common.LogInfo("對話上下文儲存已初始化",
		zap.String("driver", DriverMemory),
		zap.Int("max_size", m.maxSize),
		zap.Duration("ttl", m.ttl),
		zap.Duration("cleanup_interval", interval),
	)
	return m
}

// Get 取得上下文
func (m *MemoryStore) Get(ctx context.Context, senderID string) (*Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.store[senderID]
	if !ok {
		m.stats.misses++
		return nil, ErrNotFound
	}
	now := m.now()
	if now.After(entry.expiresAt) {
		delete(m.store, senderID)
		m.stats.misses++
		m.stats.evictions++
		return nil, ErrNotFound
	}

	entry.lastAccess = now
	entry.accessCount++
	m.store[senderID] = entry
	m.stats.hits++

	value := entry.value
	return &value, nil
}

// Set 寫入上下文，已滿時先清過期再淘汰最少使用
func (m *MemoryStore) Set(ctx context.Context, senderID string, value *Context) error {
	if err := validSender(senderID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[senderID]; !exists && len(m.store) >= m.maxSize {
		m.cleanup()
		if len(m.store) >= m.maxSize {
			m.evictLRU()
		}
	}

	now := m.now()
	stored := *value
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}
	m.store[senderID] = memoryEntry{
		value:      stored,
		expiresAt:  now.Add(m.ttl),
		lastAccess: now,
	}
	return nil
}

// Delete 刪除上下文
func (m *MemoryStore) Delete(ctx context.Context, senderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, senderID)
	return nil
}

// startCleanup 定期清理過期條目，Close 後結束
func (m *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// cleanup 清理過期條目，呼叫前需持有鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}
	if count > 0 {
		common.LogDebug("Cleaned up expired session entries",
			zap.Int("count", count),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰最少使用的條目，呼叫前需持有鎖
func (m *MemoryStore) evictLRU() {
	var (
		oldestKey    string
		oldestAccess time.Time
		lowestCount  int
	)
	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestCount ||
			(entry.accessCount == lowestCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestCount = entry.accessCount
		}
	}
	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("對話上下文已淘汰(LRU)", zap.String("sender_id", oldestKey))
	}
}

// Stats 儲存統計
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"driver":    DriverMemory,
		"size":      len(m.store),
		"max_size":  m.maxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}

// Close 停止清理並清空
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]memoryEntry)
	common.LogInfo("對話上下文儲存已關閉",
		zap.Int64("hits", m.stats.hits),
		zap.Int64("misses", m.stats.misses),
		zap.Int64("evictions", m.stats.evictions),
	)
	return nil
}
