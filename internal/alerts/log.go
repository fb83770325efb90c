package alerts

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
)

const DailyAlertLogKey = "alerts:lowstock:daily"

type Entry struct {
	ProductID string    `json:"product_id"`
	Product   string    `json:"product"`
	Quantity  int       `json:"quantity"`
	Threshold int       `json:"threshold"`
	Status    string    `json:"status"`
	Time      time.Time `json:"time"`
}

// Log accumulates alert entries until the next digest drains them.
type Log interface {
	Append(ctx context.Context, e Entry) error
	Drain(ctx context.Context) ([]Entry, error)
}

type MemoryLog struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (m *MemoryLog) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return nil
}

func (m *MemoryLog) Drain(_ context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.entries
	m.entries = nil
	return out, nil
}

type RedisLog struct {
	rdb *redis.Client
}

func NewRedisLog(rdb *redis.Client) *RedisLog {
	return &RedisLog{rdb: rdb}
}

func (r *RedisLog) Append(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.rdb.RPush(ctx, DailyAlertLogKey, data).Err()
}

// Drain reads and clears the list in one transaction.
func (r *RedisLog) Drain(ctx context.Context) ([]Entry, error) {
	var items *redis.StringSliceCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		items = pipe.LRange(ctx, DailyAlertLogKey, 0, -1)
		pipe.Del(ctx, DailyAlertLogKey)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, item := range items.Val() {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			obs.Logger.Warn("skipping malformed alert entry", "err", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
