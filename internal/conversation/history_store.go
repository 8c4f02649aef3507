package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxHistoryMessages bounds the transcript sent to the model; older turns
// are dropped from the head.
const maxHistoryMessages = 40

// HistoryStore persists the per-thread conversation transcript.
type HistoryStore interface {
	Append(ctx context.Context, threadID string, msgs ...ChatMessage) error
	Load(ctx context.Context, threadID string) ([]ChatMessage, error)
	Clear(ctx context.Context, threadID string) error
}

// MemoryHistoryStore keeps transcripts in process memory.
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	threads map[string][]ChatMessage
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{threads: make(map[string][]ChatMessage)}
}

func (s *MemoryHistoryStore) Append(_ context.Context, threadID string, msgs ...ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.threads[threadID], msgs...)
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	s.threads[threadID] = history
	return nil
}

func (s *MemoryHistoryStore) Load(_ context.Context, threadID string) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.threads[threadID]
	out := make([]ChatMessage, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryHistoryStore) Clear(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
	return nil
}

const historyKeyPrefix = "hostwise:history:"

// RedisHistoryStore keeps transcripts in a Redis list with a sliding TTL.
type RedisHistoryStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHistoryStore(client *redis.Client, ttl time.Duration) *RedisHistoryStore {
	return &RedisHistoryStore{client: client, ttl: ttl}
}

func (s *RedisHistoryStore) Append(ctx context.Context, threadID string, msgs ...ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	key := historyKeyPrefix + threadID
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("conversation: encode history message: %w", err)
		}
		values = append(values, raw)
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -maxHistoryMessages, -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("conversation: append history: %w", err)
	}
	return nil
}

func (s *RedisHistoryStore) Load(ctx context.Context, threadID string) ([]ChatMessage, error) {
	raw, err := s.client.LRange(ctx, historyKeyPrefix+threadID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("conversation: load history: %w", err)
	}
	out := make([]ChatMessage, 0, len(raw))
	for _, item := range raw {
		var m ChatMessage
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("conversation: decode history message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *RedisHistoryStore) Clear(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, historyKeyPrefix+threadID).Err(); err != nil {
		return fmt.Errorf("conversation: clear history: %w", err)
	}
	return nil
}
