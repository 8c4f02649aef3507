package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hostwise-ai/hostwise/internal/nlp"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// ThreadState is the accumulated booking context for one conversation thread.
type ThreadState struct {
	Slots        nlp.Slots `json:"slots"`
	Greeted      bool      `json:"greeted"`
	MessageCount int       `json:"message_count"`
	LastActivity time.Time `json:"last_activity"`
}

func newThreadState() *ThreadState {
	return &ThreadState{Slots: nlp.Slots{}}
}

// SlotStore persists per-thread state across turns.
type SlotStore interface {
	Load(ctx context.Context, threadID string) (*ThreadState, error)
	Save(ctx context.Context, threadID string, state *ThreadState) error
	Delete(ctx context.Context, threadID string) error
	List(ctx context.Context) ([]string, error)
}

// MemorySlotStore keeps thread state in process memory. Used for tests and
// for running without Redis.
type MemorySlotStore struct {
	mu      sync.RWMutex
	threads map[string]*ThreadState
}

func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{threads: make(map[string]*ThreadState)}
}

func (s *MemorySlotStore) Load(_ context.Context, threadID string) (*ThreadState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.threads[threadID]
	if !ok {
		return newThreadState(), nil
	}
	cp := *state
	cp.Slots = state.Slots.Clone()
	return &cp, nil
}

func (s *MemorySlotStore) Save(_ context.Context, threadID string, state *ThreadState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *state
	cp.Slots = state.Slots.Clone()
	s.threads[threadID] = &cp
	return nil
}

func (s *MemorySlotStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
	return nil
}

func (s *MemorySlotStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.threads))
	for id := range s.threads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

const threadKeyPrefix = "hostwise:thread:"

// RedisSlotStore persists thread state in Redis with a sliding TTL.
type RedisSlotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlotStore(client *redis.Client, ttl time.Duration) *RedisSlotStore {
	return &RedisSlotStore{client: client, ttl: ttl}
}

func (s *RedisSlotStore) Load(ctx context.Context, threadID string) (*ThreadState, error) {
	raw, err := s.client.Get(ctx, threadKeyPrefix+threadID).Bytes()
	if err == redis.Nil {
		return newThreadState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("conversation: load thread state: %w", err)
	}
	var state ThreadState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("conversation: decode thread state: %w", err)
	}
	if state.Slots == nil {
		state.Slots = nlp.Slots{}
	}
	return &state, nil
}

func (s *RedisSlotStore) Save(ctx context.Context, threadID string, state *ThreadState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("conversation: encode thread state: %w", err)
	}
	if err := s.client.Set(ctx, threadKeyPrefix+threadID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("conversation: save thread state: %w", err)
	}
	return nil
}

func (s *RedisSlotStore) Delete(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, threadKeyPrefix+threadID).Err(); err != nil {
		return fmt.Errorf("conversation: delete thread state: %w", err)
	}
	return nil
}

func (s *RedisSlotStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, threadKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), threadKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("conversation: list threads: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Tracker extracts booking details from each utterance and merges them into
// the thread's accumulated state.
type Tracker struct {
	store  SlotStore
	logger *logging.Logger
	now    func() time.Time
}

func NewTracker(store SlotStore, logger *logging.Logger) *Tracker {
	return &Tracker{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the tracker's clock. Test use only.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Observe extracts slots from the utterance, merges them into the stored
// state (newer values win), and persists the result. Re-observing the same
// utterance leaves the state unchanged.
func (t *Tracker) Observe(ctx context.Context, threadID, utterance string) (*ThreadState, error) {
	state, err := t.store.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}

	extracted := nlp.ExtractSlots(utterance)
	for slot, value := range extracted {
		if value == "" {
			continue
		}
		if prev, ok := state.Slots[slot]; ok && prev != value {
			t.logger.Debug("slot updated", "thread_id", threadID, "slot", slot, "old", prev, "new", value)
		}
		state.Slots[slot] = value
	}
	state.MessageCount++
	state.LastActivity = t.now()

	if err := t.store.Save(ctx, threadID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Missing reports the required booking fields not yet collected, in the
// order name, date, time, party_size.
func Missing(state *ThreadState) []string {
	var missing []string
	for _, slot := range nlp.RequiredSlots {
		if state == nil || state.Slots[slot] == "" {
			missing = append(missing, slot)
		}
	}
	return missing
}

// Summarize renders the collected fields for the system prompt, e.g.
// "name: Dan, date: tomorrow, party_size: 4".
func Summarize(state *ThreadState) string {
	if state == nil {
		return ""
	}
	var parts []string
	for _, slot := range append(append([]string{}, nlp.RequiredSlots...), nlp.SlotPhone) {
		if v := state.Slots[slot]; v != "" {
			parts = append(parts, slot+": "+v)
		}
	}
	return strings.Join(parts, ", ")
}
