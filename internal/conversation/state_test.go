package conversation

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hostwise-ai/hostwise/internal/nlp"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

var trackerNow = time.Date(2026, time.March, 6, 12, 0, 0, 0, time.UTC)

func newTestTracker(store SlotStore) *Tracker {
	return NewTracker(store, logging.New("error")).WithClock(func() time.Time { return trackerNow })
}

func TestTrackerAccumulatesAcrossTurns(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(NewMemorySlotStore())

	state, err := tracker.Observe(ctx, "t1", "Hi, I'd like a table for 4 people tomorrow")
	if err != nil {
		t.Fatal(err)
	}
	want := nlp.Slots{nlp.SlotPartySize: "4", nlp.SlotDate: "tomorrow"}
	if !reflect.DeepEqual(state.Slots, want) {
		t.Fatalf("after turn 1: got %v, want %v", state.Slots, want)
	}

	state, err = tracker.Observe(ctx, "t1", "my name is Dan and we'll come at 7pm")
	if err != nil {
		t.Fatal(err)
	}
	if state.Slots[nlp.SlotName] != "Dan" || state.Slots[nlp.SlotTime] != "7pm" {
		t.Errorf("after turn 2: got %v", state.Slots)
	}
	if state.Slots[nlp.SlotPartySize] != "4" || state.Slots[nlp.SlotDate] != "tomorrow" {
		t.Errorf("turn 2 dropped earlier slots: %v", state.Slots)
	}
	if state.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", state.MessageCount)
	}
}

func TestTrackerMergeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(NewMemorySlotStore())

	utterance := "book a table for 4 tomorrow at 19:00, name is Dan"
	first, err := tracker.Observe(ctx, "t1", utterance)
	if err != nil {
		t.Fatal(err)
	}
	second, err := tracker.Observe(ctx, "t1", utterance)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Slots, second.Slots) {
		t.Errorf("repeat observation changed slots: %v vs %v", first.Slots, second.Slots)
	}
}

func TestTrackerNewerValueWins(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(NewMemorySlotStore())

	if _, err := tracker.Observe(ctx, "t1", "table for 4 please"); err != nil {
		t.Fatal(err)
	}
	state, err := tracker.Observe(ctx, "t1", "actually make that a party of 6")
	if err != nil {
		t.Fatal(err)
	}
	if got := state.Slots[nlp.SlotPartySize]; got != "6" {
		t.Errorf("party_size = %q, want 6", got)
	}
}

func TestMissing(t *testing.T) {
	state := newThreadState()
	state.Slots[nlp.SlotName] = "Dan"
	state.Slots[nlp.SlotDate] = "tomorrow"

	got := Missing(state)
	want := []string{nlp.SlotTime, nlp.SlotPartySize}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Missing = %v, want %v", got, want)
	}

	state.Slots[nlp.SlotTime] = "19:00"
	state.Slots[nlp.SlotPartySize] = "4"
	if got := Missing(state); got != nil {
		t.Errorf("Missing with full state = %v, want nil", got)
	}

	if got := Missing(nil); !reflect.DeepEqual(got, nlp.RequiredSlots) {
		t.Errorf("Missing(nil) = %v, want all required", got)
	}
}

func TestSummarize(t *testing.T) {
	state := newThreadState()
	state.Slots[nlp.SlotDate] = "tomorrow"
	state.Slots[nlp.SlotName] = "Dan"
	state.Slots[nlp.SlotPhone] = "+15551234567"

	got := Summarize(state)
	want := "name: Dan, date: tomorrow, phone: +15551234567"
	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
	if Summarize(nil) != "" {
		t.Error("Summarize(nil) should be empty")
	}
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisSlotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRedisSlotStore(newRedisClient(t), time.Hour)

	state := newThreadState()
	state.Slots[nlp.SlotName] = "Dan"
	state.Greeted = true
	state.MessageCount = 3
	if err := store.Save(ctx, "t1", state); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Slots[nlp.SlotName] != "Dan" || !loaded.Greeted || loaded.MessageCount != 3 {
		t.Errorf("unexpected state: %+v", loaded)
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"t1"}) {
		t.Errorf("List = %v", ids)
	}

	if err := store.Delete(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	loaded, err = store.Load(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Slots) != 0 {
		t.Errorf("deleted thread should load empty, got %+v", loaded)
	}
}

func TestRedisSlotStoreUnknownThreadIsEmpty(t *testing.T) {
	store := NewRedisSlotStore(newRedisClient(t), time.Hour)
	state, err := store.Load(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if state.Slots == nil || len(state.Slots) != 0 || state.Greeted {
		t.Errorf("unexpected fresh state: %+v", state)
	}
}
