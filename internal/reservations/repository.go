package reservations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for reservation storage.
type Repository interface {
	Insert(ctx context.Context, r *Reservation) (*Reservation, error)
	GetByID(ctx context.Context, id int64) (*Reservation, error)
	Update(ctx context.Context, id int64, patch Patch) (*Reservation, error)
	Delete(ctx context.Context, id int64) (*Reservation, error)
	// ListBySlot returns reservations on date whose time matches any of the
	// given representations (stores may hold HH:MM or HH:MM:SS).
	ListBySlot(ctx context.Context, date string, times []string) ([]*Reservation, error)
	ListByDate(ctx context.Context, date string) ([]*Reservation, error)
	Count(ctx context.Context) (int, error)
}

// InMemoryRepository implements Repository with in-memory storage. Used in
// tests and when no database is configured.
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*Reservation
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID: 1,
		rows:   make(map[int64]*Reservation),
	}
}

// Insert assigns an id and stores the reservation.
func (r *InMemoryRepository) Insert(ctx context.Context, res *Reservation) (*Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *res
	stored.ID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.nextID++
	r.rows[stored.ID] = &stored

	out := stored
	return &out, nil
}

// GetByID retrieves a reservation by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *row
	return &out, nil
}

// Update applies the non-nil patch fields and returns the updated row.
func (r *InMemoryRepository) Update(ctx context.Context, id int64, patch Patch) (*Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		row.Name = *patch.Name
	}
	if patch.Date != nil {
		row.Date = *patch.Date
	}
	if patch.Time != nil {
		row.Time = *patch.Time
	}
	if patch.PartySize != nil {
		row.Guests = *patch.PartySize
	}
	if patch.Phone != nil {
		row.Phone = *patch.Phone
	}
	out := *row
	return &out, nil
}

// Delete removes the reservation and returns the deleted row.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) (*Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.rows, id)
	out := *row
	return &out, nil
}

// ListBySlot returns reservations matching the date and any of the times.
func (r *InMemoryRepository) ListBySlot(ctx context.Context, date string, times []string) ([]*Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Reservation
	for _, row := range r.rows {
		if row.Date != date {
			continue
		}
		for _, t := range times {
			if row.Time == t {
				c := *row
				out = append(out, &c)
				break
			}
		}
	}
	sortByID(out)
	return out, nil
}

// ListByDate returns all reservations on the given date ordered by time.
func (r *InMemoryRepository) ListByDate(ctx context.Context, date string) ([]*Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Reservation
	for _, row := range r.rows {
		if row.Date == date {
			c := *row
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Count returns the total number of reservations.
func (r *InMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}

func sortByID(rows []*Reservation) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
}
