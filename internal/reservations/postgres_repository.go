package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the slice of pgxpool.Pool we use; pgxmock satisfies it in tests.
type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores reservations in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("reservations: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Insert inserts a new row and returns it with the assigned id.
func (r *PostgresRepository) Insert(ctx context.Context, res *Reservation) (*Reservation, error) {
	query := `
		INSERT INTO bookings (name, date, time, guests, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	stored := *res
	if err := r.db.QueryRow(ctx, query,
		res.Name,
		res.Date,
		res.Time,
		res.Guests,
		res.Phone,
	).Scan(&stored.ID, &stored.CreatedAt); err != nil {
		return nil, storeErr("insert failed", err)
	}
	return &stored, nil
}

// GetByID fetches one reservation.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Reservation, error) {
	query := `
		SELECT id, name, date, time, guests, phone, created_at
		FROM bookings
		WHERE id = $1
	`
	var res Reservation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&res.ID, &res.Name, &res.Date, &res.Time, &res.Guests, &res.Phone, &res.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get failed", err)
	}
	return &res, nil
}

// Update applies the non-nil patch fields and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id int64, patch Patch) (*Reservation, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Time != nil {
		add("time", *patch.Time)
	}
	if patch.PartySize != nil {
		add("guests", *patch.PartySize)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if len(sets) == 0 {
		return nil, ErrNoChanges
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE bookings
		SET %s
		WHERE id = $%d
		RETURNING id, name, date, time, guests, phone, created_at
	`, strings.Join(sets, ", "), len(args))

	var res Reservation
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&res.ID, &res.Name, &res.Date, &res.Time, &res.Guests, &res.Phone, &res.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("update failed", err)
	}
	return &res, nil
}

// Delete removes the reservation and returns the deleted row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*Reservation, error) {
	query := `
		DELETE FROM bookings
		WHERE id = $1
		RETURNING id, name, date, time, guests, phone, created_at
	`
	var res Reservation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&res.ID, &res.Name, &res.Date, &res.Time, &res.Guests, &res.Phone, &res.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("delete failed", err)
	}
	return &res, nil
}

// ListBySlot returns reservations on date whose time matches any of times.
func (r *PostgresRepository) ListBySlot(ctx context.Context, date string, times []string) ([]*Reservation, error) {
	query := `
		SELECT id, name, date, time, guests, phone, created_at
		FROM bookings
		WHERE date = $1 AND time = ANY($2)
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, date, times)
	if err != nil {
		return nil, storeErr("list slot failed", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// ListByDate returns all reservations on the given date ordered by time.
func (r *PostgresRepository) ListByDate(ctx context.Context, date string) ([]*Reservation, error) {
	query := `
		SELECT id, name, date, time, guests, phone, created_at
		FROM bookings
		WHERE date = $1
		ORDER BY time, id
	`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, storeErr("list date failed", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// Count returns the total number of reservations.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n); err != nil {
		return 0, storeErr("count failed", err)
	}
	return n, nil
}

// storeErr tags a database failure with ErrStoreUnavailable so callers can
// pick the retryable path; the underlying pgx error stays in the message.
func storeErr(op string, err error) error {
	return fmt.Errorf("reservations: %s: %w: %v", op, ErrStoreUnavailable, err)
}

func scanReservations(rows pgx.Rows) ([]*Reservation, error) {
	var out []*Reservation
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(
			&res.ID, &res.Name, &res.Date, &res.Time, &res.Guests, &res.Phone, &res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("reservations: scan failed: %w", err)
		}
		out = append(out, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reservations: rows failed: %w", err)
	}
	return out, nil
}
