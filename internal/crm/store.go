package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hostwise-ai/hostwise/internal/nlp"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

var (
	// ErrPhoneRequired is returned when no phone number is supplied
	ErrPhoneRequired = errors.New("phone number is required")

	// ErrContactNotFound is returned when no contact has the given phone
	ErrContactNotFound = errors.New("contact not found")
)

// Contact is a guest record keyed by phone number. LastInteraction is an
// append-only log of timestamped notes.
type Contact struct {
	Phone           string    `json:"phone"`
	Name            string    `json:"name,omitempty"`
	LastInteraction string    `json:"last_interaction,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists guest contacts for repeat-customer recognition.
type Store struct {
	db     db
	logger *logging.Logger
	now    func() time.Time
}

// NewStore creates a CRM store backed by pgx.
func NewStore(db db, logger *logging.Logger) *Store {
	if db == nil {
		panic("crm: pgx pool required")
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Upsert stores or refreshes a contact. A new interaction summary is
// appended to the existing log with a timestamp.
func (s *Store) Upsert(ctx context.Context, phone, name, interactionSummary string) (*Contact, error) {
	phone = normalizePhone(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	existing, err := s.GetByPhone(ctx, phone)
	if err != nil && !errors.Is(err, ErrContactNotFound) {
		return nil, err
	}
	if existing == nil {
		return s.create(ctx, phone, name, interactionSummary)
	}
	return s.update(ctx, existing, name, interactionSummary)
}

func (s *Store) create(ctx context.Context, phone, name, interactionSummary string) (*Contact, error) {
	if interactionSummary == "" {
		interactionSummary = "Initial contact"
	}
	entry := s.stampNote(interactionSummary)

	query := `
		INSERT INTO crm_contacts (phone, name, last_interaction)
		VALUES ($1, $2, $3)
		RETURNING phone, name, last_interaction, created_at, updated_at
	`
	var c Contact
	if err := s.db.QueryRow(ctx, query, phone, name, entry).Scan(
		&c.Phone, &c.Name, &c.LastInteraction, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("crm: create contact: %w", err)
	}
	s.logger.Info("crm contact created", "phone", phone)
	return &c, nil
}

func (s *Store) update(ctx context.Context, existing *Contact, name, interactionSummary string) (*Contact, error) {
	if name == "" {
		name = existing.Name
	}
	log := existing.LastInteraction
	if interactionSummary != "" {
		if log != "" {
			log += "\n"
		}
		log += s.stampNote(interactionSummary)
	}

	query := `
		UPDATE crm_contacts
		SET name = $2, last_interaction = $3, updated_at = now()
		WHERE phone = $1
		RETURNING phone, name, last_interaction, created_at, updated_at
	`
	var c Contact
	if err := s.db.QueryRow(ctx, query, existing.Phone, name, log).Scan(
		&c.Phone, &c.Name, &c.LastInteraction, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("crm: update contact: %w", err)
	}
	s.logger.Info("crm contact updated", "phone", existing.Phone)
	return &c, nil
}

// AddNote appends a timestamped note to a contact's interaction log,
// creating the contact first if needed.
func (s *Store) AddNote(ctx context.Context, phone, note string) (*Contact, error) {
	phone = normalizePhone(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if _, err := s.GetByPhone(ctx, phone); errors.Is(err, ErrContactNotFound) {
		if _, err := s.create(ctx, phone, "", "Auto-created to store interaction note"); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	existing, err := s.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, existing, "", note)
}

// GetByPhone retrieves one contact.
func (s *Store) GetByPhone(ctx context.Context, phone string) (*Contact, error) {
	query := `
		SELECT phone, name, last_interaction, created_at, updated_at
		FROM crm_contacts
		WHERE phone = $1
	`
	var c Contact
	err := s.db.QueryRow(ctx, query, normalizePhone(phone)).Scan(
		&c.Phone, &c.Name, &c.LastInteraction, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("crm: get contact: %w", err)
	}
	return &c, nil
}

// Recent returns the most recently created contacts.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Contact, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT phone, name, last_interaction, created_at, updated_at
		FROM crm_contacts
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("crm: recent contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// Search matches contacts by name or phone substring.
func (s *Store) Search(ctx context.Context, q string) ([]*Contact, error) {
	query := `
		SELECT phone, name, last_interaction, created_at, updated_at
		FROM crm_contacts
		WHERE name ILIKE $1 OR phone ILIKE $1
		ORDER BY updated_at DESC
	`
	rows, err := s.db.Query(ctx, query, "%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("crm: search contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

func (s *Store) stampNote(note string) string {
	return fmt.Sprintf("[%s] %s", s.now().Format("2006-01-02 15:04"), note)
}

// normalizePhone prefers the E.164 form but keeps the raw digits when the
// number does not normalize.
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if cleaned := nlp.CleanPhoneNumber(phone); cleaned != "" {
		return cleaned
	}
	return phone
}

func scanContacts(rows pgx.Rows) ([]*Contact, error) {
	var out []*Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.Phone, &c.Name, &c.LastInteraction, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("crm: scan contact: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("crm: rows failed: %w", err)
	}
	return out, nil
}
