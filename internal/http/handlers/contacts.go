package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/hostwise-ai/hostwise/internal/crm"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// ContactDirectory is the slice of the CRM store the contacts API reads.
type ContactDirectory interface {
	Recent(ctx context.Context, limit int) ([]*crm.Contact, error)
	Search(ctx context.Context, q string) ([]*crm.Contact, error)
}

// ContactsHandler serves the staff-facing contact directory.
type ContactsHandler struct {
	contacts ContactDirectory
	logger   *logging.Logger
}

func NewContactsHandler(contacts ContactDirectory, logger *logging.Logger) *ContactsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContactsHandler{contacts: contacts, logger: logger}
}

// List returns the most recent contacts, or a name/phone search when ?q= is
// set. ?limit= bounds the recent listing.
func (h *ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		rows []*crm.Contact
		err  error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		rows, err = h.contacts.Search(r.Context(), q)
	} else {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		rows, err = h.contacts.Recent(r.Context(), limit)
	}
	if err != nil {
		h.logger.Error("list contacts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to list contacts")
		return
	}
	if rows == nil {
		rows = []*crm.Contact{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": rows, "count": len(rows)})
}
