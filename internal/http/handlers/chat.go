package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hostwise-ai/hostwise/internal/conversation"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// maxMessageLength bounds a single chat message body.
const maxMessageLength = 4000

// BookingCounter exposes the reservation counts surfaced on /api/stats.
type BookingCounter interface {
	Count(ctx context.Context) (int, error)
}

// ChatHandler serves the guest-facing chat API.
type ChatHandler struct {
	svc      *conversation.Service
	bookings BookingCounter
	logger   *logging.Logger
}

// NewChatHandler creates the chat handler. bookings may be nil; /api/stats
// then omits the reservation count.
func NewChatHandler(svc *conversation.Service, bookings BookingCounter, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{svc: svc, bookings: bookings, logger: logger}
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ChatResponse is the POST /api/chat reply.
type ChatResponse struct {
	Response  string    `json:"response"`
	ThreadID  string    `json:"thread_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat handles one guest turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "message is too long")
		return
	}

	reply, err := h.svc.HandleMessage(r.Context(), req.ThreadID, req.Message)
	if err != nil {
		h.logger.Error("chat turn failed", "error", err, "thread_id", req.ThreadID)
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:  reply.Response,
		ThreadID:  reply.ThreadID,
		Timestamp: reply.Timestamp,
	})
}

// Health reports service liveness.
func (h *ChatHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListThreads returns the active thread ids.
func (h *ChatHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.Threads(r.Context())
	if err != nil {
		h.logger.Error("list threads failed", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to list threads")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"threads": ids, "count": len(ids)})
}

// GetThread returns one thread's accumulated booking state.
func (h *ChatHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	state, err := h.svc.ThreadState(r.Context(), threadID)
	if err != nil {
		h.logger.Error("load thread failed", "error", err, "thread_id", threadID)
		writeError(w, http.StatusInternalServerError, "unable to load thread")
		return
	}
	missing := conversation.Missing(state)
	if missing == nil {
		missing = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"thread_id":     threadID,
		"slots":         state.Slots,
		"missing":       missing,
		"greeted":       state.Greeted,
		"message_count": state.MessageCount,
	})
}

// DeleteThread removes a thread's state and transcript.
func (h *ChatHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if err := h.svc.DeleteThread(r.Context(), threadID); err != nil {
		h.logger.Error("delete thread failed", "error", err, "thread_id", threadID)
		writeError(w, http.StatusInternalServerError, "unable to delete thread")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "thread_id": threadID})
}

// DeleteAllThreads removes every thread's state and transcript.
func (h *ChatHandler) DeleteAllThreads(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteAllThreads(r.Context())
	if err != nil {
		h.logger.Error("delete all threads failed", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to delete threads")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "count": n})
}

// Stats reports thread and reservation counts.
func (h *ChatHandler) Stats(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"capabilities": h.svc.Capabilities()}

	ids, err := h.svc.Threads(r.Context())
	if err != nil {
		h.logger.Error("stats: list threads failed", "error", err)
	} else {
		out["active_threads"] = len(ids)
	}

	if h.bookings != nil {
		count, err := h.bookings.Count(r.Context())
		if err != nil {
			h.logger.Error("stats: reservation count failed", "error", err)
		} else {
			out["total_reservations"] = count
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
