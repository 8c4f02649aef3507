package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostwise-ai/hostwise/internal/conversation"
	"github.com/hostwise-ai/hostwise/internal/crm"
	"github.com/hostwise-ai/hostwise/internal/http/handlers"
	"github.com/hostwise-ai/hostwise/internal/tools"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

type staticLLM struct{}

func (staticLLM) Provider() string { return "test" }

func (staticLLM) Chat(context.Context, conversation.LLMRequest) (*conversation.LLMResponse, error) {
	return &conversation.LLMResponse{Text: "hi", StopReason: conversation.StopEndTurn}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.New("error")
	svc := conversation.NewService(
		staticLLM{},
		tools.NewRegistry(logger, nil),
		conversation.NewTracker(conversation.NewMemorySlotStore(), logger),
		conversation.NewMemoryHistoryStore(),
		logger,
		nil,
		conversation.ServiceConfig{Model: "test-model"},
	)
	return New(&Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(svc, nil, logger),
		ContactsHandler:    handlers.NewContactsHandler(emptyDirectory{}, logger),
		CORSAllowedOrigins: []string{"https://widget.example.com"},
	})
}

type emptyDirectory struct{}

func (emptyDirectory) Recent(context.Context, int) ([]*crm.Contact, error) { return nil, nil }
func (emptyDirectory) Search(context.Context, string) ([]*crm.Contact, error) {
	return nil, nil
}

func TestRouterRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method, path, body string
		wantStatus         int
	}{
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodPost, "/api/chat", `{"message":"hello"}`, http.StatusOK},
		{http.MethodGet, "/api/threads", "", http.StatusOK},
		{http.MethodGet, "/api/stats", "", http.StatusOK},
		{http.MethodGet, "/api/contacts", "", http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
		{http.MethodGet, "/api/chat", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://widget.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://widget.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origins get no CORS headers.
	req = httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
