package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hostwise-ai/hostwise/internal/observability/metrics"
	"github.com/hostwise-ai/hostwise/internal/tools"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

var tracer = otel.Tracer("hostwise/conversation")

// exhaustedReply is returned when the model keeps requesting tools past the
// step limit.
const exhaustedReply = "I'm sorry, I wasn't able to complete that request. Could you rephrase it, or call us at (555) 123-4567?"

// ServiceConfig carries the model parameters for the orchestrator.
type ServiceConfig struct {
	Model        string
	MaxTokens    int
	Temperature  float32
	MaxToolSteps int
}

// Reply is the assistant's answer for one turn.
type Reply struct {
	ThreadID  string    `json:"thread_id"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Service orchestrates one chat turn: slot tracking, prompt assembly, the
// model call, and the tool dispatch loop.
type Service struct {
	llm      LLMClient
	registry *tools.Registry
	tracker  *Tracker
	history  HistoryStore
	logger   *logging.Logger
	metrics  *metrics.ChatMetrics
	cfg      ServiceConfig
	now      func() time.Time
}

func NewService(
	llm LLMClient,
	registry *tools.Registry,
	tracker *Tracker,
	history HistoryStore,
	logger *logging.Logger,
	m *metrics.ChatMetrics,
	cfg ServiceConfig,
) *Service {
	if cfg.MaxToolSteps <= 0 {
		cfg.MaxToolSteps = 5
	}
	return &Service{
		llm:      llm,
		registry: registry,
		tracker:  tracker,
		history:  history,
		logger:   logger,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Test use only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// HandleMessage runs one turn for the thread. An empty threadID starts a new
// thread.
func (s *Service) HandleMessage(ctx context.Context, threadID, message string) (*Reply, error) {
	if threadID == "" {
		threadID = uuid.NewString()
	}
	ctx, span := tracer.Start(ctx, "conversation.HandleMessage",
		trace.WithAttributes(attribute.String("thread.id", threadID)))
	defer span.End()

	state, err := s.tracker.Observe(ctx, threadID, message)
	if err != nil {
		s.metrics.ObserveChatRequest("error")
		return nil, err
	}

	history, err := s.history.Load(ctx, threadID)
	if err != nil {
		s.metrics.ObserveChatRequest("error")
		return nil, err
	}

	userMsg := ChatMessage{Role: RoleUser, Content: message}
	transcript := append(history, userMsg)
	turn := []ChatMessage{userMsg}
	system := BuildSystemPrompt(state, s.now())

	var responseText string
	for step := 0; ; step++ {
		if step >= s.cfg.MaxToolSteps {
			s.logger.Warn("tool step limit reached", "thread_id", threadID, "steps", step)
			responseText = exhaustedReply
			break
		}

		resp, err := s.complete(ctx, system, transcript)
		if err != nil {
			s.metrics.ObserveChatRequest("error")
			return nil, err
		}

		if resp.StopReason != StopToolUse {
			responseText = resp.Text
			if responseText != "" {
				assistant := ChatMessage{Role: RoleAssistant, Content: responseText}
				transcript = append(transcript, assistant)
				turn = append(turn, assistant)
			}
			break
		}

		assistant := ChatMessage{Role: RoleAssistant, Content: resp.Text, ToolCalls: resp.ToolCalls}
		transcript = append(transcript, assistant)
		turn = append(turn, assistant)

		for _, call := range resp.ToolCalls {
			result := s.registry.Dispatch(ctx, call.Name, call.Arguments)
			toolMsg := ChatMessage{Role: RoleTool, Content: result, ToolCallID: call.ID}
			transcript = append(transcript, toolMsg)
			turn = append(turn, toolMsg)
		}
	}

	if responseText == "" {
		responseText = exhaustedReply
	}

	if err := s.history.Append(ctx, threadID, turn...); err != nil {
		s.logger.Warn("history append failed", "thread_id", threadID, "error", err)
	}
	if !state.Greeted {
		state.Greeted = true
		if err := s.tracker.store.Save(ctx, threadID, state); err != nil {
			s.logger.Warn("state save failed", "thread_id", threadID, "error", err)
		}
	}

	s.metrics.ObserveChatRequest("ok")
	return &Reply{ThreadID: threadID, Response: responseText, Timestamp: s.now().UTC()}, nil
}

func (s *Service) complete(ctx context.Context, system []string, transcript []ChatMessage) (*LLMResponse, error) {
	start := time.Now()
	resp, err := s.llm.Chat(ctx, LLMRequest{
		Model:       s.cfg.Model,
		System:      system,
		Messages:    transcript,
		Tools:       s.registry.Definitions(),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	s.metrics.ObserveChatLatency(s.llm.Provider(), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("conversation: model call: %w", err)
	}
	s.metrics.ObserveLLMTokens(s.llm.Provider(), "input", resp.Usage.InputTokens)
	s.metrics.ObserveLLMTokens(s.llm.Provider(), "output", resp.Usage.OutputTokens)
	return resp, nil
}

// Threads lists the active thread ids.
func (s *Service) Threads(ctx context.Context) ([]string, error) {
	return s.tracker.store.List(ctx)
}

// ThreadState returns the accumulated state for a thread.
func (s *Service) ThreadState(ctx context.Context, threadID string) (*ThreadState, error) {
	return s.tracker.store.Load(ctx, threadID)
}

// DeleteThread removes a thread's state and transcript.
func (s *Service) DeleteThread(ctx context.Context, threadID string) error {
	if err := s.tracker.store.Delete(ctx, threadID); err != nil {
		return err
	}
	return s.history.Clear(ctx, threadID)
}

// DeleteAllThreads removes every thread. Returns the number deleted.
func (s *Service) DeleteAllThreads(ctx context.Context) (int, error) {
	ids, err := s.tracker.store.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.DeleteThread(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// Capabilities lists the tool names offered to the model.
func (s *Service) Capabilities() []string {
	defs := s.registry.Definitions()
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return names
}
