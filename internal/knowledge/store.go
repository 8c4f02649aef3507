package knowledge

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// Collections held by the store.
const (
	CollectionFAQ  = "restaurant_faq"
	CollectionMenu = "menu"
)

type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, request openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Retriever exposes the query capability needed by the search tools.
type Retriever interface {
	Query(ctx context.Context, collection, query string, topK int) ([]string, error)
}

// Ingestor describes how restaurant knowledge is ingested.
type Ingestor interface {
	AddDocuments(ctx context.Context, collection string, contents []string) error
}

// MemoryStore keeps embeddings in memory and supports cosine retrieval.
type MemoryStore struct {
	client embeddingClient
	model  string
	logger *logging.Logger

	mu          sync.RWMutex
	collections map[string][]document
}

type document struct {
	content   string
	embedding []float32
}

// NewMemoryStore creates an in-memory embedding store.
func NewMemoryStore(client embeddingClient, model string, logger *logging.Logger) *MemoryStore {
	if client == nil {
		panic("knowledge: embedding client cannot be nil")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MemoryStore{
		client:      client,
		model:       model,
		logger:      logger,
		collections: make(map[string][]document),
	}
}

// AddDocuments embeds and stores the provided contents in a collection.
func (s *MemoryStore) AddDocuments(ctx context.Context, collection string, contents []string) error {
	if len(contents) == 0 {
		return nil
	}

	req := &openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(s.model),
		Input: contents,
	}
	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Data) != len(contents) {
		return errors.New("knowledge: embedding response size mismatch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range resp.Data {
		s.collections[collection] = append(s.collections[collection], document{
			content:   contents[i],
			embedding: item.Embedding,
		})
	}
	s.logger.Info("knowledge documents ingested", "collection", collection, "count", len(contents))
	return nil
}

// Query returns the topK most similar documents in a collection.
func (s *MemoryStore) Query(ctx context.Context, collection, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 3
	}
	req := &openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(s.model),
		Input: []string{query},
	}
	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	queryVec := resp.Data[0].Embedding

	s.mu.RLock()
	defer s.mu.RUnlock()
	candidates := s.collections[collection]
	if len(candidates) == 0 {
		return nil, nil
	}

	type scored struct {
		score   float64
		content string
	}
	results := make([]scored, 0, len(candidates))
	for _, doc := range candidates {
		results = append(results, scored{
			score:   cosineSimilarity(queryVec, doc.embedding),
			content: doc.content,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	limit := topK
	if len(results) < limit {
		limit = len(results)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = results[i].content
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
