package query

import (
	"context"
	"math"
	"time"

	"rag-qa/internal/domain/apperr"
	"rag-qa/internal/domain/entity"
	"rag-qa/internal/domain/repository"
	"rag-qa/pkg/logger"
)

// sourcePreviewLimit is the truncation length for chunk text in source
// citations.
const sourcePreviewLimit = 500

type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type Source struct {
	ChunkText       string
	DocumentID      string
	SimilarityScore float64
	Filename        string
	ChunkIndex      int
}

type Metadata struct {
	RetrievalTimeMs  float64
	GenerationTimeMs float64
	TotalTimeMs      float64
	ChunksRetrieved  int
}

type Result struct {
	Answer   string
	Sources  []Source
	Metadata Metadata
}

// QueryUsecase runs the answer pipeline: history, intent, optional retrieval,
// prompt assembly, generation, memory update.
type QueryUsecase struct {
	log      *logger.Logger
	memory   repository.ConversationRepository
	router   *IntentRouter
	chat     ChatService
	embedder EmbeddingService
	index    repository.VectorIndex

	topK             int
	scoreThreshold   float64
	maxContextChunks int
	temperature      float32
	answerMaxTokens  int
}

func NewQueryUsecase(
	log *logger.Logger,
	memory repository.ConversationRepository,
	router *IntentRouter,
	chat ChatService,
	embedder EmbeddingService,
	index repository.VectorIndex,
	topK int,
	scoreThreshold float64,
	maxContextChunks int,
	temperature float64,
	answerMaxTokens int,
) *QueryUsecase {
	return &QueryUsecase{
		log:              log.With("service", "QueryUsecase"),
		memory:           memory,
		router:           router,
		chat:             chat,
		embedder:         embedder,
		index:            index,
		topK:             topK,
		scoreThreshold:   scoreThreshold,
		maxContextChunks: maxContextChunks,
		temperature:      float32(temperature),
		answerMaxTokens:  answerMaxTokens,
	}
}

// Answer processes one question for a session. Generation always runs, even
// with zero retrieved chunks; a generation failure becomes an error-text
// answer rather than aborting the pipeline.
func (uc *QueryUsecase) Answer(ctx context.Context, question, sessionID string) (*Result, error) {
	totalStart := time.Now()

	history := uc.memory.GetHistory(sessionID)

	intent := uc.router.Classify(ctx, question, history)
	uc.log.Info("query intent classified", "session_id", sessionID, "intent", intent)

	var matches []entity.RetrievalMatch
	retrievalMs := float64(0)

	if intent == entity.IntentRAG {
		vector, err := uc.embedder.GenerateEmbedding(ctx, question)
		if err != nil {
			return nil, apperr.Provider("failed to embed query", err)
		}

		retrievalStart := time.Now()
		raw, err := uc.index.Query(ctx, sessionID, vector, uc.topK, nil)
		if err != nil {
			return nil, apperr.Provider("failed to query vector index", err)
		}
		retrievalMs = float64(time.Since(retrievalStart).Microseconds()) / 1000

		matches = uc.filterByScore(raw)
		if len(matches) > 0 {
			uc.log.Info("chunks retrieved", "count", len(matches), "top_score", matches[0].Score)
		} else {
			uc.log.Warn("no chunks cleared threshold", "intent", intent, "threshold", uc.scoreThreshold)
		}
	} else {
		uc.log.Info("skipping retrieval for general query")
	}

	contextChunks := make([]ContextChunk, 0, len(matches))
	for i, match := range matches {
		if i >= uc.maxContextChunks {
			break
		}
		contextChunks = append(contextChunks, ContextChunk{Text: match.Text, Filename: match.Filename})
	}

	prompt := BuildPrompt(question, contextChunks)
	messages := BuildMessages(prompt, history)

	generationStart := time.Now()
	answer, err := uc.chat.Complete(ctx, messages, uc.temperature, uc.answerMaxTokens)
	if err != nil {
		// Keep the user-facing behaviour graceful: surface the failure as the
		// answer text instead of failing the whole request.
		uc.log.Error("answer generation failed", "error", err)
		answer = "Error generating answer: " + err.Error()
	}
	generationMs := float64(time.Since(generationStart).Microseconds()) / 1000

	// Memory records the raw question and the answer, never the assembled
	// prompt.
	uc.memory.AddMessage(sessionID, entity.RoleUser, question)
	uc.memory.AddMessage(sessionID, entity.RoleAssistant, answer)

	sources := make([]Source, len(matches))
	for i, match := range matches {
		preview := match.Text
		if len(preview) > sourcePreviewLimit {
			preview = preview[:sourcePreviewLimit] + "..."
		}
		sources[i] = Source{
			ChunkText:       preview,
			DocumentID:      match.DocumentID,
			SimilarityScore: round(match.Score, 4),
			Filename:        match.Filename,
			ChunkIndex:      match.ChunkIndex,
		}
	}

	totalMs := float64(time.Since(totalStart).Microseconds()) / 1000

	return &Result{
		Answer:  answer,
		Sources: sources,
		Metadata: Metadata{
			RetrievalTimeMs:  round(retrievalMs, 2),
			GenerationTimeMs: round(generationMs, 2),
			TotalTimeMs:      round(totalMs, 2),
			ChunksRetrieved:  len(matches),
		},
	}, nil
}

// ClearHistory drops a session's conversation history.
func (uc *QueryUsecase) ClearHistory(sessionID string) {
	uc.memory.ClearHistory(sessionID)
}

// filterByScore keeps matches at or above the threshold, preserving the
// index's descending-score order.
func (uc *QueryUsecase) filterByScore(raw []repository.QueryMatch) []entity.RetrievalMatch {
	var matches []entity.RetrievalMatch
	for _, m := range raw {
		if m.Score < uc.scoreThreshold {
			continue
		}
		matches = append(matches, entity.RetrievalMatch{
			ChunkID:    m.ID,
			Score:      m.Score,
			Text:       metaString(m.Metadata, "text"),
			DocumentID: metaString(m.Metadata, "document_id"),
			Filename:   metaString(m.Metadata, "filename"),
			ChunkIndex: metaInt(m.Metadata, "chunk_index"),
		})
	}
	return matches
}

func metaString(metadata map[string]any, key string) string {
	v, _ := metadata[key].(string)
	return v
}

func metaInt(metadata map[string]any, key string) int {
	switch v := metadata[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
