package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conversationmem "rag-qa/internal/adapter/repository/memory"
	vectormem "rag-qa/internal/adapter/vectorindex/memory"
	"rag-qa/internal/domain/apperr"
	"rag-qa/internal/domain/entity"
	"rag-qa/internal/domain/repository"
	"rag-qa/internal/usecase/document"
	"rag-qa/pkg/logger"
)

// scriptedChat pops one canned completion per call, in order. The first call
// of a pipeline run is the intent router, the second the answer generation.
type scriptedChat struct {
	responses []string
	errs      []error
	calls     int
	messages  [][]entity.ChatMessage
}

func (f *scriptedChat) Complete(_ context.Context, messages []entity.ChatMessage, _ float32, _ int) (string, error) {
	i := f.calls
	f.calls++
	f.messages = append(f.messages, messages)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unexpected completion call")
}

// keyedEmbedder returns an aligned vector for the question and any text in
// target, an orthogonal one for everything else.
type keyedEmbedder struct {
	target map[string]bool
}

func (f *keyedEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.target[text] {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func (f *keyedEmbedder) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = f.GenerateEmbedding(ctx, text)
	}
	return out, nil
}

type stubIndex struct {
	matches  []repository.QueryMatch
	queryErr error
}

func (s *stubIndex) Upsert(context.Context, string, []repository.UpsertItem) (int, error) {
	return 0, nil
}

func (s *stubIndex) Query(context.Context, string, []float32, int, map[string]any) ([]repository.QueryMatch, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.matches, nil
}

func (s *stubIndex) Delete(context.Context, string, []string) error    { return nil }
func (s *stubIndex) DeleteAll(context.Context, string) error           { return nil }
func (s *stubIndex) Stats(context.Context) (*repository.IndexStats, error) {
	return &repository.IndexStats{}, nil
}

func newUsecase(chat ChatService, embedder EmbeddingService, index repository.VectorIndex, memory repository.ConversationRepository) *QueryUsecase {
	log := logger.NewNop()
	return NewQueryUsecase(
		log,
		memory,
		NewIntentRouter(log, chat),
		chat,
		embedder,
		index,
		7,    // topK
		0.35, // scoreThreshold
		5,    // maxContextChunks
		0.7,  // temperature
		1024, // answerMaxTokens
	)
}

func TestAnswer_GeneralIntentSkipsRetrieval(t *testing.T) {
	chat := &scriptedChat{responses: []string{"GENERAL", "Paris is the capital of France."}}
	memory := conversationmem.NewConversationRepository(10)
	uc := newUsecase(chat, &keyedEmbedder{}, vectormem.NewIndex(2), memory)

	result, err := uc.Answer(context.Background(), "What is the capital of France?", "s1")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Equal(t, 0, result.Metadata.ChunksRetrieved)
	assert.Zero(t, result.Metadata.RetrievalTimeMs)

	history := memory.GetHistory("s1")
	require.Len(t, history, 2)
	assert.Equal(t, "What is the capital of France?", history[0].Content)
	assert.Equal(t, "Paris is the capital of France.", history[1].Content)
}

func TestAnswer_FiltersMatchesBelowThreshold(t *testing.T) {
	index := &stubIndex{matches: []repository.QueryMatch{
		{ID: "c0", Score: 0.9, Metadata: map[string]any{"text": "high", "document_id": "doc_a", "filename": "a.txt", "chunk_index": 0}},
		{ID: "c1", Score: 0.5, Metadata: map[string]any{"text": "mid", "document_id": "doc_a", "filename": "a.txt", "chunk_index": 1}},
		{ID: "c2", Score: 0.2, Metadata: map[string]any{"text": "low", "document_id": "doc_a", "filename": "a.txt", "chunk_index": 2}},
	}}
	chat := &scriptedChat{responses: []string{"RAG", "answer from context"}}
	uc := newUsecase(chat, &keyedEmbedder{}, index, conversationmem.NewConversationRepository(10))

	result, err := uc.Answer(context.Background(), "what does the document say?", "s1")

	require.NoError(t, err)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, 0.9, result.Sources[0].SimilarityScore)
	assert.Equal(t, 0.5, result.Sources[1].SimilarityScore)
	assert.Equal(t, "high", result.Sources[0].ChunkText)
	assert.Equal(t, 2, result.Metadata.ChunksRetrieved)
}

func TestAnswer_PromptContextCappedButAllSourcesReported(t *testing.T) {
	matches := make([]repository.QueryMatch, 7)
	for i := range matches {
		matches[i] = repository.QueryMatch{
			ID:    fmt.Sprintf("c%d", i),
			Score: 0.9 - float64(i)*0.05,
			Metadata: map[string]any{
				"text":        fmt.Sprintf("chunk text %d", i),
				"document_id": "doc_a",
				"filename":    "a.txt",
				"chunk_index": i,
			},
		}
	}
	chat := &scriptedChat{responses: []string{"RAG", "answer"}}
	uc := newUsecase(chat, &keyedEmbedder{}, &stubIndex{matches: matches}, conversationmem.NewConversationRepository(10))

	result, err := uc.Answer(context.Background(), "question", "s1")

	require.NoError(t, err)
	// every above-threshold match is a source
	assert.Len(t, result.Sources, 7)
	assert.Equal(t, 7, result.Metadata.ChunksRetrieved)

	// only the first five chunks reach the generation prompt
	require.Len(t, chat.messages, 2)
	generation := chat.messages[1]
	prompt := generation[len(generation)-1].Content
	for i := 0; i < 5; i++ {
		assert.Contains(t, prompt, fmt.Sprintf("chunk text %d", i))
	}
	for i := 5; i < 7; i++ {
		assert.NotContains(t, prompt, fmt.Sprintf("chunk text %d", i))
	}
}

func TestAnswer_SourcePreviewTruncated(t *testing.T) {
	long := strings.Repeat("x", 600)
	index := &stubIndex{matches: []repository.QueryMatch{
		{ID: "c0", Score: 0.9, Metadata: map[string]any{"text": long, "document_id": "doc_a", "filename": "a.txt", "chunk_index": 0}},
	}}
	chat := &scriptedChat{responses: []string{"RAG", "ok"}}
	uc := newUsecase(chat, &keyedEmbedder{}, index, conversationmem.NewConversationRepository(10))

	result, err := uc.Answer(context.Background(), "question", "s1")

	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Len(t, result.Sources[0].ChunkText, sourcePreviewLimit+3)
	assert.True(t, strings.HasSuffix(result.Sources[0].ChunkText, "..."))
}

func TestAnswer_GenerationFailureBecomesAnswerText(t *testing.T) {
	chat := &scriptedChat{
		responses: []string{"GENERAL", ""},
		errs:      []error{nil, errors.New("model overloaded")},
	}
	memory := conversationmem.NewConversationRepository(10)
	uc := newUsecase(chat, &keyedEmbedder{}, vectormem.NewIndex(2), memory)

	result, err := uc.Answer(context.Background(), "hello", "s1")

	require.NoError(t, err)
	assert.Contains(t, result.Answer, "Error generating answer")
	assert.Contains(t, result.Answer, "model overloaded")
	// the failed answer is still recorded so the conversation stays coherent
	require.Len(t, memory.GetHistory("s1"), 2)
}

func TestAnswer_RetrievalFailureSurfaces(t *testing.T) {
	index := &stubIndex{queryErr: errors.New("index unreachable")}
	chat := &scriptedChat{responses: []string{"RAG"}}
	memory := conversationmem.NewConversationRepository(10)
	uc := newUsecase(chat, &keyedEmbedder{}, index, memory)

	_, err := uc.Answer(context.Background(), "question", "s1")

	require.Error(t, err)
	assert.Equal(t, apperr.KindProvider, apperr.KindOf(err))
	// nothing is recorded for a failed pipeline run
	assert.Empty(t, memory.GetHistory("s1"))
}

func TestAnswer_RouterFailureStillRetrieves(t *testing.T) {
	index := &stubIndex{matches: []repository.QueryMatch{
		{ID: "c0", Score: 0.8, Metadata: map[string]any{"text": "context", "document_id": "doc_a", "filename": "a.txt", "chunk_index": 0}},
	}}
	chat := &scriptedChat{
		responses: []string{"", "answer"},
		errs:      []error{errors.New("router down"), nil},
	}
	uc := newUsecase(chat, &keyedEmbedder{}, index, conversationmem.NewConversationRepository(10))

	result, err := uc.Answer(context.Background(), "question", "s1")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Metadata.ChunksRetrieved)
}

func TestAnswer_EndToEndUploadThenQuery(t *testing.T) {
	log := logger.NewNop()
	index := vectormem.NewIndex(2)

	question := "What does the document say about zebras?"
	embedder := &keyedEmbedder{target: map[string]bool{
		question:    true,
		"zebrazzzz": true,
	}}

	// four 19-char lines chunk into exactly three chunks with size 50 and
	// overlap 10; the third chunk is the "zebrazzzz" tail of the last line
	text := strings.Repeat("a", 19) + "\n" +
		strings.Repeat("b", 19) + "\n" +
		strings.Repeat("c", 19) + "\n" +
		strings.Repeat("a", 10) + "zebrazzzz"

	docUC := document.NewDocumentUsecase(log, index, embedder, 50, 10, 10, 2)
	upload, err := docUC.UploadDocument(context.Background(), "s1", "zebras.txt", []byte(text))
	require.NoError(t, err)
	require.Equal(t, 3, upload.ChunksProcessed)

	chat := &scriptedChat{responses: []string{"RAG", "The document mentions zebras."}}
	uc := newUsecase(chat, embedder, index, conversationmem.NewConversationRepository(10))

	result, err := uc.Answer(context.Background(), question, "s1")

	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, upload.DocumentID, result.Sources[0].DocumentID)
	assert.Equal(t, 2, result.Sources[0].ChunkIndex)
	assert.Equal(t, "zebrazzzz", result.Sources[0].ChunkText)
}
