package memory

import (
	"sync"
	"time"

	"rag-qa/internal/domain/entity"
	"rag-qa/internal/domain/repository"
)

type conversationRepository struct {
	mu         sync.RWMutex
	sessions   map[string][]entity.ConversationTurn
	maxHistory int
}

// NewConversationRepository returns a process-local history store. Each
// session keeps at most maxHistory turns; older turns are evicted on append.
func NewConversationRepository(maxHistory int) repository.ConversationRepository {
	return &conversationRepository{
		sessions:   make(map[string][]entity.ConversationTurn),
		maxHistory: maxHistory,
	}
}

func (r *conversationRepository) AddMessage(sessionID string, role entity.Role, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	turns := append(r.sessions[sessionID], entity.ConversationTurn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if len(turns) > r.maxHistory {
		turns = turns[len(turns)-r.maxHistory:]
	}
	r.sessions[sessionID] = turns
}

func (r *conversationRepository) GetHistory(sessionID string) []entity.ConversationTurn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	turns := r.sessions[sessionID]
	out := make([]entity.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

func (r *conversationRepository) ClearHistory(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}
