package store

import "context"

// Collection keys. Each key holds one JSON-serialized collection that is
// fully replaced on every write; there are no partial updates and no
// transactions across keys.
const (
	KeyCategories          = "categories"
	KeyKnowledgePoints     = "knowledge_points"
	KeyChatSessions        = "chat_sessions"
	KeyUnansweredQuestions = "unanswered_questions"
	KeyRobots              = "robots"
	KeyEntities            = "entities"
	KeyIntents             = "intents"
)

// Store is the key-value persistence collaborator. Read leaves out at the
// caller's zero value when the key is absent; that is not an error.
type Store interface {
	Read(ctx context.Context, key string, out any) error
	Write(ctx context.Context, key string, value any) error
	Close() error
}
