package models

import "time"

// Status of a knowledge point. Only published points are eligible for
// matching; related-question references to draft or archived points are
// dropped at read time.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusArchived  = "archived"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Category forms a forest via ParentID; "" means root. Cycles are kept out
// by convention, not by structure.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// KnowledgePoint is a canonical question/answer unit with paraphrase
// variants. Answer is opaque rich text (HTML); nothing here ever parses it.
type KnowledgePoint struct {
	ID                 string    `json:"id"`
	CategoryID         string    `json:"category_id"`
	StandardQuestion   string    `json:"standard_question"`
	SimilarQuestions   []string  `json:"similar_questions,omitempty"`
	Answer             string    `json:"answer"`
	RelatedQuestionIDs []string  `json:"related_question_ids,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	Status             string    `json:"status"`
	CreatedBy          string    `json:"created_by,omitempty"`
}

// Robot defines a chat persona and the default staleness window for its
// traffic.
type Robot struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Avatar               string `json:"avatar,omitempty"`
	WelcomeMessage       string `json:"welcome_message,omitempty"`
	APIIdentifier        string `json:"api_identifier,omitempty"`
	SilenceThresholdDays int    `json:"silence_threshold_days,omitempty"`
}

type ChatMessage struct {
	ID               string           `json:"id"`
	Sender           string           `json:"sender"`
	Text             string           `json:"text"`
	SenderAvatar     string           `json:"sender_avatar,omitempty"`
	RelatedQuestions []KnowledgePoint `json:"related_questions,omitempty"`
	Suggestions      []string         `json:"suggestions,omitempty"`
}

// ChatSession is an append-only message log. The engine always persists the
// whole session, never a delta.
type ChatSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	StartTime time.Time     `json:"start_time"`
	RobotID   string        `json:"robot_id"`
	Messages  []ChatMessage `json:"messages"`
}

// UnansweredQuestion records a user query the matcher could not resolve.
type UnansweredQuestion struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	RobotID   string    `json:"robot_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Entity and Intent are inert NLU configuration; no component consumes them
// yet.
type Entity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"` // "enum" or "regex"
	Values      []string `json:"values,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Description string   `json:"description,omitempty"`
}

type Intent struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Utterances  []string `json:"utterances,omitempty"`
}

// QAPair is one extracted question/answer candidate from a cold-start
// document.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
