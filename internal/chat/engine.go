// Package chat orchestrates chat turns: append the user message, run the
// matcher, append the bot reply, persist the full session, and record
// unanswered queries.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/catalog"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/store"
	"github.com/dijkstrabc/shittykbsystem/internal/matcher"
	"github.com/dijkstrabc/shittykbsystem/internal/metrics"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

// DefaultFallbackText is the bot reply when no knowledge point matches.
const DefaultFallbackText = "抱歉，我暂时无法回答这个问题，已经记录下来，后续会完善相关知识。"

// Built-in suggestion pair used when the knowledge base is empty.
var defaultSuggestions = []string{
	"退货政策是什么？",
	"如何更新账单信息？",
}

// Outcome classifies a chat turn for callers that report on it.
type Outcome string

const (
	OutcomeHit  Outcome = "hit"
	OutcomeMiss Outcome = "miss"
	OutcomeNoop Outcome = "noop"
)

type Config struct {
	// ReplyDelay simulates the network round trip before the bot message
	// lands. Zero disables it; it is a UX affordance, not a correctness
	// requirement.
	ReplyDelay      time.Duration
	FallbackText    string
	SuggestionCount int
}

type Engine struct {
	mu      sync.Mutex
	store   store.Store
	points  *catalog.KnowledgePoints
	robots  *catalog.Robots
	cfg     Config
	nowFunc func() time.Time
}

func NewEngine(s store.Store, points *catalog.KnowledgePoints, robots *catalog.Robots, cfg Config) *Engine {
	if cfg.FallbackText == "" {
		cfg.FallbackText = DefaultFallbackText
	}
	if cfg.SuggestionCount == 0 {
		cfg.SuggestionCount = 3
	}
	return &Engine{
		store:   s,
		points:  points,
		robots:  robots,
		cfg:     cfg,
		nowFunc: time.Now,
	}
}

// StartSession creates a session seeded with the robot's welcome message and
// up to SuggestionCount standard questions in stored order; an empty
// knowledge base falls back to the built-in pair.
func (e *Engine) StartSession(ctx context.Context, userID, robotID string) (*models.ChatSession, error) {
	welcome := "您好，请问有什么可以帮您？"
	avatar := ""
	if robotID != "" && e.robots != nil {
		if robot, err := e.robots.Get(ctx, robotID); err == nil {
			if robot.WelcomeMessage != "" {
				welcome = robot.WelcomeMessage
			}
			avatar = robot.Avatar
		}
	}

	suggestions, err := e.seedSuggestions(ctx)
	if err != nil {
		return nil, err
	}

	session := &models.ChatSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		StartTime: e.nowFunc(),
		RobotID:   robotID,
		Messages: []models.ChatMessage{
			{
				ID:           uuid.New().String(),
				Sender:       models.SenderBot,
				Text:         welcome,
				SenderAvatar: avatar,
				Suggestions:  suggestions,
			},
		},
	}

	if err := e.persistSession(ctx, session); err != nil {
		return nil, err
	}

	logger.Info("Chat session started",
		zap.String("session_id", session.ID),
		zap.String("robot_id", robotID),
	)

	return session, nil
}

func (e *Engine) seedSuggestions(ctx context.Context) ([]string, error) {
	points, err := e.points.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return append([]string(nil), defaultSuggestions...), nil
	}

	n := e.cfg.SuggestionCount
	if n > len(points) {
		n = len(points)
	}

	suggestions := make([]string, 0, n)
	for _, point := range points[:n] {
		suggestions = append(suggestions, point.StandardQuestion)
	}
	return suggestions, nil
}

// Submit runs one chat turn. Queries that trim to empty are a no-op. "No
// match" is a normal outcome, never an error; the only error paths are
// store failures and cancellation. The returned Outcome is authoritative:
// callers must not infer hit/miss from message text, since an answer may
// legitimately equal the fallback text.
func (e *Engine) Submit(ctx context.Context, session *models.ChatSession, query string) (*models.ChatSession, Outcome, error) {
	if strings.TrimSpace(query) == "" {
		return session, OutcomeNoop, nil
	}

	// One turn at a time per engine; the user message is observably
	// appended before the bot message for the same turn.
	e.mu.Lock()
	defer e.mu.Unlock()

	session.Messages = append(session.Messages, models.ChatMessage{
		ID:     uuid.New().String(),
		Sender: models.SenderUser,
		Text:   query,
	})

	if e.cfg.ReplyDelay > 0 {
		select {
		case <-ctx.Done():
			// The turn never happened: take the user message back so the
			// caller's session is not left with an unanswered dangling turn
			// that was never persisted.
			session.Messages = session.Messages[:len(session.Messages)-1]
			return nil, OutcomeNoop, ctx.Err()
		case <-time.After(e.cfg.ReplyDelay):
		}
	}

	published, err := e.points.ListPublished(ctx)
	if err != nil {
		return nil, OutcomeNoop, err
	}

	best, score := matcher.Best(query, published)
	metrics.MatchScore.Observe(score)

	botMessage := models.ChatMessage{
		ID:     uuid.New().String(),
		Sender: models.SenderBot,
	}

	outcome := OutcomeMiss
	if best != nil {
		related, err := e.points.ResolveRelated(ctx, best)
		if err != nil {
			return nil, OutcomeNoop, err
		}
		botMessage.Text = best.Answer
		botMessage.RelatedQuestions = related
		outcome = OutcomeHit

		logger.Debug("Query matched",
			zap.String("session_id", session.ID),
			zap.String("point_id", best.ID),
		)
	} else {
		botMessage.Text = e.cfg.FallbackText
		if err := e.recordUnanswered(ctx, session, query); err != nil {
			return nil, OutcomeNoop, err
		}

		logger.Info("Query unanswered",
			zap.String("session_id", session.ID),
			zap.String("query", query),
		)
	}

	session.Messages = append(session.Messages, botMessage)

	if err := e.persistSession(ctx, session); err != nil {
		return nil, OutcomeNoop, err
	}

	return session, outcome, nil
}

func (e *Engine) recordUnanswered(ctx context.Context, session *models.ChatSession, query string) error {
	var unanswered []models.UnansweredQuestion
	if err := e.store.Read(ctx, store.KeyUnansweredQuestions, &unanswered); err != nil {
		return err
	}

	unanswered = append(unanswered, models.UnansweredQuestion{
		ID:        uuid.New().String(),
		Question:  query,
		SessionID: session.ID,
		UserID:    session.UserID,
		RobotID:   session.RobotID,
		Timestamp: e.nowFunc(),
	})

	return e.store.Write(ctx, store.KeyUnansweredQuestions, unanswered)
}

// persistSession replaces the stored copy of the session inside the
// sessions collection, appending it when new.
func (e *Engine) persistSession(ctx context.Context, session *models.ChatSession) error {
	var sessions []models.ChatSession
	if err := e.store.Read(ctx, store.KeyChatSessions, &sessions); err != nil {
		return err
	}

	replaced := false
	for i := range sessions {
		if sessions[i].ID == session.ID {
			sessions[i] = *session
			replaced = true
			break
		}
	}
	if !replaced {
		sessions = append(sessions, *session)
	}

	return e.store.Write(ctx, store.KeyChatSessions, sessions)
}

// Sessions returns the stored session log.
func (e *Engine) Sessions(ctx context.Context) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := e.store.Read(ctx, store.KeyChatSessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
