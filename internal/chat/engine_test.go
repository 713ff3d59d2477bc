package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/catalog"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/store"
)

func newTestEngine(t *testing.T) (*Engine, store.Store, *catalog.KnowledgePoints) {
	t.Helper()
	s := store.NewMemoryStore()
	points := catalog.NewKnowledgePoints(s)
	robots := catalog.NewRobots(s)
	engine := NewEngine(s, points, robots, Config{ReplyDelay: 0})
	return engine, s, points
}

func seedPoint(t *testing.T, points *catalog.KnowledgePoints, p models.KnowledgePoint) *models.KnowledgePoint {
	t.Helper()
	created, err := points.Add(context.Background(), p)
	require.NoError(t, err)
	return created
}

func TestSubmitMatchedTurn(t *testing.T) {
	engine, _, points := newTestEngine(t)
	ctx := context.Background()

	published := seedPoint(t, points, models.KnowledgePoint{
		StandardQuestion: "如何更新账单信息？",
		Answer:           "<p>在设置页面更新账单信息。</p>",
		Status:           models.StatusPublished,
	})
	relatedPub := seedPoint(t, points, models.KnowledgePoint{
		StandardQuestion: "如何取消订阅？",
		Answer:           "<p>取消订阅步骤。</p>",
		Status:           models.StatusPublished,
	})
	relatedDraft := seedPoint(t, points, models.KnowledgePoint{
		StandardQuestion: "草稿问题",
		Answer:           "<p>草稿答案。</p>",
		Status:           models.StatusDraft,
	})

	published.RelatedQuestionIDs = []string{relatedPub.ID, relatedDraft.ID, "dangling-id"}
	_, err := points.Update(ctx, *published)
	require.NoError(t, err)

	session, err := engine.StartSession(ctx, "user-1", "")
	require.NoError(t, err)

	updated, outcome, err := engine.Submit(ctx, session, "如何更新账单信息？")
	require.NoError(t, err)
	assert.Equal(t, OutcomeHit, outcome)

	require.Len(t, updated.Messages, 3) // welcome, user, bot

	userMsg := updated.Messages[1]
	assert.Equal(t, models.SenderUser, userMsg.Sender)
	assert.Equal(t, "如何更新账单信息？", userMsg.Text)

	botMsg := updated.Messages[2]
	assert.Equal(t, models.SenderBot, botMsg.Sender)
	assert.Equal(t, published.Answer, botMsg.Text)

	// Draft and dangling references are dropped; only the published related
	// point survives.
	require.Len(t, botMsg.RelatedQuestions, 1)
	assert.Equal(t, relatedPub.ID, botMsg.RelatedQuestions[0].ID)
}

func TestSubmitUnansweredTurn(t *testing.T) {
	engine, s, points := newTestEngine(t)
	ctx := context.Background()

	seedPoint(t, points, models.KnowledgePoint{
		StandardQuestion: "退货政策是什么？",
		Answer:           "<p>三十天无理由退货。</p>",
		Status:           models.StatusPublished,
	})

	session, err := engine.StartSession(ctx, "user-1", "robot-1")
	require.NoError(t, err)

	updated, outcome, err := engine.Submit(ctx, session, "asdkjasd")
	require.NoError(t, err)
	assert.Equal(t, OutcomeMiss, outcome)

	botMsg := updated.Messages[len(updated.Messages)-1]
	assert.Equal(t, models.SenderBot, botMsg.Sender)
	assert.Equal(t, DefaultFallbackText, botMsg.Text)
	assert.Empty(t, botMsg.RelatedQuestions)

	var unanswered []models.UnansweredQuestion
	require.NoError(t, s.Read(ctx, store.KeyUnansweredQuestions, &unanswered))
	require.Len(t, unanswered, 1)
	assert.Equal(t, "asdkjasd", unanswered[0].Question)
	assert.Equal(t, session.ID, unanswered[0].SessionID)
	assert.Equal(t, "user-1", unanswered[0].UserID)
	assert.Equal(t, "robot-1", unanswered[0].RobotID)
	assert.WithinDuration(t, time.Now(), unanswered[0].Timestamp, time.Minute)
}

func TestSubmitEmptyQueryIsNoop(t *testing.T) {
	engine, s, _ := newTestEngine(t)
	ctx := context.Background()

	session, err := engine.StartSession(ctx, "user-1", "")
	require.NoError(t, err)
	before := len(session.Messages)

	for _, query := range []string{"", "   ", "\n\t"} {
		updated, outcome, err := engine.Submit(ctx, session, query)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoop, outcome)
		assert.Len(t, updated.Messages, before)
	}

	var unanswered []models.UnansweredQuestion
	require.NoError(t, s.Read(ctx, store.KeyUnansweredQuestions, &unanswered))
	assert.Empty(t, unanswered)
}

func TestSubmitDraftPointNeverMatched(t *testing.T) {
	engine, _, points := newTestEngine(t)
	ctx := context.Background()

	seedPoint(t, points, models.KnowledgePoint{
		StandardQuestion: "退货政策是什么？",
		Answer:           "<p>draft answer</p>",
		Status:           models.StatusDraft,
	})

	session, err := engine.StartSession(ctx, "user-1", "")
	require.NoError(t, err)

	// Textually identical to the draft's standard question, but drafts are
	// filtered before matching.
	updated, outcome, err := engine.Submit(ctx, session, "退货政策是什么？")
	require.NoError(t, err)
	assert.Equal(t, OutcomeMiss, outcome)

	botMsg := updated.Messages[len(updated.Messages)-1]
	assert.Equal(t, DefaultFallbackText, botMsg.Text)
}

func TestSubmitPersistsWholeSession(t *testing.T) {
	engine, s, points := newTestEngine(t)
	ctx := context.Background()

	seedPoint(t, points, models.KnowledgePoint{
		StandardQuestion: "退货政策是什么？",
		Answer:           "<p>三十天无理由退货。</p>",
		Status:           models.StatusPublished,
	})

	session, err := engine.StartSession(ctx, "user-1", "")
	require.NoError(t, err)

	_, _, err = engine.Submit(ctx, session, "退货政策是什么？")
	require.NoError(t, err)
	_, _, err = engine.Submit(ctx, session, "second question with no match")
	require.NoError(t, err)

	var sessions []models.ChatSession
	require.NoError(t, s.Read(ctx, store.KeyChatSessions, &sessions))
	require.Len(t, sessions, 1)
	// welcome + 2 user + 2 bot
	assert.Len(t, sessions[0].Messages, 5)

	// User message precedes the bot reply for each turn.
	assert.Equal(t, models.SenderUser, sessions[0].Messages[1].Sender)
	assert.Equal(t, models.SenderBot, sessions[0].Messages[2].Sender)
	assert.Equal(t, models.SenderUser, sessions[0].Messages[3].Sender)
	assert.Equal(t, models.SenderBot, sessions[0].Messages[4].Sender)
}

func TestStartSessionSuggestions(t *testing.T) {
	engine, _, points := newTestEngine(t)
	ctx := context.Background()

	// Empty knowledge base: built-in fallback pair.
	session, err := engine.StartSession(ctx, "user-1", "")
	require.NoError(t, err)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, defaultSuggestions, session.Messages[0].Suggestions)

	questions := []string{"q one", "q two", "q three", "q four"}
	for _, q := range questions {
		seedPoint(t, points, models.KnowledgePoint{
			StandardQuestion: q,
			Answer:           "<p>a</p>",
			Status:           models.StatusDraft,
		})
	}

	// First three standard questions in stored order, no ranking.
	session, err = engine.StartSession(ctx, "user-2", "")
	require.NoError(t, err)
	assert.Equal(t, questions[:3], session.Messages[0].Suggestions)
}

func TestStartSessionRobotWelcome(t *testing.T) {
	s := store.NewMemoryStore()
	points := catalog.NewKnowledgePoints(s)
	robots := catalog.NewRobots(s)
	engine := NewEngine(s, points, robots, Config{})

	ctx := context.Background()
	robot, err := robots.Add(ctx, models.Robot{
		Name:           "客服小助手",
		WelcomeMessage: "您好，我是小助手！",
		Avatar:         "avatar.png",
	})
	require.NoError(t, err)

	session, err := engine.StartSession(ctx, "user-1", robot.ID)
	require.NoError(t, err)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "您好，我是小助手！", session.Messages[0].Text)
	assert.Equal(t, "avatar.png", session.Messages[0].SenderAvatar)
	assert.Equal(t, robot.ID, session.RobotID)
}

func TestSubmitReplyDelayRespectsContext(t *testing.T) {
	s := store.NewMemoryStore()
	points := catalog.NewKnowledgePoints(s)
	robots := catalog.NewRobots(s)
	engine := NewEngine(s, points, robots, Config{ReplyDelay: time.Second})

	ctx := context.Background()
	session, err := engine.StartSession(ctx, "user-1", "")
	require.NoError(t, err)
	before := len(session.Messages)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, _, err = engine.Submit(cancelled, session, "hello there")
	assert.ErrorIs(t, err, context.Canceled)

	// The aborted turn leaves no trace: the user message is rolled back in
	// memory and nothing was persisted or recorded as unanswered.
	assert.Len(t, session.Messages, before)

	var sessions []models.ChatSession
	require.NoError(t, s.Read(ctx, store.KeyChatSessions, &sessions))
	require.Len(t, sessions, 1)
	assert.Len(t, sessions[0].Messages, before)

	var unanswered []models.UnansweredQuestion
	require.NoError(t, s.Read(ctx, store.KeyUnansweredQuestions, &unanswered))
	assert.Empty(t, unanswered)
}

func TestSubmitFallbackTextAnswerIsStillAHit(t *testing.T) {
	engine, s, points := newTestEngine(t)
	ctx := context.Background()

	// A published point whose answer happens to be the fallback text. The
	// outcome must come from the match, not from comparing message text.
	seedPoint(t, points, models.KnowledgePoint{
		StandardQuestion: "无法回答的问题示例",
		Answer:           DefaultFallbackText,
		Status:           models.StatusPublished,
	})

	session, err := engine.StartSession(ctx, "user-1", "")
	require.NoError(t, err)

	updated, outcome, err := engine.Submit(ctx, session, "无法回答的问题示例")
	require.NoError(t, err)
	assert.Equal(t, OutcomeHit, outcome)

	botMsg := updated.Messages[len(updated.Messages)-1]
	assert.Equal(t, DefaultFallbackText, botMsg.Text)

	var unanswered []models.UnansweredQuestion
	require.NoError(t, s.Read(ctx, store.KeyUnansweredQuestions, &unanswered))
	assert.Empty(t, unanswered)
}
