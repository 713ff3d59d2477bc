package genai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

const similarQuestionsSystemPrompt = `You are a customer-service knowledge base assistant.
Given a standard question, generate paraphrases a real user might type when
asking the same thing. Keep the language of the original question.

Return ONLY JSON:
{"similar_questions": ["...", "..."]}`

const qaExtractionSystemPrompt = `You are a customer-service knowledge base assistant.
Extract question/answer pairs from the given document text. Questions must
be self-contained; answers must come from the document only. Keep the
language of the document.

Return ONLY JSON:
{"qa_pairs": [{"question": "...", "answer": "..."}]}`

// ExpandSimilarQuestions asks the model for up to n paraphrases of a
// standard question.
func (c *Client) ExpandSimilarQuestions(ctx context.Context, standardQuestion string, n int) ([]string, error) {
	if n <= 0 {
		n = 5
	}

	messages := []Message{
		{Role: "system", Content: similarQuestionsSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Generate %d similar questions for: %s", n, standardQuestion)},
	}

	var parsed struct {
		SimilarQuestions []string `json:"similar_questions"`
	}
	if err := c.completeJSON(ctx, messages, &parsed); err != nil {
		return nil, fmt.Errorf("failed to expand similar questions: %w", err)
	}

	if len(parsed.SimilarQuestions) > n {
		parsed.SimilarQuestions = parsed.SimilarQuestions[:n]
	}

	logger.Info("Similar questions generated",
		zap.String("standard_question", standardQuestion),
		zap.Int("count", len(parsed.SimilarQuestions)),
	)

	return parsed.SimilarQuestions, nil
}

// ExtractQAPairs pulls question/answer candidates out of document text for
// the cold-start pipeline.
func (c *Client) ExtractQAPairs(ctx context.Context, documentText string) ([]models.QAPair, error) {
	messages := []Message{
		{Role: "system", Content: qaExtractionSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Extract QA pairs from this document:\n\n%s", documentText)},
	}

	var parsed struct {
		QAPairs []models.QAPair `json:"qa_pairs"`
	}
	if err := c.completeJSON(ctx, messages, &parsed); err != nil {
		return nil, fmt.Errorf("failed to extract QA pairs: %w", err)
	}

	logger.Info("QA pairs extracted", zap.Int("count", len(parsed.QAPairs)))

	return parsed.QAPairs, nil
}
