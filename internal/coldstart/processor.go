// Package coldstart turns an uploaded document into draft knowledge points
// via the generation client.
package coldstart

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/genai"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/catalog"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
	"github.com/dijkstrabc/shittykbsystem/pkg/utils"
)

const createdByColdStart = "coldstart"

var whitespaceRun = regexp.MustCompile(`\s+`)

type Processor struct {
	genai     *genai.Client
	points    *catalog.KnowledgePoints
	chunkSize int
}

func NewProcessor(genaiClient *genai.Client, points *catalog.KnowledgePoints) *Processor {
	return &Processor{
		genai:     genaiClient,
		points:    points,
		chunkSize: 2000,
	}
}

// ProcessDocument extracts QA pairs from the document and stores them as
// draft knowledge points under categoryID. The batch is written once at the
// end, so a generation failure leaves the store untouched.
func (p *Processor) ProcessDocument(ctx context.Context, name, content, categoryID string) ([]models.KnowledgePoint, error) {
	logger.Info("Processing cold-start document", zap.String("name", name))

	text := content
	if looksLikeHTML(content) {
		text = cleanHTML(content)
	}
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	if text == "" {
		return nil, fmt.Errorf("no text extracted from document %q", name)
	}

	chunks := p.chunkText(text)
	logger.Debug("Document chunked", zap.Int("chunks", len(chunks)))

	seen := make(map[string]struct{})
	var batch []models.KnowledgePoint

	for _, chunk := range chunks {
		pairs, err := p.genai.ExtractQAPairs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to extract QA pairs from %q: %w", name, err)
		}

		for _, pair := range pairs {
			question := strings.TrimSpace(pair.Question)
			answer := strings.TrimSpace(pair.Answer)
			if question == "" || answer == "" {
				continue
			}

			key := utils.HashString(strings.ToLower(question))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			batch = append(batch, models.KnowledgePoint{
				CategoryID:       categoryID,
				StandardQuestion: question,
				Answer:           answer,
				Status:           models.StatusDraft,
				CreatedBy:        createdByColdStart,
			})
		}
	}

	if len(batch) == 0 {
		return nil, nil
	}

	created, err := p.points.AddBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	logger.Info("Cold-start document processed",
		zap.String("name", name),
		zap.Int("knowledge_points", len(created)),
	)

	return created, nil
}

func looksLikeHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">")
}

func cleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text()
}

// chunkText packs whole sentences into chunks of roughly chunkSize
// characters so QA extraction never sees a question split from its answer
// mid-sentence. A single oversized sentence becomes its own chunk.
func (p *Processor) chunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > p.chunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(" ")
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

func splitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		// Segmenter choked (rare, mostly on exotic whitespace); fall back
		// to treating the whole text as one sentence.
		return []string{text}
	}

	var sentences []string
	for _, sentence := range doc.Sentences() {
		if s := strings.TrimSpace(sentence.Text); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
