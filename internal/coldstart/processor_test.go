package coldstart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"<html><body>hi</body></html>", true},
		{"  <div>hi</div>", true},
		{"plain text document", false},
		{"3 < 5 and other text", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, looksLikeHTML(tt.content), "content: %q", tt.content)
	}
}

func TestCleanHTMLDropsChrome(t *testing.T) {
	html := `<html><head><style>body{color:red}</style></head><body>
		<nav>Site navigation</nav>
		<script>alert("x")</script>
		<p>Returns are accepted within thirty days.</p>
		<footer>Copyright</footer>
	</body></html>`

	text := cleanHTML(html)
	assert.Contains(t, text, "Returns are accepted within thirty days.")
	assert.NotContains(t, text, "Site navigation")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color:red")
	assert.NotContains(t, text, "Copyright")
}

func TestChunkTextPacksSentences(t *testing.T) {
	p := &Processor{chunkSize: 80}

	sentenceA := "The first policy sentence explains the return window in detail."
	sentenceB := "The second policy sentence covers refunds."
	sentenceC := "The third sentence covers exchanges."
	text := strings.Join([]string{sentenceA, sentenceB, sentenceC}, " ")

	chunks := p.chunkText(text)
	require.NotEmpty(t, chunks)

	// Sentences are never split: each chunk boundary falls between them.
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), p.chunkSize+len(sentenceA))
	}
	assert.Equal(t, text, strings.Join(chunks, " "))
}

func TestChunkTextSingleShortText(t *testing.T) {
	p := &Processor{chunkSize: 2000}

	chunks := p.chunkText("One short sentence.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "One short sentence.", chunks[0])
}

func TestChunkTextOversizedSentence(t *testing.T) {
	p := &Processor{chunkSize: 10}

	long := "This single sentence is far longer than the configured chunk size."
	chunks := p.chunkText(long)
	require.Len(t, chunks, 1)
	assert.Equal(t, long, chunks[0])
}

func TestChunkTextEmpty(t *testing.T) {
	p := &Processor{chunkSize: 2000}
	assert.Empty(t, p.chunkText(""))
}
