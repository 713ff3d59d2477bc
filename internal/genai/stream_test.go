package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamParserSplitAcrossReads(t *testing.T) {
	p := &streamParser{}

	// The data line arrives split mid-JSON across two reads.
	deltas := p.feed(`data: {"choices":[{"delta":{"content":"Hel`)
	assert.Empty(t, deltas)
	assert.False(t, p.finished())

	deltas = p.feed("lo\"}}]}\n")
	assert.Equal(t, []string{"Hello"}, deltas)
}

func TestStreamParserMultipleLinesOneRead(t *testing.T) {
	p := &streamParser{}

	input := "data: {\"choices\":[{\"delta\":{\"content\":\"你\"}}]}\n" +
		"\n" +
		": keep-alive comment\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"好\"}}]}\n"

	assert.Equal(t, []string{"你", "好"}, p.feed(input))
	assert.False(t, p.finished())
}

func TestStreamParserDoneSentinel(t *testing.T) {
	p := &streamParser{}

	deltas := p.feed("data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\ndata: [DONE]\n")
	assert.Equal(t, []string{"a"}, deltas)
	assert.True(t, p.finished())

	// Everything after [DONE] is ignored.
	assert.Empty(t, p.feed("data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n"))
}

func TestStreamParserSkipsMalformedLines(t *testing.T) {
	p := &streamParser{}

	input := "data: not json at all\n" +
		"data: {\"choices\":[]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n"

	assert.Equal(t, []string{"ok"}, p.feed(input))
}
