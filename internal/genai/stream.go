package genai

import (
	"encoding/json"
	"strings"
)

// streamParser incrementally decodes event-stream style responses: "data:
// {json}" lines terminated by a literal "data: [DONE]". Bytes arrive in
// arbitrary chunks, so an unterminated trailing line is carried over in
// buffer until the next feed.
type streamParser struct {
	buffer string
	done   bool
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// feed consumes one read's worth of decoded bytes and returns the content
// deltas completed by it. Malformed data lines are skipped; providers
// interleave keep-alive comments and empty lines freely.
func (p *streamParser) feed(data string) []string {
	if p.done {
		return nil
	}

	p.buffer += data

	var deltas []string
	for {
		idx := strings.IndexByte(p.buffer, '\n')
		if idx < 0 {
			break
		}

		line := strings.TrimSpace(p.buffer[:idx])
		p.buffer = p.buffer[idx+1:]

		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			p.done = true
			return deltas
		}
		if payload == "" {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			deltas = append(deltas, chunk.Choices[0].Delta.Content)
		}
	}

	return deltas
}

func (p *streamParser) finished() bool {
	return p.done
}
