package server

import (
	"context"
	"strings"
)

const echoPrefix = "You said: "

// Responder produces the reply to one user message as a sequence of chunks.
// The chunks concatenate to the full reply.
type Responder interface {
	Reply(ctx context.Context, subject, message string) ([]string, error)
}

// EchoResponder repeats the message back, split into ChunkSize-rune pieces.
type EchoResponder struct {
	ChunkSize int
}

func (e EchoResponder) Reply(_ context.Context, _ string, message string) ([]string, error) {
	return splitRunes(echoPrefix+message, e.ChunkSize), nil
}

func splitRunes(text string, size int) []string {
	runes := []rune(text)
	if size <= 0 || size >= len(runes) {
		return []string{text}
	}
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func joinChunks(chunks []string) string {
	return strings.Join(chunks, "")
}
