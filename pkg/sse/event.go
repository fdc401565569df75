// Package sse decodes the chunked event stream emitted by the storefront's
// AI chat endpoint.
//
// The stream is newline-delimited text. Content-bearing lines use the
// server-sent-events "data:" convention with a JSON envelope:
//
//	data: {"type":"chunk","content":"Hel"}
//	data: {"type":"chunk","content":"lo"}
//
// Only "chunk" envelopes carrying string content are delivered to callers.
// Blank keep-alive lines, "event:" and ":" comment lines, other envelope
// types and malformed payloads are noise and are skipped.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import (
	"encoding/json"
	"fmt"
)

const (
	// DataPrefix marks a frame that carries a JSON envelope.
	DataPrefix = "data: "

	// TypeChunk is the envelope type for incremental assistant text.
	TypeChunk = "chunk"

	// TypeStatus is an informational envelope (e.g. "thinking").
	TypeStatus = "status"

	// TypeDone marks the end of an assistant reply.
	TypeDone = "done"

	// TypeError carries a server-side failure message.
	TypeError = "error"
)

// Envelope is the JSON payload of a "data: " frame.
type Envelope struct {
	// Type selects the event kind. Only TypeChunk is forwarded by the Decoder.
	Type string `json:"type"`

	// Content is the incremental text of a chunk event. It is a pointer so a
	// missing field can be told apart from an empty string.
	Content *string `json:"content,omitempty"`

	// Message is set on status and error events.
	Message string `json:"message,omitempty"`
}

// ChunkEnvelope returns a chunk envelope carrying content.
func ChunkEnvelope(content string) Envelope {
	return Envelope{Type: TypeChunk, Content: &content}
}

// Frame encodes the envelope as a complete "data: <json>" frame followed by a
// blank line, the framing the chat endpoint writes on the wire.
func (e Envelope) Frame() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}

	frame := make([]byte, 0, len(DataPrefix)+len(payload)+2)
	frame = append(frame, DataPrefix...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	return frame, nil
}

// chunkContent reports the content carried by a chunk envelope payload.
// Any payload that is not a JSON object, is not a chunk, or has no string
// content yields ok == false. Other fields are not inspected, so an
// unexpected shape elsewhere in the envelope never hides a chunk.
func chunkContent(payload string) (string, bool) {
	var env struct {
		Type    any `json:"type"`
		Content any `json:"content"`
	}
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return "", false
	}

	if typ, _ := env.Type.(string); typ != TypeChunk {
		return "", false
	}

	content, ok := env.Content.(string)
	return content, ok
}
