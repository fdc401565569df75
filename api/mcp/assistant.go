package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scentshop/perfumery/pkg/storefront"
)

var (
	askToolName    = "ask_assistant"
	askDescription = "Ask the storefront's fragrance assistant a question. Set include_context to let it ground the answer in the catalog."
)

// AskInput represents the input arguments for the assistant tool.
type AskInput struct {
	Question       string `json:"question" jsonschema:"the question for the fragrance assistant"`
	IncludeContext bool   `json:"include_context,omitempty" jsonschema:"ground the answer in the perfume catalog"`
}

// AskOutput is the assistant's complete answer.
type AskOutput struct {
	Question string `json:"question"`
	Reply    string `json:"reply"`
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return toolError("A question is required"), AskOutput{}, nil
	}

	s.config.Logger.Debug("MCP assistant request",
		"include_context", input.IncludeContext,
	)

	reply, err := s.config.Assistant.ChatOnce(ctx, storefront.ChatRequest{
		Query:          question,
		IncludeContext: input.IncludeContext,
	})
	if err != nil {
		s.config.Logger.Error("assistant request failed", "error", err)
		return toolError("The assistant is unavailable: %v", err), AskOutput{}, nil
	}

	return toolResult(s, AskOutput{Question: question, Reply: reply.Reply})
}
