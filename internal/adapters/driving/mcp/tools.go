package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the ISO 27001 question to answer"`
	TopK     *int   `json:"top_k,omitempty" jsonschema:"number of context passages to return (default 3)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Contexts []string      `json:"contexts"`
	Matches  []MatchOutput `json:"matches"`
	Found    bool          `json:"found"`
}

// MatchOutput identifies one retrieved passage.
type MatchOutput struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question with the most relevant ISO 27001 control text",
	}, s.handleAsk)
}

// handleAsk handles the ask tool invocation. Invalid input surfaces as a
// tool error.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	topK := s.ports.DefaultTopK
	if input.TopK != nil {
		topK = *input.TopK
	}

	answer, err := s.ports.Ask.Ask(ctx, domain.AskRequest{Question: input.Question, TopK: topK})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Question: answer.Question,
		Answer:   answer.Answer,
		Contexts: answer.Contexts,
		Matches:  make([]MatchOutput, len(answer.Matches)),
		Found:    answer.Found(),
	}
	for i := range answer.Matches {
		output.Matches[i] = MatchOutput{
			ChunkID: answer.Matches[i].ChunkID,
			Score:   answer.Matches[i].Score,
		}
	}

	return nil, output, nil
}
