package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names exposed to MCP clients.
const (
	ToolSearchDocs = "search_docs"
	ToolAskDocs    = "ask_docs"
	ToolStats      = "docs_stats"
)

// QueryInput is the shared input schema for the search and ask tools.
type QueryInput struct {
	Query string `json:"query" jsonschema:"The question or search terms about the Hulo language"`
}

// registerTools registers the knowledge tools on the MCP server.
func (s *Server) registerTools() error {
	querySchema, err := jsonschema.For[QueryInput](nil)
	if err != nil {
		return fmt.Errorf("schema for query tools: %w", err)
	}
	emptySchema, err := jsonschema.For[struct{}](nil)
	if err != nil {
		return fmt.Errorf("schema for stats tool: %w", err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: ToolSearchDocs,
		Description: "Search the Hulo language documentation using semantic similarity. " +
			"Returns the most relevant documentation sections with scores.",
		InputSchema: querySchema,
	}, s.searchDocs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: ToolAskDocs,
		Description: "Ask a question about the Hulo language. " +
			"Answers from the documentation with citations to the source pages.",
		InputSchema: querySchema,
	}, s.askDocs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolStats,
		Description: "Report how many documentation chunks the knowledge base holds.",
		InputSchema: emptySchema,
	}, s.stats)

	return nil
}

// searchDocs handles the search_docs MCP tool call.
func (s *Server) searchDocs(ctx context.Context, _ *mcp.CallToolRequest, in QueryInput) (*mcp.CallToolResult, any, error) {
	result, err := s.knowledge.Search(ctx, in.Query)
	if err != nil {
		return errorResult(err), nil, nil
	}

	if result.Empty() {
		return textResult("No relevant documentation found."), nil, nil
	}

	var b strings.Builder
	for i, hit := range result.Hits {
		fmt.Fprintf(&b, "[%d] %s (%s, score %.2f)\n%s\n\n",
			i+1, hit.Chunk.Title, hit.Chunk.Path, hit.Score, hit.Chunk.Text)
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil, nil
}

// askDocs handles the ask_docs MCP tool call.
func (s *Server) askDocs(ctx context.Context, _ *mcp.CallToolRequest, in QueryInput) (*mcp.CallToolResult, any, error) {
	answer, err := s.knowledge.Ask(ctx, in.Query)
	if err != nil {
		return errorResult(err), nil, nil
	}

	var b strings.Builder
	b.WriteString(answer.Text)
	if len(answer.Citations) > 0 {
		b.WriteString("\n\nSources:\n")
		for i, c := range answer.Citations {
			fmt.Fprintf(&b, "[%d] %s (%s)\n", i+1, c.Title, c.Path)
		}
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil, nil
}

// stats handles the docs_stats MCP tool call.
func (s *Server) stats(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	count, err := s.knowledge.Count(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return textResult(fmt.Sprintf("The knowledge base holds %d documentation chunks.", count)), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult reports a tool failure to the client without tearing down
// the MCP session.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
		IsError: true,
	}
}
