package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/recurrence"
)

// NextOccurrenceTool returns the MCP tool definition for next_occurrence.
func NextOccurrenceTool() mcp.Tool {
	return mcp.NewTool("next_occurrence",
		mcp.WithDescription("Compute the due date a recurring task gets after it is completed"),
		mcp.WithString("due", mcp.Required(), mcp.Description("Current due date, RFC 3339 or YYYY-MM-DD")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("none, daily, weekly, monthly, yearly or custom")),
		mcp.WithNumber("interval", mcp.Description("Step between occurrences, default 1")),
		mcp.WithString("ends_at", mcp.Description("Last allowed occurrence, inclusive")),
		mcp.WithString("completed_at", mcp.Description("Completion time, default now")),
		mcp.WithString("timezone", mcp.Description("IANA zone for wall-clock arithmetic")),
	)
}

type nextResponse struct {
	Next  *time.Time `json:"next"`
	Ended bool       `json:"ended"`
}

// HandleNextOccurrence returns the next_occurrence handler bound to env.
func HandleNextOccurrence(env *Env) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		loc := env.zone(args)

		task, err := ruleArgs(args, loc)
		if err != nil {
			return errorResult("invalid rule: %v", err), nil
		}
		completedAt := env.Clock.Now()
		if s := textOf(args, "completed_at"); s != "" {
			completedAt, _, err = dates.ParseInstant(s, loc)
			if err != nil {
				return errorResult("invalid completed_at: %v", err), nil
			}
		}

		resp := nextResponse{Next: recurrence.Advance(task, completedAt, loc)}
		if resp.Next != nil {
			n := resp.Next.In(loc)
			resp.Next = &n
		}
		resp.Ended = resp.Next == nil && task.Rule.Pattern.Expandable()

		data, _ := json.MarshalIndent(resp, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}
