package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gongahkia/dueday/internal/dates"
)

// ExpandRecurrenceTool returns the MCP tool definition for expand_recurrence.
func ExpandRecurrenceTool() mcp.Tool {
	return mcp.NewTool("expand_recurrence",
		mcp.WithDescription("List the occurrences of a recurring due date inside a window"),
		mcp.WithString("due", mcp.Required(), mcp.Description("First due date, RFC 3339 or YYYY-MM-DD")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("none, daily, weekly, monthly, yearly or custom")),
		mcp.WithNumber("interval", mcp.Description("Step between occurrences, default 1")),
		mcp.WithString("ends_at", mcp.Description("Last allowed occurrence, inclusive")),
		mcp.WithString("from", mcp.Required(), mcp.Description("Window start")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Window end; a bare date covers the whole day")),
		mcp.WithString("timezone", mcp.Description("IANA zone for wall-clock arithmetic")),
	)
}

type occurrence struct {
	Index   int       `json:"index"`
	DueDate time.Time `json:"dueDate"`
}

type expandResponse struct {
	Rule        string       `json:"rule"`
	Count       int          `json:"count"`
	Occurrences []occurrence `json:"occurrences"`
}

// HandleExpandRecurrence returns the expand_recurrence handler bound to env.
func HandleExpandRecurrence(env *Env) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		loc := env.zone(args)

		task, err := ruleArgs(args, loc)
		if err != nil {
			return errorResult("invalid rule: %v", err), nil
		}
		fromStr, toStr := textOf(args, "from"), textOf(args, "to")
		if fromStr == "" || toStr == "" {
			return mcp.NewToolResultError("from and to are required"), nil
		}
		from, _, err := dates.ParseInstant(fromStr, loc)
		if err != nil {
			return errorResult("invalid from: %v", err), nil
		}
		to, dateOnly, err := dates.ParseInstant(toStr, loc)
		if err != nil {
			return errorResult("invalid to: %v", err), nil
		}
		if dateOnly {
			to = dates.EndOfDay(to, loc)
		}
		if to.Before(from) {
			return mcp.NewToolResultError("to is before from"), nil
		}

		resp := expandResponse{Rule: task.Rule.String(), Occurrences: []occurrence{}}
		for _, o := range env.Expander.Expand(task, from, to, loc) {
			if o.DueDate.Before(from) || o.DueDate.After(to) {
				continue
			}
			resp.Occurrences = append(resp.Occurrences, occurrence{Index: o.Index, DueDate: o.DueDate.In(loc)})
		}
		resp.Count = len(resp.Occurrences)

		data, _ := json.MarshalIndent(resp, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}
