package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ParseTaskTool returns the MCP tool definition for parse_task.
func ParseTaskTool() mcp.Tool {
	return mcp.NewTool("parse_task",
		mcp.WithDescription("Parse a free-text task into a cleaned title, due date, priority and recurrence rule"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Task description, e.g. \"Pay rent monthly on the 1st\"")),
		mcp.WithString("timezone", mcp.Description("IANA zone used for dates; unknown zones fall back to UTC")),
	)
}

// HandleParseTask returns the parse_task handler bound to env.
func HandleParseTask(env *Env) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		text := strings.TrimSpace(textOf(args, "text"))
		if text == "" {
			return mcp.NewToolResultError("text is required"), nil
		}

		parsed := env.Parser.Parse(text, env.zone(args), env.Clock.Now())
		data, _ := json.MarshalIndent(parsed, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}
