package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gongahkia/dueday/internal/config"
	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/log"
	"github.com/gongahkia/dueday/internal/mcp/resources"
	"github.com/gongahkia/dueday/internal/mcp/tools"
	"github.com/gongahkia/dueday/internal/nlp"
	"github.com/gongahkia/dueday/internal/recurrence"
)

// NewEnv builds the tool environment from cfg with the system clock.
func NewEnv(cfg *config.Config) *tools.Env {
	return &tools.Env{
		Parser: nlp.New(nlp.Options{
			DefaultHour: cfg.DefaultDueHour,
			DateLocale:  cfg.DateLocale,
		}),
		Clock:    dates.SystemClock{},
		Zone:     cfg.Location(),
		Expander: recurrence.Expander{MaxOccurrences: cfg.MaxOccurrences, Logger: log.Default()},
	}
}

// NewServer creates and configures the MCP server with all tools and resources.
// cfg is what dueday://config reports.
func NewServer(version string, cfg *config.Config, env *tools.Env) *server.MCPServer {
	srv := server.NewMCPServer(
		"dueday",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	// Register tools
	srv.AddTool(tools.ParseTaskTool(), tools.HandleParseTask(env))
	srv.AddTool(tools.ExpandRecurrenceTool(), tools.HandleExpandRecurrence(env))
	srv.AddTool(tools.NextOccurrenceTool(), tools.HandleNextOccurrence(env))

	// Register resources
	srv.AddResource(
		mcp.NewResource(resources.ConfigURI, "Configuration",
			mcp.WithResourceDescription("Current dueday configuration"),
			mcp.WithMIMEType("application/json"),
		),
		resources.HandleConfig(cfg, env.Clock),
	)
	srv.AddResource(
		mcp.NewResource(resources.PatternsURI, "Recurrence Patterns",
			mcp.WithResourceDescription("Recurrence patterns and the phrase rules that detect them"),
			mcp.WithMIMEType("application/json"),
		),
		resources.HandlePatterns,
	)

	return srv
}
