package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gongahkia/dueday/internal/config"
	"github.com/gongahkia/dueday/internal/dates"
)

func TestMCPIntegration(t *testing.T) {
	dir := t.TempDir()
	config.SetOverridePath(dir + "/config.toml")
	t.Cleanup(func() { config.SetOverridePath("") })

	cfg := config.DefaultConfig()
	cfg.DefaultTimezone = "Europe/London"
	env := NewEnv(cfg)
	env.Clock = dates.FixedClock(time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC))
	srv := NewServer("test", cfg, env)

	testClient, err := client.NewInProcessClient(srv)
	if err != nil {
		t.Fatalf("failed to create in-process client: %v", err)
	}
	defer testClient.Close()

	ctx := context.Background()
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "1.0"}

	_, err = testClient.Initialize(ctx, initReq)
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	t.Run("list_tools", func(t *testing.T) {
		result, err := testClient.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		names := map[string]bool{}
		for _, tool := range result.Tools {
			names[tool.Name] = true
		}
		for _, want := range []string{"parse_task", "expand_recurrence", "next_occurrence"} {
			if !names[want] {
				t.Errorf("missing tool %s", want)
			}
		}
	})

	t.Run("parse_task", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Name = "parse_task"
		req.Params.Arguments = map[string]any{"text": "Team meeting every 2 weeks", "timezone": "Europe/London"}
		result, err := testClient.CallTool(ctx, req)
		if err != nil {
			t.Fatalf("call failed: %v", err)
		}
		if result.IsError {
			t.Fatal("expected success")
		}
		text := extractText(t, result)
		if !strings.Contains(text, `"recurrencePattern": "weekly"`) || !strings.Contains(text, `"recurrenceInterval": 2`) {
			t.Errorf("unexpected parse %s", text)
		}
	})

	t.Run("expand_missing_params", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Name = "expand_recurrence"
		req.Params.Arguments = map[string]any{"due": "2025-06-01"}
		result, err := testClient.CallTool(ctx, req)
		if err != nil {
			t.Fatalf("call failed: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing params")
		}
	})

	t.Run("patterns_resource", func(t *testing.T) {
		req := mcp.ReadResourceRequest{}
		req.Params.URI = "dueday://patterns"
		result, err := testClient.ReadResource(ctx, req)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		var doc struct {
			Patterns []string `json:"patterns"`
			Rules    []struct {
				Name string `json:"name"`
			} `json:"rules"`
		}
		if err := json.Unmarshal([]byte(resourceText(t, result)), &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(doc.Patterns) != 6 || len(doc.Rules) == 0 || doc.Rules[0].Name != "bi-weekly" {
			t.Errorf("unexpected patterns doc %+v", doc)
		}
	})

	t.Run("config_resource", func(t *testing.T) {
		req := mcp.ReadResourceRequest{}
		req.Params.URI = "dueday://config"
		result, err := testClient.ReadResource(ctx, req)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(resourceText(t, result)), &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		// BST on the fixed clock
		if doc["default_timezone"] != "Europe/London" || doc["zone_offset"] != "+01:00" || doc["path"] != dir+"/config.toml" {
			t.Errorf("unexpected config %v", doc)
		}
	})
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func resourceText(t *testing.T, result *mcp.ReadResourceResult) string {
	t.Helper()
	for _, c := range result.Contents {
		switch tc := c.(type) {
		case mcp.TextResourceContents:
			return tc.Text
		case *mcp.TextResourceContents:
			return tc.Text
		}
	}
	t.Fatal("no text resource found")
	return ""
}
