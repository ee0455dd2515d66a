package resources

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/nlp"
)

const PatternsURI = "dueday://patterns"

type ruleMeta struct {
	Name            string        `json:"name"`
	Pattern         model.Pattern `json:"pattern"`
	Interval        int           `json:"interval"`
	ExtractInterval bool          `json:"extracts_interval"`
	Expr            string        `json:"expr"`
}

type patternsDoc struct {
	Patterns []model.Pattern `json:"patterns"`
	Rules    []ruleMeta      `json:"rules"`
}

// HandlePatterns lists the recurrence patterns and the phrase rules in the
// order they are tried.
func HandlePatterns(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc := patternsDoc{Patterns: model.Patterns()}
	for _, r := range nlp.Rules() {
		doc.Rules = append(doc.Rules, ruleMeta{
			Name:            r.Name,
			Pattern:         r.Pattern,
			Interval:        r.Interval,
			ExtractInterval: r.ExtractInterval,
			Expr:            r.Expr(),
		})
	}

	data, _ := json.MarshalIndent(doc, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PatternsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
