package tools

import (
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gongahkia/dueday/internal/dates"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/nlp"
	"github.com/gongahkia/dueday/internal/recurrence"
)

// Env carries what the tool handlers share. Clock supplies the reference
// instant for parsing and completion.
type Env struct {
	Parser   *nlp.Parser
	Clock    dates.Clock
	Zone     *time.Location
	Expander recurrence.Expander
}

// zone resolves the optional timezone argument.
func (e *Env) zone(args map[string]any) *time.Location {
	name, _ := args["timezone"].(string)
	if name == "" {
		if e.Zone != nil {
			return e.Zone
		}
		return time.UTC
	}
	loc, _ := dates.LoadZone(name)
	return loc
}

func ruleArgs(args map[string]any, loc *time.Location) (model.Task, error) {
	dueStr, _ := args["due"].(string)
	patternStr, _ := args["pattern"].(string)
	if dueStr == "" || patternStr == "" {
		return model.Task{}, fmt.Errorf("due and pattern are required")
	}
	due, _, err := dates.ParseInstant(dueStr, loc)
	if err != nil {
		return model.Task{}, err
	}
	pattern, err := model.ParsePattern(patternStr)
	if err != nil {
		return model.Task{}, err
	}
	rule := model.RecurrenceRule{Pattern: pattern}
	if v, ok := args["interval"].(float64); ok {
		rule.Interval = int(v)
	}
	if s, _ := args["ends_at"].(string); s != "" {
		end, dateOnly, err := dates.ParseInstant(s, loc)
		if err != nil {
			return model.Task{}, err
		}
		if dateOnly {
			end = dates.EndOfDay(end, loc)
		}
		rule.EndsAt = &end
	}
	task := model.Task{Text: "occurrence", DueDate: &due, Rule: rule}
	task.Normalize()
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func textOf(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func errorResult(format string, a ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, a...))
}
