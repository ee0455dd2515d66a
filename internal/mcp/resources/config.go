package resources

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gongahkia/dueday/internal/config"
	"github.com/gongahkia/dueday/internal/dates"
)

const ConfigURI = "dueday://config"

// configDoc is the config the server runs with plus what an agent needs to
// interpret dates it sends back: where the file lives and the zone's
// current offset.
type configDoc struct {
	*config.Config
	Path       string `json:"path"`
	ZoneOffset string `json:"zone_offset"`
}

// HandleConfig serves cfg as JSON. The offset is taken at read time.
func HandleConfig(cfg *config.Config, clock dates.Clock) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		doc := configDoc{
			Config:     cfg,
			Path:       config.ConfigPath(),
			ZoneOffset: clock.Now().In(cfg.Location()).Format("-07:00"),
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ConfigURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
