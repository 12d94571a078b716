package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/entrhq/webpilot/pkg/agent/tools"
)

// WaitTool pauses for a fixed duration, bounded to keep tool calls responsive.
type WaitTool struct {
	box *Toolbox
}

// NewWaitTool creates a new wait tool.
func NewWaitTool(box *Toolbox) *WaitTool {
	return &WaitTool{box: box}
}

// Name returns the tool name.
func (t *WaitTool) Name() string {
	return "browser_wait"
}

// Description returns the tool description.
func (t *WaitTool) Description() string {
	return "Wait for a number of milliseconds, up to 30 seconds. Useful for pages that settle after animations or delayed fetches."
}

// Schema returns the tool's JSON schema.
func (t *WaitTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"duration_ms": map[string]interface{}{
				"type":        "number",
				"description": "Milliseconds to wait (1 to 30000)",
			},
		},
		[]string{"duration_ms"},
	)
}

// WaitInput represents the parameters for waiting.
type WaitInput struct {
	XMLName    xml.Name `xml:"arguments"`
	DurationMs float64  `xml:"duration_ms"`
}

const maxWaitMs = 30000

// Execute sleeps, honoring context cancellation.
func (t *WaitTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input WaitInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.DurationMs <= 0 {
		return "", nil, fmt.Errorf("duration_ms must be positive")
	}
	if input.DurationMs > maxWaitMs {
		input.DurationMs = maxWaitMs
	}

	d := time.Duration(input.DurationMs) * time.Millisecond
	select {
	case <-ctx.Done():
		return "", nil, ctx.Err()
	case <-time.After(d):
	}
	return fmt.Sprintf("Waited %dms", int(input.DurationMs)), nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *WaitTool) IsLoopBreaking() bool {
	return false
}
