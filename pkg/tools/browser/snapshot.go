package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/aria"
)

// SnapshotTool captures the page's accessibility tree as indented text with
// per-element refs.
type SnapshotTool struct {
	box *Toolbox
}

// NewSnapshotTool creates a new snapshot tool.
func NewSnapshotTool(box *Toolbox) *SnapshotTool {
	return &SnapshotTool{box: box}
}

// Name returns the tool name.
func (t *SnapshotTool) Name() string {
	return "browser_snapshot"
}

// Description returns the tool description.
func (t *SnapshotTool) Description() string {
	return "Capture a structured accessibility snapshot of the page: one element per line with role, name, state and a stable [ref=eN] token usable with browser_click and browser_type. Prefer this over screenshots for reading page structure."
}

// Schema returns the tool's JSON schema.
func (t *SnapshotTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"page_name": map[string]interface{}{
				"type":        "string",
				"description": "Logical page to act on (default: main)",
			},
		},
		nil,
	)
}

// SnapshotInput represents the parameters for a snapshot.
type SnapshotInput struct {
	XMLName  xml.Name `xml:"arguments"`
	PageName string   `xml:"page_name"`
}

// Execute captures the snapshot.
func (t *SnapshotTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input SnapshotInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	handle, err := t.box.page(ctx, input.PageName)
	if err != nil {
		return "", nil, err
	}

	text, err := aria.Snapshot(handle.Page, handle.Aria)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("Page snapshot (%s):\n%s", handle.Page.URL(), text), nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *SnapshotTool) IsLoopBreaking() bool {
	return false
}
