package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	wbrowser "github.com/entrhq/webpilot/pkg/browser"
)

// ClickTool clicks an element addressed by coordinates, snapshot ref or CSS
// selector, in that priority order.
type ClickTool struct {
	box *Toolbox
}

// NewClickTool creates a new click tool.
func NewClickTool(box *Toolbox) *ClickTool {
	return &ClickTool{box: box}
}

// Name returns the tool name.
func (t *ClickTool) Name() string {
	return "browser_click"
}

// Description returns the tool description.
func (t *ClickTool) Description() string {
	return "Click on the page. Provide x/y coordinates, a [ref=eN] token from browser_snapshot, or a CSS selector. Coordinates win over ref, ref wins over selector."
}

// Schema returns the tool's JSON schema.
func (t *ClickTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"x": map[string]interface{}{
				"type":        "number",
				"description": "Viewport x coordinate to click",
			},
			"y": map[string]interface{}{
				"type":        "number",
				"description": "Viewport y coordinate to click",
			},
			"ref": map[string]interface{}{
				"type":        "string",
				"description": "Element ref from the latest snapshot, e.g. e12",
			},
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector for the element to click",
			},
			"page_name": map[string]interface{}{
				"type":        "string",
				"description": "Logical page to act on (default: main)",
			},
		},
		nil,
	)
}

// ClickInput represents the parameters for clicking.
type ClickInput struct {
	XMLName  xml.Name `xml:"arguments"`
	X        *float64 `xml:"x"`
	Y        *float64 `xml:"y"`
	Ref      string   `xml:"ref"`
	Selector string   `xml:"selector"`
	PageName string   `xml:"page_name"`
}

// Execute clicks the resolved target.
func (t *ClickTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input ClickInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if (input.X == nil) != (input.Y == nil) {
		return "", nil, fmt.Errorf("x and y must be provided together")
	}
	if input.X == nil && input.Ref == "" && input.Selector == "" {
		return "", nil, fmt.Errorf("one of x/y, ref or selector is required")
	}

	handle, err := t.box.page(ctx, input.PageName)
	if err != nil {
		return "", nil, err
	}

	var where string
	switch {
	case input.X != nil:
		if err := handle.Page.Mouse().Click(*input.X, *input.Y); err != nil {
			return "", nil, &wbrowser.ActionError{Action: "click", Err: err}
		}
		where = fmt.Sprintf("(%g, %g)", *input.X, *input.Y)
	default:
		element, err := t.box.resolveTarget(handle, input.Ref, input.Selector)
		if err != nil {
			return "", nil, err
		}
		if err := element.Click(); err != nil {
			return "", nil, &wbrowser.ActionError{Action: "click", Err: err}
		}
		if input.Ref != "" {
			where = input.Ref
		} else {
			where = input.Selector
		}
	}
	awaitReady(handle.Page, DefaultLoadWaitMs)

	return fmt.Sprintf("Clicked %s\nCurrent URL: %s", where, handle.Page.URL()), nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *ClickTool) IsLoopBreaking() bool {
	return false
}
