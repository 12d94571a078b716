package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	wbrowser "github.com/entrhq/webpilot/pkg/browser"
)

// TypeTool types text into an element addressed by ref or selector.
type TypeTool struct {
	box *Toolbox
}

// NewTypeTool creates a new type tool.
func NewTypeTool(box *Toolbox) *TypeTool {
	return &TypeTool{box: box}
}

// Name returns the tool name.
func (t *TypeTool) Name() string {
	return "browser_type"
}

// Description returns the tool description.
func (t *TypeTool) Description() string {
	return "Type text into an input, replacing its current value. The element is clicked first to focus it. Optionally presses Enter afterwards and waits for any resulting navigation."
}

// Schema returns the tool's JSON schema.
func (t *TypeTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"ref": map[string]interface{}{
				"type":        "string",
				"description": "Element ref from the latest snapshot, e.g. e12",
			},
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector for the input element",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to type; replaces the element's current value",
			},
			"press_enter": map[string]interface{}{
				"type":        "boolean",
				"description": "Press Enter after typing (default: false)",
			},
			"page_name": map[string]interface{}{
				"type":        "string",
				"description": "Logical page to act on (default: main)",
			},
		},
		[]string{"text"},
	)
}

// TypeInput represents the parameters for typing.
type TypeInput struct {
	XMLName    xml.Name `xml:"arguments"`
	Ref        string   `xml:"ref"`
	Selector   string   `xml:"selector"`
	Text       string   `xml:"text"`
	PressEnter bool     `xml:"press_enter"`
	PageName   string   `xml:"page_name"`
}

// Execute types into the resolved target.
func (t *TypeTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input TypeInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.Ref == "" && input.Selector == "" {
		return "", nil, fmt.Errorf("either ref or selector is required")
	}

	handle, err := t.box.page(ctx, input.PageName)
	if err != nil {
		return "", nil, err
	}

	element, err := t.box.resolveTarget(handle, input.Ref, input.Selector)
	if err != nil {
		return "", nil, err
	}

	if err := element.Click(); err != nil {
		return "", nil, &wbrowser.ActionError{Action: "focus click", Err: err}
	}
	if err := element.Fill(input.Text); err != nil {
		return "", nil, &wbrowser.ActionError{Action: "type", Err: err}
	}

	if input.PressEnter {
		if err := handle.Page.Keyboard().Press("Enter"); err != nil {
			return "", nil, &wbrowser.ActionError{Action: "press Enter", Err: err}
		}
		awaitReady(handle.Page, DefaultLoadWaitMs)
	}

	suffix := ""
	if input.PressEnter {
		suffix = " and pressed Enter"
	}
	return fmt.Sprintf("Typed %q%s\nCurrent URL: %s", input.Text, suffix, handle.Page.URL()), nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *TypeTool) IsLoopBreaking() bool {
	return false
}
