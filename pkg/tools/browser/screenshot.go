package browser

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	wbrowser "github.com/entrhq/webpilot/pkg/browser"
)

// ScreenshotTool captures a PNG screenshot of a page.
type ScreenshotTool struct {
	box *Toolbox
}

// NewScreenshotTool creates a new screenshot tool.
func NewScreenshotTool(box *Toolbox) *ScreenshotTool {
	return &ScreenshotTool{box: box}
}

// Name returns the tool name.
func (t *ScreenshotTool) Name() string {
	return "browser_screenshot"
}

// Description returns the tool description.
func (t *ScreenshotTool) Description() string {
	return "Capture a PNG screenshot of the page viewport, or of the full scrollable page when full_page is set."
}

// Schema returns the tool's JSON schema.
func (t *ScreenshotTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"full_page": map[string]interface{}{
				"type":        "boolean",
				"description": "Capture the full scrollable page instead of the viewport (default: false)",
			},
			"page_name": map[string]interface{}{
				"type":        "string",
				"description": "Logical page to capture (default: main)",
			},
		},
		nil,
	)
}

// ScreenshotInput represents the parameters for a screenshot.
type ScreenshotInput struct {
	XMLName  xml.Name `xml:"arguments"`
	FullPage bool     `xml:"full_page"`
	PageName string   `xml:"page_name"`
}

// Execute captures the screenshot and returns it base64-encoded in metadata.
func (t *ScreenshotTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input ScreenshotInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	handle, err := t.box.page(ctx, input.PageName)
	if err != nil {
		return "", nil, err
	}

	data, err := handle.Page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(input.FullPage),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return "", nil, &wbrowser.ActionError{Action: "screenshot", Err: err}
	}

	scope := "viewport"
	if input.FullPage {
		scope = "full page"
	}
	metadata := map[string]interface{}{
		"media_type": "image/png",
		"data":       base64.StdEncoding.EncodeToString(data),
	}
	return fmt.Sprintf("Captured %s screenshot of %s (%d bytes)", scope, handle.Page.URL(), len(data)), metadata, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *ScreenshotTool) IsLoopBreaking() bool {
	return false
}
