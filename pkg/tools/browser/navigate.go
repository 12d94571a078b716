package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	wbrowser "github.com/entrhq/webpilot/pkg/browser"
)

// NavigateTool navigates a logical page to a URL.
type NavigateTool struct {
	box *Toolbox
}

// NewNavigateTool creates a new navigate tool.
func NewNavigateTool(box *Toolbox) *NavigateTool {
	return &NavigateTool{box: box}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "browser_navigate"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Navigate a page to a URL. Bare hostnames are promoted to HTTPS. After navigation the tool waits briefly for the document to finish loading; a slow page does not fail the call."
}

// Schema returns the tool's JSON schema.
func (t *NavigateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to navigate to. A bare host like example.com becomes https://example.com",
			},
			"page_name": map[string]interface{}{
				"type":        "string",
				"description": "Logical page to act on (default: main)",
			},
		},
		[]string{"url"},
	)
}

// NavigateInput represents the parameters for navigation.
type NavigateInput struct {
	XMLName  xml.Name `xml:"arguments"`
	URL      string   `xml:"url"`
	PageName string   `xml:"page_name"`
}

// Execute navigates the page.
func (t *NavigateTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input NavigateInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.URL == "" {
		return "", nil, fmt.Errorf("URL is required")
	}

	target := normalizeURL(input.URL)
	if t.box.AllowNavigate != nil {
		if err := t.box.AllowNavigate(target); err != nil {
			return "", nil, err
		}
	}

	handle, err := t.box.page(ctx, input.PageName)
	if err != nil {
		return "", nil, err
	}

	if _, err := handle.Page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", nil, &wbrowser.ActionError{Action: "navigation", Err: err}
	}
	awaitReady(handle.Page, DefaultLoadWaitMs)

	title, err := handle.Page.Title()
	if err != nil {
		title = ""
	}

	pageName := input.PageName
	if pageName == "" {
		pageName = DefaultPageName
	}
	result := fmt.Sprintf("Navigated to %s\nTitle: %s\nPage: %s", handle.Page.URL(), title, pageName)
	return result, nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *NavigateTool) IsLoopBreaking() bool {
	return false
}
