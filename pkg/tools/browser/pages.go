package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/webpilot/pkg/agent/tools"
)

// PagesTool manages the task's registered pages: it lists them or closes one
// by name, selected by the action parameter.
type PagesTool struct {
	box *Toolbox
}

// NewPagesTool creates a new pages tool.
func NewPagesTool(box *Toolbox) *PagesTool {
	return &PagesTool{box: box}
}

// Name returns the tool name.
func (t *PagesTool) Name() string {
	return "browser_pages"
}

// Description returns the tool description.
func (t *PagesTool) Description() string {
	return "List the logical page names registered for this task, or close one by name. Closing a page releases its refs; other pages are unaffected."
}

// Schema returns the tool's JSON schema.
func (t *PagesTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"list", "close"},
				"description": "What to do: list open pages or close one (default: list)",
			},
			"page_name": map[string]interface{}{
				"type":        "string",
				"description": "Logical page to close (default: main). Ignored for list.",
			},
		},
		nil,
	)
}

// PagesInput represents the parameters for the pages tool.
type PagesInput struct {
	XMLName  xml.Name `xml:"arguments"`
	Action   string   `xml:"action"`
	PageName string   `xml:"page_name"`
}

// Execute runs the requested page management action.
func (t *PagesTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input PagesInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	switch input.Action {
	case "", "list":
		return t.list(ctx)
	case "close":
		return t.close(ctx, input.PageName)
	default:
		return "", nil, fmt.Errorf("unknown action %q: must be \"list\" or \"close\"", input.Action)
	}
}

func (t *PagesTool) list(ctx context.Context) (string, map[string]interface{}, error) {
	names, err := t.box.Registry.List(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list pages: %w", err)
	}
	if len(names) == 0 {
		return "No pages are open for this task", nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Open pages (%d):\n", len(names))
	for _, n := range names {
		fmt.Fprintf(&sb, "- %s\n", n)
	}
	return strings.TrimRight(sb.String(), "\n"), nil, nil
}

func (t *PagesTool) close(ctx context.Context, name string) (string, map[string]interface{}, error) {
	if name == "" {
		name = DefaultPageName
	}
	if err := t.box.Registry.Close(ctx, name); err != nil {
		return "", nil, fmt.Errorf("failed to close page %q: %w", name, err)
	}
	return fmt.Sprintf("Closed page %q", name), nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *PagesTool) IsLoopBreaking() bool {
	return false
}
