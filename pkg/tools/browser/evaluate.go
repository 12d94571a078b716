package browser

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	wbrowser "github.com/entrhq/webpilot/pkg/browser"
)

// EvaluateTool runs a JavaScript expression in the page context.
type EvaluateTool struct {
	box *Toolbox
}

// NewEvaluateTool creates a new evaluate tool.
func NewEvaluateTool(box *Toolbox) *EvaluateTool {
	return &EvaluateTool{box: box}
}

// Name returns the tool name.
func (t *EvaluateTool) Name() string {
	return "browser_evaluate"
}

// Description returns the tool description.
func (t *EvaluateTool) Description() string {
	return "Run JavaScript in the page and return the result as JSON. The code runs inside an async function body, so await and return both work."
}

// Schema returns the tool's JSON schema.
func (t *EvaluateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"code": map[string]interface{}{
				"type":        "string",
				"description": "JavaScript to run; use return to produce a value",
			},
			"page_name": map[string]interface{}{
				"type":        "string",
				"description": "Logical page to run in (default: main)",
			},
		},
		[]string{"code"},
	)
}

// EvaluateInput represents the parameters for evaluation.
type EvaluateInput struct {
	XMLName  xml.Name `xml:"arguments"`
	Code     string   `xml:"code"`
	PageName string   `xml:"page_name"`
}

// Execute wraps the code in an async function, runs it and serializes the result.
func (t *EvaluateTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input EvaluateInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.Code == "" {
		return "", nil, fmt.Errorf("code is required")
	}

	handle, err := t.box.page(ctx, input.PageName)
	if err != nil {
		return "", nil, err
	}

	wrapped := fmt.Sprintf("async () => {\n%s\n}", input.Code)
	result, err := handle.Page.Evaluate(wrapped)
	if err != nil {
		return "", nil, &wbrowser.ScriptError{Err: err}
	}
	if result == nil {
		return "Script executed (no return value)", nil, nil
	}

	serialized, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		// The value came back but is not JSON-representable on our side.
		return fmt.Sprintf("Script result: %v", result), nil, nil
	}
	return fmt.Sprintf("Script result:\n%s", serialized), nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *EvaluateTool) IsLoopBreaking() bool {
	return false
}
