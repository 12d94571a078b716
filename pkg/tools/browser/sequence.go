package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/aria"
	wbrowser "github.com/entrhq/webpilot/pkg/browser"
)

// SequenceTool runs an ordered list of action steps against one page,
// stopping at the first failure.
type SequenceTool struct {
	box *Toolbox

	// runStep executes one step and returns its transcript line.
	// Injectable for tests.
	runStep func(ctx context.Context, handle *wbrowser.PageHandle, step ActionStep) (string, error)
}

// NewSequenceTool creates a new sequence tool.
func NewSequenceTool(box *Toolbox) *SequenceTool {
	t := &SequenceTool{box: box}
	t.runStep = t.execStep
	return t
}

// Name returns the tool name.
func (t *SequenceTool) Name() string {
	return "browser_sequence"
}

// Description returns the tool description.
func (t *SequenceTool) Description() string {
	return "Run a list of browser actions (click, type, snapshot, screenshot, wait) in order on one page. Stops at the first failing step and reports what completed."
}

// Schema returns the tool's JSON schema.
func (t *SequenceTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"actions": map[string]interface{}{
				"type":        "array",
				"description": "Ordered steps; each has a kind of click, type, snapshot, screenshot or wait plus that kind's fields",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"kind":        map[string]interface{}{"type": "string"},
						"x":           map[string]interface{}{"type": "number"},
						"y":           map[string]interface{}{"type": "number"},
						"ref":         map[string]interface{}{"type": "string"},
						"selector":    map[string]interface{}{"type": "string"},
						"text":        map[string]interface{}{"type": "string"},
						"press_enter": map[string]interface{}{"type": "boolean"},
						"full_page":   map[string]interface{}{"type": "boolean"},
						"timeout_ms":  map[string]interface{}{"type": "number"},
					},
					"required": []string{"kind"},
				},
			},
			"page_name": map[string]interface{}{
				"type":        "string",
				"description": "Logical page to act on (default: main)",
			},
		},
		[]string{"actions"},
	)
}

// SequenceInput represents the parameters for a sequence.
type SequenceInput struct {
	XMLName  xml.Name     `xml:"arguments"`
	Actions  []ActionStep `xml:"actions>step"`
	PageName string       `xml:"page_name"`
}

// Execute validates every step upfront, then runs them in order. The first
// failure halts the sequence; already-applied side effects are not rolled back.
func (t *SequenceTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input SequenceInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if len(input.Actions) == 0 {
		return "", nil, fmt.Errorf("actions must contain at least one step")
	}
	if len(input.Actions) > MaxSequenceSteps {
		return "", nil, fmt.Errorf("too many steps: %d (max %d)", len(input.Actions), MaxSequenceSteps)
	}
	for i, step := range input.Actions {
		if err := validateStep(step); err != nil {
			return "", nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	handle, err := t.box.page(ctx, input.PageName)
	if err != nil {
		return "", nil, err
	}

	var transcript []string
	for i, step := range input.Actions {
		line, err := t.runStep(ctx, handle, step)
		if err != nil {
			transcript = append(transcript, fmt.Sprintf("%d. %s: FAILED: %v", i+1, step.Kind, err))
			return fmt.Sprintf("Sequence failed at step %d of %d:\n%s",
				i+1, len(input.Actions), strings.Join(transcript, "\n")), nil, nil
		}
		transcript = append(transcript, fmt.Sprintf("%d. %s", i+1, line))
	}

	return fmt.Sprintf("Sequence completed (%d steps):\n%s",
		len(input.Actions), strings.Join(transcript, "\n")), nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *SequenceTool) IsLoopBreaking() bool {
	return false
}

// validateStep checks a step's fields before any step runs, so a malformed
// sequence fails whole rather than partway through.
func validateStep(step ActionStep) error {
	switch step.Kind {
	case "click":
		if (step.X == nil) != (step.Y == nil) {
			return fmt.Errorf("x and y must be provided together")
		}
		if step.X == nil && step.Ref == "" && step.Selector == "" {
			return fmt.Errorf("click needs x/y, ref or selector")
		}
	case "type":
		if step.Ref == "" && step.Selector == "" {
			return fmt.Errorf("type needs ref or selector")
		}
		if step.Text == "" {
			return fmt.Errorf("type needs text")
		}
	case "snapshot", "screenshot":
	case "wait":
		if step.TimeoutMs <= 0 {
			return fmt.Errorf("wait needs a positive timeout_ms")
		}
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", step.Kind)
	}
	return nil
}

// execStep performs one step against the page.
func (t *SequenceTool) execStep(ctx context.Context, handle *wbrowser.PageHandle, step ActionStep) (string, error) {
	switch step.Kind {
	case "click":
		return t.execClick(handle, step)
	case "type":
		return t.execType(handle, step)
	case "snapshot":
		text, err := aria.Snapshot(handle.Page, handle.Aria)
		if err != nil {
			return "", err
		}
		return "snapshot:\n" + text, nil
	case "screenshot":
		data, err := handle.Page.Screenshot(playwright.PageScreenshotOptions{
			FullPage: playwright.Bool(step.FullPage),
			Type:     playwright.ScreenshotTypePng,
		})
		if err != nil {
			return "", &wbrowser.ActionError{Action: "screenshot", Err: err}
		}
		return fmt.Sprintf("screenshot: captured %d bytes", len(data)), nil
	case "wait":
		ms := step.TimeoutMs
		if ms > maxWaitMs {
			ms = maxWaitMs
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(ms) * time.Millisecond):
		}
		return fmt.Sprintf("wait: %dms", int(ms)), nil
	}
	return "", fmt.Errorf("unknown kind %q", step.Kind)
}

func (t *SequenceTool) execClick(handle *wbrowser.PageHandle, step ActionStep) (string, error) {
	if step.X != nil {
		if err := handle.Page.Mouse().Click(*step.X, *step.Y); err != nil {
			return "", &wbrowser.ActionError{Action: "click", Err: err}
		}
		awaitReady(handle.Page, DefaultLoadWaitMs)
		return fmt.Sprintf("click: (%g, %g)", *step.X, *step.Y), nil
	}
	element, err := t.box.resolveTarget(handle, step.Ref, step.Selector)
	if err != nil {
		return "", err
	}
	if err := element.Click(); err != nil {
		return "", &wbrowser.ActionError{Action: "click", Err: err}
	}
	awaitReady(handle.Page, DefaultLoadWaitMs)
	target := step.Ref
	if target == "" {
		target = step.Selector
	}
	return "click: " + target, nil
}

func (t *SequenceTool) execType(handle *wbrowser.PageHandle, step ActionStep) (string, error) {
	element, err := t.box.resolveTarget(handle, step.Ref, step.Selector)
	if err != nil {
		return "", err
	}
	if err := element.Click(); err != nil {
		return "", &wbrowser.ActionError{Action: "focus click", Err: err}
	}
	if err := element.Fill(step.Text); err != nil {
		return "", &wbrowser.ActionError{Action: "type", Err: err}
	}
	if step.PressEnter {
		if err := handle.Page.Keyboard().Press("Enter"); err != nil {
			return "", &wbrowser.ActionError{Action: "press Enter", Err: err}
		}
		awaitReady(handle.Page, DefaultLoadWaitMs)
	}
	return fmt.Sprintf("type: %q", step.Text), nil
}
