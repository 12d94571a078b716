package browser

import (
	"context"
	"errors"
	"strings"
	"testing"

	wbrowser "github.com/entrhq/webpilot/pkg/browser"
)

func TestEvaluateTool_RequiresCode(t *testing.T) {
	tool := NewEvaluateTool(&Toolbox{})
	_, _, err := tool.Execute(context.Background(), []byte(`<arguments></arguments>`))
	if err == nil || !strings.Contains(err.Error(), "code is required") {
		t.Errorf("expected missing code error, got %v", err)
	}
}

func TestEvaluateTool_ReturnsJSON(t *testing.T) {
	page := newFakePage()
	var expr string
	page.evalFn = func(expression string) (interface{}, error) {
		expr = expression
		return map[string]interface{}{"count": 3}, nil
	}
	box, _ := newTestBox(t, page)
	tool := NewEvaluateTool(box)

	result, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><code>return {count: 3}</code></arguments>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The code runs inside an async function body so return and await work.
	if !strings.HasPrefix(expr, "async () => {") {
		t.Errorf("expected the code wrapped in an async function, got:\n%s", expr)
	}
	if !strings.Contains(expr, "return {count: 3}") {
		t.Errorf("expected the caller's code inside the wrapper, got:\n%s", expr)
	}
	if !strings.Contains(result, `"count": 3`) {
		t.Errorf("expected the JSON result:\n%s", result)
	}
}

func TestEvaluateTool_NoReturnValue(t *testing.T) {
	page := newFakePage()
	page.evalFn = func(string) (interface{}, error) { return nil, nil }
	box, _ := newTestBox(t, page)
	tool := NewEvaluateTool(box)

	result, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><code>console.log('hi')</code></arguments>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "Script executed (no return value)" {
		t.Errorf("unexpected result: %q", result)
	}
}

func TestEvaluateTool_ScriptError(t *testing.T) {
	page := newFakePage()
	page.evalFn = func(string) (interface{}, error) {
		return nil, errors.New("ReferenceError: nope is not defined")
	}
	box, _ := newTestBox(t, page)
	tool := NewEvaluateTool(box)

	_, _, err := tool.Execute(context.Background(),
		[]byte(`<arguments><code>nope()</code></arguments>`))
	var scriptErr *wbrowser.ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("expected ScriptError, got %v", err)
	}
	if !strings.Contains(err.Error(), "ReferenceError") {
		t.Errorf("expected the thrown error verbatim, got %v", err)
	}
}
