package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webpilot/pkg/aria"
	wbrowser "github.com/entrhq/webpilot/pkg/browser"
	"github.com/entrhq/webpilot/pkg/logging"
)

// Toolbox carries the shared collaborators every browser tool needs: the page
// registry (which owns the connection) and the component logger.
type Toolbox struct {
	Registry *wbrowser.Registry
	Log      *logging.Logger

	// AllowNavigate validates a navigation URL against the configured
	// allow-list. Nil means no restriction.
	AllowNavigate func(url string) error
}

// NewToolbox creates the shared tool state.
func NewToolbox(registry *wbrowser.Registry, log *logging.Logger) *Toolbox {
	return &Toolbox{Registry: registry, Log: log}
}

// page resolves a tool's page_name parameter, defaulting to "main".
func (b *Toolbox) page(ctx context.Context, name string) (*wbrowser.PageHandle, error) {
	if name == "" {
		name = DefaultPageName
	}
	return b.Registry.GetPage(ctx, name)
}

// resolveTarget turns a ref or CSS selector into a live element handle. Refs
// take priority over selectors.
func (b *Toolbox) resolveTarget(handle *wbrowser.PageHandle, ref, selector string) (playwright.ElementHandle, error) {
	if ref != "" {
		return aria.Resolve(handle.Page, handle.Aria, ref)
	}
	if selector != "" {
		element, err := handle.Page.QuerySelector(selector)
		if err != nil {
			return nil, &wbrowser.ActionError{Action: "selector query", Err: err}
		}
		if element == nil {
			return nil, &wbrowser.ActionError{Action: "selector query", Err: fmt.Errorf("no element matches %q", selector)}
		}
		return element, nil
	}
	return nil, fmt.Errorf("either ref or selector is required")
}

// awaitReady waits for the document to finish loading, bounded by timeoutMs.
// Expiry is not an error: slow pages still yield a usable result.
func awaitReady(page playwright.Page, timeoutMs float64) {
	if timeoutMs <= 0 {
		timeoutMs = DefaultLoadWaitMs
	}
	_ = page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateLoad,
		Timeout: playwright.Float(timeoutMs),
	})
}

// normalizeURL turns a bare host into an HTTPS URL.
func normalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	if strings.Contains(trimmed, "://") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "about:") || strings.HasPrefix(trimmed, "data:") {
		return trimmed
	}
	return "https://" + trimmed
}
