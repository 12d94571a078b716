package browser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webpilot/pkg/aria"
	"github.com/entrhq/webpilot/pkg/aria/domtest"
	wbrowser "github.com/entrhq/webpilot/pkg/browser"
)

// testLog satisfies the browser package's component logger for tests.
type testLog struct{ t *testing.T }

func (l testLog) Debugf(format string, v ...interface{}) { l.t.Logf("DEBUG "+format, v...) }
func (l testLog) Warnf(format string, v ...interface{})  { l.t.Logf("WARN "+format, v...) }

// fakeMouse records coordinate clicks.
type fakeMouse struct {
	playwright.Mouse
	clicks [][2]float64
}

func (m *fakeMouse) Click(x, y float64, options ...playwright.MouseClickOptions) error {
	m.clicks = append(m.clicks, [2]float64{x, y})
	return nil
}

// fakeKeyboard records key presses.
type fakeKeyboard struct {
	playwright.Keyboard
	pressed []string
}

func (k *fakeKeyboard) Press(key string, options ...playwright.KeyboardPressOptions) error {
	k.pressed = append(k.pressed, key)
	return nil
}

// fakeElement records clicks and fills.
type fakeElement struct {
	playwright.ElementHandle
	clicks   int
	filled   []string
	clickErr error
	fillErr  error
}

func (e *fakeElement) Click(options ...playwright.ElementHandleClickOptions) error {
	if e.clickErr != nil {
		return e.clickErr
	}
	e.clicks++
	return nil
}

func (e *fakeElement) Fill(value string, options ...playwright.ElementHandleFillOptions) error {
	if e.fillErr != nil {
		return e.fillErr
	}
	e.filled = append(e.filled, value)
	return nil
}

type fakeHandle struct {
	playwright.JSHandle
	element playwright.ElementHandle
}

func (h *fakeHandle) AsElement() playwright.ElementHandle { return h.element }

// fakePage implements the page surface the tools touch.
type fakePage struct {
	playwright.Page
	url          string
	title        string
	mouse        *fakeMouse
	keyboard     *fakeKeyboard
	element      *fakeElement
	queried      []string
	gotos        []string
	shot         []byte
	lastFullPage bool
	evalFn       func(expression string) (interface{}, error)
}

func newFakePage() *fakePage {
	return &fakePage{
		url:      "https://example.com/",
		mouse:    &fakeMouse{},
		keyboard: &fakeKeyboard{},
		element:  &fakeElement{},
	}
}

func (p *fakePage) URL() string                   { return p.url }
func (p *fakePage) IsClosed() bool                { return false }
func (p *fakePage) Title() (string, error)        { return p.title, nil }
func (p *fakePage) Mouse() playwright.Mouse       { return p.mouse }
func (p *fakePage) Keyboard() playwright.Keyboard { return p.keyboard }

func (p *fakePage) WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error {
	return nil
}

func (p *fakePage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	p.gotos = append(p.gotos, url)
	p.url = url
	return nil, nil
}

func (p *fakePage) QuerySelector(selector string, options ...playwright.PageQuerySelectorOptions) (playwright.ElementHandle, error) {
	p.queried = append(p.queried, selector)
	if p.element == nil {
		return nil, nil
	}
	return p.element, nil
}

func (p *fakePage) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	if len(options) > 0 && options[0].FullPage != nil {
		p.lastFullPage = *options[0].FullPage
	}
	return p.shot, nil
}

func (p *fakePage) Evaluate(expression string, options ...interface{}) (interface{}, error) {
	if p.evalFn != nil {
		return p.evalFn(expression)
	}
	return nil, nil
}

func (p *fakePage) EvaluateHandle(expression string, options ...interface{}) (playwright.JSHandle, error) {
	return &fakeHandle{element: p.element}, nil
}

type fakeBrowser struct {
	playwright.Browser
	pages []playwright.Page
}

func (b *fakeBrowser) IsConnected() bool { return true }
func (b *fakeBrowser) Contexts() []playwright.BrowserContext {
	return []playwright.BrowserContext{&fakeContext{pages: b.pages}}
}

type fakeContext struct {
	playwright.BrowserContext
	pages []playwright.Page
}

func (c *fakeContext) Pages() []playwright.Page { return c.pages }

// fakeHost serves the browser-host protocol for the page registry.
type fakeHost struct {
	server *httptest.Server

	mu      sync.Mutex
	pages   []string
	deleted []string
}

func newFakeHost() *fakeHost {
	h := &fakeHost{}
	h.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"controlEndpoint": "ws://control",
				"mode":            "extension",
			})
		case r.Method == http.MethodPost && r.URL.Path == "/pages":
			_ = json.NewEncoder(w).Encode(map[string]string{"targetIdentity": "t-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/pages":
			h.mu.Lock()
			pages := append([]string(nil), h.pages...)
			h.mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string][]string{"pages": pages})
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/pages/"):
			h.mu.Lock()
			h.deleted = append(h.deleted, strings.TrimPrefix(r.URL.Path, "/pages/"))
			h.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return h
}

// newTestBox wires a toolbox to a fake host exposing the given page as the
// sole open page.
func newTestBox(t *testing.T, page *fakePage) (*Toolbox, *fakeHost) {
	t.Helper()
	host := newFakeHost()
	t.Cleanup(host.server.Close)

	var pages []playwright.Page
	if page != nil {
		pages = append(pages, page)
	}
	dial := func(ctx context.Context, controlEndpoint string) (playwright.Browser, error) {
		return &fakeBrowser{pages: pages}, nil
	}
	connector := wbrowser.NewConnectorWithDialer(host.server.URL, dial, testLog{t})
	registry := wbrowser.NewRegistry(connector, host.server.URL, "task1", testLog{t})
	return NewToolbox(registry, nil), host
}

// collectorPayload serializes a domtest projection the way the in-page
// collector would.
func collectorPayload(t *testing.T, source string) string {
	t.Helper()
	data, err := json.Marshal(domtest.MustBuild(source))
	if err != nil {
		t.Fatalf("failed to marshal projection: %v", err)
	}
	return string(data)
}

// serveDOM makes the page answer the generation probe and the collector
// script for the given document source.
func serveDOM(t *testing.T, page *fakePage, source string) {
	t.Helper()
	payload := collectorPayload(t, source)
	page.evalFn = func(expression string) (interface{}, error) {
		// The generation probe is a one-liner; the collector script is not.
		if len(expression) < 200 {
			return "test", nil
		}
		return payload, nil
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare host", "example.com", "https://example.com"},
		{"bare host with path", "example.com/docs", "https://example.com/docs"},
		{"http preserved", "http://example.com", "http://example.com"},
		{"https preserved", "https://example.com", "https://example.com"},
		{"about scheme", "about:blank", "about:blank"},
		{"data scheme", "data:text/html,<p>hi</p>", "data:text/html,<p>hi</p>"},
		{"whitespace trimmed", "  example.com  ", "https://example.com"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeURL(tt.in); got != tt.want {
				t.Errorf("normalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveTarget(t *testing.T) {
	box := &Toolbox{}
	page := newFakePage()
	handle := &wbrowser.PageHandle{Page: page, Aria: aria.NewPageState()}

	t.Run("no target", func(t *testing.T) {
		if _, err := box.resolveTarget(handle, "", ""); err == nil {
			t.Error("expected an error when neither ref nor selector is given")
		}
	})

	t.Run("selector", func(t *testing.T) {
		element, err := box.resolveTarget(handle, "", "button.submit")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if element != playwright.ElementHandle(page.element) {
			t.Error("expected the queried element")
		}
		if len(page.queried) != 1 || page.queried[0] != "button.submit" {
			t.Errorf("expected one query for the selector, got %v", page.queried)
		}
	})

	t.Run("selector without match", func(t *testing.T) {
		empty := newFakePage()
		empty.element = nil
		h := &wbrowser.PageHandle{Page: empty, Aria: aria.NewPageState()}
		_, err := box.resolveTarget(h, "", "#missing")
		var actionErr *wbrowser.ActionError
		if !errors.As(err, &actionErr) {
			t.Fatalf("expected ActionError, got %v", err)
		}
	})

	t.Run("stale ref", func(t *testing.T) {
		_, err := box.resolveTarget(handle, "e1", "")
		var notFound *aria.RefNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected RefNotFoundError, got %v", err)
		}
	})
}
