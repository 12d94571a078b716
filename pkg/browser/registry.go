package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webpilot/pkg/aria"
)

// PageHandle binds a task-scoped logical page name to a live browser page.
// The handle owns the page's accessibility state (ref table) and lives until
// the page is explicitly closed or the task ends.
type PageHandle struct {
	// Name is the task-scoped logical name, "<taskID>:<name>".
	Name string

	// TargetID is the host-assigned target identity for the page.
	TargetID string

	// Page is the live playwright page.
	Page playwright.Page

	// Aria holds the page's ref table and snapshot state.
	Aria *aria.PageState
}

// createPageResponse is the host's answer to POST /pages.
type createPageResponse struct {
	TargetIdentity string `json:"targetIdentity"`
	URL            string `json:"url,omitempty"`
}

// listPagesResponse is the host's answer to GET /pages.
type listPagesResponse struct {
	Pages []string `json:"pages"`
}

// Registry resolves logical page names to live pages through the external
// page-registry collaborator, creating pages on first reference.
type Registry struct {
	connector *Connector
	hostURL   string
	client    *http.Client
	taskID    string
	logger    logger

	// probeTargetID queries a candidate page for its target identity.
	// Injectable for tests.
	probeTargetID func(page playwright.Page) (string, error)

	mu    sync.Mutex
	pages map[string]*PageHandle
}

// NewRegistry creates a page registry client for one task. Logical names are
// namespaced with taskID so concurrent tasks never collide.
func NewRegistry(connector *Connector, hostURL, taskID string, log logger) *Registry {
	return &Registry{
		connector:     connector,
		hostURL:       hostURL,
		client:        &http.Client{},
		taskID:        taskID,
		logger:        log,
		probeTargetID: probeTargetID,
		pages:         make(map[string]*PageHandle),
	}
}

// Scope returns the task-scoped form of a logical page name.
func (r *Registry) Scope(name string) string {
	return r.taskID + ":" + name
}

// GetPage returns a live handle for the logical page name, creating the page
// via the host registry if it does not exist yet.
func (r *Registry) GetPage(ctx context.Context, name string) (*PageHandle, error) {
	scoped := r.Scope(name)

	conn, err := r.connector.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if handle, ok := r.pages[scoped]; ok && handle.Page != nil && !handle.Page.IsClosed() {
		r.mu.Unlock()
		return handle, nil
	}
	r.mu.Unlock()

	created, err := r.createOrGet(ctx, scoped)
	if err != nil {
		return nil, err
	}

	var page playwright.Page
	switch conn.Mode {
	case ModeExtension:
		page = r.resolveExtension(conn, created.URL)
	default:
		page = r.resolveNormal(conn, created.TargetIdentity)
	}
	if page == nil {
		return nil, &PageNotFoundError{Name: scoped}
	}

	handle := &PageHandle{
		Name:     scoped,
		TargetID: created.TargetIdentity,
		Page:     page,
		Aria:     aria.NewPageState(),
	}

	r.mu.Lock()
	r.pages[scoped] = handle
	r.mu.Unlock()
	return handle, nil
}

// resolveExtension picks a page when the host exposes the user's real browser
// window: the sole open page, else one whose URL matches the registry's
// last-known URL for the name, else the first open page.
func (r *Registry) resolveExtension(conn *Conn, knownURL string) playwright.Page {
	pages := openPages(conn.Browser)
	switch {
	case len(pages) == 0:
		return nil
	case len(pages) == 1:
		return pages[0]
	}
	if knownURL != "" {
		for _, p := range pages {
			if p.URL() == knownURL {
				return p
			}
		}
	}
	return pages[0]
}

// resolveNormal searches all open pages for the one whose target identity
// matches, probing each candidate with a short-lived diagnostic session.
// Candidates that close mid-probe are expected and skipped silently.
func (r *Registry) resolveNormal(conn *Conn, targetID string) playwright.Page {
	for _, p := range openPages(conn.Browser) {
		id, err := r.probeTargetID(p)
		if err != nil {
			if !isClosedRace(err) {
				r.logger.Warnf("target probe failed: %v", err)
			}
			continue
		}
		if id == targetID {
			return p
		}
	}
	return nil
}

// List returns the logical page names registered for this task, with the task
// namespace stripped.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.hostURL+"/pages", nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &ConnectionError{Endpoint: r.hostURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list pages returned status %d", resp.StatusCode)
	}

	var out listPagesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid list response: %w", err)
	}

	prefix := r.taskID + ":"
	var names []string
	for _, n := range out.Pages {
		if strings.HasPrefix(n, prefix) {
			names = append(names, strings.TrimPrefix(n, prefix))
		}
	}
	return names, nil
}

// Close asks the host to close the named page and drops the cached handle.
func (r *Registry) Close(ctx context.Context, name string) error {
	scoped := r.Scope(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.hostURL+"/pages/"+url.PathEscape(scoped), nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return &ConnectionError{Endpoint: r.hostURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("close page %q returned status %d", name, resp.StatusCode)
	}

	r.mu.Lock()
	delete(r.pages, scoped)
	r.mu.Unlock()
	return nil
}

// CloseAll drops every cached handle. Used at task teardown; the host owns the
// actual page lifetimes.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = make(map[string]*PageHandle)
}

// createOrGet registers the scoped name with the host, which creates the page
// if it does not exist.
func (r *Registry) createOrGet(ctx context.Context, scoped string) (*createPageResponse, error) {
	body, err := json.Marshal(map[string]string{"name": scoped})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.hostURL+"/pages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &ConnectionError{Endpoint: r.hostURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create page returned status %d", resp.StatusCode)
	}

	var out createPageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid create response: %w", err)
	}
	return &out, nil
}

// openPages flattens all pages across the browser's contexts.
func openPages(browser playwright.Browser) []playwright.Page {
	var pages []playwright.Page
	for _, ctx := range browser.Contexts() {
		pages = append(pages, ctx.Pages()...)
	}
	return pages
}

// probeTargetID opens a short-lived CDP session against the page to read its
// target identity, detaching immediately after.
func probeTargetID(page playwright.Page) (string, error) {
	session, err := page.Context().NewCDPSession(page)
	if err != nil {
		return "", err
	}
	defer func() { _ = session.Detach() }()

	result, err := session.Send("Target.getTargetInfo", nil)
	if err != nil {
		return "", err
	}

	info, ok := result.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected Target.getTargetInfo result %T", result)
	}
	target, ok := info["targetInfo"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("Target.getTargetInfo result missing targetInfo")
	}
	id, _ := target["targetId"].(string)
	return id, nil
}

// isClosedRace reports whether err is a same-page race where the candidate
// closed while we were probing it.
func isClosedRace(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "session closed") ||
		strings.Contains(msg, "has been closed")
}
