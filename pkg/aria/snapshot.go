// Package aria derives an ARIA-like accessibility tree from a live page's DOM
// and serializes it to a compact indented text format with stable per-element
// references.
//
// The work is split across the remote-protocol boundary: an in-page collector
// script projects the raw DOM (structure, attributes, live properties, a
// slice of computed style, geometry, shadow and slot topology) and maintains a
// page-scoped element arena, while the Go side computes visibility, roles,
// accessible names, tree shape, ref assignment and the textual rendering.
package aria

import (
	_ "embed"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

//go:embed script.js
var collectorScript string

// generationProbe reads the page's current arena generation, or "" when the
// page context has been torn down since the last snapshot.
const generationProbe = `() => (window.__wpAria ? window.__wpAria.generation : '')`

// resolveScript fetches an element out of the page arena by index.
const resolveScript = `(idx) => {
  const a = window.__wpAria;
  return (a && a.elements[idx]) || null;
}`

// RefNotFoundError indicates a stale or unknown element reference: the ref
// belongs to a prior page context, was never minted, or was invalidated by a
// role or name change on a later snapshot. The message enumerates the refs
// that are currently valid.
type RefNotFoundError struct {
	Ref       string
	Available []string
}

func (e *RefNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("ref %q not found; no refs are currently valid, take a new snapshot first", e.Ref)
	}
	return fmt.Sprintf("ref %q not found; currently valid refs: %v", e.Ref, e.Available)
}

// Snapshot projects the page's current DOM, builds the accessibility tree,
// repopulates the page's ref table and returns the serialized snapshot text.
func Snapshot(page playwright.Page, state *PageState) (string, error) {
	result, err := page.Evaluate(collectorScript)
	if err != nil {
		return "", fmt.Errorf("snapshot collection failed: %w", err)
	}
	payload, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("snapshot collection returned %T, want string", result)
	}

	doc, err := DecodeDocument([]byte(payload))
	if err != nil {
		return "", err
	}

	tree := state.Build(doc)
	state.AssignRefs(doc.Generation, tree)
	return Render(tree), nil
}

// Resolve maps a ref token from the most recent snapshot back to the live
// element for the current page context.
func Resolve(page playwright.Page, state *PageState, ref string) (playwright.ElementHandle, error) {
	arena, generation, ok := state.Lookup(ref)
	if !ok {
		return nil, &RefNotFoundError{Ref: ref, Available: state.ValidRefs()}
	}

	current, err := page.Evaluate(generationProbe)
	if err != nil {
		return nil, fmt.Errorf("ref resolution failed: %w", err)
	}
	if gen, _ := current.(string); gen != generation {
		// The page context was torn down; every ref in the table is stale.
		state.Invalidate()
		return nil, &RefNotFoundError{Ref: ref, Available: state.ValidRefs()}
	}

	handle, err := page.EvaluateHandle(resolveScript, arena)
	if err != nil {
		return nil, fmt.Errorf("ref resolution failed: %w", err)
	}
	element := handle.AsElement()
	if element == nil {
		return nil, &RefNotFoundError{Ref: ref, Available: state.ValidRefs()}
	}
	return element, nil
}
