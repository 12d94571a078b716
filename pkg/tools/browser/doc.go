// Package browser exposes browser control to agents as a set of tools built
// on a remote browser host.
//
// The package layers three collaborators:
//
//  1. Connector: one CDP connection to the browser host, established lazily
//     with a single-flight handshake (pkg/browser).
//  2. Registry: logical page names, namespaced per task, resolved to live
//     pages through the host's page registry (pkg/browser).
//  3. Aria state: per-page accessibility snapshots and the stable ref table
//     that lets later tool calls address elements by [ref=eN] token
//     (pkg/aria).
//
// # Addressing elements
//
// Interaction tools accept three addressing forms, in priority order:
//
//   - x/y viewport coordinates (click only)
//   - a ref token minted by browser_snapshot, stable while the element keeps
//     its role and accessible name
//   - a CSS selector evaluated against the current DOM
//
// Refs survive across snapshots of the same page context; navigation tears
// the context down and invalidates every outstanding ref, which resolves to a
// RefNotFound error listing the refs that are still valid.
//
// # Pages
//
// Every tool takes an optional page_name, defaulting to "main". Names are
// scoped to the owning task, so concurrent tasks may both use "main" without
// colliding. Pages are created on first reference and live until closed with
// browser_pages (action "close") or the task ends.
//
// # Sequences
//
// browser_sequence runs an ordered list of click/type/snapshot/screenshot/
// wait steps against one page. Steps are validated upfront; at runtime the
// first failure stops the sequence and the partial transcript reports which
// step failed and why.
package browser
