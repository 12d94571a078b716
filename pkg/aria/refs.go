package aria

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// refEntry records what a ref was bound to when it was minted. A ref is
// carried over to a later snapshot only when the same arena element still has
// this role and accessible name.
type refEntry struct {
	Ref  string
	Role string
	Name string
}

// PageState is the per-page accessibility state: the ref table and the
// per-generation computation caches. It is attached to the page handle and
// lives until the page is closed; a page-context teardown (navigation) shows
// up as a generation change and invalidates the whole table.
type PageState struct {
	mu         sync.Mutex
	generation string
	entries    map[int]refEntry // arena index → entry
	byRef      map[string]int   // ref → arena index
	nextRef    int
	caches     caches
}

// NewPageState creates empty accessibility state for a page handle.
func NewPageState() *PageState {
	return &PageState{
		entries: make(map[int]refEntry),
		byRef:   make(map[string]int),
	}
}

// AssignRefs repopulates the ref table from a freshly built tree, attaching a
// ref to every visible node that receives pointer events. Refs are reused only
// for the same element with unchanged role and name; everything else gets a
// fresh, monotonically increasing id. Within one snapshot every assigned ref
// is unique.
func (s *PageState) AssignRefs(generation string, root *AXNode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		// New page context: the arena was rebuilt, nothing carries over.
		s.generation = generation
		s.entries = make(map[int]refEntry)
		s.nextRef = 0
	}

	next := make(map[int]refEntry)
	byRef := make(map[string]int)
	s.assign(root, next, byRef)
	s.entries = next
	s.byRef = byRef
}

func (s *PageState) assign(ax *AXNode, next map[int]refEntry, byRef map[string]int) {
	if ax.Visible && ax.PointerTarget && ax.Arena >= 0 && ax.Role != "document" {
		if _, taken := next[ax.Arena]; !taken {
			entry, ok := s.entries[ax.Arena]
			if !ok || entry.Role != ax.Role || entry.Name != ax.Name {
				s.nextRef++
				entry = refEntry{Ref: fmt.Sprintf("e%d", s.nextRef), Role: ax.Role, Name: ax.Name}
			}
			next[ax.Arena] = entry
			byRef[entry.Ref] = ax.Arena
			ax.Ref = entry.Ref
		}
	}
	for _, child := range ax.Children {
		if node, ok := child.(*AXNode); ok {
			s.assign(node, next, byRef)
		}
	}
}

// Lookup resolves a ref token to its arena index within the current
// generation.
func (s *PageState) Lookup(ref string) (arena int, generation string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	arena, ok = s.byRef[ref]
	return arena, s.generation, ok
}

// ValidRefs lists the refs assigned by the most recent snapshot.
func (s *PageState) ValidRefs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs := make([]string, 0, len(s.byRef))
	for ref := range s.byRef {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimPrefix(refs[i], "e"))
		b, _ := strconv.Atoi(strings.TrimPrefix(refs[j], "e"))
		return a < b
	})
	return refs
}

// Invalidate drops the whole table. Called when resolution discovers the page
// context is gone.
func (s *PageState) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation = ""
	s.entries = make(map[int]refEntry)
	s.byRef = make(map[string]int)
	s.nextRef = 0
}

// Generation returns the page-context generation the table is bound to.
func (s *PageState) Generation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Build constructs the accessibility tree for a projected document using the
// page's cache scope. The walk runs under the state mutex so concurrent
// snapshots of one page cannot race on the memo maps.
func (s *PageState) Build(d *Document) *AXNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildTree(d, &s.caches)
}
