package aria

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The snapshot engine works on a projection of the live DOM collected by the
// in-page script: structure, attributes, live form properties, a slice of
// computed style, geometry, shadow roots and slot assignments. Everything
// semantic (role, name, visibility, tree shape) is computed on this side of
// the protocol.

// NodeKind distinguishes element and text records in the projection.
type NodeKind string

const (
	KindElement NodeKind = "element"
	KindText    NodeKind = "text"
)

// Style is the slice of computed style the engine needs.
type Style struct {
	Display       string `json:"display"`
	Visibility    string `json:"visibility"`
	Cursor        string `json:"cursor"`
	PointerEvents string `json:"pointerEvents"`
}

// Rect is a rendered bounding box in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Props carries live element properties that are not reflected as attributes.
type Props struct {
	Value         string `json:"value,omitempty"`
	URL           string `json:"url,omitempty"`
	Checked       bool   `json:"checked,omitempty"`
	Indeterminate bool   `json:"indeterminate,omitempty"`
	Selected      bool   `json:"selected,omitempty"`
	Disabled      bool   `json:"disabled,omitempty"`
	Open          bool   `json:"open,omitempty"`
	Focused       bool   `json:"focused,omitempty"`
}

// Node is one record in the DOM projection.
type Node struct {
	Kind NodeKind `json:"kind"`

	// Serial is the node's document-order index within this projection.
	Serial int `json:"serial"`

	// Arena is the element's index in the page-scoped element arena, stable
	// across projections within one page context. -1 for text nodes.
	Arena int `json:"arena"`

	Tag   string            `json:"tag,omitempty"`
	Text  string            `json:"text,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`

	Children   []*Node `json:"children,omitempty"`
	ShadowRoot []*Node `json:"shadowRoot,omitempty"`

	// Assigned lists, for <slot> elements, the serials of the nodes the slot
	// currently assigns.
	Assigned []int `json:"assigned,omitempty"`

	// Slotted marks nodes that are assigned to some slot and therefore must
	// not be walked at their light-DOM position.
	Slotted bool `json:"slotted,omitempty"`

	Style     Style  `json:"style"`
	Rect      Rect   `json:"rect"`
	Before    string `json:"before,omitempty"`
	After     string `json:"after,omitempty"`
	Focusable bool   `json:"focusable,omitempty"`
	Props     Props  `json:"props"`

	parent *Node
}

// Document is a decoded projection plus the indexes the engine computes over it.
type Document struct {
	// Generation identifies the page context the projection came from. A new
	// page context (navigation) mints a new generation.
	Generation string `json:"generation"`

	URL   string `json:"url"`
	Title string `json:"title"`
	Root  *Node  `json:"root"`

	byID     map[string]*Node
	bySerial map[int]*Node
	owned    map[*Node]bool
}

// DecodeDocument parses the JSON payload produced by the in-page collector and
// builds the lookup indexes.
func DecodeDocument(payload []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("invalid snapshot payload: %w", err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("snapshot payload has no root")
	}
	doc.Index()
	return &doc, nil
}

// Index (re)builds the id, serial, parent and aria-owns indexes. Must be
// called whenever the projection tree is constructed by hand (tests).
func (d *Document) Index() {
	d.byID = make(map[string]*Node)
	d.bySerial = make(map[int]*Node)
	d.owned = make(map[*Node]bool)
	d.index(d.Root, nil)
	d.indexOwned(d.Root)
}

func (d *Document) index(n *Node, parent *Node) {
	if n == nil {
		return
	}
	n.parent = parent
	d.bySerial[n.Serial] = n
	if n.Kind == KindElement {
		if id := n.Attrs["id"]; id != "" {
			if _, taken := d.byID[id]; !taken {
				d.byID[id] = n
			}
		}
	}
	for _, c := range n.Children {
		d.index(c, n)
	}
	for _, c := range n.ShadowRoot {
		d.index(c, n)
	}
}

// indexOwned records every element pulled elsewhere by aria-owns so the walk
// skips it at its natural position.
func (d *Document) indexOwned(n *Node) {
	if n == nil {
		return
	}
	if n.Kind == KindElement {
		for _, target := range d.ownedNodes(n) {
			d.owned[target] = true
		}
	}
	for _, c := range n.Children {
		d.indexOwned(c)
	}
	for _, c := range n.ShadowRoot {
		d.indexOwned(c)
	}
}

// ByID returns the first element carrying the id, or nil.
func (d *Document) ByID(id string) *Node {
	return d.byID[id]
}

// BySerial returns the node with the given projection serial, or nil.
func (d *Document) BySerial(serial int) *Node {
	return d.bySerial[serial]
}

// ownedNodes resolves an element's aria-owns attribute to nodes.
func (d *Document) ownedNodes(n *Node) []*Node {
	raw := n.Attrs["aria-owns"]
	if raw == "" {
		return nil
	}
	var out []*Node
	for _, id := range strings.Fields(raw) {
		if target := d.byID[id]; target != nil && target != n {
			out = append(out, target)
		}
	}
	return out
}

// Parent returns the projection parent (shadow children report the host).
func (n *Node) Parent() *Node {
	return n.parent
}

// Attr returns the value of an attribute, or "".
func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

// HasAttr reports whether the attribute is present at all.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attrs[name]
	return ok
}

// zero-width characters and soft hyphens that never contribute to a name
const strippedRunes = "\u200b\u200c\u200d\ufeff\u00ad"

// NormalizeWhitespace collapses runs of whitespace to single spaces and strips
// zero-width and soft-hyphen characters. Trimming is the caller's decision: a
// name computation trims only at its top level.
func NormalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if strings.ContainsRune(strippedRunes, r) {
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}
