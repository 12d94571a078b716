package aria

import (
	"strconv"
	"strings"
)

// TriState models attributes that can be true, false or "mixed".
type TriState string

const (
	TriNone  TriState = ""
	TriTrue  TriState = "true"
	TriFalse TriState = "false"
	TriMixed TriState = "mixed"
)

// AXNode is one node of the constructed accessibility tree. Children holds
// *AXNode and literal-text string entries in document order.
type AXNode struct {
	Role     string
	Name     string
	Children []interface{}
	Props    map[string]string

	Checked  TriState
	Pressed  TriState
	Disabled bool
	Expanded bool
	Selected bool
	Active   bool
	Level    int

	// Ref is the opaque stable identifier, assigned only to visible nodes
	// that receive pointer events.
	Ref string

	// Box state carried for ref policy and serialization.
	Visible       bool
	PointerTarget bool
	Cursor        string

	// Arena is the element's index in the page-side arena.
	Arena int
}

// buildTree constructs the accessibility tree for a projected document. The
// cache scope is opened for the duration of the walk and closed before
// returning, reference-counted against re-entrant walks.
func buildTree(d *Document, c *caches) *AXNode {
	c.open()
	defer c.close()

	rootEl := d.Root
	if rootEl != nil && rootEl.Tag == "html" {
		for _, child := range rootEl.Children {
			if child.Kind == KindElement && child.Tag == "body" {
				rootEl = child
				break
			}
		}
	}

	root := &AXNode{Role: "document", Visible: true, Arena: -1}
	if rootEl != nil {
		root.Arena = rootEl.Arena
		entries := walkNode(c, d, rootEl)
		// The html/body wrapper itself is the document root, not content.
		if len(entries) == 1 {
			if wrapper, ok := entries[0].(*AXNode); ok && wrapper.Arena == rootEl.Arena {
				entries = wrapper.Children
			}
		}
		root.Children = entries
	}
	collapseGeneric(root)
	coalesceText(root)
	return root
}

// walkNode returns the accessibility entries the node contributes to its
// nearest visible ancestor: its own subtree node when it is visible with a
// non-suppressed role, otherwise its children hoisted in place.
func walkNode(c *caches, d *Document, n *Node) []interface{} {
	if n.Kind != KindElement || nonRenderingTags[n.Tag] {
		return nil
	}

	visible := isVisible(c, n)
	var kids []interface{}

	if visible && n.Before != "" {
		kids = append(kids, NormalizeWhitespace(n.Before))
	}

	for _, child := range flattenedChildren(d, n) {
		switch child.Kind {
		case KindText:
			if !visible {
				continue
			}
			if t := NormalizeWhitespace(child.Text); strings.TrimSpace(t) != "" {
				kids = append(kids, t)
			}
		case KindElement:
			if d.owned[child] {
				// Pulled elsewhere by aria-owns.
				continue
			}
			kids = append(kids, walkNode(c, d, child)...)
		}
	}

	for _, owned := range d.ownedNodes(n) {
		kids = append(kids, walkNode(c, d, owned)...)
	}

	if visible && n.After != "" {
		kids = append(kids, NormalizeWhitespace(n.After))
	}

	role := Role(d, n)
	if !visible || role == "" || role == "presentation" || role == "none" {
		return kids
	}

	ax := newAXNode(c, d, n, role)
	ax.Children = kids
	return []interface{}{ax}
}

// newAXNode computes the node's name, state and properties.
func newAXNode(c *caches, d *Document, n *Node, role string) *AXNode {
	ax := &AXNode{
		Role:          role,
		Name:          AccessibleName(c, d, n),
		Visible:       true,
		PointerTarget: receivesPointerEvents(c, n),
		Cursor:        n.Style.Cursor,
		Arena:         n.Arena,
	}

	switch role {
	case "checkbox", "radio", "switch", "menuitemcheckbox", "menuitemradio":
		ax.Checked = checkedState(n)
	}
	if v := n.Attr("aria-pressed"); v != "" {
		switch v {
		case "true":
			ax.Pressed = TriTrue
		case "mixed":
			ax.Pressed = TriMixed
		case "false":
			ax.Pressed = TriFalse
		}
	}
	ax.Disabled = n.Props.Disabled || n.HasAttr("disabled") || n.Attr("aria-disabled") == "true"
	ax.Expanded = n.Attr("aria-expanded") == "true"
	if n.Tag == "summary" {
		if p := n.Parent(); p != nil && p.Tag == "details" {
			ax.Expanded = p.Props.Open || p.HasAttr("open")
		}
	}
	ax.Selected = n.Props.Selected || n.Attr("aria-selected") == "true"
	ax.Active = n.Props.Focused
	ax.Level = headingLevel(n)

	props := map[string]string{}
	if role == "link" {
		if n.Props.URL != "" {
			props["url"] = n.Props.URL
		} else if href := n.Attr("href"); href != "" {
			props["url"] = href
		}
	}
	if placeholder := n.Attr("placeholder"); placeholder != "" {
		switch role {
		case "textbox", "searchbox", "combobox", "spinbutton":
			props["placeholder"] = placeholder
		}
	}
	if len(props) > 0 {
		ax.Props = props
	}
	return ax
}

func checkedState(n *Node) TriState {
	switch n.Attr("aria-checked") {
	case "true":
		return TriTrue
	case "mixed":
		return TriMixed
	case "false":
		return TriFalse
	}
	if n.Props.Indeterminate {
		return TriMixed
	}
	if n.Props.Checked {
		return TriTrue
	}
	return TriFalse
}

// headingLevel maps heading tags to their fixed levels and honors aria-level.
func headingLevel(n *Node) int {
	switch n.Tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	if v := n.Attr("aria-level"); v != "" {
		if level, err := strconv.Atoi(v); err == nil && level > 0 {
			return level
		}
	}
	return 0
}

// collapseGeneric splices out, bottom-up, generic nodes with no accessible
// name, no distinguishing state and at most one remaining child. Clickable
// wrappers (pointer cursor on a pointer target) are kept so they can carry a
// ref.
func collapseGeneric(ax *AXNode) {
	for _, child := range ax.Children {
		if node, ok := child.(*AXNode); ok {
			collapseGeneric(node)
		}
	}

	var out []interface{}
	for _, child := range ax.Children {
		node, ok := child.(*AXNode)
		if !ok || !elidable(node) {
			out = append(out, child)
			continue
		}
		out = append(out, node.Children...)
	}
	ax.Children = out
}

func elidable(ax *AXNode) bool {
	if ax.Role != "generic" || ax.Name != "" || len(ax.Children) > 1 {
		return false
	}
	if ax.Checked != TriNone || ax.Pressed != TriNone || ax.Disabled ||
		ax.Expanded || ax.Selected || ax.Active || ax.Level > 0 || len(ax.Props) > 0 {
		return false
	}
	if ax.PointerTarget && ax.Cursor == "pointer" {
		return false
	}
	return true
}

// coalesceText merges adjacent literal-text children and drops children that
// merely repeat the node's own computed name.
func coalesceText(ax *AXNode) {
	var out []interface{}
	for _, child := range ax.Children {
		if node, ok := child.(*AXNode); ok {
			coalesceText(node)
			out = append(out, node)
			continue
		}
		text := child.(string)
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(string); ok {
				out[len(out)-1] = strings.TrimSpace(NormalizeWhitespace(prev + " " + text))
				continue
			}
		}
		out = append(out, strings.TrimSpace(NormalizeWhitespace(text)))
	}
	ax.Children = out

	if len(ax.Children) == 1 {
		if text, ok := ax.Children[0].(string); ok && text == ax.Name {
			ax.Children = nil
		}
	}
}
