package aria

import (
	"strings"
)

// AccessibleName computes the element's accessible name: aria-labelledby, then
// aria-label, then tag-specific native rules, then (for roles that allow it)
// descendant content, then the title attribute. The result is
// whitespace-normalized and trimmed only here, at the top level.
func AccessibleName(c *caches, d *Document, n *Node) string {
	visited := map[*Node]bool{}
	return strings.TrimSpace(NormalizeWhitespace(computeName(c, d, n, visited, nameOpts{})))
}

// nameOpts threads traversal context through the recursion.
type nameOpts struct {
	// embeddedInLabelledby is set while resolving an aria-labelledby or
	// <label> reference; referenced elements may name themselves from content
	// regardless of role, and nested labelledby chains are not followed.
	embeddedInLabelledby bool

	// fromContent is set while concatenating descendant text alternatives.
	fromContent bool
}

// computeName is the recursive, cycle-safe procedure. Each element is visited
// at most once per top-level computation; revisiting yields the empty string,
// which bounds circular aria-labelledby chains.
func computeName(c *caches, d *Document, n *Node, visited map[*Node]bool, opts nameOpts) string {
	if n == nil || n.Kind != KindElement {
		return ""
	}
	if visited[n] {
		return ""
	}
	visited[n] = true

	// Step 1: aria-labelledby, unless we are already inside one.
	if !opts.embeddedInLabelledby {
		if refs := n.Attr("aria-labelledby"); refs != "" {
			var parts []string
			for _, id := range strings.Fields(refs) {
				target := d.ByID(id)
				if target == nil {
					continue
				}
				part := computeName(c, d, target, visited, nameOpts{embeddedInLabelledby: true})
				if strings.TrimSpace(part) != "" {
					parts = append(parts, strings.TrimSpace(NormalizeWhitespace(part)))
				}
			}
			if joined := strings.Join(parts, " "); strings.TrimSpace(joined) != "" {
				return joined
			}
		}
	}

	// Step 2: aria-label.
	if label := n.Attr("aria-label"); strings.TrimSpace(label) != "" {
		return label
	}

	// Step 3: tag-specific native labeling.
	if native, ok := nativeName(c, d, n, visited); ok {
		return native
	}

	// Step 4: name from content, for roles that permit it, for labelledby and
	// label targets, and while already concatenating content.
	role := Role(d, n)
	if nameFromContentRoles[role] || opts.embeddedInLabelledby || opts.fromContent {
		if text := contentText(c, d, n, visited); strings.TrimSpace(text) != "" {
			return text
		}
	}

	// Step 5: title attribute fallback.
	return n.Attr("title")
}

// nativeName applies per-tag naming rules. The second return reports whether a
// rule produced a name.
func nativeName(c *caches, d *Document, n *Node, visited map[*Node]bool) (string, bool) {
	switch n.Tag {
	case "input":
		typ := strings.ToLower(n.Attr("type"))
		switch typ {
		case "button", "submit", "reset":
			if v := n.Attr("value"); v != "" {
				return v, true
			}
			if v := n.Props.Value; v != "" {
				return v, true
			}
			if t := n.Attr("title"); t != "" {
				return t, true
			}
			return "", false
		case "image":
			if alt := n.Attr("alt"); alt != "" {
				return alt, true
			}
			if t := n.Attr("title"); t != "" {
				return t, true
			}
			return "", false
		}
		return controlLabelName(c, d, n, visited)
	case "textarea", "select":
		return controlLabelName(c, d, n, visited)
	case "img", "area":
		if alt := n.Attr("alt"); alt != "" {
			return alt, true
		}
		if t := n.Attr("title"); t != "" {
			return t, true
		}
		return "", false
	case "table":
		for _, child := range n.Children {
			if child.Kind == KindElement && child.Tag == "caption" {
				if text := contentText(c, d, child, visited); strings.TrimSpace(text) != "" {
					return text, true
				}
			}
		}
		return "", false
	case "fieldset":
		for _, child := range n.Children {
			if child.Kind == KindElement && child.Tag == "legend" {
				if text := contentText(c, d, child, visited); strings.TrimSpace(text) != "" {
					return text, true
				}
			}
		}
		return "", false
	}
	return "", false
}

// controlLabelName names a form control from its associated <label> elements:
// labels whose for attribute references it, and any wrapping label.
func controlLabelName(c *caches, d *Document, n *Node, visited map[*Node]bool) (string, bool) {
	var parts []string
	id := n.Attr("id")
	for _, label := range collectLabels(d.Root, id, n) {
		part := computeName(c, d, label, visited, nameOpts{embeddedInLabelledby: true})
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(NormalizeWhitespace(part)))
		}
	}
	if joined := strings.Join(parts, " "); joined != "" {
		return joined, true
	}
	if t := n.Attr("title"); t != "" {
		return t, true
	}
	if p := n.Attr("placeholder"); p != "" {
		return p, true
	}
	return "", false
}

// collectLabels finds label elements associated with the control, in document
// order.
func collectLabels(root *Node, id string, control *Node) []*Node {
	var labels []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Kind == KindElement && n.Tag == "label" {
			if id != "" && n.Attr("for") == id {
				labels = append(labels, n)
			} else if n.Attr("for") == "" && contains(n, control) {
				labels = append(labels, n)
			}
		}
		for _, ch := range n.Children {
			walk(ch)
		}
		for _, ch := range n.ShadowRoot {
			walk(ch)
		}
	}
	walk(root)
	return labels
}

func contains(ancestor, n *Node) bool {
	for p := n; p != nil; p = p.Parent() {
		if p == ancestor {
			return true
		}
	}
	return false
}

// contentText concatenates the text alternatives of the element's flattened
// subtree: slot-assigned nodes over light children, shadow content, generated
// ::before/::after text, with block-level boundaries and <br> forcing space
// tokens.
func contentText(c *caches, d *Document, n *Node, visited map[*Node]bool) string {
	var b strings.Builder

	appendToken := func(s string) {
		if s == "" {
			return
		}
		b.WriteString(s)
	}

	if n.Before != "" {
		appendToken(n.Before + " ")
	}

	for _, child := range flattenedChildren(d, n) {
		switch child.Kind {
		case KindText:
			appendToken(NormalizeWhitespace(child.Text))
		case KindElement:
			if child.Tag == "br" {
				appendToken(" ")
				continue
			}
			if ariaHidden(c, child) {
				continue
			}
			part := computeName(c, d, child, visited, nameOpts{fromContent: true})
			part = NormalizeWhitespace(part)
			if part == "" {
				continue
			}
			if isBlockLevel(child) {
				appendToken(" " + part + " ")
			} else {
				appendToken(part)
			}
		}
	}

	if n.After != "" {
		appendToken(" " + n.After)
	}

	return b.String()
}

// flattenedChildren yields the element's children in flat-tree order: shadow
// root content when present, slot assignments in place of slot fallback, light
// children otherwise. Slotted nodes are skipped at their light-DOM position.
func flattenedChildren(d *Document, n *Node) []*Node {
	if n.Kind == KindElement && n.Tag == "slot" && len(n.Assigned) > 0 {
		var out []*Node
		for _, serial := range n.Assigned {
			if assigned := d.BySerial(serial); assigned != nil {
				out = append(out, assigned)
			}
		}
		return out
	}
	if len(n.ShadowRoot) > 0 {
		return n.ShadowRoot
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Slotted {
			continue
		}
		out = append(out, child)
	}
	return out
}

// isBlockLevel reports whether the element establishes a block-level box that
// forces space separation in a text alternative.
func isBlockLevel(n *Node) bool {
	switch n.Style.Display {
	case "", "inline", "inline-block", "inline-flex", "inline-grid", "contents", "inline-table", "ruby":
		return false
	}
	return true
}
