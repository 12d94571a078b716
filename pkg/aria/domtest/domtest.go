// Package domtest builds aria DOM projections from HTML source for tests.
// The builder approximates what the in-page collector reports from a real
// browser: computed-style defaults per tag, inline style overrides, inherited
// visibility and pointer-events, and deterministic serial/arena numbering so
// two builds of the same markup model two snapshots of an unchanged page.
package domtest

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/entrhq/webpilot/pkg/aria"
)

// inlineTags keep the browser's default inline-level display.
var inlineTags = map[string]string{
	"a": "inline", "abbr": "inline", "b": "inline", "bdi": "inline",
	"bdo": "inline", "br": "inline", "cite": "inline", "code": "inline",
	"data": "inline", "dfn": "inline", "em": "inline", "i": "inline",
	"img": "inline", "kbd": "inline", "label": "inline", "mark": "inline",
	"q": "inline", "s": "inline", "samp": "inline", "small": "inline",
	"span": "inline", "strong": "inline", "sub": "inline", "sup": "inline",
	"time": "inline", "u": "inline", "var": "inline",
	"button": "inline-block", "input": "inline-block", "select": "inline-block",
	"textarea": "inline-block", "slot": "contents",
	"td": "table-cell", "th": "table-cell", "tr": "table-row",
	"table": "table", "tbody": "table-row-group", "thead": "table-header-group",
	"tfoot": "table-footer-group", "li": "list-item",
}

// inherited carries the style state that cascades in a real browser.
type inherited struct {
	displayNone   bool
	visibility    string
	cursor        string
	pointerEvents string
}

type builder struct {
	serial int
	arena  int
}

// Build parses HTML source into a projected document. Inline style attributes
// override the per-tag display/visibility/cursor/pointer-events defaults, so
// fixtures can express hidden or clickable subtrees directly in markup.
func Build(source string) (*aria.Document, error) {
	parsed, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, err
	}

	var root *html.Node
	for n := parsed.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.Data == "html" {
			root = n
			break
		}
	}
	if root == nil {
		root = parsed
	}

	b := &builder{}
	doc := &aria.Document{
		Generation: "test",
		URL:        "about:test",
		Root: b.project(root, inherited{
			visibility:    "visible",
			cursor:        "auto",
			pointerEvents: "auto",
		}),
	}
	doc.Index()
	return doc, nil
}

// MustBuild is Build for fixtures known to be well-formed.
func MustBuild(source string) *aria.Document {
	doc, err := Build(source)
	if err != nil {
		panic(err)
	}
	return doc
}

func (b *builder) project(n *html.Node, inh inherited) *aria.Node {
	if n.Type == html.TextNode {
		node := &aria.Node{
			Kind:   aria.KindText,
			Serial: b.serial,
			Arena:  -1,
			Text:   n.Data,
		}
		b.serial++
		return node
	}
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return nil
	}

	tag := strings.ToLower(n.Data)
	attrs := map[string]string{}
	for _, attr := range n.Attr {
		attrs[strings.ToLower(attr.Key)] = attr.Val
	}

	style := computedStyle(tag, attrs, &inh)

	node := &aria.Node{
		Kind:      aria.KindElement,
		Serial:    b.serial,
		Arena:     b.arena,
		Tag:       tag,
		Attrs:     attrs,
		Style:     style,
		Focusable: focusable(tag, attrs),
		Props:     props(tag, attrs),
	}
	b.serial++
	b.arena++

	if !inh.displayNone && style.Display != "none" && style.Visibility == "visible" {
		node.Rect = aria.Rect{Width: 100, Height: 20}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := b.project(c, inh); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// computedStyle resolves the node's computed style slice and updates the
// inherited state for its descendants.
func computedStyle(tag string, attrs map[string]string, inh *inherited) aria.Style {
	display := inlineTags[tag]
	if display == "" {
		display = "block"
	}
	visibility := inh.visibility
	cursor := inh.cursor
	pointer := inh.pointerEvents

	if tag == "a" && attrs["href"] != "" {
		cursor = "pointer"
	}
	if _, hidden := attrs["hidden"]; hidden {
		display = "none"
	}

	for _, decl := range strings.Split(attrs["style"], ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(strings.ToLower(name))
		value = strings.TrimSpace(value)
		switch name {
		case "display":
			display = value
		case "visibility":
			visibility = value
		case "cursor":
			cursor = value
		case "pointer-events":
			pointer = value
		}
	}

	if display == "none" {
		inh.displayNone = true
	}
	inh.visibility = visibility
	inh.cursor = cursor
	inh.pointerEvents = pointer

	return aria.Style{
		Display:       display,
		Visibility:    visibility,
		Cursor:        cursor,
		PointerEvents: pointer,
	}
}

func focusable(tag string, attrs map[string]string) bool {
	if _, ok := attrs["tabindex"]; ok {
		return !strings.HasPrefix(attrs["tabindex"], "-")
	}
	switch tag {
	case "button", "input", "select", "textarea":
		return true
	case "a", "area":
		return attrs["href"] != ""
	}
	return false
}

func props(tag string, attrs map[string]string) aria.Props {
	var p aria.Props
	if v, ok := attrs["value"]; ok {
		p.Value = v
	}
	if _, ok := attrs["checked"]; ok {
		p.Checked = true
	}
	if _, ok := attrs["selected"]; ok {
		p.Selected = true
	}
	if _, ok := attrs["disabled"]; ok {
		p.Disabled = true
	}
	if _, ok := attrs["open"]; ok {
		p.Open = true
	}
	if (tag == "a" || tag == "area") && attrs["href"] != "" {
		p.URL = attrs["href"]
	}
	return p
}
