package aria

import (
	"strings"
)

// validRoles is the fixed taxonomy of ARIA roles an explicit role attribute
// may name. Tokens outside this set are ignored and the implicit role applies.
var validRoles = map[string]bool{
	"alert": true, "alertdialog": true, "application": true, "article": true,
	"banner": true, "blockquote": true, "button": true, "caption": true,
	"cell": true, "checkbox": true, "code": true, "columnheader": true,
	"combobox": true, "complementary": true, "contentinfo": true,
	"definition": true, "deletion": true, "dialog": true, "directory": true,
	"document": true, "emphasis": true, "feed": true, "figure": true,
	"form": true, "generic": true, "grid": true, "gridcell": true,
	"group": true, "heading": true, "img": true, "insertion": true,
	"link": true, "list": true, "listbox": true, "listitem": true,
	"log": true, "main": true, "mark": true, "marquee": true, "math": true,
	"menu": true, "menubar": true, "menuitem": true, "menuitemcheckbox": true,
	"menuitemradio": true, "meter": true, "navigation": true, "none": true,
	"note": true, "option": true, "paragraph": true, "presentation": true,
	"progressbar": true, "radio": true, "radiogroup": true, "region": true,
	"row": true, "rowgroup": true, "rowheader": true, "scrollbar": true,
	"search": true, "searchbox": true, "separator": true, "slider": true,
	"spinbutton": true, "status": true, "strong": true, "subscript": true,
	"superscript": true, "switch": true, "tab": true, "table": true,
	"tablist": true, "tabpanel": true, "term": true, "textbox": true,
	"time": true, "timer": true, "toolbar": true, "tooltip": true,
	"tree": true, "treegrid": true, "treeitem": true,
}

// globalAriaAttrs are the ARIA attributes whose presence keeps an element
// exposed even when its explicit role is "none"/"presentation".
var globalAriaAttrs = map[string]bool{
	"aria-atomic": true, "aria-busy": true, "aria-controls": true,
	"aria-current": true, "aria-describedby": true, "aria-details": true,
	"aria-dropeffect": true, "aria-errormessage": true, "aria-flowto": true,
	"aria-grabbed": true, "aria-haspopup": true, "aria-hidden": true,
	"aria-invalid": true, "aria-keyshortcuts": true, "aria-label": true,
	"aria-labelledby": true, "aria-live": true, "aria-owns": true,
	"aria-relevant": true, "aria-roledescription": true,
}

// nameFromContentRoles lists the roles whose accessible name may be computed
// from descendant content.
var nameFromContentRoles = map[string]bool{
	"button": true, "cell": true, "checkbox": true, "columnheader": true,
	"gridcell": true, "heading": true, "link": true, "menuitem": true,
	"menuitemcheckbox": true, "menuitemradio": true, "option": true,
	"radio": true, "row": true, "rowheader": true, "switch": true,
	"tab": true, "tooltip": true, "treeitem": true,
}

// sectioningTags gate header/footer landmark roles: inside these the tags are
// plain groups, not banner/contentinfo.
var sectioningTags = map[string]bool{
	"article": true, "aside": true, "main": true, "nav": true, "section": true,
	"blockquote": true, "details": true, "dialog": true, "fieldset": true,
	"figure": true, "td": true,
}

// Role resolves the effective role for an element. An explicit role attribute
// wins only when it names a role from the fixed taxonomy; an explicit
// "none"/"presentation" is overridden by the implicit role when the element is
// focusable or carries any global ARIA attribute.
func Role(d *Document, n *Node) string {
	if n.Kind != KindElement {
		return ""
	}
	explicit := explicitRole(n)
	if explicit == "none" || explicit == "presentation" {
		if n.Focusable || hasGlobalAriaAttr(n) {
			return implicitRole(d, n)
		}
		return ""
	}
	if explicit != "" {
		return explicit
	}
	return implicitRole(d, n)
}

// explicitRole returns the first valid token of the role attribute.
func explicitRole(n *Node) string {
	raw := n.Attr("role")
	if raw == "" {
		return ""
	}
	for _, token := range strings.Fields(strings.ToLower(raw)) {
		if validRoles[token] {
			return token
		}
	}
	return ""
}

func hasGlobalAriaAttr(n *Node) bool {
	for name := range n.Attrs {
		if globalAriaAttrs[name] {
			return true
		}
	}
	return false
}

// implicitRole maps a tag name to its implicit ARIA role, with the tag-specific
// special cases.
func implicitRole(d *Document, n *Node) string {
	switch n.Tag {
	case "a", "area":
		if n.HasAttr("href") {
			return "link"
		}
		if n.Tag == "a" {
			return "generic"
		}
		return ""
	case "address":
		return "group"
	case "article":
		return "article"
	case "aside":
		return "complementary"
	case "b", "bdi", "bdo", "div", "i", "span", "u", "data", "pre", "q",
		"samp", "small", "ruby":
		return "generic"
	case "blockquote":
		return "blockquote"
	case "body":
		return "generic"
	case "button":
		return "button"
	case "caption":
		return "caption"
	case "code":
		return "code"
	case "datalist":
		return "listbox"
	case "del", "s":
		return "deletion"
	case "details":
		return "group"
	case "dd":
		return "definition"
	case "dfn", "dt":
		return "term"
	case "dialog":
		return "dialog"
	case "em":
		return "emphasis"
	case "fieldset":
		return "group"
	case "figure":
		return "figure"
	case "footer":
		if insideSectioningContent(n) {
			return "generic"
		}
		return "contentinfo"
	case "form":
		if explicitlyNamed(n) {
			return "form"
		}
		return ""
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "header":
		if insideSectioningContent(n) {
			return "generic"
		}
		return "banner"
	case "hgroup":
		return "group"
	case "hr":
		return "separator"
	case "html":
		return "document"
	case "img":
		if alt, ok := n.Attrs["alt"]; ok && alt == "" {
			return "presentation"
		}
		return "img"
	case "input":
		return inputRole(n)
	case "ins":
		return "insertion"
	case "li":
		return "listitem"
	case "main":
		return "main"
	case "mark":
		return "mark"
	case "math":
		return "math"
	case "menu", "ol", "ul":
		return "list"
	case "meter":
		return "meter"
	case "nav":
		return "navigation"
	case "optgroup":
		return "group"
	case "option":
		return "option"
	case "output":
		return "status"
	case "p":
		return "paragraph"
	case "progress":
		return "progressbar"
	case "search":
		return "search"
	case "section":
		if explicitlyNamed(n) {
			return "region"
		}
		return "generic"
	case "select":
		if n.HasAttr("multiple") || sizeAttrOver1(n) {
			return "listbox"
		}
		return "combobox"
	case "strong":
		return "strong"
	case "sub":
		return "subscript"
	case "sup":
		return "superscript"
	case "summary":
		return "button"
	case "svg":
		return "img"
	case "table":
		return "table"
	case "tbody", "tfoot", "thead":
		return "rowgroup"
	case "td":
		if gridContext(d, n) {
			return "gridcell"
		}
		if enclosingTableRole(d, n) == "" {
			return ""
		}
		return "cell"
	case "textarea":
		return "textbox"
	case "th":
		switch n.Attr("scope") {
		case "col", "colgroup":
			return "columnheader"
		case "row", "rowgroup":
			return "rowheader"
		}
		if gridContext(d, n) {
			return "gridcell"
		}
		return "columnheader"
	case "time":
		return "time"
	case "tr":
		return "row"
	default:
		return ""
	}
}

// inputRole resolves the role of an <input> from its type and list-attribute
// association.
func inputRole(n *Node) string {
	typ := strings.ToLower(n.Attr("type"))
	hasList := n.Attr("list") != ""
	switch typ {
	case "button", "image", "reset", "submit":
		return "button"
	case "checkbox":
		return "checkbox"
	case "radio":
		return "radio"
	case "range":
		return "slider"
	case "number":
		return "spinbutton"
	case "hidden":
		return ""
	case "file":
		return "button"
	case "search":
		if hasList {
			return "combobox"
		}
		return "searchbox"
	case "email", "tel", "text", "url", "":
		if hasList {
			return "combobox"
		}
		return "textbox"
	default:
		return "textbox"
	}
}

// explicitlyNamed reports whether the element carries an author-provided name,
// which gates the form and region roles.
func explicitlyNamed(n *Node) bool {
	if strings.TrimSpace(n.Attr("aria-label")) != "" {
		return true
	}
	return strings.TrimSpace(n.Attr("aria-labelledby")) != ""
}

// insideSectioningContent walks ancestors looking for sectioning content that
// demotes header/footer from landmark status.
func insideSectioningContent(n *Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind == KindElement && sectioningTags[p.Tag] {
			return true
		}
	}
	return false
}

// enclosingTableRole returns the effective role of the nearest table/grid
// ancestor, or "".
func enclosingTableRole(d *Document, n *Node) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind != KindElement {
			continue
		}
		switch r := Role(d, p); r {
		case "table", "grid", "treegrid":
			return r
		}
	}
	return ""
}

func gridContext(d *Document, n *Node) bool {
	r := enclosingTableRole(d, n)
	return r == "grid" || r == "treegrid"
}

func sizeAttrOver1(n *Node) bool {
	size := n.Attr("size")
	return size != "" && size != "0" && size != "1"
}
