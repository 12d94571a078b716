package aria

// nonRenderingTags never produce accessible content.
var nonRenderingTags = map[string]bool{
	"base": true, "head": true, "link": true, "meta": true, "noscript": true,
	"script": true, "style": true, "template": true, "title": true,
}

// caches holds the per-generation memoization for computed-style derived
// checks. A cache scope is opened at the start of a walk and closed at the
// end; the reference count keeps a nested walk on the same page from
// corrupting an outer walk's state.
type caches struct {
	refs          int
	ariaHidden    map[*Node]bool
	displayHidden map[*Node]bool
	pointer       map[*Node]bool
}

func (c *caches) open() {
	if c.refs == 0 {
		c.ariaHidden = make(map[*Node]bool)
		c.displayHidden = make(map[*Node]bool)
		c.pointer = make(map[*Node]bool)
	}
	c.refs++
}

func (c *caches) close() {
	c.refs--
	if c.refs == 0 {
		c.ariaHidden = nil
		c.displayHidden = nil
		c.pointer = nil
	}
}

// isVisible applies the default visibility policy: rendered, not inside a
// closed disclosure widget, and either exposed to assistive tech or occupying
// a positive-area box.
func isVisible(c *caches, n *Node) bool {
	if n.Kind != KindElement {
		return false
	}
	if nonRenderingTags[n.Tag] {
		return false
	}
	if displayHidden(c, n) {
		return false
	}
	if n.Style.Visibility != "" && n.Style.Visibility != "visible" {
		return false
	}
	if insideClosedDetails(n) {
		return false
	}
	return ariaExposed(c, n) || positiveArea(n.Rect)
}

// displayHidden reports whether the element or any ancestor computes
// display:none. Descendants of a display:none subtree keep their own
// specified display in the projection, so the chain is walked here.
func displayHidden(c *caches, n *Node) bool {
	if v, ok := c.displayHidden[n]; ok {
		return v
	}
	hidden := n.Style.Display == "none"
	if !hidden {
		if p := n.Parent(); p != nil && p.Kind == KindElement {
			hidden = displayHidden(c, p)
		}
	}
	c.displayHidden[n] = hidden
	return hidden
}

// ariaExposed reports whether the ARIA-hidden computation leaves the element
// exposed: no self-or-ancestor aria-hidden="true".
func ariaExposed(c *caches, n *Node) bool {
	return !ariaHidden(c, n)
}

func ariaHidden(c *caches, n *Node) bool {
	if v, ok := c.ariaHidden[n]; ok {
		return v
	}
	hidden := n.Attr("aria-hidden") == "true"
	if !hidden {
		if p := n.Parent(); p != nil && p.Kind == KindElement {
			hidden = ariaHidden(c, p)
		}
	}
	c.ariaHidden[n] = hidden
	return hidden
}

// receivesPointerEvents checks the computed pointer-events resolution. The
// computed value already accounts for inheritance, so the element's own value
// decides.
func receivesPointerEvents(c *caches, n *Node) bool {
	if v, ok := c.pointer[n]; ok {
		return v
	}
	v := n.Style.PointerEvents != "none"
	c.pointer[n] = v
	return v
}

// insideClosedDetails reports whether the node sits in the hidden part of a
// closed <details>. The <summary> child (and its subtree) stays visible.
func insideClosedDetails(n *Node) bool {
	for child, p := n, n.Parent(); p != nil; child, p = p, p.Parent() {
		if p.Kind == KindElement && p.Tag == "details" && !p.Props.Open && !p.HasAttr("open") {
			if child.Kind == KindElement && child.Tag == "summary" {
				continue
			}
			return true
		}
	}
	return false
}

func positiveArea(r Rect) bool {
	return r.Width > 0 && r.Height > 0
}
