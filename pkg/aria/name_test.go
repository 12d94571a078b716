package aria_test

import (
	"strings"
	"testing"

	"github.com/entrhq/webpilot/pkg/aria"
	"github.com/entrhq/webpilot/pkg/aria/domtest"
)

// builtName snapshots the fixture and returns the name of the first node with
// the given role.
func builtName(t *testing.T, source, role string) string {
	t.Helper()
	doc := domtest.MustBuild(source)
	state := aria.NewPageState()
	tree := state.Build(doc)

	node := findRole(tree, role)
	if node == nil {
		t.Fatalf("built tree has no %q node:\n%s", role, aria.Render(tree))
	}
	return node.Name
}

func findRole(ax *aria.AXNode, role string) *aria.AXNode {
	if ax.Role == role {
		return ax
	}
	for _, child := range ax.Children {
		if node, ok := child.(*aria.AXNode); ok {
			if found := findRole(node, role); found != nil {
				return found
			}
		}
	}
	return nil
}

func TestAccessibleName_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		source string
		role   string
		want   string
	}{
		{
			name:   "labelledby beats aria-label",
			source: `<span id="l">From reference</span><button aria-labelledby="l" aria-label="ignored">content</button>`,
			role:   "button",
			want:   "From reference",
		},
		{
			name:   "aria-label beats content",
			source: `<button aria-label="Close">X</button>`,
			role:   "button",
			want:   "Close",
		},
		{
			name:   "content when no labels",
			source: `<button>Submit order</button>`,
			role:   "button",
			want:   "Submit order",
		},
		{
			name:   "title as last resort",
			source: `<button title="hint"></button>`,
			role:   "button",
			want:   "hint",
		},
		{
			name:   "multiple labelledby targets joined",
			source: `<span id="a">Billing</span><span id="b">address</span><input aria-labelledby="a b">`,
			role:   "textbox",
			want:   "Billing address",
		},
		{
			name:   "labelledby target may name from content regardless of role",
			source: `<p id="l">Paragraph label</p><input aria-labelledby="l">`,
			role:   "textbox",
			want:   "Paragraph label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := builtName(t, tt.source, tt.role); got != tt.want {
				t.Errorf("name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccessibleName_Native(t *testing.T) {
	tests := []struct {
		name   string
		source string
		role   string
		want   string
	}{
		{
			name:   "submit input value",
			source: `<input type="submit" value="Send">`,
			role:   "button",
			want:   "Send",
		},
		{
			name:   "image alt",
			source: `<img alt="Company logo" src="logo.png">`,
			role:   "img",
			want:   "Company logo",
		},
		{
			name:   "label with for attribute",
			source: `<label for="q">Search</label><input id="q">`,
			role:   "textbox",
			want:   "Search",
		},
		{
			name:   "wrapping label",
			source: `<label>Email <input type="email"></label>`,
			role:   "textbox",
			want:   "Email",
		},
		{
			name:   "placeholder fallback",
			source: `<input placeholder="Phone number">`,
			role:   "textbox",
			want:   "Phone number",
		},
		{
			name:   "table caption",
			source: `<table><caption>Quarterly totals</caption><tr><td>1</td></tr></table>`,
			role:   "table",
			want:   "Quarterly totals",
		},
		{
			name:   "fieldset legend",
			source: `<fieldset><legend>Shipping</legend><input></fieldset>`,
			role:   "group",
			want:   "Shipping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := builtName(t, tt.source, tt.role); got != tt.want {
				t.Errorf("name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccessibleName_Content(t *testing.T) {
	tests := []struct {
		name   string
		source string
		role   string
		want   string
	}{
		{
			name:   "nested inline content concatenated",
			source: `<a href="/p">Read <b>more</b></a>`,
			role:   "link",
			want:   "Read more",
		},
		{
			name:   "br forces a space",
			source: `<button>line1<br>line2</button>`,
			role:   "button",
			want:   "line1 line2",
		},
		{
			name:   "block children force spaces",
			source: `<a href="/p"><div>top</div><div>bottom</div></a>`,
			role:   "link",
			want:   "top bottom",
		},
		{
			name:   "aria-hidden descendants excluded",
			source: `<button>Save<span aria-hidden="true"> (draft)</span></button>`,
			role:   "button",
			want:   "Save",
		},
		{
			name:   "whitespace collapsed and trimmed",
			source: "<button>  Place \n\t order  </button>",
			role:   "button",
			want:   "Place order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := builtName(t, tt.source, tt.role); got != tt.want {
				t.Errorf("name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccessibleName_CircularLabelledby(t *testing.T) {
	// Self and mutual references must terminate and yield no name from the
	// reference chain.
	source := `<input id="self" aria-labelledby="self" placeholder="fallback">`
	if got := builtName(t, source, "textbox"); got != "fallback" {
		t.Errorf("self-referential labelledby should fall through, got %q", got)
	}

	mutual := `<div id="a" role="button" aria-labelledby="b">Alpha</div><div id="b" role="button" aria-labelledby="a">Beta</div>`
	doc := domtest.MustBuild(mutual)
	state := aria.NewPageState()
	tree := state.Build(doc)

	// Termination is the point: both nodes resolve without recursing forever.
	text := aria.Render(tree)
	if !strings.Contains(text, "button") {
		t.Errorf("expected buttons in rendered tree:\n%s", text)
	}
}
