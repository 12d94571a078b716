package domtest

import (
	"testing"

	"github.com/entrhq/webpilot/pkg/aria"
)

func TestBuild_Projection(t *testing.T) {
	doc := MustBuild(`<div id="box"><a id="l" href="/next">Next</a><input id="i" type="checkbox" checked disabled></div>`)

	box := doc.ByID("box")
	if box == nil {
		t.Fatal("expected div in projection")
	}
	if box.Style.Display != "block" {
		t.Errorf("div should default to block, got %q", box.Style.Display)
	}
	if box.Rect.Width == 0 || box.Rect.Height == 0 {
		t.Error("rendered element should get a positive box")
	}

	link := doc.ByID("l")
	if link.Style.Cursor != "pointer" {
		t.Errorf("anchor with href should get a pointer cursor, got %q", link.Style.Cursor)
	}
	if link.Props.URL != "/next" {
		t.Errorf("anchor should project its href as URL, got %q", link.Props.URL)
	}
	if !link.Focusable {
		t.Error("anchor with href should be focusable")
	}

	input := doc.ByID("i")
	if !input.Props.Checked || !input.Props.Disabled {
		t.Errorf("checked/disabled attributes should project as props: %+v", input.Props)
	}
}

func TestBuild_HiddenAttribute(t *testing.T) {
	doc := MustBuild(`<div id="h" hidden><span id="s">x</span></div>`)

	if doc.ByID("h").Style.Display != "none" {
		t.Error("hidden attribute should compute display none")
	}
	if doc.ByID("h").Rect.Width != 0 {
		t.Error("hidden element should have no box")
	}
	if doc.ByID("s").Rect.Width != 0 {
		t.Error("descendants of a hidden element should have no box")
	}
}

func TestBuild_InlineStyleOverrides(t *testing.T) {
	doc := MustBuild(`<span id="s" style="display: block; visibility: hidden; pointer-events: none">x</span>`)

	s := doc.ByID("s")
	if s.Style.Display != "block" {
		t.Errorf("display override lost, got %q", s.Style.Display)
	}
	if s.Style.Visibility != "hidden" {
		t.Errorf("visibility override lost, got %q", s.Style.Visibility)
	}
	if s.Style.PointerEvents != "none" {
		t.Errorf("pointer-events override lost, got %q", s.Style.PointerEvents)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	source := `<button>One</button><button>Two</button>`
	a := MustBuild(source)
	b := MustBuild(source)

	var walk func(x, y *aria.Node)
	walk = func(x, y *aria.Node) {
		if x.Serial != y.Serial || x.Arena != y.Arena || x.Tag != y.Tag {
			t.Fatalf("projection not deterministic: %v vs %v", x, y)
		}
		for i := range x.Children {
			walk(x.Children[i], y.Children[i])
		}
	}
	walk(a.Root, b.Root)
}

func TestBuild_Tabindex(t *testing.T) {
	doc := MustBuild(`<div id="pos" tabindex="0"></div><div id="neg" tabindex="-1"></div>`)

	if !doc.ByID("pos").Focusable {
		t.Error("tabindex=0 should be focusable")
	}
	if doc.ByID("neg").Focusable {
		t.Error("negative tabindex should not count as focusable")
	}
}
