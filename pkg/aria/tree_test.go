package aria_test

import (
	"testing"

	"github.com/entrhq/webpilot/pkg/aria"
	"github.com/entrhq/webpilot/pkg/aria/domtest"
)

// snapshotText builds one page state, snapshots the fixture through it and
// returns the rendered text.
func snapshotText(t *testing.T, source string) string {
	t.Helper()
	doc := domtest.MustBuild(source)
	state := aria.NewPageState()
	tree := state.Build(doc)
	state.AssignRefs(doc.Generation, tree)
	return aria.Render(tree)
}

func TestBuild_Button(t *testing.T) {
	got := snapshotText(t, `<button>Click me</button>`)
	want := "- button \"Click me\" [ref=e1]\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_LinkWithURL(t *testing.T) {
	got := snapshotText(t, `<a href="https://example.com/docs">Docs</a>`)
	want := "- link \"Docs\" [ref=e1] [cursor=pointer]:\n  - /url: https://example.com/docs\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_HeadingLevel(t *testing.T) {
	got := snapshotText(t, `<h2>Results</h2>`)
	want := "- heading \"Results\" [level=2] [ref=e1]\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_GenericCollapsing(t *testing.T) {
	// Nameless wrapper divs with a single child splice out.
	got := snapshotText(t, `<div><div><button>Go</button></div></div>`)
	want := "- button \"Go\" [ref=e1]\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_ClickableWrapperKept(t *testing.T) {
	// A pointer-cursor wrapper is a click target and must keep its node.
	got := snapshotText(t, `<div style="cursor:pointer">Menu</div>`)
	want := "- generic [ref=e1] [cursor=pointer]: Menu\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_DisplayNoneSuppressed(t *testing.T) {
	got := snapshotText(t, `<div style="display:none"><button>Hidden</button></div><button>Shown</button>`)
	want := "- button \"Shown\" [ref=e1]\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_VisibilityHiddenSuppressed(t *testing.T) {
	got := snapshotText(t, `<button style="visibility:hidden">Ghost</button>`)
	if got != "" {
		t.Errorf("expected empty snapshot, got:\n%s", got)
	}
}

func TestBuild_ClosedDetails(t *testing.T) {
	got := snapshotText(t, `<details><summary>More</summary><p>Body text</p></details>`)
	want := "- group [ref=e1]:\n  - button \"More\" [ref=e2]\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_OpenDetails(t *testing.T) {
	got := snapshotText(t, `<details open><summary>More</summary><p>Body text</p></details>`)
	want := "- group [ref=e1]:\n  - button \"More\" [expanded] [ref=e2]\n  - paragraph [ref=e3]: Body text\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_CheckboxStates(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "unchecked",
			source: `<input type="checkbox">`,
			want:   "- checkbox [ref=e1]\n",
		},
		{
			name:   "checked",
			source: `<input type="checkbox" checked>`,
			want:   "- checkbox [checked] [ref=e1]\n",
		},
		{
			name:   "aria mixed",
			source: `<input type="checkbox" aria-checked="mixed">`,
			want:   "- checkbox [checked=mixed] [ref=e1]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snapshotText(t, tt.source); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestBuild_DisabledControl(t *testing.T) {
	got := snapshotText(t, `<button disabled>Save</button>`)
	want := "- button \"Save\" [disabled] [ref=e1]\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_PressedToggle(t *testing.T) {
	got := snapshotText(t, `<button aria-pressed="true">Bold</button>`)
	want := "- button \"Bold\" [pressed] [ref=e1]\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_TextboxPlaceholder(t *testing.T) {
	got := snapshotText(t, `<input type="text" placeholder="Search query">`)
	want := "- textbox \"Search query\" [ref=e1]:\n  - /placeholder: Search query\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_TextDistinctFromName(t *testing.T) {
	// Extra content beyond the computed name stays as child text.
	got := snapshotText(t, `<button aria-label="Save">Discard</button>`)
	want := "- button \"Save\" [ref=e1]: Discard\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_PresentationSuppressed(t *testing.T) {
	got := snapshotText(t, `<ul role="presentation"><li role="presentation">raw</li></ul>`)
	want := "- text: raw\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_TableStructure(t *testing.T) {
	got := snapshotText(t, `<table><tr><th>Name</th><td>Ada</td></tr></table>`)
	want := `- table [ref=e1]:
  - rowgroup [ref=e2]:
    - row "Name Ada" [ref=e3]:
      - columnheader "Name" [ref=e4]
      - cell "Ada" [ref=e5]
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_AriaOwnsReparenting(t *testing.T) {
	source := `<ul aria-owns="extra"><li>one</li></ul><div><li id="extra">two</li></div>`
	got := snapshotText(t, source)
	want := `- list [ref=e1]:
  - listitem [ref=e2]: one
  - listitem [ref=e3]: two
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
