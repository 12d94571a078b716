package browser

import (
	"context"
	"testing"
)

func TestPagesTool_List(t *testing.T) {
	box, host := newTestBox(t, nil)
	host.mu.Lock()
	host.pages = []string{"task1:main", "task2:other", "task1:popup"}
	host.mu.Unlock()

	tool := NewPagesTool(box)
	result, _, err := tool.Execute(context.Background(), []byte(`<arguments><action>list</action></arguments>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Open pages (2):\n- main\n- popup"
	if result != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, result)
	}
}

func TestPagesTool_DefaultsToList(t *testing.T) {
	box, _ := newTestBox(t, nil)

	tool := NewPagesTool(box)
	result, _, err := tool.Execute(context.Background(), []byte(`<arguments></arguments>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "No pages are open for this task" {
		t.Errorf("unexpected result: %q", result)
	}
}

func TestPagesTool_CloseDefaultsToMain(t *testing.T) {
	box, host := newTestBox(t, nil)

	tool := NewPagesTool(box)
	result, _, err := tool.Execute(context.Background(), []byte(`<arguments><action>close</action></arguments>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `Closed page "main"` {
		t.Errorf("unexpected result: %q", result)
	}

	host.mu.Lock()
	deleted := append([]string(nil), host.deleted...)
	host.mu.Unlock()
	if len(deleted) != 1 || deleted[0] != "task1:main" {
		t.Errorf("expected the scoped name to be closed on the host, got %v", deleted)
	}
}

func TestPagesTool_CloseNamedPage(t *testing.T) {
	box, host := newTestBox(t, nil)

	tool := NewPagesTool(box)
	result, _, err := tool.Execute(context.Background(), []byte(`<arguments><action>close</action><page_name>popup</page_name></arguments>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `Closed page "popup"` {
		t.Errorf("unexpected result: %q", result)
	}

	host.mu.Lock()
	deleted := append([]string(nil), host.deleted...)
	host.mu.Unlock()
	if len(deleted) != 1 || deleted[0] != "task1:popup" {
		t.Errorf("expected the scoped name to be closed on the host, got %v", deleted)
	}
}

func TestPagesTool_UnknownAction(t *testing.T) {
	box, _ := newTestBox(t, nil)

	tool := NewPagesTool(box)
	if _, _, err := tool.Execute(context.Background(), []byte(`<arguments><action>open</action></arguments>`)); err == nil {
		t.Error("expected error for unknown action")
	}
}
