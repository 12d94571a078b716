package aria

import (
	"sort"
	"strconv"
	"strings"
)

// Render serializes the accessibility tree to the indented textual snapshot
// format: one node per line, two-space indent per depth,
// `- role "name" [flags] [ref=eN] [cursor=pointer]`.
func Render(root *AXNode) string {
	var b strings.Builder
	for _, child := range root.Children {
		renderEntry(&b, child, 0, false)
	}
	return b.String()
}

func renderEntry(b *strings.Builder, entry interface{}, depth int, pointerShown bool) {
	indent := strings.Repeat("  ", depth)

	if text, ok := entry.(string); ok {
		b.WriteString(indent)
		b.WriteString("- text: ")
		b.WriteString(escapeYamlValue(text))
		b.WriteString("\n")
		return
	}

	ax := entry.(*AXNode)
	head := headline(ax, pointerShown)
	showedPointer := pointerShown || strings.Contains(head, "[cursor=pointer]")

	// A node whose only child is a single inline string renders as key: value.
	if len(ax.Props) == 0 && len(ax.Children) == 1 {
		if text, ok := ax.Children[0].(string); ok {
			b.WriteString(indent)
			b.WriteString("- ")
			b.WriteString(head)
			b.WriteString(": ")
			b.WriteString(escapeYamlValue(text))
			b.WriteString("\n")
			return
		}
	}

	b.WriteString(indent)
	b.WriteString("- ")
	b.WriteString(head)
	if len(ax.Props) == 0 && len(ax.Children) == 0 {
		b.WriteString("\n")
		return
	}
	b.WriteString(":\n")

	keys := make([]string, 0, len(ax.Props))
	for k := range ax.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(strings.Repeat("  ", depth+1))
		b.WriteString("- /")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(escapeYamlValue(ax.Props[k]))
		b.WriteString("\n")
	}

	for _, child := range ax.Children {
		renderEntry(b, child, depth+1, showedPointer)
	}
}

// headline builds the `role "name" [flags]` portion of a node's line.
func headline(ax *AXNode, pointerShown bool) string {
	parts := []string{ax.Role}
	if ax.Name != "" {
		parts = append(parts, quoteName(ax.Name))
	}
	if ax.Active {
		parts = append(parts, "[active]")
	}
	switch ax.Checked {
	case TriTrue:
		parts = append(parts, "[checked]")
	case TriMixed:
		parts = append(parts, "[checked=mixed]")
	}
	if ax.Disabled {
		parts = append(parts, "[disabled]")
	}
	if ax.Expanded {
		parts = append(parts, "[expanded]")
	}
	if ax.Level > 0 {
		parts = append(parts, "[level="+strconv.Itoa(ax.Level)+"]")
	}
	switch ax.Pressed {
	case TriTrue:
		parts = append(parts, "[pressed]")
	case TriMixed:
		parts = append(parts, "[pressed=mixed]")
	}
	if ax.Selected {
		parts = append(parts, "[selected]")
	}
	if ax.Ref != "" {
		parts = append(parts, "[ref="+ax.Ref+"]")
	}
	if ax.Ref != "" && ax.Cursor == "pointer" && !pointerShown {
		parts = append(parts, "[cursor=pointer]")
	}
	return strings.Join(parts, " ")
}

// quoteName renders an accessible name, always double-quoted.
func quoteName(s string) string {
	return `"` + escapeDoubleQuoted(s) + `"`
}

// escapeYamlValue quotes a scalar only when leaving it bare would be ambiguous
// to a YAML reader: surrounding whitespace, control characters, leading or
// embedded punctuation, or a value that parses as a boolean, null or number.
func escapeYamlValue(s string) string {
	if needsQuoting(s) {
		return `"` + escapeDoubleQuoted(s) + `"`
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no", "on", "off", "null", "~":
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	if strings.ContainsAny(s[:1], "-?:,[]{}#&*!|>'\"%@`") {
		return true
	}
	if strings.Contains(s, ": ") || strings.HasSuffix(s, ":") || strings.Contains(s, " #") {
		return true
	}
	if strings.ContainsAny(s, "\"'") {
		return true
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

func escapeDoubleQuoted(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				b.WriteString(`\x` + strconv.FormatInt(int64(r), 16))
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
