package tools

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

const (
	defaultServerName = "local"
	maxXMLSize        = 10 * 1024 * 1024 // 10MB limit for XML tool calls
)

// Compile regex once at package level for efficiency
var toolRegex = regexp.MustCompile(`(?s)<tool>.*?</tool>`)

// ampersandEntityRegex matches ampersands that are already part of XML entities
// to avoid double-escaping them. Matches: &amp; &lt; &gt; &quot; &apos; &#123; &#xAB;
var ampersandEntityRegex = regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|#\d+|#x[0-9a-fA-F]+);`)

// ParseToolCall extracts a tool call from an LLM response that contains
// XML-formatted tool invocations.
//
// Expected format (Pure XML):
//
//	<tool>
//	<server_name>local</server_name>
//	<tool_name>browser_click</tool_name>
//	<arguments>
//	  <ref>e12</ref>
//	  <page_name>main</page_name>
//	</arguments>
//	</tool>
//
// Returns the parsed ToolCall and the remaining text after removing the tool call,
// or an error if parsing fails.
func ParseToolCall(text string) (*ToolCall, string, error) {
	// Check XML size limit to prevent DOS attacks
	if len(text) > maxXMLSize {
		return nil, text, fmt.Errorf("tool call XML exceeds maximum size of %d bytes", maxXMLSize)
	}

	matches := toolRegex.FindStringSubmatch(text)
	if len(matches) < 1 {
		return nil, text, fmt.Errorf("no tool call found in text")
	}

	// Extract the full <tool> element including tags
	toolXML := strings.TrimSpace(matches[0])

	var toolCall ToolCall
	if err := UnmarshalXMLWithFallback([]byte(toolXML), &toolCall); err != nil {
		// Include XML snippet in error for better debugging
		snippet := toolXML
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, text, fmt.Errorf("failed to unmarshal tool call XML: %w\nXML snippet: %s", err, snippet)
	}

	// Validate required fields
	if toolCall.ToolName == "" {
		return nil, text, fmt.Errorf("tool_name is required in tool call")
	}

	// Server name defaults to "local" if not specified
	if toolCall.ServerName == "" {
		toolCall.ServerName = defaultServerName
	}

	// Remove the tool call from the text
	remainingText := toolRegex.ReplaceAllString(text, "")
	remainingText = strings.TrimSpace(remainingText)

	return &toolCall, remainingText, nil
}

// HasToolCall checks if the text contains a tool call.
func HasToolCall(text string) bool {
	return toolRegex.MatchString(text)
}

// ValidateToolCall checks if a ToolCall has all required fields.
func ValidateToolCall(tc *ToolCall) error {
	if tc == nil {
		return fmt.Errorf("tool call is nil")
	}
	if tc.ToolName == "" {
		return fmt.Errorf("tool_name is required")
	}
	if tc.ServerName == "" {
		return fmt.Errorf("server_name is required")
	}
	return nil
}

// UnmarshalXMLWithFallback attempts to unmarshal XML, with fallback to
// escape unescaped ampersands if the initial parse fails.
// This improves robustness when LLMs generate unescaped & characters.
func UnmarshalXMLWithFallback(data []byte, v interface{}) error {
	// Try normal unmarshaling first
	err := xml.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	// If parse failed, try escaping unescaped ampersands
	escaped := escapeUnescapedAmpersands(data)
	return xml.Unmarshal(escaped, v)
}

// escapeUnescapedAmpersands replaces bare & with &amp; while preserving
// existing entities (&amp;, &lt;, &gt;, &quot;, &apos;, &#..;)
func escapeUnescapedAmpersands(data []byte) []byte {
	// Convert to string for regex processing
	text := string(data)

	// Find all positions of ampersands that are already part of entities
	entityPositions := make(map[int]bool)
	matches := ampersandEntityRegex.FindAllStringIndex(text, -1)
	for _, match := range matches {
		// Mark the position of the & that starts this entity
		entityPositions[match[0]] = true
	}

	// Build result by escaping ampersands that aren't in entityPositions
	var result strings.Builder
	result.Grow(len(text) + 20) // Pre-allocate with some extra space for escapes

	for i := 0; i < len(text); i++ {
		if text[i] == '&' && !entityPositions[i] {
			// This is an unescaped ampersand - escape it
			result.WriteString("&amp;")
		} else {
			result.WriteByte(text[i])
		}
	}

	return []byte(result.String())
}
