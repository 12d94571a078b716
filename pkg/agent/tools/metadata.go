package tools

// ToolResult pairs a tool's text output with the structured metadata it
// produced. Metadata carries payloads that do not belong in the text stream,
// such as a screenshot's base64 image data and media type, and is framed
// separately by the caller.
type ToolResult struct {
	Output   string                 // The main output/result message
	Metadata map[string]interface{} // Optional structured payload, may be nil
}
