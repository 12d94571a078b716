package browser

import (
	"github.com/entrhq/webpilot/pkg/agent/tools"
)

// ToolRegistry builds the browser tool set over one shared toolbox.
type ToolRegistry struct {
	box   *Toolbox
	tools []tools.Tool
}

// NewToolRegistry creates a new browser tool registry.
func NewToolRegistry(box *Toolbox) *ToolRegistry {
	return &ToolRegistry{
		box:   box,
		tools: make([]tools.Tool, 0),
	}
}

// RegisterTools creates and returns all browser tools.
// This should be called by the main tool registry to get the browser tools.
func (r *ToolRegistry) RegisterTools() []tools.Tool {
	if len(r.tools) > 0 {
		return r.tools
	}

	r.tools = append(r.tools,
		NewNavigateTool(r.box),
		NewSnapshotTool(r.box),
		NewClickTool(r.box),
		NewTypeTool(r.box),
		NewScreenshotTool(r.box),
		NewEvaluateTool(r.box),
		NewPagesTool(r.box),
		NewWaitTool(r.box),
		NewSequenceTool(r.box),
	)

	return r.tools
}

// GetTools returns the current set of registered tools.
func (r *ToolRegistry) GetTools() []tools.Tool {
	return r.tools
}

// GetToolbox returns the shared toolbox.
// This allows external code to reach the page registry if needed.
func (r *ToolRegistry) GetToolbox() *Toolbox {
	return r.box
}
