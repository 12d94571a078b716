package browser

// Default values for browser operations.
const (
	// DefaultPageName is the logical page used when a tool call omits
	// page_name. Names are namespaced per task by the page registry.
	DefaultPageName = "main"

	// DefaultLoadWaitMs bounds the non-fatal document-ready wait after
	// navigation and clicks.
	DefaultLoadWaitMs = 10000.0

	// DefaultEvaluateTimeoutMs bounds script evaluation.
	DefaultEvaluateTimeoutMs = 30000.0

	// MaxSequenceSteps bounds the number of steps one sequence call may run.
	MaxSequenceSteps = 50
)

// ActionStep is one step of a browser_sequence call. Kind selects the
// variant; the remaining fields are read per kind.
type ActionStep struct {
	Kind string `xml:"kind"`

	// click
	X *float64 `xml:"x"`
	Y *float64 `xml:"y"`

	// click, type
	Ref      string `xml:"ref"`
	Selector string `xml:"selector"`

	// type
	Text       string `xml:"text"`
	PressEnter bool   `xml:"press_enter"`

	// screenshot
	FullPage bool `xml:"full_page"`

	// wait
	TimeoutMs float64 `xml:"timeout_ms"`
}
