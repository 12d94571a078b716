package browser

import (
	"fmt"
)

// ConnectionError wraps a failure to reach or handshake with the browser host.
// Transient network failures are retried by the Connector before one of these
// is surfaced.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("browser connection to %s failed: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// PageNotFoundError indicates that no open page matched the requested logical
// page name.
type PageNotFoundError struct {
	Name string
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page %q not found", e.Name)
}

// ActionError wraps a failure of a resolved browser action (click, type,
// screenshot, navigation).
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// ScriptError carries a caller-supplied script's thrown error verbatim.
type ScriptError struct {
	Err error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script error: %v", e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
