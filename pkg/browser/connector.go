package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Mode describes how the browser host exposes pages to us.
type Mode string

const (
	// ModeNormal means the host runs a dedicated automation browser and pages
	// are addressed by target identity.
	ModeNormal Mode = "normal"

	// ModeExtension means the host bridges into the user's own browser window
	// and we can only address the pages that already exist there.
	ModeExtension Mode = "extension"
)

const (
	handshakeAttempts    = 3
	handshakeBackoffBase = 100 * time.Millisecond
)

// handshakeResponse is the host's answer to GET /.
type handshakeResponse struct {
	ControlEndpoint string `json:"controlEndpoint"`
	Mode            string `json:"mode"`
}

// Conn is an established connection to the browser host.
type Conn struct {
	Browser playwright.Browser
	Mode    Mode
}

// dialFunc dials the control-channel endpoint returned by the handshake.
// Injectable so the handshake/single-flight logic is testable without a
// running browser.
type dialFunc func(ctx context.Context, controlEndpoint string) (playwright.Browser, error)

// Connector lazily establishes and caches a single connection to the browser
// host. Concurrent callers during an in-flight attempt share that attempt's
// outcome instead of issuing duplicate handshakes.
type Connector struct {
	hostURL string
	client  *http.Client
	dial    dialFunc
	logger  logger

	pw *playwright.Playwright

	mu       sync.Mutex
	conn     *Conn
	inflight chan struct{} // closed when the current attempt finishes
	lastErr  error
}

// logger is the slice of pkg/logging the connector needs.
type logger interface {
	Debugf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

// NewConnector creates a connector for the given browser-host base URL.
func NewConnector(hostURL string, log logger) *Connector {
	c := &Connector{
		hostURL: hostURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  log,
	}
	c.dial = c.dialCDP
	return c
}

// SetConnectTimeout bounds each handshake request to the host, including the
// retried attempts. Non-positive values keep the current timeout.
func (c *Connector) SetConnectTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client.Timeout = d
}

// NewConnectorWithDialer creates a connector that attaches to the control
// endpoint through dial instead of the bundled CDP driver. Used by embedders
// that manage their own browser transport, and by tests.
func NewConnectorWithDialer(hostURL string, dial func(ctx context.Context, controlEndpoint string) (playwright.Browser, error), log logger) *Connector {
	c := NewConnector(hostURL, log)
	c.dial = dial
	return c
}

// Ensure returns the cached connection, establishing it on first use. Only a
// connection that reports itself disconnected is re-established; there is no
// periodic health check.
func (c *Connector) Ensure(ctx context.Context) (*Conn, error) {
	for {
		c.mu.Lock()
		if c.conn != nil {
			if c.conn.Browser == nil || c.conn.Browser.IsConnected() {
				conn := c.conn
				c.mu.Unlock()
				return conn, nil
			}
			c.logger.Warnf("browser connection lost, reconnecting")
			c.conn = nil
		}

		if c.inflight != nil {
			// Another caller is already connecting; wait for its outcome.
			done := c.inflight
			c.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		done := make(chan struct{})
		c.inflight = done
		c.mu.Unlock()

		conn, err := c.connect(ctx)

		c.mu.Lock()
		if err == nil {
			c.conn = conn
		}
		c.lastErr = err
		c.inflight = nil
		close(done)
		c.mu.Unlock()

		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// connect performs the handshake and dials the control endpoint.
func (c *Connector) connect(ctx context.Context) (*Conn, error) {
	hs, err := c.handshake(ctx)
	if err != nil {
		return nil, &ConnectionError{Endpoint: c.hostURL, Err: err}
	}

	mode := Mode(hs.Mode)
	if mode != ModeNormal && mode != ModeExtension {
		return nil, &ConnectionError{Endpoint: c.hostURL, Err: fmt.Errorf("unknown mode %q in handshake", hs.Mode)}
	}

	browser, err := c.dial(ctx, hs.ControlEndpoint)
	if err != nil {
		return nil, &ConnectionError{Endpoint: hs.ControlEndpoint, Err: err}
	}

	c.logger.Debugf("connected to browser host (mode=%s)", mode)
	return &Conn{Browser: browser, Mode: mode}, nil
}

// handshake probes GET <host>/ with bounded retries for transient network
// failures. Any other failure propagates immediately.
func (c *Connector) handshake(ctx context.Context) (*handshakeResponse, error) {
	var lastErr error
	for attempt := 0; attempt < handshakeAttempts; attempt++ {
		if attempt > 0 {
			backoff := handshakeBackoffBase << (attempt - 1)
			jitter := time.Duration(rand.Int63n(int64(backoff)))
			select {
			case <-time.After(backoff + jitter):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		hs, err := c.probe(ctx)
		if err == nil {
			return hs, nil
		}
		if !isTransientNetErr(err) {
			return nil, err
		}
		c.logger.Warnf("handshake attempt %d failed: %v", attempt+1, err)
		lastErr = err
	}
	return nil, fmt.Errorf("handshake failed after %d attempts: %w", handshakeAttempts, lastErr)
}

func (c *Connector) probe(ctx context.Context) (*handshakeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.hostURL+"/", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("handshake returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var hs handshakeResponse
	if err := json.Unmarshal(body, &hs); err != nil {
		return nil, fmt.Errorf("invalid handshake response: %w", err)
	}
	if hs.ControlEndpoint == "" {
		return nil, fmt.Errorf("handshake response missing controlEndpoint")
	}
	return &hs, nil
}

// dialCDP attaches to the host's browser over the CDP control channel.
func (c *Connector) dialCDP(ctx context.Context, controlEndpoint string) (playwright.Browser, error) {
	if c.pw == nil {
		pw, err := playwright.Run(&playwright.RunOptions{
			Verbose: false,
			Stdout:  io.Discard,
			Stderr:  io.Discard,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start playwright: %w", err)
		}
		c.pw = pw
	}

	browser, err := c.pw.Chromium.ConnectOverCDP(controlEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to attach to control endpoint: %w", err)
	}
	return browser, nil
}

// Close tears down the connection and the playwright driver.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.conn != nil && c.conn.Browser != nil {
		if err := c.conn.Browser.Close(); err != nil {
			errs = append(errs, err)
		}
		c.conn = nil
	}
	if c.pw != nil {
		if err := c.pw.Stop(); err != nil {
			errs = append(errs, err)
		}
		c.pw = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing connector: %v", errs)
	}
	return nil
}

// isTransientNetErr reports whether err is the kind of connection-level
// failure worth retrying: refused, reset, or other socket errors.
func isTransientNetErr(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
