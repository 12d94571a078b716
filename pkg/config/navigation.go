package config

import (
	"fmt"
	"net/url"

	"github.com/gobwas/glob"
)

// HostMatcher handles glob pattern matching for navigation control
type HostMatcher struct {
	allowedPatterns []glob.Glob
	deniedPatterns  []glob.Glob
}

// Matcher compiles the navigation patterns into a HostMatcher
func (n *NavigationConfig) Matcher() (*HostMatcher, error) {
	m := &HostMatcher{}

	for _, pattern := range n.AllowedHosts {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed host pattern '%s': %w", pattern, err)
		}
		m.allowedPatterns = append(m.allowedPatterns, g)
	}

	for _, pattern := range n.DeniedHosts {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied host pattern '%s': %w", pattern, err)
		}
		m.deniedPatterns = append(m.deniedPatterns, g)
	}

	return m, nil
}

// Allow returns nil if navigation to rawURL is permitted by the pattern
// rules. Denied patterns take precedence; an empty allow-list permits every
// host not explicitly denied.
func (m *HostMatcher) Allow(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid navigation URL %q: %w", rawURL, err)
	}

	host := parsed.Hostname()
	if host == "" {
		// about:, data: and friends carry no host to restrict.
		return nil
	}

	for _, pattern := range m.deniedPatterns {
		if pattern.Match(host) {
			return fmt.Errorf("navigation to %q is denied by policy", host)
		}
	}

	if len(m.allowedPatterns) == 0 {
		return nil
	}
	for _, pattern := range m.allowedPatterns {
		if pattern.Match(host) {
			return nil
		}
	}
	return fmt.Errorf("navigation to %q is not in the allowed host list", host)
}
