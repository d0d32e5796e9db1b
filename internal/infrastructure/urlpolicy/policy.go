package urlpolicy

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Policy restricts agent navigation to hosts matching a set of glob patterns.
// An empty policy allows every http(s) URL.
type Policy struct {
	patterns []glob.Glob
	raw      []string
}

func New(patterns []string) (*Policy, error) {
	p := &Policy{}
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid domain pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, g)
		p.raw = append(p.raw, pattern)
	}
	return p, nil
}

func (p *Policy) Patterns() []string {
	if p == nil {
		return nil
	}
	return p.raw
}

func (p *Policy) empty() bool {
	return p == nil || len(p.patterns) == 0
}

func (p *Policy) Check(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "http", "https":
	case "about", "data", "chrome":
		if p.empty() {
			return nil
		}
		return fmt.Errorf("scheme %s is not allowed", u.Scheme)
	default:
		return fmt.Errorf("scheme %q is not allowed", u.Scheme)
	}

	if p.empty() {
		return nil
	}

	host := strings.ToLower(u.Hostname())
	for _, g := range p.patterns {
		if g.Match(host) {
			return nil
		}
	}
	return fmt.Errorf("navigation to %s is not allowed", host)
}

// Normalize adds https:// to bare hosts the model tends to produce.
func Normalize(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || strings.Contains(rawURL, "://") || strings.HasPrefix(rawURL, "about:") || strings.HasPrefix(rawURL, "data:") {
		return rawURL
	}
	return "https://" + rawURL
}
