// Package rules records which page object applies to which URLs. A
// Registry collects ApplyRule entries, answers specificity-ordered lookups
// by URL, and round-trips to YAML so rule sets can ship as configuration.
package rules

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Pattern narrows the URLs a rule applies to. Entries are "host" or
// "host/path-prefix"; a host matches itself and its subdomains.
type Pattern struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// ApplyRule binds a page object to the URLs it can extract. UsePage names
// the page object; InsteadOf optionally names the page object it
// overrides, and ToReturn the item type it produces. Names are opaque
// strings — the registry routes, it does not instantiate.
type ApplyRule struct {
	For       Pattern `yaml:"for"`
	UsePage   string  `yaml:"use"`
	InsteadOf string  `yaml:"insteadOf,omitempty"`
	ToReturn  string  `yaml:"toReturn,omitempty"`
}

// Registry is a concurrency-safe collection of apply rules.
type Registry struct {
	mu    sync.RWMutex
	rules []ApplyRule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Add registers a rule. A rule must name a page object and include at
// least one pattern.
func (r *Registry) Add(rule ApplyRule) error {
	if rule.UsePage == "" {
		return errors.New("rule must name a page object")
	}
	if len(rule.For.Include) == 0 {
		return fmt.Errorf("rule for %q must include at least one pattern", rule.UsePage)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
	return nil
}

// Rules returns a copy of the registered rules in registration order.
func (r *Registry) Rules() []ApplyRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ApplyRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Search returns the rules matching rawURL, most specific first: a longer
// matched include pattern outranks a shorter one, ties keep registration
// order.
func (r *Registry) Search(rawURL string) []ApplyRule {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	path := u.Path

	type ranked struct {
		rule        ApplyRule
		specificity int
		position    int
	}
	var matches []ranked

	r.mu.RLock()
	for i, rule := range r.rules {
		spec, ok := matchPatterns(rule.For.Include, host, path)
		if !ok {
			continue
		}
		if _, excluded := matchPatterns(rule.For.Exclude, host, path); excluded {
			continue
		}
		matches = append(matches, ranked{rule: rule, specificity: spec, position: i})
	}
	r.mu.RUnlock()

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].specificity != matches[b].specificity {
			return matches[a].specificity > matches[b].specificity
		}
		return matches[a].position < matches[b].position
	})
	out := make([]ApplyRule, len(matches))
	for i, m := range matches {
		out[i] = m.rule
	}
	return out
}

// matchPatterns reports whether any pattern matches host/path, returning
// the length of the longest matching pattern as its specificity.
func matchPatterns(patterns []string, host, path string) (int, bool) {
	best := -1
	for _, p := range patterns {
		if matchPattern(p, host, path) && len(p) > best {
			best = len(p)
		}
	}
	return best, best >= 0
}

func matchPattern(pattern, host, path string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return false
	}
	pHost, pPath, _ := strings.Cut(pattern, "/")
	if host != pHost && !strings.HasSuffix(host, "."+pHost) {
		return false
	}
	if pPath == "" {
		return true
	}
	return strings.HasPrefix(strings.TrimPrefix(path, "/"), pPath)
}
