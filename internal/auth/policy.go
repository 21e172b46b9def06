package auth

import (
	"fmt"
	"strings"
)

const (
	// MethodAll matches every HTTP method.
	MethodAll = "ALL"

	wildcardSuffix = "/*"
)

// Rule exempts requests whose path matches Pattern from authentication.
// A Pattern ending in "/*" covers the prefix itself and everything nested
// below it. An empty Methods set means all methods.
type Rule struct {
	Pattern string
	Methods []string
}

type compiledRule struct {
	prefix   string
	wildcard bool
	methods  map[string]struct{}
}

// PolicyMatcher decides whether a request needs a token at all. It is
// immutable once built.
type PolicyMatcher struct {
	rules []compiledRule
}

// NewPolicyMatcher compiles the exemption rules.
func NewPolicyMatcher(rules []Rule) (*PolicyMatcher, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		pattern := strings.TrimSpace(r.Pattern)
		if !strings.HasPrefix(pattern, "/") {
			return nil, fmt.Errorf("exempt pattern %q must start with /", r.Pattern)
		}

		cr := compiledRule{}
		if strings.HasSuffix(pattern, wildcardSuffix) {
			cr.wildcard = true
			pattern = strings.TrimSuffix(pattern, wildcardSuffix)
		} else if strings.Contains(pattern, "*") {
			return nil, fmt.Errorf("exempt pattern %q: wildcard only allowed as trailing segment", r.Pattern)
		}
		cr.prefix = trimTrailingSlash(pattern)

		for _, m := range r.Methods {
			m = strings.ToUpper(strings.TrimSpace(m))
			if m == "" {
				continue
			}
			if m == MethodAll {
				cr.methods = nil
				break
			}
			if cr.methods == nil {
				cr.methods = make(map[string]struct{})
			}
			cr.methods[m] = struct{}{}
		}
		compiled = append(compiled, cr)
	}
	return &PolicyMatcher{rules: compiled}, nil
}

// IsExempt reports whether any rule covers path and method.
func (m *PolicyMatcher) IsExempt(path, method string) bool {
	if m == nil || !isCleanPath(path) {
		return false
	}
	path = trimTrailingSlash(path)
	method = strings.ToUpper(method)

	for _, r := range m.rules {
		if r.methods != nil {
			if _, ok := r.methods[method]; !ok {
				continue
			}
		}
		if path == r.prefix {
			return true
		}
		if r.wildcard && strings.HasPrefix(path, r.prefix+"/") {
			return true
		}
	}
	return false
}

// ParseRules reads the AUTH_EXEMPT_ROUTES format: entries separated by ";",
// each "[METHOD[,METHOD...] ]PATTERN".
func ParseRules(spec string) ([]Rule, error) {
	var rules []Rule
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Fields(entry)
		switch len(fields) {
		case 1:
			rules = append(rules, Rule{Pattern: fields[0]})
		case 2:
			rules = append(rules, Rule{Pattern: fields[1], Methods: strings.Split(fields[0], ",")})
		default:
			return nil, fmt.Errorf("invalid exempt route %q", entry)
		}
	}
	return rules, nil
}

// isCleanPath rejects relative, dot-segment and empty-segment paths so that an
// exemption can never be reached through a path the router resolves differently.
func isCleanPath(path string) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, seg := range segments {
		switch seg {
		case ".", "..":
			return false
		case "":
			if i != len(segments)-1 {
				return false
			}
		}
	}
	return true
}

func trimTrailingSlash(path string) string {
	if len(path) > 1 {
		return strings.TrimRight(path, "/")
	}
	return path
}
