package template

import (
	"fmt"
	"strings"
)

// Scope is the level owning a template.
type Scope int

const (
	AccountScope Scope = iota
	OrgScope
	ProjectScope
)

var scopeNames = [...]string{"account", "org", "project"}

func (s Scope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return fmt.Sprintf("Scope(%d)", int(s))
	}
	return scopeNames[s]
}

func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(d []byte) error {
	v, ok := ParseScope(string(d))
	if !ok {
		return fmt.Errorf("unknown scope %q", d)
	}
	*s = v
	return nil
}

func ParseScope(v string) (Scope, bool) {
	for i, n := range scopeNames {
		if n == v {
			return Scope(i), true
		}
	}
	return 0, false
}

// ScopeRef identifies one concrete scope. Its level is the deepest
// non-empty identifier.
type ScopeRef struct {
	Account string `json:"account" toml:"account"`
	Org     string `json:"org,omitempty" toml:"org"`
	Project string `json:"project,omitempty" toml:"project"`
}

func (r ScopeRef) Level() Scope {
	switch {
	case r.Project != "":
		return ProjectScope
	case r.Org != "":
		return OrgScope
	default:
		return AccountScope
	}
}

func (r ScopeRef) String() string {
	parts := []string{r.Account}
	if r.Org != "" || r.Project != "" {
		parts = append(parts, r.Org)
	}
	if r.Project != "" {
		parts = append(parts, r.Project)
	}
	return strings.Join(parts, "/")
}

// At returns the ancestor of r at level s.
func (r ScopeRef) At(s Scope) (ScopeRef, bool) {
	if s > r.Level() {
		return ScopeRef{}, false
	}
	res := ScopeRef{Account: r.Account}
	if s >= OrgScope {
		res.Org = r.Org
	}
	if s >= ProjectScope {
		res.Project = r.Project
	}
	return res, true
}

// Chain returns r followed by its ancestors, innermost first.
func (r ScopeRef) Chain() []ScopeRef {
	res := make([]ScopeRef, 0, 3)
	for s := r.Level(); s >= AccountScope; s-- {
		a, _ := r.At(s)
		res = append(res, a)
	}
	return res
}

// SplitTemplateRef separates a scope qualifier ("account.", "org." or
// "project.") from a templateRef. qualified is false for a bare
// identifier.
func SplitTemplateRef(ref string) (scope Scope, id string, qualified bool) {
	pre, rest, ok := strings.Cut(ref, ".")
	if !ok {
		return 0, ref, false
	}
	s, ok := ParseScope(pre)
	if !ok {
		return 0, ref, false
	}
	return s, rest, true
}

// LookupChain returns the scopes searched for ref from the scope r. A
// qualified ref names exactly one scope. It fails when the qualifier is
// deeper than r.
func (r ScopeRef) LookupChain(ref string) ([]ScopeRef, string, error) {
	s, id, qualified := SplitTemplateRef(ref)
	if id == "" {
		return nil, "", fmt.Errorf("empty identifier in templateRef %q", ref)
	}
	if !qualified {
		return r.Chain(), id, nil
	}
	a, ok := r.At(s)
	if !ok {
		return nil, "", fmt.Errorf("templateRef %q names %s scope outside of %s scope %s", ref, s, r.Level(), r)
	}
	return []ScopeRef{a}, id, nil
}
