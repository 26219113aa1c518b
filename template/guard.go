package template

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxDepth        = 10
	DefaultMaxGrowthFactor = 100
	DefaultMinNodeBudget   = 10000
)

// Limits bound the expansion of one top level call.
type Limits struct {
	// MaxDepth is the deepest allowed nesting of template expansions.
	MaxDepth int `toml:"max_depth"`
	// MaxGrowthFactor bounds the nodes produced by substitution relative
	// to the size of the original document.
	MaxGrowthFactor int `toml:"max_growth_factor"`
	// MinNodeBudget is the node budget granted to small documents.
	MinNodeBudget int `toml:"min_node_budget"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxDepth:        DefaultMaxDepth,
		MaxGrowthFactor: DefaultMaxGrowthFactor,
		MinNodeBudget:   DefaultMinNodeBudget,
	}
}

// withDefaults replaces non-positive limits by their defaults.
func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxGrowthFactor <= 0 {
		l.MaxGrowthFactor = DefaultMaxGrowthFactor
	}
	if l.MinNodeBudget <= 0 {
		l.MinNodeBudget = DefaultMinNodeBudget
	}
	return l
}

// Guard tracks the expansion state of one top level call. It is not safe
// for concurrent use.
type Guard struct {
	limits Limits
	budget int
	nodes  int
	active []string
}

// NewGuard returns a Guard for a document of original nodes.
func NewGuard(limits Limits, original int) *Guard {
	limits = limits.withDefaults()
	return &Guard{
		limits: limits,
		budget: max(original*limits.MaxGrowthFactor, limits.MinNodeBudget),
	}
}

// Enter pushes e onto the active expansion chain. It fails if e is
// already on the chain or if the chain would exceed the depth limit.
func (g *Guard) Enter(e *Entity, fqn string) error {
	key := e.Key()
	for i, k := range g.active {
		if k == key {
			cycle := append(append([]string{}, g.active[i:]...), key)
			return g.err(fqn, e, fmt.Sprintf("template references itself: %s", strings.Join(cycle, " -> ")))
		}
	}
	if len(g.active)+1 > g.limits.MaxDepth {
		return g.err(fqn, e, fmt.Sprintf("nesting depth exceeds %d", g.limits.MaxDepth))
	}
	g.active = append(g.active, key)
	return nil
}

// Exit pops the innermost entity of the chain.
func (g *Guard) Exit() {
	g.active = g.active[:len(g.active)-1]
}

// Depth is the length of the active chain.
func (g *Guard) Depth() int {
	return len(g.active)
}

// Grow charges n substituted nodes against the budget.
func (g *Guard) Grow(e *Entity, fqn string, n int) error {
	g.nodes += n
	if g.nodes > g.budget {
		return g.err(fqn, e, fmt.Sprintf("expansion produced %d nodes, budget is %d", g.nodes, g.budget))
	}
	return nil
}

func (g *Guard) err(fqn string, e *Entity, msg string) error {
	return &Error{Kind: ErrRecursionLimit, FQN: fqn, Ref: e.Identifier, Version: e.VersionLabel, Msg: msg}
}
