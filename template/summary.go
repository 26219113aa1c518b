package template

import (
	"maps"
	"slices"

	"github.com/stagecraft/tplmerge/ir"
)

// ReferenceSummary records one substitution made by Resolve.
type ReferenceSummary struct {
	TemplateIdentifier string `json:"templateIdentifier"`
	// VersionLabel is the version actually used.
	VersionLabel string `json:"versionLabel"`
	// Scope is the level at which the template was found.
	Scope Scope `json:"scope"`
	// FQN locates the reference site in the caller document. References
	// found inside template bodies extend the FQN of their enclosing
	// reference.
	FQN string `json:"fqn"`
	// StableTemplate is set when no versionLabel was requested.
	StableTemplate bool     `json:"stableTemplate"`
	ModuleInfo     []string `json:"moduleInfo,omitempty"`
}

func newSummary(e *Entity, ref *Reference, fqn string) ReferenceSummary {
	mods := slices.Clone(e.Modules)
	slices.Sort(mods)
	return ReferenceSummary{
		TemplateIdentifier: e.Identifier,
		VersionLabel:       e.VersionLabel,
		Scope:              e.Scope.Level(),
		FQN:                fqn,
		StableTemplate:     ref.VersionLabel == "",
		ModuleInfo:         slices.Compact(mods),
	}
}

// Result is the outcome of Resolve.
type Result struct {
	// Merged is the document with every reference substituted.
	Merged *ir.Node
	// Annotated is Merged with a template map kept on every substituted
	// owner. It is nil unless requested.
	Annotated *ir.Node
	// References lists substitutions in order of discovery.
	References []ReferenceSummary
	// Modules is the sorted union of the modules of all used templates.
	Modules []string
}

func sortedSet(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(m))
}
