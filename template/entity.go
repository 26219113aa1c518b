package template

import (
	"context"
	"slices"

	"github.com/stagecraft/tplmerge/ir"
)

// EntityType is the kind of document a template produces.
type EntityType string

const (
	StepType      EntityType = "Step"
	StageType     EntityType = "Stage"
	PipelineType  EntityType = "Pipeline"
	StepGroupType EntityType = "StepGroup"
)

// Entity is a versioned template as held by a [Store]. The engine never
// mutates an Entity; bodies are cloned before use.
type Entity struct {
	Identifier   string
	Name         string
	VersionLabel string
	Scope        ScopeRef
	Type         EntityType
	Body         *ir.Node
	Stable       bool
	Deleted      bool
	Modules      []string

	// RepoURL and FilePath locate templates imported from git.
	RepoURL  string
	FilePath string
}

// Key identifies e within one expansion chain.
func (e *Entity) Key() string {
	return e.Scope.String() + "/" + e.Identifier + "@" + e.VersionLabel
}

// Matches reports whether e is an acceptable answer to a lookup of id and
// version along chain.
func (e *Entity) Matches(chain []ScopeRef, id, version string) bool {
	if e.Identifier != id {
		return false
	}
	if version == "" {
		if !e.Stable {
			return false
		}
	} else if e.VersionLabel != version {
		return false
	}
	return slices.Contains(chain, e.Scope)
}

// TemplateWithInputs pairs a template with the skeleton of its runtime
// inputs.
type TemplateWithInputs struct {
	Entity *Entity
	Inputs *ir.Node
}

func WithInputs(e *Entity) TemplateWithInputs {
	return TemplateWithInputs{Entity: e, Inputs: ExtractSkeleton(e.Body)}
}

// GetTemplateWithInputs looks up templateRef from scope the same way a
// reference is resolved and returns it with its runtime inputs.
func GetTemplateWithInputs(ctx context.Context, store Store, scope ScopeRef, templateRef, versionLabel string) (*TemplateWithInputs, error) {
	ref := &Reference{TemplateRef: templateRef, VersionLabel: versionLabel}
	e, err := lookup(ctx, store, scope, ref, "")
	if err != nil {
		return nil, err
	}
	res := WithInputs(e)
	return &res, nil
}
