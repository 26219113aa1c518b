package template

import (
	"github.com/stagecraft/tplmerge/ir"
)

// annotationTag marks substituted owners during resolution. Its arguments
// are the templateRef, the requested versionLabel and the scope level.
const annotationTag = "!template"

func markOwner(owner *ir.Node, ref *Reference, e *Entity) {
	args := []string{ref.TemplateRef, ref.VersionLabel, e.Scope.Level().String()}
	owner.WithTag(ir.TagCompose(annotationTag, args, owner.Tag))
}

// annotate turns reference marks into template maps on their owners and
// clears all tags.
func annotate(doc *ir.Node) *ir.Node {
	doc.Visit(func(n *ir.Node, isPost bool) (bool, error) {
		if isPost || n.Type != ir.ObjectType || !ir.TagHas(n.Tag, annotationTag) {
			return true, nil
		}
		_, args := ir.TagGet(n.Tag, annotationTag)
		for len(args) < 3 {
			args = append(args, "")
		}
		fields := []string{TemplateRefKey}
		vals := []*ir.Node{ir.FromString(args[0])}
		if args[1] != "" {
			fields = append(fields, VersionLabelKey)
			vals = append(vals, ir.FromString(args[1]))
		}
		fields = append(fields, "scope")
		vals = append(vals, ir.FromString(args[2]))
		n.Set(TemplateKey, ir.Object(fields, vals))
		return true, nil
	})
	return doc.StripTags()
}
