package store

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/stagecraft/tplmerge/debug"
	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/format"
	"github.com/stagecraft/tplmerge/ir"
	"github.com/stagecraft/tplmerge/parse"
	"github.com/stagecraft/tplmerge/template"

	"github.com/goccy/go-yaml"
)

// envelope is the metadata of a template file, everything but the spec.
type envelope struct {
	Name              string   `yaml:"name"`
	Identifier        string   `yaml:"identifier"`
	VersionLabel      string   `yaml:"versionLabel"`
	Type              string   `yaml:"type"`
	OrgIdentifier     string   `yaml:"orgIdentifier"`
	ProjectIdentifier string   `yaml:"projectIdentifier"`
	Stable            bool     `yaml:"stableTemplate"`
	Modules           []string `yaml:"modules"`
	RepoURL           string   `yaml:"repoUrl"`
}

// LoadDir reads every .yaml, .yml and .json file under root as a template
// of accountID.
func LoadDir(root, accountID string) (*Memory, error) {
	m := NewMemory()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml", ".json":
		default:
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		e, err := LoadFile(path, accountID)
		if err != nil {
			return err
		}
		e.FilePath = filepath.ToSlash(rel)
		if debug.Store() {
			debug.Logf("loaded %s: %s@%s in %s\n", rel, e.Identifier, e.VersionLabel, e.Scope)
		}
		return m.Put(e)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFile reads a single template file.
func LoadFile(path, accountID string) (*template.Entity, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", path, err)
	}
	y, err := parse.Parse(d, parse.ParseFormat(format.FromPath(path)))
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	e, err := FromNode(y, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

// FromNode builds an entity from a parsed template document.
func FromNode(y *ir.Node, accountID string) (*template.Entity, error) {
	yTpl := ir.Get(y, "template")
	if yTpl == nil || yTpl.Type != ir.ObjectType {
		return nil, fmt.Errorf("expected a template map at the top level")
	}
	meta := yTpl.Clone()
	meta.Parent = nil
	meta.Delete("spec")
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(meta, buf); err != nil {
		return nil, fmt.Errorf("error encoding template metadata: %w", err)
	}
	env := &envelope{}
	if err := yaml.Unmarshal(buf.Bytes(), env); err != nil {
		return nil, fmt.Errorf("error decoding template metadata: %w", err)
	}
	if env.ProjectIdentifier != "" && env.OrgIdentifier == "" {
		return nil, fmt.Errorf("template %s: projectIdentifier without orgIdentifier", env.Identifier)
	}
	var body *ir.Node
	if ySpec := ir.Get(yTpl, "spec"); ySpec != nil {
		body = ySpec.Clone()
		body.Parent = nil
	}
	return &template.Entity{
		Identifier:   env.Identifier,
		Name:         env.Name,
		VersionLabel: env.VersionLabel,
		Scope: template.ScopeRef{
			Account: accountID,
			Org:     env.OrgIdentifier,
			Project: env.ProjectIdentifier,
		},
		Type:    template.EntityType(env.Type),
		Body:    body,
		Stable:  env.Stable,
		Modules: env.Modules,
		RepoURL: env.RepoURL,
	}, nil
}
