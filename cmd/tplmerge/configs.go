package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/stagecraft/tplmerge"
	"github.com/stagecraft/tplmerge/config"
	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/format"
	"github.com/stagecraft/tplmerge/parse"
	"github.com/stagecraft/tplmerge/template"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	ConfigFile string `cli:"name=config desc='configuration file (toml), default ./tplmerge.toml'"`
	Dir        string `cli:"name=dir desc='template directory'"`
	Account    string `cli:"name=account desc='account identifier'"`
	Org        string `cli:"name=org desc='organization identifier'"`
	Project    string `cli:"name=project desc='project identifier'"`
	Remote     string `cli:"name=remote desc='address of the remote reconciler'"`
	Color      bool   `cli:"name=color desc='encode with color'"`

	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`

	InFormat, OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

// load reads the configuration file and applies command line overrides.
func (cfg *MainConfig) load() (*config.Config, error) {
	c, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if cfg.Dir != "" {
		c.Store.Dir = cfg.Dir
	}
	if cfg.Account != "" {
		c.Scope.Account = cfg.Account
	}
	if cfg.Org != "" {
		c.Scope.Org = cfg.Org
	}
	if cfg.Project != "" {
		c.Scope.Project = cfg.Project
	}
	if cfg.Remote != "" {
		c.Reconcile.Addr = cfg.Remote
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return c, nil
}

func (cfg *MainConfig) engine(ctx context.Context) (*tplmerge.Engine, template.ScopeRef, error) {
	c, err := cfg.load()
	if err != nil {
		return nil, template.ScopeRef{}, err
	}
	e, err := tplmerge.FromConfig(ctx, c)
	if err != nil {
		return nil, template.ScopeRef{}, err
	}
	return e, c.Scope, nil
}

func (cfg *MainConfig) parseOpts() []parse.ParseOption {
	switch {
	case cfg.InFormat != nil:
		return []parse.ParseOption{parse.ParseFormat(*cfg.InFormat)}
	case cfg.J && !cfg.Y:
		return []parse.ParseOption{parse.ParseJSON()}
	}
	return []parse.ParseOption{parse.ParseYAML()}
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	var fmat format.Format
	switch {
	case cfg.Y:
		fmat = format.YAMLFormat
	case cfg.J:
		fmat = format.JSONFormat
	}
	if cfg.OutFormat != nil {
		fmat = *cfg.OutFormat
	}
	res := []encode.EncodeOption{
		encode.EncodeFormat(fmat),
	}
	if cfg.Color {
		res = append(res, encode.EncodeColors(encode.NewColors()))
		return res
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return res
	}
	if colorTerminal(w) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

func colorTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type ResolveConfig struct {
	*MainConfig
	Annotated  bool `cli:"name=a aliases=annotated desc='keep template references as annotations'"`
	Validators bool `cli:"name=validators desc='append template validators to <+input> values'"`
	Refs       bool `cli:"name=refs desc='print reference summaries as json instead of documents'"`

	Resolve *cli.Command
}

type RefreshConfig struct {
	*MainConfig
	Cross bool `cli:"name=cross desc='send the refreshed document to the remote reconciler'"`
	Diff  bool `cli:"name=diff desc='print a line diff instead of the document'"`
	Patch bool `cli:"name=patch desc='print a json merge patch instead of the document'"`

	Refresh *cli.Command
}

type InputsConfig struct {
	*MainConfig
	Version string `cli:"name=version aliases=v desc='template versionLabel, default stable'"`

	Inputs *cli.Command
}

type ServeConfig struct {
	*MainConfig
	Addr string `cli:"name=addr desc='TCP listen address or unix socket path' default=localhost:7070"`

	Serve *cli.Command
}
