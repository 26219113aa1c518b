package main

import (
	"context"

	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/template"

	"github.com/goccy/go-json"
	"github.com/scott-cotton/cli"
)

func resolve(cfg *ResolveConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Resolve.Parse(cc, args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	eng, scope, err := cfg.engine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	opts := template.Options{
		ReturnAnnotated:          cfg.Annotated,
		AppendInputSetValidators: cfg.Validators,
	}
	for _, file := range inputFiles(args) {
		doc, err := getObjFile(cc, file, cfg.parseOpts()...)
		if err != nil {
			return err
		}
		res, err := eng.Resolve(ctx, doc, scope, opts)
		if err != nil {
			return reportErr(file, err)
		}
		if cfg.Refs {
			d, err := json.MarshalIndent(res.References, "", "  ")
			if err != nil {
				return err
			}
			d = append(d, '\n')
			if _, err := cc.Out.Write(d); err != nil {
				return err
			}
			continue
		}
		out := res.Merged
		if cfg.Annotated {
			out = res.Annotated
		}
		if err := encode.Encode(out, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
			return err
		}
	}
	return nil
}
