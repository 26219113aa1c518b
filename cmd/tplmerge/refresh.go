package main

import (
	"context"
	"fmt"

	"github.com/stagecraft/tplmerge/encode"
	"github.com/stagecraft/tplmerge/libdiff"

	"github.com/scott-cotton/cli"
)

func refresh(cfg *RefreshConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Refresh.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Diff && cfg.Patch {
		return fmt.Errorf("%w: must specify at most one of -diff -patch", cli.ErrUsage)
	}
	ctx := context.Background()
	eng, scope, err := cfg.engine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	for _, file := range inputFiles(args) {
		doc, err := getObjFile(cc, file, cfg.parseOpts()...)
		if err != nil {
			return err
		}
		res, err := eng.Refresh(ctx, doc, scope, cfg.Cross)
		if err != nil {
			return reportErr(file, err)
		}
		switch {
		case cfg.Diff:
			var colors *libdiff.Colors
			if cfg.Color || colorTerminal(cc.Out) {
				colors = libdiff.NewColors()
			}
			d, err := libdiff.Lines(doc, res, colors)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprint(cc.Out, d); err != nil {
				return err
			}
		case cfg.Patch:
			p, err := libdiff.MergePatch(doc, res)
			if err != nil {
				return err
			}
			if err := encode.Encode(p, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
				return err
			}
		default:
			if err := encode.Encode(res, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
				return err
			}
		}
	}
	return nil
}
