package main

import (
	"context"
	"fmt"

	"github.com/stagecraft/tplmerge/encode"

	"github.com/scott-cotton/cli"
)

func inputs(cfg *InputsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Inputs.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: expected exactly one templateRef", cli.ErrUsage)
	}
	ctx := context.Background()
	eng, scope, err := cfg.engine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	in, err := eng.Inputs(ctx, scope, args[0], cfg.Version)
	if err != nil {
		return reportErr(args[0], err)
	}
	if in == nil {
		fmt.Fprintf(cc.Out, "# %s has no runtime inputs\n", args[0])
		return nil
	}
	return encode.Encode(in, cc.Out, cfg.encOpts(cc.Out)...)
}
