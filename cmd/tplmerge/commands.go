package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		&cli.Opt{
			Name:        "I",
			Aliases:     []string{"ifmt"},
			Description: "input format: json/j, yaml/y",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.InFormat), "(format)"),
		}, &cli.Opt{
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: json/j, yaml/y",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "tplmerge").
		WithSynopsis("tplmerge [opts] command [opts]").
		WithDescription("tplmerge resolves and refreshes pipeline template references.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return tplmergeMain(cfg, cc, args)
		}).
		WithSubs(
			ResolveCommand(cfg),
			RefreshCommand(cfg),
			InputsCommand(cfg),
			ServeCommand(cfg))
}

func ResolveCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ResolveConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Resolve, "resolve").
		WithAliases("r", "res").
		WithSynopsis("resolve [-a] [-validators] [-refs] [files]").
		WithDescription("substitute template references with their merged template bodies").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return resolve(cfg, cc, args)
		})
}

func RefreshCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &RefreshConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Refresh, "refresh").
		WithAliases("f").
		WithSynopsis("refresh [-cross] [-diff | -patch] [files]").
		WithDescription("bring templateInputs in line with the current templates").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return refresh(cfg, cc, args)
		})
}

func InputsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &InputsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Inputs, "inputs").
		WithAliases("i", "in").
		WithSynopsis("inputs [-version label] <templateRef>").
		WithDescription("print the runtime inputs of a template").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return inputs(cfg, cc, args)
		})
}

func ServeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ServeConfig{MainConfig: mainCfg, Addr: "localhost:7070"}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Serve, "serve").
		WithSynopsis("serve [-addr <addr>]").
		WithDescription("serve template operations over JSON-RPC").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return serve(cfg, cc, args)
		})
}
