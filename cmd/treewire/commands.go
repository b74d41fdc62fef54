package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "treewire").
		WithSynopsis("treewire [opts] command [opts]").
		WithDescription("treewire computes and applies edit scripts between document tree snapshots.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return treewireMain(cfg, cc, args)
		}).
		WithSubs(
			DiffCommand(cfg),
			ApplyCommand(cfg),
			ServeCommand(cfg))
}

func treewireMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if count(cfg.J, cfg.Y, cfg.P) > 1 {
		return fmt.Errorf("%w: must specify at most one of -j[son] -y[aml] -p[retty]", cli.ErrUsage)
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("diff").
		WithAliases("d", "di").
		WithOpts(opts...).
		WithSynopsis("diff <old.html> <new.html>").
		WithDescription("diff two document snapshots, printing the edit script").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("apply").
		WithAliases("a", "ap").
		WithSynopsis("apply <doc.html> <script.json>").
		WithDescription("replay an edit script onto a document, printing the result").
		WithRun(func(cc *cli.Context, args []string) error {
			return applyScript(cfg, cc, args)
		})
	cfg.Apply = cmd
	return cmd
}

func ServeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ServeConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("serve").
		WithSynopsis("serve").
		WithDescription("serve diffs over JSON-RPC on stdio").
		WithRun(func(cc *cli.Context, args []string) error {
			return serve(cfg, cc, args)
		})
	cfg.Serve = cmd
	return cmd
}

func count(vs ...bool) int {
	ttl := 0
	for _, v := range vs {
		if v {
			ttl++
		}
	}
	return ttl
}
