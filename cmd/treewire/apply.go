package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/treewire/treewire/apply"
	"github.com/treewire/treewire/edit"
	"github.com/treewire/treewire/htmldom"
)

type ApplyConfig struct {
	*MainConfig
	Apply *cli.Command
}

func applyScript(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		cfg.Apply.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: apply requires 2 args, got %v", cli.ErrUsage, args)
	}
	t, err := getTree(cc, args[0])
	if err != nil {
		return err
	}
	var d []byte
	if args[1] != "-" {
		d, err = os.ReadFile(args[1])
	} else {
		d, err = io.ReadAll(cc.In)
	}
	if err != nil {
		return fmt.Errorf("error reading %q: %w", args[1], err)
	}
	var script edit.Script
	if err := json.Unmarshal(d, &script); err != nil {
		return fmt.Errorf("error decoding %q: %w", args[1], err)
	}
	if err := apply.Apply(t, script); err != nil {
		return fmt.Errorf("error applying %q: %w", args[1], err)
	}
	if err := htmldom.Render(cc.Out, t); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cc.Out)
	return err
}
