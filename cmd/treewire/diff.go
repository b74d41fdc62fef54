package main

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/scott-cotton/cli"

	"github.com/treewire/treewire"
	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
)

type DiffConfig struct {
	*MainConfig

	Filter string `cli:"name=filter desc='keep only edits matching an expr predicate over {op, tagID, parentID, attr}'"`

	Diff *cli.Command
}

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	oldTree, err := getTree(cc, args[0])
	if err != nil {
		return err
	}
	newTree, err := getTree(cc, args[1])
	if err != nil {
		return err
	}
	res := treewire.Diff(oldTree, newTree)
	for _, a := range res.Anomalies {
		fmt.Fprintf(os.Stderr, "warning: %s\n", a)
	}
	script := res.Script
	if cfg.Filter != "" {
		script, err = filterScript(script, cfg.Filter)
		if err != nil {
			return fmt.Errorf("bad -filter: %w", err)
		}
	}
	if len(script) == 0 {
		return nil
	}
	if err := cfg.writeScript(cc, script, oldTree); err != nil {
		return err
	}
	return cli.ExitCodeErr(1)
}

func filterScript(s edit.Script, src string) (edit.Script, error) {
	prg, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, err
	}
	res := make(edit.Script, 0, len(s))
	for _, e := range s {
		keep, err := runFilter(prg, e)
		if err != nil {
			return nil, err
		}
		if keep {
			res = append(res, e)
		}
	}
	return res, nil
}

func runFilter(prg *vm.Program, e edit.Edit) (bool, error) {
	out, err := expr.Run(prg, filterEnv(e))
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

func filterEnv(e edit.Edit) map[string]any {
	env := map[string]any{
		"op":       e.Op().String(),
		"tagID":    int64(0),
		"parentID": int64(0),
		"attr":     "",
	}
	pid := func(p *dom.NodeID) int64 {
		if p == nil {
			return 0
		}
		return int64(*p)
	}
	switch x := e.(type) {
	case *edit.ElementInsert:
		env["tagID"] = int64(x.TagID)
		env["parentID"] = pid(x.ParentID)
	case *edit.ElementDelete:
		env["tagID"] = int64(x.TagID)
	case *edit.ElementMove:
		env["tagID"] = int64(x.TagID)
		env["parentID"] = int64(x.ParentID)
	case *edit.TextInsert:
		env["parentID"] = int64(x.ParentID)
	case *edit.TextDelete:
		env["parentID"] = int64(x.ParentID)
	case *edit.TextReplace:
		env["parentID"] = int64(x.ParentID)
	case *edit.AttrAdd:
		env["tagID"] = int64(x.TagID)
		env["attr"] = x.Attr
	case *edit.AttrChange:
		env["tagID"] = int64(x.TagID)
		env["attr"] = x.Attr
	case *edit.AttrDelete:
		env["tagID"] = int64(x.TagID)
		env["attr"] = x.Attr
	}
	return env
}
