package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
	"github.com/treewire/treewire/htmldom"
	"github.com/treewire/treewire/render"
)

type MainConfig struct {
	J bool `cli:"name=j aliases=json desc='output scripts in json (default)'"`
	Y bool `cli:"name=y aliases=yaml desc='output scripts in yaml'"`
	P bool `cli:"name=p aliases=pretty desc='output scripts for humans'"`

	Color bool `cli:"name=color desc='force colored pretty output'"`

	Main *cli.Command
}

// writeScript encodes the script per the selected output format. The
// pretty view diffs text content against old when available.
func (cfg *MainConfig) writeScript(cc *cli.Context, s edit.Script, old *dom.Tree) error {
	switch {
	case cfg.Y:
		d, err := yaml.MarshalWithOptions(s, yaml.UseJSONMarshaler())
		if err != nil {
			return err
		}
		_, err = cc.Out.Write(d)
		return err
	case cfg.P:
		colors := render.NoColors()
		if cfg.Color || isTTY(cc.Out) {
			colors = render.NewColors()
		}
		return render.Script(cc.Out, s, old, colors)
	default:
		d, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		d = append(d, '\n')
		_, err = cc.Out.Write(d)
		return err
	}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// getTree parses an HTML snapshot from a file, or stdin for "-".
func getTree(cc *cli.Context, path string) (*dom.Tree, error) {
	var r io.Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		r = cc.In
	}
	t, err := htmldom.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return t, nil
}
