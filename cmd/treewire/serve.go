package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/scott-cotton/cli"
	"go.lsp.dev/jsonrpc2"

	"github.com/treewire/treewire"
	"github.com/treewire/treewire/debug"
	"github.com/treewire/treewire/dom"
	"github.com/treewire/treewire/edit"
	"github.com/treewire/treewire/htmldom"
)

type ServeConfig struct {
	*MainConfig
	Serve *cli.Command
}

// serve answers treewire/diff requests over JSON-RPC on stdio. The
// server keeps the last snapshot per document URI, so a caller may
// send only the new HTML after the first request.
func serve(cfg *ServeConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Serve.Parse(cc, args); err != nil {
		return err
	}
	stream := jsonrpc2.NewStream(&stdioReadWriteCloser{
		read:  cc.In,
		write: cc.Out,
	})
	srv := &server{
		last: map[string]*dom.Tree{},
	}
	conn := jsonrpc2.NewConn(stream)
	conn.Go(context.Background(), srv.handle)
	<-conn.Done()
	return nil
}

type server struct {
	mu   sync.Mutex
	last map[string]*dom.Tree
}

type diffParams struct {
	URI string `json:"uri"`
	// Old may be empty when the server already holds a snapshot
	// for URI; an explicit Old overrides it.
	Old string `json:"old,omitempty"`
	New string `json:"new"`
}

type diffResult struct {
	Script    edit.Script        `json:"script"`
	Anomalies []treewire.Anomaly `json:"anomalies,omitempty"`
}

func (s *server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if debug.Serve() {
		debug.Logf("serve: %s\n", req.Method())
	}
	switch req.Method() {
	case "treewire/diff":
		return s.diff(ctx, reply, req)
	case "treewire/reset":
		return s.reset(ctx, reply, req)
	}
	return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
}

func (s *server) diff(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params diffParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("%w: %s", jsonrpc2.ErrParse, err))
	}
	newTree, err := htmldom.ParseString(params.New)
	if err != nil {
		return reply(ctx, nil, fmt.Errorf("%w: new: %s", jsonrpc2.ErrInvalidParams, err))
	}
	var oldTree *dom.Tree
	if params.Old != "" {
		oldTree, err = htmldom.ParseString(params.Old)
		if err != nil {
			return reply(ctx, nil, fmt.Errorf("%w: old: %s", jsonrpc2.ErrInvalidParams, err))
		}
	} else {
		s.mu.Lock()
		oldTree = s.last[params.URI]
		s.mu.Unlock()
	}
	res := treewire.Diff(oldTree, newTree)
	s.mu.Lock()
	s.last[params.URI] = newTree
	s.mu.Unlock()
	return reply(ctx, &diffResult{
		Script:    res.Script,
		Anomalies: res.Anomalies,
	}, nil)
}

func (s *server) reset(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("%w: %s", jsonrpc2.ErrParse, err))
	}
	s.mu.Lock()
	delete(s.last, params.URI)
	s.mu.Unlock()
	return reply(ctx, true, nil)
}

type stdioReadWriteCloser struct {
	read  io.Reader
	write io.Writer
}

func (s *stdioReadWriteCloser) Read(p []byte) (n int, err error) {
	return s.read.Read(p)
}

func (s *stdioReadWriteCloser) Write(p []byte) (n int, err error) {
	return s.write.Write(p)
}

func (s *stdioReadWriteCloser) Close() error {
	return nil
}
