// Package scope gives independently scoped state containers a way to run
// background processes whose lifecycle is coordinated by the routing
// middleware.
//
// A Context is threaded from parent to child scopes. Each level knows its
// full scope key, dispatches local actions addressed to that key, and can
// start processes bound to it through RunProcess. A Container ties one
// Context to a view and to the lifetime of a default process.
package scope

import (
	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/control"
	"github.com/go-go-golems/scopectl/pkg/process"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store is the global store a root Context is built on.
type Store interface {
	Dispatch(a action.Action) any
	GetState() any
}

type Options struct {
	LocalPrefix string
	Logger      *zerolog.Logger
}

type Context struct {
	path     action.Path
	prefix   string
	global   action.Dispatch
	getState func() any
	logger   zerolog.Logger
}

// Root returns the top-level context. Its local dispatch is the global one.
func Root(s Store, opts Options) *Context {
	c := &Context{
		prefix:   opts.LocalPrefix,
		global:   s.Dispatch,
		getState: s.GetState,
		logger:   log.Logger,
	}
	if c.prefix == "" {
		c.prefix = action.DefaultLocalPrefix
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	}
	return c
}

// Child returns the context of a nested scope. selectState picks the child's
// state out of the parent's; nil shares the parent's state.
func (c *Context) Child(segment string, selectState func(parent any) any) *Context {
	getState := c.getState
	if selectState != nil {
		parent := c.getState
		getState = func() any { return selectState(parent()) }
	}
	return &Context{
		path:     c.path.Child(segment),
		prefix:   c.prefix,
		global:   c.global,
		getState: getState,
		logger:   c.logger,
	}
}

func (c *Context) Path() action.Path { return c.path }

// FullKey is the wire form of the scope key, prefix included.
func (c *Context) FullKey() string {
	return c.prefix + c.path.String()
}

// Dispatch sends a as a local action of this scope.
func (c *Context) Dispatch(a action.Action) any {
	if c.path.IsRoot() {
		return c.global(a)
	}
	a.Type = c.path.Address(c.prefix, a.Type)
	return c.global(a)
}

// Global sends a unchanged to the global store.
func (c *Context) Global(a action.Action) any {
	return c.global(a)
}

func (c *Context) GetState() any {
	return c.getState()
}

// RunProcess starts p bound to this scope. The start request travels the
// global dispatch path so the routing middleware owns the subscription; the
// caller owns the returned handle and must cancel it.
func (c *Context) RunProcess(p process.Process) (process.Handle, error) {
	if p == nil {
		return nil, process.ErrNilProcess
	}
	req := process.StartRequest{
		FullKey:  c.FullKey(),
		Dispatch: c.Dispatch,
		GetState: c.GetState,
		Process:  p,
	}
	resp, err := control.Send(c.global, process.StartAction(req))
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("scope", c.FullKey()).
			Str("process", p.Name()).
			Msg("could not start process; install the routing middleware first in the chain")
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	h, ok := resp.Value.(process.Handle)
	if !ok || h == nil {
		return nil, errors.Wrapf(control.ErrNotIntercepted, "start %s: no process handle", p.Name())
	}
	return h, nil
}
