// Package router is the routing middleware that sits between dispatch and
// the reducer pipeline.
//
// For every action it
//
//   - answers the start-process and get-global-state control actions itself,
//   - unwraps dispatch-global envelopes,
//   - forwards everything else to the reducers, and then
//   - notifies the processes subscribed to the action's scope: local actions
//     (prefix + scope key + bare type) go to that scope only, rewritten to
//     their bare type, and all other actions go to every scope.
//
// A Router owns its subscription registry. Create one Router per store.
package router

import (
	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/control"
	"github.com/go-go-golems/scopectl/pkg/process"
	"github.com/go-go-golems/scopectl/pkg/registry"
	"github.com/go-go-golems/scopectl/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SeparatorPolicy decides what happens to a local-prefixed action type that
// has no scope separator.
type SeparatorPolicy string

const (
	// PolicyFallback broadcasts such actions to every scope.
	PolicyFallback SeparatorPolicy = "fallback"
	// PolicyStrict delivers them to nobody and logs a warning.
	PolicyStrict SeparatorPolicy = "strict"
)

func ParsePolicy(s string) (SeparatorPolicy, error) {
	switch SeparatorPolicy(s) {
	case "", PolicyFallback:
		return PolicyFallback, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", errors.Errorf("unknown separator policy %q", s)
}

type Options struct {
	// Runtime starts background processes. Defaults to the goroutine runtime.
	Runtime process.Runtime
	// LocalPrefix marks local action types. Empty means
	// action.DefaultLocalPrefix unless BarePrefix is set.
	LocalPrefix string
	// BarePrefix treats every type containing the separator as local.
	BarePrefix      bool
	SeparatorPolicy SeparatorPolicy
	// RuntimeOptions is passed unchanged to every started process.
	RuntimeOptions map[string]any
	Logger         *zerolog.Logger
}

type Router struct {
	reg         *registry.Registry
	runtime     process.Runtime
	prefix      string
	policy      SeparatorPolicy
	runtimeOpts map[string]any
	logger      zerolog.Logger
}

func New(opts Options) *Router {
	r := &Router{
		reg:         registry.New(),
		runtime:     opts.Runtime,
		prefix:      opts.LocalPrefix,
		policy:      opts.SeparatorPolicy,
		runtimeOpts: opts.RuntimeOptions,
		logger:      log.Logger,
	}
	if opts.Logger != nil {
		r.logger = *opts.Logger
	}
	if r.runtime == nil {
		r.runtime = process.NewRuntime(process.Options{Logger: &r.logger})
	}
	if r.prefix == "" && !opts.BarePrefix {
		r.prefix = action.DefaultLocalPrefix
	}
	if r.policy == "" {
		r.policy = PolicyFallback
	}
	return r
}

func (r *Router) Registry() *registry.Registry { return r.reg }

func (r *Router) LocalPrefix() string { return r.prefix }

// Close drops every scope subscription. Running processes keep their
// handles and must still be cancelled by their owners.
func (r *Router) Close() { r.reg.Close() }

func (r *Router) Middleware() store.Middleware {
	return func(api store.API) func(next action.Dispatch) action.Dispatch {
		return func(next action.Dispatch) action.Dispatch {
			return func(a action.Action) any {
				switch action.Classify(a) {
				case action.KindStartProcess:
					return r.startProcess(api, a)
				case action.KindGetState:
					st := api.GetState()
					control.Answer(a, control.Response{Value: st})
					return st
				case action.KindDispatchGlobal:
					inner, ok := action.Unwrap(a)
					if !ok {
						r.logger.Warn().Str("type", a.Type).Msg("dispatch-global envelope without an action, forwarding as is")
						break
					}
					a = inner
				}

				result := next(a)
				r.notify(a)
				return result
			}
		}
	}
}

func (r *Router) startProcess(api store.API, a action.Action) any {
	req, ok := process.RequestOf(a)
	if !ok || req.Process == nil {
		err := errors.New("start-process action carries no process")
		r.logger.Warn().Err(err).Msg("ignoring start-process action")
		control.Answer(a, control.Response{Err: err})
		return process.StartResult{}
	}

	env := process.Env{
		Dispatch:  req.Dispatch,
		GetState:  req.GetState,
		Subscribe: r.reg.Subscribe(action.ParsePath(req.FullKey, r.prefix).String()),
		Options:   r.runtimeOptions(),
	}
	if env.Dispatch == nil {
		env.Dispatch = api.Dispatch
	}
	if env.GetState == nil {
		env.GetState = api.GetState
	}

	h, err := r.runtime.Start(req.Process, env)
	if err != nil {
		err = errors.Wrapf(err, "start process %s", req.Process.Name())
		r.logger.Warn().Err(err).Str("scope", req.FullKey).Msg("could not start process")
		control.Answer(a, control.Response{Err: err})
		return process.StartResult{}
	}

	r.logger.Debug().Str("scope", req.FullKey).Str("process", h.Name()).Msg("process bound to scope")
	control.Answer(a, control.Response{Value: h})
	return process.StartResult{Handle: h}
}

func (r *Router) runtimeOptions() map[string]any {
	out := make(map[string]any, len(r.runtimeOpts))
	for k, v := range r.runtimeOpts {
		out[k] = v
	}
	return out
}

func (r *Router) notify(a action.Action) {
	addr, loc := action.ParseLocal(a.Type, r.prefix)
	switch loc {
	case action.Local:
		r.reg.Publish(addr.Path.String(), action.Localize(a, addr))
		return
	case action.MissingSeparator:
		if r.policy == PolicyStrict {
			r.logger.Warn().
				Err(action.ErrMalformedScopeKey).
				Str("type", a.Type).
				Msg("dropping notification for local action without scope key")
			return
		}
	}
	r.reg.Broadcast(a)
}
