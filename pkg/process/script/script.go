// Package script runs background processes written in JavaScript.
//
// A script defines a main function and talks to its scope through host
// functions:
//
//	function main() {
//	  while (true) {
//	    const a = take("PING")
//	    put({ type: "PONG", payload: a.payload })
//	  }
//	}
//
// Host functions: put(action), putGlobal(action), take(rule),
// takeLocal(rule), takeGlobal(rule), select(), selectGlobal(), sleep(ms),
// log(...values). A rule is "*", a type string or an array of types.
// Actions addressed to the scope arrive tagged with their globalType, so
// takeGlobal matches them while takeLocal only matches untagged global
// broadcasts; take matches either. take and sleep block the script's goroutine and throw once the process is
// cancelled; busy loops are interrupted.
package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/pattern"
	"github.com/go-go-golems/scopectl/pkg/process"
	"github.com/pkg/errors"
)

type Program struct {
	name string
	prog *goja.Program
}

var _ process.Process = (*Program)(nil)

func Compile(name, src string) (*Program, error) {
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, errors.Wrapf(err, "compile script %s", name)
	}
	return &Program{name: name, prog: prog}, nil
}

func (p *Program) Name() string { return p.name }

func (p *Program) Run(ctx context.Context, fx *process.Effects) error {
	vm := goja.New()
	stop := context.AfterFunc(ctx, func() { vm.Interrupt(process.ErrCanceled) })
	defer stop()

	h := &host{vm: vm, fx: fx, name: p.name}
	if err := h.install(); err != nil {
		return err
	}

	if _, err := vm.RunProgram(p.prog); err != nil {
		return p.result(ctx, err)
	}
	main, ok := goja.AssertFunction(vm.Get("main"))
	if !ok {
		return errors.Errorf("script %s does not define main()", p.name)
	}
	_, err := main(goja.Undefined())
	return p.result(ctx, err)
}

func (p *Program) result(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return context.Canceled
	}
	return errors.Wrapf(err, "script %s", p.name)
}

type host struct {
	vm   *goja.Runtime
	fx   *process.Effects
	name string
}

func (h *host) install() error {
	fns := map[string]func(goja.FunctionCall) goja.Value{
		"put":          h.put,
		"putGlobal":    h.putGlobal,
		"take":         h.take(pattern.Any),
		"takeLocal":    h.take(pattern.Local),
		"takeGlobal":   h.take(pattern.Global),
		"select":       h.selectLocal,
		"selectGlobal": h.selectGlobal,
		"sleep":        h.sleep,
		"log":          h.log,
	}
	for name, fn := range fns {
		if err := h.vm.Set(name, fn); err != nil {
			return errors.Wrapf(err, "install %s", name)
		}
	}
	return nil
}

func (h *host) actionArg(fn string, v goja.Value) action.Action {
	m, ok := v.Export().(map[string]any)
	if ok {
		if a, ok := action.FromMap(m); ok {
			return a
		}
	}
	panic(h.vm.NewTypeError(fmt.Sprintf("%s: expected an action object with a type", fn)))
}

func (h *host) throw(err error) {
	panic(h.vm.NewGoError(err))
}

func (h *host) toJS(v any) goja.Value {
	switch x := v.(type) {
	case action.Action:
		return h.vm.ToValue(x.ToMap())
	case nil:
		return goja.Undefined()
	}
	return h.vm.ToValue(v)
}

func (h *host) put(call goja.FunctionCall) goja.Value {
	return h.toJS(h.fx.Put(h.actionArg("put", call.Argument(0))))
}

func (h *host) putGlobal(call goja.FunctionCall) goja.Value {
	return h.toJS(h.fx.PutGlobal(h.actionArg("putGlobal", call.Argument(0))))
}

func (h *host) take(build func(pattern.Rule) pattern.Predicate) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		raw := any(pattern.WildcardRule)
		if arg := call.Argument(0); !goja.IsUndefined(arg) {
			raw = arg.Export()
		}
		rule, err := pattern.Parse(raw)
		if err != nil {
			panic(h.vm.NewTypeError(err.Error()))
		}
		a, err := h.fx.Take(build(rule))
		if err != nil {
			h.throw(err)
		}
		return h.toJS(a)
	}
}

func (h *host) selectLocal(goja.FunctionCall) goja.Value {
	return h.toJS(h.fx.Select())
}

func (h *host) selectGlobal(goja.FunctionCall) goja.Value {
	st, err := h.fx.SelectGlobal(nil)
	if err != nil {
		h.throw(err)
	}
	return h.toJS(st)
}

func (h *host) sleep(call goja.FunctionCall) goja.Value {
	ms := call.Argument(0).ToInteger()
	if err := h.fx.Sleep(time.Duration(ms) * time.Millisecond); err != nil {
		h.throw(err)
	}
	return goja.Undefined()
}

func (h *host) log(call goja.FunctionCall) goja.Value {
	args := make([]any, 0, len(call.Arguments))
	for _, a := range call.Arguments {
		args = append(args, a.Export())
	}
	logger := h.fx.Logger()
	logger.Info().Str("script", h.name).Msg(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
	return goja.Undefined()
}
