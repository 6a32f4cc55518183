// Package process runs background processes bound to a scope.
//
// A process is an ordinary Go function that receives an Effects value. It
// dispatches with Put, waits for actions with Take, reads scope state with
// Select and reaches the global store with PutGlobal and SelectGlobal. Each
// process runs on its own goroutine; blocking effects are its only suspension
// points and all of them observe cancellation.
package process

import (
	"context"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/registry"
	"github.com/pkg/errors"
)

var (
	ErrCanceled   = errors.New("process canceled")
	ErrNilProcess = errors.New("nil process")
)

type Process interface {
	Name() string
	Run(ctx context.Context, fx *Effects) error
}

type funcProcess struct {
	name string
	fn   func(ctx context.Context, fx *Effects) error
}

func (f funcProcess) Name() string { return f.name }

func (f funcProcess) Run(ctx context.Context, fx *Effects) error { return f.fn(ctx, fx) }

func Func(name string, fn func(ctx context.Context, fx *Effects) error) Process {
	return funcProcess{name: name, fn: fn}
}

// Handle is the cancellable token of a running process.
type Handle interface {
	Name() string
	// Cancel stops the process and drops its subscription before returning.
	// It is safe to call more than once and after the process finished.
	Cancel()
	Done() <-chan struct{}
	// Err is nil while running and after a clean finish, ErrCanceled after
	// Cancel, or the error the process returned.
	Err() error
}

// Env is what the routing middleware hands to a runtime when it starts a
// process: the scope's own dispatch and state plus a subscription to the
// scope's notifications.
type Env struct {
	Dispatch  action.Dispatch
	GetState  func() any
	Subscribe func(registry.Listener) func()
	Options   map[string]any
}

type Runtime interface {
	Start(p Process, env Env) (Handle, error)
}

// Monitor observes process lifecycles.
type Monitor interface {
	ProcessStarted(name string)
	ProcessFinished(name string, err error)
}

// Option keys recognised by the goroutine runtime in Env.Options.
const (
	OptionLogger  = "logger"
	OptionMonitor = "monitor"
)

// StartRequest is the metadata of a start-process control action.
type StartRequest struct {
	FullKey  string
	Dispatch action.Dispatch
	GetState func() any
	Process  Process
}

// StartResult is what the routing middleware returns for a start-process
// control action.
type StartResult struct {
	Handle Handle
}

func StartAction(req StartRequest) action.Action {
	return action.Action{
		Type: action.TypeRunProcess,
		Meta: map[string]any{
			action.MetaRunProcess: req,
		},
	}
}

func RequestOf(a action.Action) (StartRequest, bool) {
	v, ok := a.MetaValue(action.MetaRunProcess)
	if !ok {
		return StartRequest{}, false
	}
	switch req := v.(type) {
	case StartRequest:
		return req, true
	case *StartRequest:
		if req != nil {
			return *req, true
		}
	}
	return StartRequest{}, false
}

// Channel is a destination for actions other than the scope dispatch.
type Channel interface {
	Put(a action.Action)
}

// ChannelFunc adapts a function to Channel.
type ChannelFunc func(a action.Action)

func (f ChannelFunc) Put(a action.Action) { f(a) }
