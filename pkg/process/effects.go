package process

import (
	"context"
	"time"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/control"
	"github.com/go-go-golems/scopectl/pkg/pattern"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Effects is the capability set of a running process.
type Effects struct {
	owner  *handle
	ctx    context.Context
	env    Env
	box    *mailbox
	group  *errgroup.Group
	logger zerolog.Logger
	name   string
}

func (fx *Effects) Context() context.Context { return fx.ctx }

func (fx *Effects) Logger() zerolog.Logger { return fx.logger }

func (fx *Effects) Name() string { return fx.name }

// Put dispatches a through the scope's own dispatch.
func (fx *Effects) Put(a action.Action) any {
	return fx.env.Dispatch(a)
}

func (fx *Effects) PutTo(ch Channel, a action.Action) {
	ch.Put(a)
}

// PutGlobal dispatches a into the global scope, bypassing local addressing.
func (fx *Effects) PutGlobal(a action.Action) any {
	return fx.env.Dispatch(action.WrapGlobal(a))
}

// PutGlobalTo sends the global envelope of a to ch instead of the scope
// dispatch.
func (fx *Effects) PutGlobalTo(ch Channel, a action.Action) {
	ch.Put(action.WrapGlobal(a))
}

// Take waits for the next notification accepted by match. A nil match takes
// anything.
func (fx *Effects) Take(match pattern.Predicate) (action.Action, error) {
	a, err := fx.box.next(fx.ctx, match)
	if err != nil {
		return action.Action{}, err
	}
	return a, nil
}

// TakeEvery forks fn for every notification accepted by match until the
// process is cancelled.
func (fx *Effects) TakeEvery(match pattern.Predicate, fn func(fx *Effects, a action.Action) error) error {
	for {
		a, err := fx.Take(match)
		if err != nil {
			return err
		}
		fx.Fork(func(child *Effects) error { return fn(child, a) })
	}
}

// Select returns the scope's state.
func (fx *Effects) Select() any {
	return fx.env.GetState()
}

// SelectGlobal reads the global store state through the routing middleware
// and applies selector to it.
func (fx *Effects) SelectGlobal(selector func(state any, args ...any) any, args ...any) (any, error) {
	st, err := control.GetGlobalState(fx.env.Dispatch)
	if err != nil {
		fx.logger.Warn().Err(err).Msg("could not read global state")
		return nil, err
	}
	if selector == nil {
		return st, nil
	}
	return selector(st, args...), nil
}

// Fork runs fn as a child task with its own mailbox. The process finishes
// only after its children do, and the first child error cancels the rest.
func (fx *Effects) Fork(fn func(fx *Effects) error) {
	box := newMailbox()
	unsubscribe := fx.env.Subscribe(box.push)
	release := func() {
		unsubscribe()
		box.close()
	}
	if fx.owner != nil {
		release = fx.owner.track(release)
	}
	child := &Effects{
		owner:  fx.owner,
		ctx:    fx.ctx,
		env:    fx.env,
		box:    box,
		group:  fx.group,
		logger: fx.logger,
		name:   fx.name,
	}
	fx.group.Go(guard(fx.name, fx.logger, func() error {
		defer release()
		return fn(child)
	}))
}

// Sleep pauses the process. It returns early with the context error when
// the process is cancelled.
func (fx *Effects) Sleep(d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-fx.ctx.Done():
		return fx.ctx.Err()
	case <-t.C:
		return nil
	}
}

// Mailbox exposes the process's own inbox as a Channel.
func (fx *Effects) Mailbox() Channel { return fx.box }
