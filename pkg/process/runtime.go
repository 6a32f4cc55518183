package process

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Logger  *zerolog.Logger
	Monitor Monitor
}

// GoRuntime runs each process on its own goroutine.
type GoRuntime struct {
	opts Options
}

var _ Runtime = (*GoRuntime)(nil)

func NewRuntime(opts Options) *GoRuntime {
	return &GoRuntime{opts: opts}
}

func (rt *GoRuntime) Start(p Process, env Env) (Handle, error) {
	if p == nil {
		return nil, ErrNilProcess
	}
	if env.Dispatch == nil || env.GetState == nil || env.Subscribe == nil {
		return nil, errors.Errorf("process %s: incomplete environment", p.Name())
	}

	logger := rt.logger(env)
	monitor := rt.opts.Monitor
	if m, ok := env.Options[OptionMonitor].(Monitor); ok {
		monitor = m
	}

	ctx, cancel := context.WithCancel(context.Background())
	box := newMailbox()
	h := &handle{
		name:   p.Name(),
		cancel: cancel,
		box:    box,
		done:   make(chan struct{}),
	}
	// subscribe before returning so no notification after Start is missed
	h.unsubscribe = env.Subscribe(box.push)

	if monitor != nil {
		monitor.ProcessStarted(h.name)
	}
	logger.Debug().Str("process", h.name).Msg("process started")

	go func() {
		g, gctx := errgroup.WithContext(ctx)
		fx := &Effects{
			owner:  h,
			ctx:    gctx,
			env:    env,
			box:    box,
			group:  g,
			logger: logger.With().Str("process", h.name).Logger(),
			name:   h.name,
		}
		g.Go(guard(h.name, fx.logger, func() error { return p.Run(gctx, fx) }))
		err := g.Wait()

		h.finish(ctx, err)
		if monitor != nil {
			monitor.ProcessFinished(h.name, h.Err())
		}
		if err := h.Err(); err != nil && !errors.Is(err, ErrCanceled) {
			logger.Warn().Err(err).Str("process", h.name).Msg("process failed")
		} else {
			logger.Debug().Str("process", h.name).Msg("process finished")
		}
	}()

	return h, nil
}

func (rt *GoRuntime) logger(env Env) zerolog.Logger {
	switch l := env.Options[OptionLogger].(type) {
	case zerolog.Logger:
		return l
	case *zerolog.Logger:
		if l != nil {
			return *l
		}
	}
	if rt.opts.Logger != nil {
		return *rt.opts.Logger
	}
	return log.Logger
}

// guard turns a panic in process code into an error.
func guard(name string, logger zerolog.Logger, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("process", name).
					Interface("panic", r).
					Str("stack", string(debug.Stack())).
					Msg("process panicked")
				err = errors.Errorf("panic in process %s: %v", name, r)
			}
		}()
		return fn()
	}
}

type handle struct {
	name        string
	cancel      context.CancelFunc
	unsubscribe func()
	box         *mailbox
	done        chan struct{}

	cancelOnce sync.Once
	mu         sync.Mutex
	canceled   bool
	finished   bool
	released   bool
	nextFork   uint64
	forks      map[uint64]func()
	err        error
}

func (h *handle) Name() string { return h.name }

func (h *handle) Done() <-chan struct{} { return h.done }

func (h *handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *handle) Cancel() {
	h.cancelOnce.Do(func() {
		h.mu.Lock()
		if !h.finished {
			h.canceled = true
		}
		h.mu.Unlock()
		h.release()
	})
}

// track registers the release of a forked task's subscription and returns
// the func that runs it once and forgets it. Forks made after the handle was
// released are released at once.
func (h *handle) track(release func()) func() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		release()
		return func() {}
	}
	if h.forks == nil {
		h.forks = map[uint64]func(){}
	}
	h.nextFork++
	id := h.nextFork
	h.forks[id] = release
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		_, ok := h.forks[id]
		delete(h.forks, id)
		h.mu.Unlock()
		if ok {
			release()
		}
	}
}

// release drops every subscription of the process, forks included.
func (h *handle) release() {
	h.mu.Lock()
	h.released = true
	forks := h.forks
	h.forks = nil
	h.mu.Unlock()

	h.cancel()
	h.unsubscribe()
	h.box.close()
	for _, fn := range forks {
		fn()
	}
}

func (h *handle) finish(ctx context.Context, err error) {
	h.mu.Lock()
	h.finished = true
	switch {
	case h.canceled:
		h.err = ErrCanceled
	case err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil:
		h.err = ErrCanceled
	default:
		h.err = err
	}
	h.mu.Unlock()
	h.release()
	close(h.done)
}
