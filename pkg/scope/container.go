package scope

import (
	"sync"

	"github.com/go-go-golems/scopectl/pkg/process"
	"github.com/pkg/errors"
)

// Props is what a container hands to its view.
type Props struct {
	Scope      *Context
	RunProcess func(p process.Process) (process.Handle, error)
}

type View func(props Props) string

type Option func(*Container)

// WithDefaultProcess makes the container start factory() on Mount and cancel
// it on Unmount.
func WithDefaultProcess(factory func() process.Process) Option {
	return func(c *Container) { c.createProcess = factory }
}

// WithState selects the container's state from its parent's.
func WithState(selectState func(parent any) any) Option {
	return func(c *Container) { c.selectState = selectState }
}

type Container struct {
	parent        *Context
	key           string
	view          View
	createProcess func() process.Process
	selectState   func(parent any) any

	scope *Context

	mu      sync.Mutex
	mounted bool
	handle  process.Handle
}

func New(parent *Context, key string, view View, opts ...Option) *Container {
	c := &Container{parent: parent, key: key, view: view}
	for _, opt := range opts {
		opt(c)
	}
	c.scope = parent.Child(key, c.selectState)
	return c
}

// Enhance returns a container constructor that always runs the process built
// by factory for the lifetime of each container.
func Enhance(factory func() process.Process) func(parent *Context, key string, view View, opts ...Option) *Container {
	return func(parent *Context, key string, view View, opts ...Option) *Container {
		return New(parent, key, view, append([]Option{WithDefaultProcess(factory)}, opts...)...)
	}
}

// Scope is the context children of this container are built from.
func (c *Container) Scope() *Context { return c.scope }

func (c *Container) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

func (c *Container) Handle() process.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// Mount starts the default process, if any. Mounting twice is a no-op; a
// failed mount leaves the container unmounted so it can be retried.
func (c *Container) Mount() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted {
		return nil
	}
	if c.createProcess != nil {
		h, err := c.scope.RunProcess(c.createProcess())
		if err != nil {
			return errors.Wrapf(err, "mount %s", c.scope.FullKey())
		}
		c.handle = h
	}
	c.mounted = true
	return nil
}

// Unmount cancels the default process so it cannot outlive the scope.
func (c *Container) Unmount() {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.mounted = false
	c.mu.Unlock()
	if h != nil {
		h.Cancel()
	}
}

func (c *Container) Render() string {
	if c.view == nil {
		return ""
	}
	return c.view(Props{Scope: c.scope, RunProcess: c.scope.RunProcess})
}
