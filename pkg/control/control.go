// Package control carries the request/response side channel between callers
// that dispatch control actions and the routing middleware that answers them.
//
// A caller attaches a Reply to the control action it dispatches. The routing
// middleware resolves the Reply synchronously while handling the action, so
// once dispatch returns the caller can tell "answered" apart from "nobody
// intercepted this" without relying on middleware return values.
package control

import (
	"context"
	"sync"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/pkg/errors"
)

var (
	ErrNotIntercepted = errors.New("control action was not answered; is the routing middleware installed and first in the chain?")
	ErrNoGlobalState  = errors.New("routing middleware returned no global state")
)

type Response struct {
	Value any
	Err   error
}

type Reply struct {
	mu       sync.Mutex
	done     chan struct{}
	resp     Response
	resolved bool
}

func NewReply() *Reply {
	return &Reply{done: make(chan struct{})}
}

// Resolve answers the request. Only the first call has an effect.
func (r *Reply) Resolve(resp Response) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return false
	}
	r.resp = resp
	r.resolved = true
	close(r.done)
	return true
}

// Poll returns the response if one has been delivered.
func (r *Reply) Poll() (Response, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resp, r.resolved
}

// Await blocks until the reply is resolved or ctx ends.
func (r *Reply) Await(ctx context.Context) (Response, error) {
	select {
	case <-r.done:
		resp, _ := r.Poll()
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Attach stores r in the metadata of a.
func Attach(a action.Action, r *Reply) action.Action {
	return a.WithMeta(action.MetaReply, r)
}

// ReplyOf returns the Reply attached to a, if any.
func ReplyOf(a action.Action) (*Reply, bool) {
	v, ok := a.MetaValue(action.MetaReply)
	if !ok {
		return nil, false
	}
	r, ok := v.(*Reply)
	return r, ok && r != nil
}

// Answer resolves the reply attached to a, if there is one.
func Answer(a action.Action, resp Response) {
	if r, ok := ReplyOf(a); ok {
		r.Resolve(resp)
	}
}

// Send dispatches a with a fresh reply attached and returns the answer. The
// routing middleware answers synchronously, so an unresolved reply after
// dispatch returns means the request was never intercepted.
func Send(dispatch action.Dispatch, a action.Action) (Response, error) {
	r := NewReply()
	dispatch(Attach(a, r))
	if resp, ok := r.Poll(); ok {
		return resp, nil
	}
	return Response{}, ErrNotIntercepted
}

// GetGlobalState performs the get-global-state round trip.
func GetGlobalState(dispatch action.Dispatch) (any, error) {
	resp, err := Send(dispatch, action.GetGlobalState())
	if err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Value == nil {
		return nil, ErrNoGlobalState
	}
	return resp.Value, nil
}
