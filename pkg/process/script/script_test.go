package script

import (
	"sync"
	"testing"
	"time"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/control"
	"github.com/go-go-golems/scopectl/pkg/process"
	"github.com/go-go-golems/scopectl/pkg/registry"
	"github.com/go-go-golems/scopectl/pkg/router"
	"github.com/go-go-golems/scopectl/pkg/scope"
	"github.com/go-go-golems/scopectl/pkg/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu  sync.Mutex
	got []action.Action
}

func (r *recorder) dispatch(a action.Action) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, a)
	if action.Classify(a) == action.KindGetState {
		control.Answer(a, control.Response{Value: map[string]any{"count": 4}})
	}
	return a
}

func (r *recorder) actions() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]action.Action(nil), r.got...)
}

func start(t *testing.T, src string) (process.Handle, *registry.Registry, *recorder) {
	t.Helper()
	prog, err := Compile("test.js", src)
	require.NoError(t, err)

	reg := registry.New()
	rec := &recorder{}
	h, err := process.NewRuntime(process.Options{}).Start(prog, process.Env{
		Dispatch:  rec.dispatch,
		GetState:  func() any { return map[string]any{"local": true} },
		Subscribe: reg.Subscribe("s->"),
		Options:   map[string]any{process.OptionLogger: zerolog.Nop()},
	})
	require.NoError(t, err)
	return h, reg, rec
}

func wait(t *testing.T, h process.Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("script did not finish")
	}
}

func TestScript_TakeAndPut(t *testing.T) {
	h, reg, rec := start(t, `
function main() {
  const a = takeLocal("PING")
  put({ type: "PONG", payload: a.payload })
}
`)
	reg.Publish("s->", action.Action{Type: "PING", GlobalType: "@@LOCAL_REDUX/s->PING", Payload: "scoped"})
	reg.Publish("s->", action.Action{Type: "PING", Payload: "broadcast"})
	wait(t, h)

	require.NoError(t, h.Err())
	require.Equal(t, []action.Action{{Type: "PONG", Payload: "broadcast"}}, rec.actions())
}

func TestScript_TakeGlobalMatchesScopedActions(t *testing.T) {
	h, reg, rec := start(t, `
function main() {
  const a = takeGlobal("PING")
  put({ type: "PONG", payload: a.payload })
}
`)
	reg.Publish("s->", action.Action{Type: "PING", Payload: "broadcast"})
	reg.Publish("s->", action.Action{Type: "PING", GlobalType: "@@LOCAL_REDUX/s->PING", Payload: "scoped"})
	wait(t, h)

	require.NoError(t, h.Err())
	require.Equal(t, []action.Action{{Type: "PONG", Payload: "scoped"}}, rec.actions())
}

func TestScript_TakeArrayRule(t *testing.T) {
	h, reg, rec := start(t, `
function main() {
  const a = take(["A", "B"])
  put({ type: "GOT_" + a.type })
}
`)
	reg.Publish("s->", action.Action{Type: "C"})
	reg.Publish("s->", action.Action{Type: "B"})
	wait(t, h)

	require.NoError(t, h.Err())
	require.Equal(t, []action.Action{{Type: "GOT_B"}}, rec.actions())
}

func TestScript_GlobalEffects(t *testing.T) {
	h, _, rec := start(t, `
function main() {
  const st = selectGlobal()
  const local = select()
  putGlobal({ type: "SEEN", count: st.count, local: local.local })
}
`)
	wait(t, h)
	require.NoError(t, h.Err())

	got := rec.actions()
	require.Len(t, got, 2)
	require.Equal(t, action.KindGetState, action.Classify(got[0]))
	inner, ok := action.Unwrap(got[1])
	require.True(t, ok)
	require.Equal(t, "SEEN", inner.Type)
	require.Equal(t, map[string]any{"count": int64(4), "local": true}, inner.Payload)
}

func TestScript_CancelWhileBlocked(t *testing.T) {
	h, reg, _ := start(t, `
function main() {
  while (true) { take("*") }
}
`)
	h.Cancel()
	wait(t, h)
	require.ErrorIs(t, h.Err(), process.ErrCanceled)
	require.Empty(t, reg.Keys())
}

func TestScript_CancelBusyLoop(t *testing.T) {
	h, _, _ := start(t, `
function main() {
  let i = 0
  while (true) { i++ }
}
`)
	time.Sleep(20 * time.Millisecond)
	h.Cancel()
	wait(t, h)
	require.ErrorIs(t, h.Err(), process.ErrCanceled)
}

func TestScript_Errors(t *testing.T) {
	_, err := Compile("bad.js", "function main( {")
	require.Error(t, err)

	h, _, _ := start(t, `const x = 1`)
	wait(t, h)
	require.Error(t, h.Err())
	require.Contains(t, h.Err().Error(), "main")

	h, _, _ = start(t, `function main() { put({ payload: 1 }) }`)
	wait(t, h)
	require.Error(t, h.Err())

	h, _, _ = start(t, `function main() { throw new Error("kaput") }`)
	wait(t, h)
	require.Error(t, h.Err())
	require.Contains(t, h.Err().Error(), "kaput")
}

func TestScript_InScope(t *testing.T) {
	nop := zerolog.Nop()
	r := router.New(router.Options{Logger: &nop})
	defer r.Close()
	s := store.New(func(state any, a action.Action) any {
		seen, _ := state.([]string)
		return append(append([]string(nil), seen...), a.Type)
	}, []string(nil), r.Middleware())
	sc := scope.Root(s, scope.Options{Logger: &nop}).Child("s", nil)

	prog, err := Compile("ping.js", `
function main() {
  const a = take("PING")
  put({ type: "PONG", payload: a.payload })
  const b = takeGlobal("PING")
  putGlobal({ type: "DONE", payload: b.globalType })
}
`)
	require.NoError(t, err)
	h, err := sc.RunProcess(prog)
	require.NoError(t, err)

	sc.Dispatch(action.Action{Type: "PING", Payload: 1})
	require.Eventually(t, func() bool { return len(s.GetState().([]string)) == 2 }, time.Second, 5*time.Millisecond)
	sc.Dispatch(action.Action{Type: "PING", Payload: 2})
	wait(t, h)
	require.NoError(t, h.Err())

	require.Equal(t, []string{
		"@@LOCAL_REDUX/s->PING",
		"@@LOCAL_REDUX/s->PONG",
		"@@LOCAL_REDUX/s->PING",
		"DONE",
	}, s.GetState())
	require.Empty(t, r.Registry().Keys())
}
