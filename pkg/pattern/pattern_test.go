package pattern

import (
	"regexp"
	"testing"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/stretchr/testify/require"
)

func TestRules(t *testing.T) {
	inc := action.Action{Type: "INC"}

	require.True(t, Any(Wildcard())(inc))
	require.True(t, Any(MustParse("*"))(inc))
	require.True(t, Any(Exact("INC"))(inc))
	require.False(t, Any(Exact("inc"))(inc))
	require.True(t, Any(OneOf("DEC", "INC"))(inc))
	require.False(t, Any(OneOf("DEC"))(inc))
	require.True(t, Any(Regexp(regexp.MustCompile(`^IN`)))(inc))
	require.False(t, Any(Regexp(regexp.MustCompile(`ASYNC$`)))(inc))
}

func TestLocality(t *testing.T) {
	local := action.Action{Type: "TICK"}
	tagged := action.Action{Type: "TICK", GlobalType: "@@LOCAL_REDUX/a->TICK"}

	require.True(t, Local(Exact("TICK"))(local))
	require.False(t, Local(Exact("TICK"))(tagged))
	require.True(t, Global(Exact("TICK"))(tagged))
	require.False(t, Global(Exact("TICK"))(local))

	// type mismatch rejects regardless of locality
	require.False(t, Global(Exact("TOCK"))(tagged))
}

func TestLocalGlobal_MutuallyExclusive(t *testing.T) {
	rules := []Rule{Wildcard(), Exact("A"), OneOf("A", "B"), Regexp(regexp.MustCompile("."))}
	actions := []action.Action{
		{Type: "A"},
		{Type: "A", GlobalType: "x"},
		{Type: "B", GlobalType: action.GlobalTypeDispatchGlobal},
		{Type: "C"},
	}
	for _, r := range rules {
		for _, a := range actions {
			require.False(t, Local(r)(a) && Global(r)(a), "rule %#v action %#v", r, a)
		}
	}
}

func TestParse(t *testing.T) {
	r, err := Parse([]any{"A", "B"})
	require.NoError(t, err)
	require.True(t, r.MatchType("B"))

	_, err = Parse([]any{"A", 1})
	require.Error(t, err)

	_, err = Parse(42)
	require.Error(t, err)

	var nilRe *regexp.Regexp
	_, err = Parse(nilRe)
	require.Error(t, err)
}
