package state

import (
	"os"
	"testing"

	"github.com/go-go-golems/scopectl/pkg/demo"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	root := t.TempDir()
	require.False(t, Exists(root))

	st, err := LoadOrNew(root)
	require.NoError(t, err)
	require.Equal(t, demo.NewState(), st)

	st.Counters["left->"] = demo.Counter{Count: 3, Ticks: 2, Paused: true}
	st.Resets = 1
	require.NoError(t, Save(root, st))
	require.True(t, Exists(root))

	snap, err := Load(root)
	require.NoError(t, err)
	require.False(t, snap.SavedAt.IsZero())
	require.Equal(t, st, snap.State)

	require.NoError(t, Remove(root))
	require.NoError(t, Remove(root))
	require.False(t, Exists(root))
}

func TestLoad_Corrupt(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(root+"/"+DirName, 0o755))
	require.NoError(t, os.WriteFile(Path(root), []byte("{"), 0o644))
	_, err := LoadOrNew(root)
	require.Error(t, err)
}
