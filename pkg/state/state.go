// Package state persists store snapshots between scopectl runs.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/go-go-golems/scopectl/pkg/demo"
	"github.com/pkg/errors"
)

const (
	DirName  = ".scopectl"
	Filename = "state.json"
)

type Snapshot struct {
	SavedAt time.Time  `json:"saved_at"`
	State   demo.State `json:"state"`
}

func Path(root string) string {
	return filepath.Join(root, DirName, Filename)
}

func Exists(root string) bool {
	_, err := os.Stat(Path(root))
	return err == nil
}

func Load(root string) (*Snapshot, error) {
	b, err := os.ReadFile(Path(root))
	if err != nil {
		return nil, errors.Wrap(err, "read state")
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "parse state json")
	}
	if s.State.Counters == nil {
		s.State.Counters = map[string]demo.Counter{}
	}
	return &s, nil
}

// LoadOrNew returns the saved state under root, or a fresh one when nothing
// was saved yet.
func LoadOrNew(root string) (demo.State, error) {
	if !Exists(root) {
		return demo.NewState(), nil
	}
	s, err := Load(root)
	if err != nil {
		return demo.State{}, err
	}
	return s.State, nil
}

func Save(root string, st demo.State) error {
	dir := filepath.Dir(Path(root))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "mkdir state dir")
	}
	b, err := json.MarshalIndent(Snapshot{SavedAt: time.Now(), State: st}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal state")
	}
	if err := os.WriteFile(Path(root), b, 0o644); err != nil {
		return errors.Wrap(err, "write state")
	}
	return nil
}

func Remove(root string) error {
	if err := os.Remove(Path(root)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "remove state")
	}
	return nil
}
