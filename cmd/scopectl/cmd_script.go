package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/go-go-golems/scopectl/pkg/demo"
	"github.com/go-go-golems/scopectl/pkg/process"
	"github.com/go-go-golems/scopectl/pkg/process/script"
	"github.com/go-go-golems/scopectl/pkg/state"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const scriptScope = "script"

var (
	scriptActions       []string
	scriptGlobalActions []string
	scriptWait          time.Duration
	scriptStateDir      string
)

var scriptCmd = &cobra.Command{
	Use:   "script FILE",
	Short: "Run a JavaScript process inside the script-> scope",
	Long: `Compiles FILE and runs its main() as the process of scope "script->".
Each --action is dispatched as a local action of that scope and each
--global-action goes to the global store. The command waits for the
process to finish, or for --wait when set, then prints the final state.

Example:
  scopectl script counter.js --action '{"type":"INCREMENT","payload":2}' --wait 1s`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	scriptCmd.Flags().StringArrayVar(&scriptActions, "action", nil, "local action as JSON, repeatable")
	scriptCmd.Flags().StringArrayVar(&scriptGlobalActions, "global-action", nil, "global action as JSON, repeatable")
	scriptCmd.Flags().DurationVar(&scriptWait, "wait", 0, "cancel the process after this long (0 waits for it to finish)")
	scriptCmd.Flags().StringVar(&scriptStateDir, "state-dir", "", "resume from and save the store state under DIR/.scopectl")
}

type scriptReport struct {
	Process string     `yaml:"process"`
	Status  string     `yaml:"status"`
	Error   string     `yaml:"error,omitempty"`
	State   demo.State `yaml:"state"`
}

func runScript(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "read script")
	}
	prog, err := script.Compile(filepath.Base(args[0]), string(src))
	if err != nil {
		return err
	}
	local, err := decodeActions(scriptActions)
	if err != nil {
		return err
	}
	global, err := decodeActions(scriptGlobalActions)
	if err != nil {
		return err
	}

	initial := demo.NewState()
	if scriptStateDir != "" {
		if initial, err = state.LoadOrNew(scriptStateDir); err != nil {
			return err
		}
	}

	a := newApp(cfg, logger, initial)
	defer a.Close()
	sc := a.root.Child(scriptScope, demo.Select(scriptScope+action.Separator))

	h, err := sc.RunProcess(prog)
	if err != nil {
		return err
	}
	defer h.Cancel()

	for _, act := range local {
		sc.Dispatch(act)
	}
	for _, act := range global {
		a.store.Dispatch(act)
	}

	var timeout <-chan time.Time
	if scriptWait > 0 {
		t := time.NewTimer(scriptWait)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case <-h.Done():
	case <-timeout:
	case <-commandContext(cmd).Done():
	}
	h.Cancel()
	<-h.Done()

	report := scriptReport{Process: h.Name(), Status: "done"}
	if err := h.Err(); err != nil {
		report.Status = "canceled"
		if !errors.Is(err, process.ErrCanceled) {
			report.Status = "failed"
			report.Error = err.Error()
		}
	}
	report.State, _ = a.store.GetState().(demo.State)
	if scriptStateDir != "" {
		if err := state.Save(scriptStateDir, report.State); err != nil {
			return err
		}
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "encode report")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "encode report")
	}
	if report.Status == "failed" {
		return errors.Errorf("process %s failed", h.Name())
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func decodeActions(raw []string) ([]action.Action, error) {
	out := make([]action.Action, 0, len(raw))
	for _, s := range raw {
		a, err := action.Decode([]byte(s))
		if err != nil {
			return nil, errors.Wrapf(err, "decode action %q", s)
		}
		out = append(out, a)
	}
	return out, nil
}
