package main

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/scopectl/pkg/demo"
	"github.com/go-go-golems/scopectl/pkg/process"
	"github.com/go-go-golems/scopectl/pkg/scope"
	"github.com/go-go-golems/scopectl/pkg/tui"
	"github.com/go-go-golems/scopectl/pkg/tui/models"
	"github.com/go-go-golems/scopectl/pkg/tui/styles"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	tuiLogFile string
	tuiAlt     bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive demo of nested scoped counters",
	Long: `Shows three counters: left, left->inner and right. Mounted counters
run a ticker process bound to their scope; unmounting cancels it. Local
keys act on the selected scope, r dispatches a global reset.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "write logs to this file while the UI owns the terminal")
	tuiCmd.Flags().BoolVar(&tuiAlt, "alt-screen", true, "use the alternate screen")
}

// buildSlots lays out the demo containers. Only top-level ones are mounted.
func buildSlots(root *scope.Context, tick time.Duration) []models.Slot {
	theme := styles.DefaultTheme()
	ticker := func(d time.Duration) func() process.Process {
		return func() process.Process { return demo.Ticker(d) }
	}
	left := scope.New(root, "left", models.CounterView(theme),
		scope.WithDefaultProcess(ticker(tick)),
		scope.WithState(demo.Select("left->")),
	)
	inner := scope.New(left.Scope(), "inner", models.CounterView(theme),
		scope.WithDefaultProcess(ticker(tick/2)),
		scope.WithState(demo.Select("left->inner->")),
	)
	right := scope.New(root, "right", models.CounterView(theme),
		scope.WithDefaultProcess(ticker(tick*2)),
		scope.WithState(demo.Select("right->")),
	)
	return []models.Slot{
		{Container: left, Parent: -1},
		{Container: inner, Parent: 0},
		{Container: right, Parent: -1},
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	uiLogger := zerolog.Nop()
	if tuiLogFile != "" {
		f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		defer func() { _ = f.Close() }()
		uiLogger = logger.Output(zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339})
	}

	a := newApp(cfg, uiLogger, demo.NewState())
	defer a.Close()

	slots := buildSlots(a.root, cfg.TickInterval)
	for _, s := range slots {
		if s.Parent < 0 {
			if err := s.Container.Mount(); err != nil {
				return err
			}
		}
	}
	m := models.NewRootModel(a.store.Dispatch, slots, a.pubsub != nil)
	defer m.UnmountAll()

	eg, ctx := errgroup.WithContext(commandContext(cmd))
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if tuiAlt {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(m, opts...)

	watchCtx, stopWatchers := context.WithCancel(ctx)
	eg.Go(func() error {
		w := &tui.StateWatcher{Store: a.store, Send: p.Send, Interval: cfg.TickInterval}
		return w.Run(watchCtx)
	})
	if a.pubsub != nil {
		eg.Go(func() error {
			w := &tui.ActionWatcher{Sub: a.pubsub, Topic: cfg.Tap.Topic, Prefix: a.router.LocalPrefix(), Send: p.Send, Logger: uiLogger}
			return w.Run(watchCtx)
		})
	}
	eg.Go(func() error {
		defer stopWatchers()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return eg.Wait()
}
