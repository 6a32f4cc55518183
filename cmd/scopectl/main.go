package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-go-golems/scopectl/pkg/config"
	"github.com/go-go-golems/scopectl/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configPath string
	logLevel   string

	cfg    = config.Default()
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "scopectl",
	Short: "Scoped state containers with background processes",
	Long: `scopectl drives a store whose scoped containers run background
processes. Local actions are routed to the scope that owns them, global
actions reach every scope, and each process lives exactly as long as its
container is mounted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		logger, err = logging.Configure("scopectl", cfg.LogLevel, cmd.ErrOrStderr())
		return err
	},
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&configPath, "config", "", "path to a scopectl.yaml config file")
	fs.StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error, off)")
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(tuiCmd, scriptCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
