package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"spec-synth/internal/config"
	"spec-synth/internal/logger"
)

// Version information set via ldflags at build time
var Version = "dev"

const appDesc = "Reconstructs OpenAPI 3 documents from Spring Java sources"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "spec-synth",
	Short:         "Spec Synth - OpenAPI from Spring source",
	Long:          appDesc + ".",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("spec-synth version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default spec-synth.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (DEBUG level)")
}

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logger.Close()
	if err == nil {
		return 0
	}

	fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// loadConfig reads the configuration and starts the logger. console receives
// log lines; withLogFile adds a file sink in the output directory.
func loadConfig(console io.Writer, withLogFile bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logPath := ""
	if withLogFile {
		logPath = filepath.Join(cfg.Output.Dir, "spec_synth.log")
	}
	if err := logger.Init(console, logPath, verbose); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func printBanner(w io.Writer) {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                        SPEC SYNTH                         ║
║         OpenAPI Reconstruction from Spring Sources        ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Fprintln(w, banner)
}
