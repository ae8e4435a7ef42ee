// Package cmd implements the pintos-go command-line tool: a small driver
// around the kernel package that boots the scheduler, replays a scenario,
// and prints scheduling statistics, for a human to poke at the scheduler
// without writing Go test code.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	kernelerrors "pintos-go/errors"
	"pintos-go/logging"
)

// Global flags.
var (
	globalMLFQS     bool
	globalLog       string
	globalLogFormat string
	globalDebug     bool
)

// rootCmd is the base command for pintos-go.
var rootCmd = &cobra.Command{
	Use:   "pintos-go",
	Short: "A teaching-kernel thread scheduler",
	Long: `pintos-go simulates the thread scheduling core of a small teaching
operating-system kernel: thread creation, blocking and unblocking,
priority donation, and the BSD-style multi-level feedback queue, all
driven from the command line against the kernel package.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the root command. A *errors.KernelError of kind
// ErrPrecondition panicking out of the kernel package (its "assert and
// halt" response to a violated invariant) is recovered here, logged, and
// turned into a non-zero exit via the returned error — the CLI boundary,
// not the kernel, is where "halt the kernel" becomes "exit the process".
func Execute() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ke, ok := r.(*kernelerrors.KernelError); ok {
				logging.Default().Error("fatal kernel precondition violation", "error", ke)
				err = fmt.Errorf("pintos-go: %w", ke)
				return
			}
			panic(r)
		}
	}()
	return rootCmd.Execute()
}

// GetContext returns a context that cancels on SIGINT/SIGTERM, for
// commands that drive a wall-clock timer.Driver and need a clean way to
// stop it.
func GetContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

func init() {
	// The boot-time "-o mlfqs" option, as a persistent flag usable either
	// as --mlfqs or, for fidelity to a traditional kernel boot command
	// line, -o mlfqs or --option mlfqs (see the custom pflag.Value
	// registered below).
	rootCmd.PersistentFlags().BoolVar(&globalMLFQS, "mlfqs", false, "boot with the MLFQ scheduling policy instead of strict priority donation")
	rootCmd.PersistentFlags().VarP(&optionFlag{}, "option", "o", `boot option, e.g. "-o mlfqs"`)

	rootCmd.PersistentFlags().StringVar(&globalLog, "log", "", "set the log file path")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "set the format for log output (text or json)")
	rootCmd.PersistentFlags().BoolVar(&globalDebug, "debug", false, "enable debug logging")
}

// optionFlag implements pflag.Value for "-o mlfqs", a traditional boot
// command-line spelling. Any other value is rejected: it is the only
// boot option this kernel recognizes.
type optionFlag struct{}

func (o *optionFlag) String() string { return "" }
func (o *optionFlag) Type() string   { return "string" }
func (o *optionFlag) Set(v string) error {
	if v != "mlfqs" {
		return errUnknownOption(v)
	}
	globalMLFQS = true
	return nil
}

type errUnknownOption string

func (e errUnknownOption) Error() string { return "unknown boot option: " + string(e) }

func setupLogging() {
	logOutput := os.Stderr
	if globalLog != "" {
		if f, err := os.OpenFile(globalLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
			logOutput = f
		}
	}

	logLevel := slog.LevelInfo
	if globalDebug {
		logLevel = slog.LevelDebug
	}

	logger := logging.NewLogger(logging.Config{
		Level:  logLevel,
		Format: globalLogFormat,
		Output: logOutput,
	})
	logging.SetDefault(logger)
}
