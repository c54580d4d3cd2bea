// Package cli implements the almanac command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/almanac/internal/decoder"
	"github.com/mesh-intelligence/almanac/internal/logging"
	"github.com/mesh-intelligence/almanac/internal/paths"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
	logFormat string
}

// app carries state shared by the subcommands of one root command.
type app struct {
	flags  rootFlags
	viper  *viper.Viper
	logger *zap.Logger
}

// NewRootCmd creates the top-level "almanac" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{viper: newViper(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "almanac",
		Short: "Ingest simulation save snapshots into a SQLite time series",
		Long: "Almanac decodes periodic save-state snapshots of a simulation and\n" +
			"stores per-country metrics, wars and battles in a SQLite database.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.logger.Sync() },
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: ./"+paths.DefaultDataDirName+")")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: console or json")
	_ = a.viper.BindPFlag(cfgKeyLogLevel, pf.Lookup("log-level"))
	_ = a.viper.BindPFlag(cfgKeyLogFormat, pf.Lookup("log-format"))
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return userError{err}
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newIngestCmd())

	return root
}

// setup reads config.yaml and builds the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	if err := readConfig(a.viper, configDir); err != nil {
		return err
	}

	logger, err := logging.New(a.viper.GetString(cfgKeyLogLevel), a.viper.GetString(cfgKeyLogFormat))
	if err != nil {
		return userError{err}
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}

func (a *app) settings() (settings, error) {
	s, err := resolveSettings(a.viper, a.flags.dataDir)
	if err != nil {
		return settings{}, userError{err}
	}
	return s, nil
}

// userError marks an error caused by invalid input rather than the system.
type userError struct{ err error }

func (e userError) Error() string { return e.err.Error() }
func (e userError) Unwrap() error { return e.err }

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	var ue userError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &ue),
		errors.Is(err, types.ErrInvalidPlaythrough),
		errors.Is(err, types.ErrInvalidDocument),
		errors.Is(err, types.ErrDecoderNotFound),
		errors.Is(err, decoder.ErrNotAFile),
		errors.Is(err, fs.ErrNotExist):
		return exitUserError
	default:
		return exitSysError
	}
}

// run executes root with args and reports errors to stderr.
func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}
