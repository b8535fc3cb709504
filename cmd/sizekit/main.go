package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"sizekit/config"
	"sizekit/misc"
	"sizekit/state"
	"sizekit/units"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// save complete processed configuration if external configuration was provided
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 && env.Log != nil {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	// engine metrics go to the report, so stop it while report is still open
	if er := env.StopEngine(ctx); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to stop sizing engine: %w", er))
	}

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Ignore urfave/cli default error handling, subcommands return regular
// errors.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// do nothing special, error is reported either by exitErrHandler or on
	// exit directly to stderr.
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {

	// allow graceful shutdown on interrupt.
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "design token sizing engine: CSS custom properties, fluid sizes and modular scales",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "css",
				Usage:        "Generates sheet with size custom properties for active configuration",
				OnUsageError: usageErrorHandler,
				Action:       generateSheet,
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "base", Aliases: []string{"b"}, Usage: "base font size in `PIXELS`, overrides configured one"},
					&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: "use named `PRESET` (see \"presets\" command)"},
				},
				ArgsUsage: "[DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
DESTINATION:
    path to a file or an existing directory, if absent - STDOUT
    when directory is given file name is derived from preset name

When storage is configured changed base size or preset is remembered and used
by the following runs.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "fluid",
				Usage:        "Prints fluid size expression scaling between two viewport widths",
				OnUsageError: usageErrorHandler,
				Action:       printFluid,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "min", Required: true, Usage: "size at minimal viewport, `SIZE` like 16px or 1rem"},
					&cli.StringFlag{Name: "max", Required: true, Usage: "size at maximal viewport, `SIZE` like 24px or 1.5rem"},
					&cli.FloatFlag{Name: "vmin", Usage: "minimal viewport width in `PIXELS` (default from configuration)"},
					&cli.FloatFlag{Name: "vmax", Usage: "maximal viewport width in `PIXELS` (default from configuration)"},
					&cli.BoolFlag{Name: "no-clamp", Usage: "output bare calc() expression without clamp() bounds"},
				},
			},
			{
				Name:         "scale",
				Usage:        "Prints modular scale",
				OnUsageError: usageErrorHandler,
				Action:       printScale,
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "base", Usage: "scale base `VALUE` (default is configured base size)"},
					&cli.StringFlag{Name: "ratio", Usage: "scale `RATIO`, number or one of: " + strings.Join(config.ScaleRatioNames(), ", ") + " (default from configuration)"},
					&cli.IntFlag{Name: "steps", Usage: "`NUMBER` of steps in each direction (default from configuration)"},
					&cli.StringFlag{Name: "unit", Value: units.UnitPx.String(), Usage: "`UNIT` of scale values (" + strings.Join(units.UnitNames(), ", ") + ")"},
				},
			},
			{
				Name:         "convert",
				Usage:        "Converts size to another unit",
				OnUsageError: usageErrorHandler,
				Action:       convertSize,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Required: true, Usage: "target `UNIT` (" + strings.Join(units.UnitNames(), ", ") + ")"},
					&cli.FloatFlag{Name: "root", Usage: "root font size in `PIXELS` (default from configuration)"},
				},
				ArgsUsage: "VALUE",
				CustomHelpTemplate: fmt.Sprintf(`%s
VALUE:
    size like "24px", "1.5rem" or "12", unit defaults to px

Relative units (em, %%, vw, vh, vmin, vmax) cannot be converted without
layout information and are printed unchanged.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "presets",
				Usage:        "Lists available presets",
				OnUsageError: usageErrorHandler,
				Action:       listPresets,
			},
			{
				Name:         "diff",
				Usage:        "Reports generated custom properties redefined by a stylesheet",
				OnUsageError: usageErrorHandler,
				Action:       diffSheet,
				ArgsUsage:    "FILE",
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values wich is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
