package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/toaster/internal/app"
	"github.com/colonyops/toaster/internal/commands"
	"github.com/colonyops/toaster/internal/core/config"
	"github.com/colonyops/toaster/internal/data/db"
	"github.com/colonyops/toaster/internal/core/logging"
	"github.com/colonyops/toaster/pkg/logutils"
	"github.com/colonyops/toaster/pkg/profiler"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// ldflags are not set by `go install module@version`; fall back to the
	// module version and VCS metadata Go records in the binary.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		toasterApp  = &app.App{}
		sweepCancel context.CancelFunc
		pprofSrv    *profiler.Server
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "toaster",
		Usage:     "Transient notifications for terminals and browsers",
		UsageText: "toaster [global options] command [command options]",
		Description: `Toaster keeps stacks of short-lived notifications ("toasts") per surface,
auto-dismisses them on a timer that pauses while hovered, and renders them in
the terminal or streams them to browser surfaces over WebSocket.

Run 'toaster' with no arguments to open the terminal surface.
Run 'toaster serve' to expose the HTTP API.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TOASTER_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/toaster.log, - for stderr)",
				Sources:     cli.EnvVars("TOASTER_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TOASTER_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TOASTER_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "profiler-addr",
				Usage:       "serve pprof on this address (e.g. localhost:6060)",
				Sources:     cli.EnvVars("TOASTER_PROFILER_ADDR"),
				Destination: &flags.ProfilerAddr,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// The terminal surface owns the screen, so logs go to a file by default.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "toaster.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			if flags.ProfilerAddr != "" {
				pprofSrv = profiler.New(flags.ProfilerAddr, logging.Component("profiler"))
				if err := pprofSrv.Start(ctx); err != nil {
					return ctx, fmt.Errorf("start profiler: %w", err)
				}
			}

			var database *db.DB
			if cfg.History.Enabled {
				database, err = db.Open(cfg.DataDir, db.OpenOptions{
					MaxOpenConns: cfg.Database.MaxOpenConns,
					MaxIdleConns: cfg.Database.MaxIdleConns,
					BusyTimeout:  cfg.Database.BusyTimeout,
				})
				if err != nil {
					return ctx, fmt.Errorf("open database: %w", err)
				}
			}

			// Populate the pre-allocated App (commands already hold a pointer to it)
			*toasterApp = *app.New(cfg, database, app.Options{})

			sweepCtx, cancel := context.WithCancel(context.Background())
			sweepCancel = cancel
			toasterApp.StartSweep(sweepCtx)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sweepCancel != nil {
				sweepCancel()
			}

			if pprofSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := pprofSrv.Shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("profiler shutdown")
				}
				cancel()
			}

			var closeErr error
			if toasterApp.Registry != nil {
				if closeErr = toasterApp.Close(); closeErr != nil {
					log.Error().Err(closeErr).Msg("failed to close database")
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return closeErr
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, toasterApp)

	root = tuiCmd.Register(root)
	root = commands.NewServeCmd(flags, toasterApp).Register(root)
	root = commands.NewSendCmd(flags).Register(root)
	root = commands.NewDismissCmd(flags).Register(root)
	root = commands.NewHistoryCmd(flags, toasterApp).Register(root)
	root = commands.NewConfigValidateCmd(flags).Register(root)

	// Register TUI flags on root command
	root.Flags = append(root.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'toaster --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
