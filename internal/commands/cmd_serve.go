package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/toaster/internal/app"
	"github.com/colonyops/toaster/internal/core/logging"
	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/web"
)

type ServeCmd struct {
	flags *Flags
	app   *app.App

	addr string
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, a *app.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: a}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the notification API and WebSocket streams",
		UsageText: "toaster serve [--addr :5000]",
		Description: `Starts the HTTP server. Browser surfaces subscribe to
/api/surfaces/{key}/ws and receive a snapshot after every change; other
processes show and dismiss notifications through the REST API.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to server.addr from config)",
				Sources:     cli.EnvVars("TOASTER_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.app.Config

	addr := cmd.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.New(cmd.app.Toaster, cmd.app.HistorySource(), web.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Gutter:         cfg.Server.Gutter,
		PositionFor: func(key string) toast.Position {
			return cfg.PositionFor(key, "")
		},
		Gatherer: cmd.app.Gatherer,
	}, logging.Component("web"))

	return srv.ListenAndServe(ctx, addr)
}
