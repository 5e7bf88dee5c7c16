package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/toaster/internal/app"
	"github.com/colonyops/toaster/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *app.App

	surface string
}

// NewTuiCmd creates a new tui command.
func NewTuiCmd(flags *Flags, a *app.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: a}
}

// Flags returns the tui flags, shared with the root command.
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "surface",
			Aliases:     []string{"s"},
			Usage:       "surface key to display",
			Value:       "default",
			Local:       true,
			Destination: &cmd.surface,
		},
	}
}

// Register adds the tui command to the application.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tui",
		Usage: "Open the interactive notification surface",
		Description: `Shows a terminal notification surface and lets you trigger every kind of
notification from the keyboard. Space simulates hovering the stack, which
pauses every countdown until pressed again.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.app.Config
	return tui.Run(ctx, cmd.app.Toaster, tui.Config{
		Key:      cmd.surface,
		Position: cfg.PositionFor(cmd.surface, cfg.TUI.Position),
		Width:    cfg.TUI.Width,
	})
}
