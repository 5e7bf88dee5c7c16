package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/toaster/internal/web"
)

type DismissCmd struct {
	flags *Flags

	server  string
	surface string
	remove  bool
}

// NewDismissCmd creates a new dismiss command.
func NewDismissCmd(flags *Flags) *DismissCmd {
	return &DismissCmd{flags: flags}
}

// Register adds the dismiss command to the application.
func (cmd *DismissCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "dismiss",
		Usage:     "Dismiss notifications on a running server",
		UsageText: "toaster dismiss [--remove] [--surface key] [id]",
		Description: `Dismisses the notification with the given id, or every notification on the
surface when no id is given. With --remove the notifications are deleted
immediately instead of playing their exit.`,
		Flags: []cli.Flag{
			serverFlag(&cmd.server),
			surfaceFlag(&cmd.surface),
			&cli.BoolFlag{
				Name:        "remove",
				Aliases:     []string{"r"},
				Usage:       "remove without the exit delay",
				Destination: &cmd.remove,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DismissCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	client := web.NewClient(cmd.server, nil)

	var err error
	if cmd.remove {
		err = client.Remove(ctx, cmd.surface, id)
	} else {
		err = client.Dismiss(ctx, cmd.surface, id)
	}
	if err != nil {
		return fmt.Errorf("dismiss: %w", err)
	}
	return nil
}
