package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/web"
	"github.com/colonyops/toaster/pkg/iojson"
)

const defaultServerURL = "http://localhost:5000"

type SendCmd struct {
	flags *Flags

	server   string
	surface  string
	kind     string
	id       string
	duration time.Duration
	forever  bool
	position string
	icon     string
	input    iojson.FileReader[web.ShowRequest]

	// prompt fills in a request interactively; replaced in tests.
	prompt func(*web.ShowRequest) error
}

// NewSendCmd creates a new send command.
func NewSendCmd(flags *Flags) *SendCmd {
	return &SendCmd{flags: flags, prompt: promptRequest}
}

func serverFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "server",
		Usage:       "base URL of a running toaster server",
		Sources:     cli.EnvVars("TOASTER_SERVER"),
		Value:       defaultServerURL,
		Destination: dest,
	}
}

func surfaceFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "surface",
		Aliases:     []string{"s"},
		Usage:       "surface key",
		Value:       toast.DefaultKey,
		Destination: dest,
	}
}

// Register adds the send command to the application.
func (cmd *SendCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "send",
		Usage:     "Show a notification on a running server",
		UsageText: "toaster send [options] [message...]",
		Description: `Posts a notification to a server started with 'toaster serve' and prints its id.

The request is read from --file or stdin as JSON when no message is given.
On a terminal, missing kind and message are prompted for.`,
		Flags: []cli.Flag{
			serverFlag(&cmd.server),
			surfaceFlag(&cmd.surface),
			&cli.StringFlag{
				Name:        "kind",
				Aliases:     []string{"k"},
				Usage:       "blank, success, error, loading or custom",
				Destination: &cmd.kind,
			},
			&cli.StringFlag{
				Name:        "id",
				Usage:       "notification id; an existing notification with this id is replaced",
				Destination: &cmd.id,
			},
			&cli.DurationFlag{
				Name:        "duration",
				Aliases:     []string{"d"},
				Usage:       "auto-dismiss after this long (defaults to the kind's duration)",
				Destination: &cmd.duration,
			},
			&cli.BoolFlag{
				Name:        "forever",
				Usage:       "never auto-dismiss",
				Destination: &cmd.forever,
			},
			&cli.StringFlag{
				Name:        "position",
				Usage:       "placement hint, e.g. top-right",
				Destination: &cmd.position,
			},
			&cli.StringFlag{
				Name:        "icon",
				Usage:       "icon override",
				Destination: &cmd.icon,
			},
			cmd.input.Flag(),
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *SendCmd) run(ctx context.Context, c *cli.Command) error {
	req, err := cmd.request(c.Args().Slice())
	if err != nil {
		return err
	}

	id, err := web.NewClient(cmd.server, nil).Show(ctx, cmd.surface, req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	_, err = fmt.Fprintln(c.Root().Writer, id)
	return err
}

// request builds the request from the input file, the arguments and flags,
// prompting for whatever is still missing when attached to a terminal.
func (cmd *SendCmd) request(args []string) (web.ShowRequest, error) {
	var req web.ShowRequest

	if len(args) == 0 && cmd.input.Available() {
		var err error
		if req, err = cmd.input.Read(); err != nil {
			return req, err
		}
	}

	if len(args) > 0 {
		req.Message = strings.Join(args, " ")
	}
	if cmd.kind != "" {
		req.Kind = toast.Kind(cmd.kind)
	}
	if cmd.id != "" {
		req.ID = cmd.id
	}
	if cmd.position != "" {
		req.Position = toast.Position(cmd.position)
	}
	if cmd.icon != "" {
		req.Icon = cmd.icon
	}
	switch {
	case cmd.forever:
		forever := int64(-1)
		req.DurationMS = &forever
	case cmd.duration > 0:
		ms := cmd.duration.Milliseconds()
		req.DurationMS = &ms
	}

	if req.Message == "" {
		if cmd.prompt == nil || !term.IsTerminal(int(os.Stdin.Fd())) {
			return req, errors.New("no message provided; pass it as arguments, use -f, or pipe JSON")
		}
		if err := cmd.prompt(&req); err != nil {
			return req, fmt.Errorf("prompt: %w", err)
		}
	}

	if err := req.Validate(); err != nil {
		return req, fmt.Errorf("invalid notification: %w", err)
	}
	return req, nil
}

func promptRequest(req *web.ShowRequest) error {
	kind := string(req.Kind)
	if kind == "" {
		kind = string(toast.KindBlank)
	}

	options := make([]huh.Option[string], 0, len(toast.Kinds))
	for _, k := range toast.Kinds {
		options = append(options, huh.NewOption(string(k), string(k)))
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Kind").
				Options(options...).
				Value(&kind),
			huh.NewInput().
				Title("Message").
				Validate(validateMessage).
				Value(&req.Message),
		),
	).Run()
	if err != nil {
		return err
	}

	req.Kind = toast.Kind(kind)
	return nil
}

func validateMessage(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("message is required")
	}
	return nil
}
