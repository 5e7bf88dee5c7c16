package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/toaster/internal/app"
	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/pkg/iojson"
)

var errHistoryDisabled = errors.New("history is disabled; set history.enabled in the config")

type HistoryCmd struct {
	flags *Flags
	app   *app.App

	jsonOutput bool
	limit      int
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags, a *app.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: a}
}

// Register adds the history commands to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "List recently shown notifications",
		UsageText: "toaster history [--json] [--limit n]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output one JSON object per line",
				Destination: &cmd.jsonOutput,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum number of entries, 0 for all",
				Value:       50,
				Destination: &cmd.limit,
			},
		},
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:          "show",
				Usage:         "Show one history entry",
				UsageText:     "toaster history show <id>",
				ShellComplete: HistoryIDCompleter(cmd.app),
				Action:        cmd.runShow,
			},
			{
				Name:   "clear",
				Usage:  "Delete every history entry",
				Action: cmd.runClear,
			},
		},
	})
	return app
}

// historyEntry is the JSON output format for toaster history --json.
type historyEntry struct {
	ID        int64     `json:"id"`
	ToastID   string    `json:"toast_id"`
	Surface   string    `json:"surface"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func newHistoryEntry(r toast.Record) historyEntry {
	return historyEntry{
		ID:        r.ID,
		ToastID:   r.ToastID,
		Surface:   r.Surface,
		Kind:      string(r.Kind),
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
	}
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	if cmd.app.History == nil {
		return errHistoryDisabled
	}

	records, err := cmd.app.History.List(ctx, cmd.limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range records {
			if err := iojson.WriteLine(out, newHistoryEntry(r)); err != nil {
				return fmt.Errorf("encode history entry: %w", err)
			}
		}
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "No notifications recorded\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTIME\tSURFACE\tKIND\tMESSAGE")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Surface, r.Kind, r.Message)
	}
	return w.Flush()
}

func (cmd *HistoryCmd) runShow(ctx context.Context, c *cli.Command) error {
	if cmd.app.History == nil {
		return errHistoryDisabled
	}

	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid history id %q", c.Args().First())
	}

	r, err := cmd.app.History.Get(ctx, id)
	if err != nil {
		if errors.Is(err, toast.ErrNotFound) {
			return fmt.Errorf("history entry %d not found", id)
		}
		return fmt.Errorf("get history: %w", err)
	}

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, newHistoryEntry(r))
}

func (cmd *HistoryCmd) runClear(ctx context.Context, c *cli.Command) error {
	if cmd.app.History == nil {
		return errHistoryDisabled
	}

	n, err := cmd.app.History.Count(ctx)
	if err != nil {
		return fmt.Errorf("count history: %w", err)
	}
	if err := cmd.app.History.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	_, err = fmt.Fprintf(c.Root().Writer, "Deleted %d notification(s)\n", n)
	return err
}
