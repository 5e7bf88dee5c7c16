package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/toaster/internal/app"
)

const completionLimit = 20

// HistoryIDCompleter returns a ShellCompleteFunc that suggests the ids of the
// most recent history entries as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func HistoryIDCompleter(a *app.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if a.History == nil {
			return
		}

		records, err := a.History.List(ctx, completionLimit)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, r := range records {
			_, _ = fmt.Fprintf(w, "%d\n", r.ID)
		}
	}
}
