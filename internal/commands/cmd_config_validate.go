package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/toaster/internal/core/config"
	"github.com/colonyops/toaster/pkg/iojson"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "toaster config validate [options]",
				Description: "Validates the configuration file, checking surface patterns, server settings, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func newValidationReport(cfg *config.Config, configPath string) validationReport {
	r := validationReport{Warnings: cfg.Warnings()}

	err := cfg.ValidateDeep(configPath)
	if err == nil {
		r.Valid = true
		return r
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			r.Errors = append(r.Errors, validationError{Field: fe.Field, Message: fe.Err.Error()})
		}
	} else {
		r.Errors = append(r.Errors, validationError{Message: err.Error()})
	}
	return r
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	report := newValidationReport(cmd.flags.Config, cmd.flags.ConfigPath)

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		writeReport(c.Root().Writer, report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func writeReport(w io.Writer, r validationReport) {
	for _, warn := range r.Warnings {
		line := warn.Category + ": " + warn.Message
		if warn.Item != "" {
			line += " (" + warn.Item + ")"
		}
		_, _ = fmt.Fprintln(w, warnStyle.Render("!")+" "+line)
	}

	for _, e := range r.Errors {
		line := e.Message
		if e.Field != "" {
			line = e.Field + ": " + line
		}
		_, _ = fmt.Fprintln(w, errStyle.Render("✗")+" "+line)
	}

	if r.Valid {
		_, _ = fmt.Fprintln(w, okStyle.Render("✓")+" Configuration is valid")
		return
	}
	_, _ = fmt.Fprintf(w, "%d error(s) found\n", len(r.Errors))
}
