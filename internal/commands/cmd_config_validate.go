package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/deskbell/internal/core/config"
	"github.com/colonyops/deskbell/internal/printer"
	"github.com/colonyops/deskbell/pkg/iojson"
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
				UsageText:   "deskbell config validate [options]",
				Description: "Validates the configuration file, the snapshot source, and the audio and open commands.",
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

type validationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	issues := collectIssues(cfg.ValidateDeep(cmd.flags.ConfigPath))
	warnings := cfg.Warnings()

	if cmd.format == "json" {
		out := struct {
			Valid    bool                       `json:"valid"`
			Errors   []validationIssue          `json:"errors,omitempty"`
			Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		}{
			Valid:    len(issues) == 0,
			Errors:   issues,
			Warnings: warnings,
		}

		if err := iojson.Encode(c.Root().Writer, out); err != nil {
			return err
		}
		if len(issues) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	p := printer.Ctx(ctx)
	for _, warn := range warnings {
		p.Warnf("%s: %s", warn.Category, warn.Message)
		if warn.Item != "" {
			p.Printf("  Item: %s", warn.Item)
		}
	}
	for _, issue := range issues {
		p.Errorf("%s: %s", issue.Field, issue.Message)
	}

	p.Printf("")
	if len(issues) == 0 {
		p.Successf("Configuration is valid")
		return nil
	}

	p.Errorf("%d error(s) found", len(issues))
	return cli.Exit("", 1)
}

func collectIssues(err error) []validationIssue {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []validationIssue{{Field: "config", Message: err.Error()}}
	}

	issues := make([]validationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
	}
	return issues
}
