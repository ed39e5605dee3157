// Command wealthctl runs maintenance tasks against the wealth tracker
// database without starting the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "time/tzdata"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/app"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/config"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/version"
)

func main() {
	cliApp := &cli.App{
		Name:    "wealthctl",
		Usage:   "wealth tracker maintenance",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "database path, overrides DB_PATH",
				EnvVars: []string{"DB_PATH"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending schema migrations",
				Action: withApp(func(_ *cli.Context, _ *app.App) error { return nil }),
			},
			{
				Name:  "update-prices",
				Usage: "refresh every held price and record today's snapshots",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					summary := a.Services.PriceUpdate.Run(c.Context)
					if err := printJSON(summary); err != nil {
						return err
					}
					if !summary.Success {
						return cli.Exit(summary.Reason, 1)
					}
					return nil
				}),
			},
			{
				Name:  "snapshot",
				Usage: "record today's snapshots from cached prices and today's benchmark prices",
				Action: withApp(func(c *cli.Context, a *app.App) error {
					run, err := a.Services.Valuation.SnapshotAll(c.Context, nil, nil)
					if err != nil {
						return err
					}
					return printJSON(run)
				}),
			},
			{
				Name:  "valuate",
				Usage: "print the valuation of one portfolio",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "portfolio", Aliases: []string{"p"}, Usage: "portfolio ID", Required: true},
					&cli.StringFlag{Name: "currency", Aliases: []string{"c"}, Usage: "reporting currency, defaults to the portfolio's"},
				},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					result, err := a.Services.Valuation.ValuatePortfolio(c.Context, c.String("portfolio"), c.String("currency"))
					if err != nil {
						return err
					}
					return printJSON(result.Rounded())
				}),
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			os.Exit(exit.ExitCode())
		}
		log.Fatal().Err(err).Msg("wealthctl failed")
	}
}

// withApp loads configuration and wires the application before running fn.
// Logs go to stderr so stdout stays valid JSON.
func withApp(fn func(*cli.Context, *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if db := c.String("db"); db != "" {
			cfg.Database.Path = db
		}

		l := logger.NewWithWriter(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}, os.Stderr)
		logger.SetGlobalLogger(l)

		a, err := app.New(context.WithoutCancel(c.Context), cfg, l)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(c, a)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
