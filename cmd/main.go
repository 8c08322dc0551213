package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/dryad-restoration/dryad-backend/internal/app"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "dryad",
		Usage: "restoration job management backend",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serveAction,
			},
			{
				Name:   "seed",
				Usage:  "migrate the database and load the demo fixtures into empty tables",
				Action: seedAction,
			},
			{
				Name:  "bill",
				Usage: "print a job's equipment and labor billing",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "job",
						Usage:    "job id or job number (J-2026-005)",
						Required: true,
					},
				},
				Action: billAction,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dryad: %v\n", err)
		os.Exit(1)
	}
}

func serveAction(ctx context.Context, _ *cli.Command) error {
	a, err := app.New(ctx, app.LoadConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer a.Close()
	return a.Run(ctx)
}

func seedAction(ctx context.Context, _ *cli.Command) error {
	cfg := app.LoadConfig()
	cfg.SeedFixtures = true
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	a.Log.Info("Fixtures seeded", "driver", cfg.DB.Driver)
	return nil
}

func billAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.New(ctx, app.LoadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	dbc := dbctx.Context{Ctx: ctx}
	jobID, err := resolveJob(dbc, a, cmd.String("job"))
	if err != nil {
		return err
	}
	summary, err := a.Services.Billing.JobSummary(dbc, jobID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// resolveJob accepts a job id or an exact job number.
func resolveJob(dbc dbctx.Context, a *app.App, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	list, err := a.Services.Job.List(dbc, repos.JobFilter{Search: ref})
	if err != nil {
		return uuid.Nil, err
	}
	for _, j := range list {
		if j.JobNumber == ref {
			return j.ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("no job %q", ref)
}
