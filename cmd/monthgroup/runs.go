package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"monthgroup/internal/report"
)

type runsCmd struct {
	job   string
	id    string
	limit int
	prune time.Duration
	json  bool
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "show recorded job runs" }
func (*runsCmd) Usage() string {
	return `monthgroup runs [-job <name>] [-limit n] [-id <run>] [-prune <age>] [-json]

  Lists recorded runs newest first, shows one run with -id, or deletes
  runs older than -prune (for example 720h).
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.job, "job", "", "only show runs of this job")
	f.StringVar(&c.id, "id", "", "show a single run with its result")
	f.IntVar(&c.limit, "limit", 20, "maximum number of runs to list")
	f.DurationVar(&c.prune, "prune", 0, "delete runs older than this age instead of listing")
	f.BoolVar(&c.json, "json", false, "print as JSON")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer closeApp(app)

	switch {
	case c.prune > 0:
		n, err := app.Store.PruneRuns(ctx, time.Now().Add(-c.prune))
		if err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("deleted %d runs\n", n)

	case c.id != "":
		run, err := app.Service.GetRun(ctx, c.id)
		if err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
		if c.json {
			return jsonStatus(run)
		}
		printMarkdown(report.Run(run))

	default:
		runs, err := app.Service.ListRuns(ctx, c.job, c.limit)
		if err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
		if c.json {
			return jsonStatus(runs)
		}
		printMarkdown(report.Runs(runs))
	}
	return subcommands.ExitSuccess
}

func jsonStatus(v any) subcommands.ExitStatus {
	if err := printJSON(os.Stdout, v); err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
