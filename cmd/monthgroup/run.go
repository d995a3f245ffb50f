package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/google/subcommands"
	"monthgroup/internal/jobs"
	"monthgroup/internal/report"
	"monthgroup/internal/storage"
)

type runCmd struct {
	all  bool
	json bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run configured jobs now and write their output" }
func (*runCmd) Usage() string {
	return `monthgroup run [-all] [-json] <job>...

  Reads each job's ranges, groups them, writes the result to the job's
  output cell and records the run.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "run every configured job")
	f.BoolVar(&c.json, "json", false, "print the recorded runs as JSON")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.all && f.NArg() == 0 {
		fail("name at least one job or pass -all")
		return subcommands.ExitUsageError
	}

	app, err := openApp(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer closeApp(app)

	list, err := selectJobs(app.Jobs, c.all, f.Args())
	if err != nil {
		fail("%v", err)
		return subcommands.ExitUsageError
	}

	runs, runErr := app.Service.RunAll(ctx, list, storage.TriggerCLI)

	if c.json {
		if err := printJSON(os.Stdout, runs); err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
	} else {
		parts := make([]string, len(runs))
		for i, r := range runs {
			parts[i] = report.Run(r)
		}
		printMarkdown(strings.Join(parts, "\n---\n\n"))
	}

	if runErr != nil {
		fail("%v", runErr)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// selectJobs resolves names against set, or returns every job when all is set.
func selectJobs(set *jobs.Set, all bool, names []string) ([]jobs.Job, error) {
	if all {
		return set.Jobs, nil
	}
	list := make([]jobs.Job, 0, len(names))
	for _, name := range names {
		job, err := set.Find(name)
		if err != nil {
			return nil, err
		}
		list = append(list, job)
	}
	return list, nil
}
