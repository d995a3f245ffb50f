package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/subcommands"
	"monthgroup/internal/cli"
	"monthgroup/internal/config"
	"monthgroup/internal/report"
)

type jobsCmd struct {
	json bool
}

func (*jobsCmd) Name() string     { return "jobs" }
func (*jobsCmd) Synopsis() string { return "list configured jobs and their next scheduled run" }
func (*jobsCmd) Usage() string {
	return `monthgroup jobs [-json]

  Lists the jobs in JOBS_FILE.
`
}

func (c *jobsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the jobs as JSON")
}

func (c *jobsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := config.Load()
	logger := cli.SetupLoggerTo(os.Stderr, cfg.LogLevel)

	set, err := cli.LoadJobs(logger, cfg.JobsFile)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := printJSON(os.Stdout, set.Jobs); err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	now := time.Now().In(loc)
	next := func(name string) (time.Time, bool) {
		job, err := set.Find(name)
		if err != nil {
			return time.Time{}, false
		}
		return job.NextRun(now)
	}
	printMarkdown(report.Jobs(set.Jobs, next))
	return subcommands.ExitSuccess
}
