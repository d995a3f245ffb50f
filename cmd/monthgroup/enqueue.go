package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"monthgroup/internal/storage"
)

type enqueueCmd struct{}

func (*enqueueCmd) Name() string     { return "enqueue" }
func (*enqueueCmd) Synopsis() string { return "queue job runs for monthgroup-worker" }
func (*enqueueCmd) Usage() string {
	return `monthgroup enqueue <job>...

  Publishes one run request per job to the AMQP exchange and prints the
  request IDs. Requires AMQP_URL.
`
}

func (*enqueueCmd) SetFlags(*flag.FlagSet) {}

func (c *enqueueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fail("name at least one job")
		return subcommands.ExitUsageError
	}

	app, err := openApp(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer closeApp(app)

	list, err := selectJobs(app.Jobs, false, f.Args())
	if err != nil {
		fail("%v", err)
		return subcommands.ExitUsageError
	}

	for _, job := range list {
		id, err := app.Service.Enqueue(ctx, job.Name, storage.TriggerCLI)
		if err != nil {
			fail("%s: %v", job.Name, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s\t%s\n", job.Name, id)
	}
	return subcommands.ExitSuccess
}
