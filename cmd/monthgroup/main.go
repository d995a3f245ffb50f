// Command monthgroup evaluates month/year groupings and drives the
// configured report jobs from the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
	"monthgroup/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&evalCmd{}, "grouping")

	commander.Register(&jobsCmd{}, "jobs")
	commander.Register(&runCmd{}, "jobs")
	commander.Register(&enqueueCmd{}, "jobs")

	commander.Register(&runsCmd{}, "history")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
