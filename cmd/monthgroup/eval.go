package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"monthgroup/internal/cli"
	"monthgroup/internal/config"
	"monthgroup/internal/core"
	"monthgroup/internal/report"
	"monthgroup/internal/services"
)

type evalCmd struct {
	input     string
	filter    string
	filterCol int
	json      bool
}

func (*evalCmd) Name() string     { return "eval" }
func (*evalCmd) Synopsis() string { return "group inline ranges by month and year" }
func (*evalCmd) Usage() string {
	return `monthgroup eval [-i <file>] [-filter <list>] [-filter-col <n>] [-json]

  Reads {"range": [[...]], "group_by_range": [[...]], "group_by_values": [[...]]}
  from a file or stdin and prints the totals per month.
`
}

func (c *evalCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "-", "JSON input file, - for stdin")
	f.StringVar(&c.filter, "filter", "", "comma separated values to keep (overrides the input)")
	f.IntVar(&c.filterCol, "filter-col", 0, "1-based column of range the filter applies to (overrides the input)")
	f.BoolVar(&c.json, "json", false, "print the result as JSON")
}

func (c *evalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := c.readInput()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitUsageError
	}
	if c.filter != "" {
		in.FilterText = c.filter
	}
	if c.filterCol != 0 {
		in.FilterColNumber = c.filterCol
	}

	logger := cli.SetupLoggerTo(os.Stderr, config.Load().LogLevel)
	svc := services.NewGroupingService(services.Deps{Logger: logger})

	res, err := svc.Evaluate(ctx, in)
	if err != nil {
		if kind := core.KindOf(err); kind != "" {
			fail("%s (%s)", core.Message(err), kind)
		} else {
			fail("%v", err)
		}
		return subcommands.ExitFailure
	}

	if c.json {
		if err := printJSON(os.Stdout, res); err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(report.Result("", res))
	return subcommands.ExitSuccess
}

func (c *evalCmd) readInput() (services.Input, error) {
	var r io.Reader = os.Stdin
	if c.input != "-" {
		file, err := os.Open(c.input)
		if err != nil {
			return services.Input{}, err
		}
		defer file.Close()
		r = file
	}
	return decodeInput(r)
}

func decodeInput(r io.Reader) (services.Input, error) {
	var in services.Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return services.Input{}, fmt.Errorf("decode input: %w", err)
	}
	return in, nil
}
