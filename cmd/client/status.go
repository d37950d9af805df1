package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/runic/mailman/pkg/rest/model"
)

type statusCmd struct {
	output string
}

func (*statusCmd) Name() string {
	return "status"
}

func (*statusCmd) Synopsis() string {
	return "show mail service status"
}

func (*statusCmd) Usage() string {
	return `status [flags]:
	show the status board of every mail service
`
}

func (s *statusCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.output, "output", "table", "output format: table or json")
}

func (s *statusCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if s.output != "table" && s.output != "json" {
		return usage("unknown output type: " + s.output)
	}

	// Setup rest client
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	status, err := c.Status(ctx)
	if err != nil {
		return fatal("REST call failed", err)
	}
	if s.output == "json" {
		return outputJSON(os.Stdout, status)
	}
	if err := writeStatus(os.Stdout, status); err != nil {
		return fatal("Write failed", err)
	}
	return subcommands.ExitSuccess
}

type refreshCmd struct{}

func (*refreshCmd) Name() string {
	return "refresh"
}

func (*refreshCmd) Synopsis() string {
	return "refresh mail service status"
}

func (*refreshCmd) Usage() string {
	return `refresh:
	poll every mail service, then show the status board
`
}

func (*refreshCmd) SetFlags(f *flag.FlagSet) {}

func (*refreshCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	status, err := c.Refresh(ctx)
	if err != nil {
		return fatal("REST call failed", err)
	}
	if err := writeStatus(os.Stdout, status); err != nil {
		return fatal("Write failed", err)
	}
	return subcommands.ExitSuccess
}

// serviceActionCmd is the restart and reload commands.
type serviceActionCmd struct {
	action string
}

func (s *serviceActionCmd) Name() string {
	return s.action
}

func (s *serviceActionCmd) Synopsis() string {
	return s.action + " a mail service"
}

func (s *serviceActionCmd) Usage() string {
	return fmt.Sprintf(`%s <service>:
	%s the named service, ie Postfix
`, s.action, s.action)
}

func (*serviceActionCmd) SetFlags(f *flag.FlagSet) {}

func (s *serviceActionCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	name := f.Arg(0)
	if name == "" {
		return usage("service name required")
	}
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	var svc *model.JSONServiceStatusV1
	if s.action == "restart" {
		svc, err = c.Restart(ctx, name)
	} else {
		svc, err = c.Reload(ctx, name)
	}
	if err != nil {
		return fatal("REST call failed", err)
	}
	fmt.Printf("%s %s requested, status: %s\n", svc.Name, s.action, svc.Label)
	return subcommands.ExitSuccess
}

func writeStatus(w io.Writer, status *model.JSONStatusV1) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tSTATUS\tUPTIME\tLAST CHECKED")
	for _, s := range status.Services {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Label, s.Uptime, s.LastChecked)
	}
	return tw.Flush()
}

func outputJSON(w io.Writer, v any) subcommands.ExitStatus {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fatal("JSON encode failed", err)
	}
	return subcommands.ExitSuccess
}
