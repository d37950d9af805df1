package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/runic/mailman/pkg/rest/client"
)

type filesCmd struct {
	name regexFlag
}

func (*filesCmd) Name() string {
	return "files"
}

func (*filesCmd) Synopsis() string {
	return "list services or their configuration files"
}

func (*filesCmd) Usage() string {
	return `files [flags] [service]:
	list the configuration files of service, or the services when omitted
`
}

func (fc *filesCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&fc.name, "name", "File name matching regexp")
}

func (fc *filesCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	service := f.Arg(0)
	if service == "" {
		services, err := c.Services(ctx)
		if err != nil {
			return fatal("REST call failed", err)
		}
		for _, s := range services {
			fmt.Printf("%-10s %s\n", s.ID, s.Name)
		}
		return subcommands.ExitSuccess
	}

	files, err := c.Files(ctx, service)
	if err != nil {
		return fatal("REST call failed", err)
	}
	for _, h := range files {
		if fc.name.Defined() && !fc.name.MatchString(h.Name) {
			continue
		}
		fmt.Printf("%-36s %-48s %s\n", h.Name, h.Path, humanize.Bytes(uint64(h.Size)))
	}
	return subcommands.ExitSuccess
}

type showCmd struct{}

func (*showCmd) Name() string {
	return "show"
}

func (*showCmd) Synopsis() string {
	return "output a configuration file"
}

func (*showCmd) Usage() string {
	return `show <service> <file>:
	output the stored content of a configuration file
`
}

func (*showCmd) SetFlags(f *flag.FlagSet) {}

func (*showCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	service, name := f.Arg(0), f.Arg(1)
	if service == "" || name == "" {
		return usage("service and file name required")
	}
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	file, err := c.File(ctx, service, name)
	if err != nil {
		return fatal("REST call failed", err)
	}
	fmt.Println(file.Content)
	return subcommands.ExitSuccess
}

type saveCmd struct {
	validateOnly bool
	restart      bool
}

func (*saveCmd) Name() string {
	return "save"
}

func (*saveCmd) Synopsis() string {
	return "replace a configuration file with stdin"
}

func (*saveCmd) Usage() string {
	return `save [flags] <service> <file>:
	validate the content read from stdin, then save it as the configuration file
	exit status will be 1 if validation fails
`
}

func (s *saveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&s.validateOnly, "validate", false, "validate only, do not save")
	f.BoolVar(&s.restart, "restart", false, "restart the service after saving")
}

func (s *saveCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	service, name := f.Arg(0), f.Arg(1)
	if service == "" || name == "" {
		return usage("service and file name required")
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fatal("Failed to read stdin", err)
	}
	c, err := newClient()
	if err != nil {
		return fatal("Couldn't build client", err)
	}

	// The client keeps its session cookie, so these calls build up one editor state.
	if _, err := c.SelectService(ctx, service); err != nil {
		return fatal("REST call failed", err)
	}
	if _, err := c.SelectFile(ctx, name); err != nil {
		return fatal("REST call failed", err)
	}
	if _, err := c.PutBuffer(ctx, string(content)); err != nil {
		return fatal("REST call failed", err)
	}
	if s.validateOnly {
		_, err = c.Validate(ctx)
	} else {
		_, err = c.Save(ctx)
	}
	var apiErr *client.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
		fmt.Fprintln(os.Stderr, apiErr.Message)
		return subcommands.ExitFailure
	}
	if err != nil {
		return fatal("REST call failed", err)
	}
	if s.validateOnly {
		fmt.Println("Configuration is valid")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Saved %s (%s)\n", name, humanize.Bytes(uint64(len(content))))

	if s.restart {
		if _, err := c.RestartEditorService(ctx); err != nil {
			return fatal("REST call failed", err)
		}
		fmt.Printf("Service %s restarted\n", service)
	}
	return subcommands.ExitSuccess
}
