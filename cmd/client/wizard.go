package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/subcommands"
	"golang.org/x/term"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/wizard"
)

// detailsFlag collects repeated field=value server details.
type detailsFlag map[string]string

func (d detailsFlag) Set(s string) error {
	field, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected field=value, got %q", s)
	}
	d[field] = value
	return nil
}

func (d detailsFlag) String() string {
	pairs := make([]string, 0, len(d))
	for k, v := range d {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

var _ flag.Value = detailsFlag{}

type wizardCmd struct {
	details detailsFlag
	plain   bool
	all     bool
	step    int
}

func (*wizardCmd) Name() string {
	return "wizard"
}

func (*wizardCmd) Synopsis() string {
	return "walk through the installation guide"
}

func (*wizardCmd) Usage() string {
	return `wizard [flags]:
	show the installation steps with their shell commands.  Interactive on a terminal,
	plain text otherwise.  Server detail defaults come from the MAILMAN_WIZARD_* environment.
`
}

func (w *wizardCmd) SetFlags(f *flag.FlagSet) {
	w.details = detailsFlag{}
	f.Var(w.details, "set", "server detail field=value, ex: hostname=mail.example.com (repeatable)")
	f.BoolVar(&w.plain, "plain", false, "plain text output even on a terminal")
	f.BoolVar(&w.all, "all", false, "plain text output of every step")
	f.IntVar(&w.step, "step", 1, "step number to start on")
}

func (w *wizardCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	conf, err := config.Process()
	if err != nil {
		return fatal("Configuration error", err)
	}
	details := wizard.DefaultServerDetails(conf.Wizard)
	for field, value := range w.details {
		if err := details.Set(field, value); err != nil {
			return usage(err.Error())
		}
	}
	wiz := wizard.New(details)
	for wiz.Current() < w.step-1 && wiz.CanNext() {
		wiz.Next()
	}

	if w.all {
		for i := 0; i < wizard.StepCount; i++ {
			wiz.JumpTo(i)
			if err := wizard.WriteText(os.Stdout, wiz.Snapshot()); err != nil {
				return fatal("Write failed", err)
			}
			fmt.Println()
		}
		return subcommands.ExitSuccess
	}
	if w.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		if err := wizard.WriteText(os.Stdout, wiz.Snapshot()); err != nil {
			return fatal("Write failed", err)
		}
		return subcommands.ExitSuccess
	}

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 80, 24
	}
	p := tea.NewProgram(newWizardModel(wiz, width, height), tea.WithAltScreen(),
		tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fatal("Wizard failed", err)
	}
	return subcommands.ExitSuccess
}
