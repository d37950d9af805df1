package wizard

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteText renders the snapshot as plain text, for terminals and shell transcripts.  Secret
// fields are masked.
func WriteText(w io.Writer, s Snapshot) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "Step %d of %d: %s (%d%%)\n", s.Current+1, StepCount, s.Step.Title, s.Progress)
	fmt.Fprintf(b, "%s\n\n", s.Step.Description)

	switch p := s.Panel.(type) {
	case *RequirementsPanel:
		writeAlert(b, p.Alert)
		for _, item := range p.Prerequisites {
			fmt.Fprintf(b, "  [x] %s: %s\n", item.Title, item.Detail)
		}
		b.WriteString("\nServer Details\n")
		for _, f := range p.Fields {
			v := f.Value
			if f.Secret {
				v = strings.Repeat("*", len(v))
			}
			fmt.Fprintf(b, "  %-18s %s\n", f.Label+":", v)
		}
	case *InstallPanel:
		writeAlert(b, p.Alert)
		for i, sec := range p.Sections {
			fmt.Fprintf(b, "%d. %s\n", i+1, sec.Title)
			if sec.Note != "" {
				fmt.Fprintf(b, "   %s\n", sec.Note)
			}
			for _, cmd := range sec.Commands {
				if cmd == "" {
					b.WriteString("\n")
					continue
				}
				fmt.Fprintf(b, "    %s\n", cmd)
			}
			b.WriteString("\n")
		}
	case *CompletePanel:
		fmt.Fprintf(b, "%s\n%s\n\nAccess Points\n", p.Heading, p.Message)
		for _, ap := range p.AccessPoints {
			fmt.Fprintf(b, "  %-18s %s\n", ap.Name+":", ap.Value)
		}
		b.WriteString("\nNext Steps\n")
		for _, item := range p.NextSteps {
			fmt.Fprintf(b, "  - %s: %s\n", item.Title, item.Detail)
		}
	}
	return b.Flush()
}

func writeAlert(b *bufio.Writer, a Alert) {
	fmt.Fprintf(b, "== %s ==\n%s\n\n", a.Title, a.Text)
}
