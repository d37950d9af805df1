package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runic/mailman/pkg/wizard"
)

var (
	primaryColor = lipgloss.Color("#7D56F4")
	doneColor    = lipgloss.Color("#43BF6D")
	mutedColor   = lipgloss.Color("#626262")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)
	subtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
	stepDoneStyle    = lipgloss.NewStyle().Foreground(doneColor)
	stepCurrentStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	stepLockedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
)

// headerHeight is the number of lines above the viewport.
const headerHeight = 5

type wizardKeyMap struct {
	Next     key.Binding
	Previous key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k wizardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Next, k.Up, k.Down, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k wizardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var wizardKeys = wizardKeyMap{
	Next: key.NewBinding(
		key.WithKeys("right", "n", "enter"),
		key.WithHelp("→/n", "next step"),
	),
	Previous: key.NewBinding(
		key.WithKeys("left", "p"),
		key.WithHelp("←/p", "previous step"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// wizardModel is the interactive installation guide.
type wizardModel struct {
	wiz      *wizard.Wizard
	viewport viewport.Model
	progress progress.Model
	help     help.Model
	width    int
}

func newWizardModel(wiz *wizard.Wizard, width, height int) wizardModel {
	m := wizardModel{
		wiz:      wiz,
		viewport: viewport.New(width, max(height-headerHeight-1, 3)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		width:    width,
	}
	m.refresh()
	return m
}

// refresh renders the current step into the viewport.
func (m *wizardModel) refresh() {
	var b strings.Builder
	_ = wizard.WriteText(&b, m.wiz.Snapshot())
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-1, 3)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, wizardKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, wizardKeys.Next):
			m.wiz.Next()
			m.refresh()
			return m, nil
		case key.Matches(msg, wizardKeys.Previous):
			m.wiz.Previous()
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m wizardModel) View() string {
	snap := m.wiz.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render("RUNIC MAILMAN INSTALLATION"))
	b.WriteString("\n")
	b.WriteString(m.stepBar(snap))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(float64(snap.Progress) / 100))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(
		fmt.Sprintf("Step %d of %d: %s", snap.Current+1, wizard.StepCount, snap.Step.Title)))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(wizardKeys))
	return b.String()
}

// stepBar renders one marker per step, coloured by its state.
func (m wizardModel) stepBar(snap wizard.Snapshot) string {
	markers := make([]string, len(snap.States))
	for i, st := range snap.States {
		switch st {
		case wizard.StateDone:
			markers[i] = stepDoneStyle.Render("✓")
		case wizard.StateCurrent:
			markers[i] = stepCurrentStyle.Render("●")
		default:
			markers[i] = stepLockedStyle.Render("·")
		}
	}
	return strings.Join(markers, " ")
}
