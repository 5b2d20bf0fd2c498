/*
 * Copyright (c) 2023, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dburkart/emmylog/pkg/app"
	"github.com/dburkart/emmylog/pkg/event"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// DefaultInterval is how often the history is re-listed without user input.
const DefaultInterval = 300 * time.Second

type Options struct {
	State    *app.State
	Location *time.Location
	Log      zerolog.Logger
	// Interval between automatic refreshes
	Interval time.Duration
	// Timeout bounds each gateway call
	Timeout time.Duration
	Now     func() time.Time
}

type tickMsg time.Time

type refreshedMsg struct {
	err error
}

type recordedMsg struct {
	trigger event.Trigger
	ts      string
	err     error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	recentStyle = lipgloss.NewStyle().Bold(true)
	oldStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
	hintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

type Model struct {
	opts    Options
	input   textinput.Model
	editing bool
	status  string
	err     error
}

func New(opts Options) *Model {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Placeholder = "jetzt (YYYY-MM-DD HH:MM:SS)"
	ti.Prompt = "Zeit › "
	ti.CharLimit = len(event.InputFormat)

	return &Model{opts: opts, input: ti}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) refresh() tea.Cmd {
	state, timeout := m.opts.State, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return refreshedMsg{err: state.Refresh(ctx)}
	}
}

func (m *Model) record(trigger event.Trigger) tea.Cmd {
	state, timeout := m.opts.State, m.opts.Timeout
	ts := strings.TrimSpace(m.input.Value())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return recordedMsg{trigger: trigger, ts: ts, err: state.Record(ctx, trigger, ts)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	case tickMsg:
		m.opts.Log.Debug().Msg("periodic refresh")
		return m, tea.Batch(m.refresh(), m.tick())
	case refreshedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = ""
		}
	case recordedMsg:
		m.err = msg.err
		var refreshErr *app.RefreshError
		if msg.err == nil || errors.As(msg.err, &refreshErr) {
			// stored, a failed refresh must not invite a second press
			label, _ := msg.trigger.Kind().Label()
			m.status = "gespeichert: " + label
			m.input.SetValue("")
		} else {
			m.status = "nicht gespeichert"
		}
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "u":
		m.status = "aktualisiere…"
		return m, m.refresh()
	case "e":
		m.editing = true
		return m, m.input.Focus()
	case "x":
		m.input.SetValue("")
		return m, nil
	}

	if trigger, ok := event.TriggerForKey(key); ok {
		m.status = "speichere " + trigger.ID() + "…"
		return m, m.record(trigger)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("emmylog"))
	b.WriteString("\n\n")

	rows, err := m.opts.State.Rows(m.opts.Now(), m.opts.Location)
	switch {
	case err != nil:
		b.WriteString(errorStyle.Render(err.Error()))
		b.WriteString("\n")
	case len(rows) == 0:
		b.WriteString(hintStyle.Render("keine Einträge"))
		b.WriteString("\n")
	}
	for _, r := range rows {
		line := fmt.Sprintf("%-16s %-28s %s", r.When, r.Ago, r.Label)
		if r.Recent {
			b.WriteString(recentStyle.Render(line))
		} else {
			b.WriteString(oldStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	keys := make([]string, 0, len(event.Triggers))
	for _, t := range event.Triggers {
		label, _ := t.Kind().Label()
		keys = append(keys, fmt.Sprintf("[%s] %s", t.Key(), label))
	}
	b.WriteString(hintStyle.Render(strings.Join(keys, "  ")))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("[e] Zeit  [x] Zeit löschen  [u] aktualisieren  [q] beenden"))
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")

	return b.String()
}

func (m *Model) statusLine() string {
	parts := []string{}
	if updated := m.opts.State.Updated(); !updated.IsZero() {
		parts = append(parts, "aktualisiert "+humanize.Time(updated))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	line := hintStyle.Render(strings.Join(parts, " • "))
	if m.err != nil {
		line += " " + errorStyle.Render("Fehler: "+m.err.Error())
	}
	return line
}

// Run the dashboard until the user quits.
func Run(opts Options) error {
	program := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
