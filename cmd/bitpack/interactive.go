package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/record"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	bytesStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectField modelState = iota
	stateEditField
)

type interactiveModel struct {
	err      error
	rec      *record.Record
	fields   []layout.Field
	input    textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(r *record.Record) *interactiveModel {
	return &interactiveModel{
		rec:    r.Clone(),
		fields: r.Layout().Fields(),
		state:  stateSelectField,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateEditField {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			f := m.fields[m.selected]
			m.err = assign(m.rec, f.Name, m.input.Value())
			if m.err == nil {
				m.state = stateSelectField
			}
			return m, nil
		case "esc":
			m.state = stateSelectField
			m.err = nil
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.fields)-1 {
			m.selected++
		}

	case "enter":
		m.prepareInput()
		m.state = stateEditField
		m.err = nil
		return m, textinput.Blink

	case "z":
		m.rec.Reset()
		m.err = nil
	}
	return m, nil
}

func (m *interactiveModel) prepareInput() {
	f := m.fields[m.selected]
	ti := textinput.New()
	ti.Prompt = f.Name + ": "
	ti.Placeholder = fieldHint(f)
	ti.Width = 40
	if s, err := m.rec.FormatField(f.Name); err == nil {
		ti.SetValue(s)
	}
	ti.Focus()
	m.input = ti
}

func fieldHint(f layout.Field) string {
	switch f.Kind {
	case layout.KindBool:
		return "true or false"
	case layout.KindEnum:
		names := make([]string, 0, f.Enum.Len())
		for _, v := range f.Enum.Variants() {
			names = append(names, v.Name)
		}
		return strings.Join(names, " | ")
	}
	return fmt.Sprintf("0..%d", f.Max())
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("bitpack"))
	b.WriteString(" ")
	b.WriteString(m.rec.Layout().String())
	b.WriteString("\n\n")

	for i, f := range m.fields {
		value, err := m.rec.FormatField(f.Name)
		if err != nil {
			value = err.Error()
		}
		line := fmt.Sprintf("%-16s %s = %s", fieldStyle.Render(f.Name),
			typeStyle.Render(fmt.Sprintf("%s%d@%d", f.Kind, f.Bits, f.Offset)), value)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(bytesStyle.Render(hex.EncodeToString(m.rec.Bytes())))
	b.WriteString("\n\n")

	if m.state == stateEditField {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateSelectField:
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • z zero • q done"))
	case stateEditField:
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	}
	return b.String()
}

// runInteractive edits a copy of r and returns it when the user quits.
func runInteractive(r *record.Record) (*record.Record, error) {
	m := newInteractiveModel(r)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	return m.rec, nil
}
