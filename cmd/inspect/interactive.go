package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/irgen"
	"github.com/wippyai/irgen/exec"
	"github.com/wippyai/irgen/ir"
	"github.com/wippyai/irgen/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectModel struct {
	err      error
	input    textinput.Model
	target   irgen.Target
	strategy layout.Strategy
	heap     bool
	report   string
	verified string
}

func newInspectModel(target irgen.Target) *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "u8,u32,string,?name"
	ti.Prompt = "fields: "
	ti.Width = 50
	ti.Focus()

	return &inspectModel{
		input:    ti,
		target:   target,
		strategy: layout.Universal,
	}
}

type verifyMsg struct {
	err  error
	text string
}

func (m *inspectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			m.compute()
			return m, nil

		case "tab":
			if m.strategy == layout.Universal {
				m.strategy = layout.Optimal
			} else {
				m.strategy = layout.Universal
			}
			m.compute()
			return m, nil

		case "ctrl+o":
			m.heap = !m.heap
			m.compute()
			return m, nil

		case "ctrl+t":
			if m.target.PointerSize == 4 {
				m.target = irgen.Wasm64()
			} else {
				m.target = irgen.Wasm32()
			}
			m.compute()
			return m, nil

		case "ctrl+v":
			m.compute()
			if m.err == nil {
				return m, m.verify
			}
			return m, nil
		}

	case verifyMsg:
		if msg.err != nil {
			m.verified = errorStyle.Render(fmt.Sprintf("verify: %v", msg.err))
		} else {
			m.verified = resultStyle.Render(msg.text)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// compute lays out the current field list and renders the report.
func (m *inspectModel) compute() {
	m.report = ""
	m.verified = ""
	m.err = nil

	mod := ir.NewModule(m.target)
	names, fields, err := parseFields(mod, m.input.Value())
	if err != nil {
		m.err = err
		return
	}

	kind := layout.NonHeapObject
	if m.heap {
		kind = layout.HeapObject
	}
	l := layout.New(mod, kind, m.strategy, fields, nil)

	var b strings.Builder
	if m.heap {
		b.WriteString(fmt.Sprintf("  %s  offset %s  (heap header, %d bytes)\n",
			fieldStyle.Render(fmt.Sprintf("%-12s", "header")),
			offsetStyle.Render("   0"),
			layout.HeapHeaderSize(mod)))
	}
	known := true
	for i, e := range l.Elements() {
		name := names[i]
		idx, ok := e.StructIndex()
		switch {
		case ok:
			b.WriteString(fmt.Sprintf("  %s  offset %s  slot %d  %s\n",
				fieldStyle.Render(fmt.Sprintf("%-12s", name)),
				offsetStyle.Render(fmt.Sprintf("%4d", e.ByteOffset)),
				idx, e.Type.StorageType(mod)))
		case e.Type.HasFixedSize() && e.Type.HasFixedAlignment():
			b.WriteString(fmt.Sprintf("  %s  offset %s  (zero size, elided)\n",
				fieldStyle.Render(fmt.Sprintf("%-12s", name)),
				offsetStyle.Render(fmt.Sprintf("%4d", e.ByteOffset))))
		default:
			known = false
			b.WriteString(fmt.Sprintf("  %s  offset unknown\n",
				fieldStyle.Render(fmt.Sprintf("%-12s", name))))
		}
	}
	if known {
		b.WriteString(fmt.Sprintf("\n  size %d bytes, alignment %d\n", l.Size(), l.Alignment()))
	} else {
		b.WriteString(fmt.Sprintf("\n  size at least %d bytes (layout not fully known)\n", l.Size()))
	}
	m.report = b.String()
}

// verify re-emits the geometry functions, runs them, and reports whether
// the executed numbers match the static computation.
func (m *inspectModel) verify() tea.Msg {
	ctx := context.Background()

	mod := ir.NewModule(m.target)
	_, fields, err := parseFields(mod, m.input.Value())
	if err != nil {
		return verifyMsg{err: err}
	}
	for _, ti := range fields {
		if !ti.HasFixedSize() || !ti.HasFixedAlignment() {
			return verifyMsg{err: fmt.Errorf("layout is not fully known")}
		}
	}

	kind := layout.NonHeapObject
	if m.heap {
		kind = layout.HeapObject
	}
	l := layout.New(mod, kind, m.strategy, fields, nil)

	sizeFn := mod.NewFunc("size", nil, []ir.ValType{ir.ValI32})
	sizeFn.Return(l.EmitSize(sizeFn))
	alignFn := mod.NewFunc("align", nil, []ir.ValType{ir.ValI32})
	alignFn.Return(l.EmitAlign(alignFn))

	binary, err := mod.EncodeBinary()
	if err != nil {
		return verifyMsg{err: err}
	}
	inst, err := exec.Instantiate(ctx, binary)
	if err != nil {
		return verifyMsg{err: err}
	}
	defer inst.Close(ctx)

	size, err := inst.CallU32(ctx, "size")
	if err != nil {
		return verifyMsg{err: err}
	}
	align, err := inst.CallU32(ctx, "align")
	if err != nil {
		return verifyMsg{err: err}
	}
	if size != uint32(l.Size()) || align != uint32(l.Alignment()) {
		return verifyMsg{err: fmt.Errorf("executed %d/%d disagrees with static %d/%d",
			size, align, l.Size(), l.Alignment())}
	}
	return verifyMsg{text: fmt.Sprintf("executed size=%d align=%d  OK", size, align)}
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Layout Inspector"))
	b.WriteString(fmt.Sprintf(" %s / %s", m.target.Name, m.strategy))
	if m.heap {
		b.WriteString(" / heap")
	}
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else if m.report != "" {
		b.WriteString(m.report)
	}
	if m.verified != "" {
		b.WriteString("\n")
		b.WriteString(m.verified)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter compute • tab strategy • ctrl+o heap • ctrl+t target • ctrl+v verify • esc quit"))
	return b.String()
}

func runInteractive(target irgen.Target) error {
	p := tea.NewProgram(newInspectModel(target), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
