package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PickerItem is one mod row in the picker.
type PickerItem struct {
	RelPath string
	Name    string
	Type    string
	Enabled bool
	Broken  bool
}

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	All    key.Binding
	None   key.Binding
	Filter key.Binding
	Save   key.Binding
	Quit   key.Binding
}

// ShortHelp implements help.KeyMap.
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Filter, k.All, k.None, k.Save, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Toggle}, {k.All, k.None, k.Filter}, {k.Save, k.Quit}}
}

func defaultPickerKeys() pickerKeyMap {
	return pickerKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		All:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		None:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "none")),
		Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Save:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
	}
}

// PickerModel is a filterable checklist of mods.
type PickerModel struct {
	items     []PickerItem
	visible   []int
	cursor    int
	offset    int
	filter    textinput.Model
	filtering bool
	keys      pickerKeyMap
	help      help.Model
	styles    Styles
	height    int
	saved     bool
	cancelled bool
}

// NewPicker creates a picker over items. Items are shown in the given order.
func NewPicker(items []PickerItem, styles Styles) *PickerModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter by name or path"

	m := &PickerModel{
		items:  append([]PickerItem(nil), items...),
		filter: ti,
		keys:   defaultPickerKeys(),
		help:   help.New(),
		styles: styles,
		height: 20,
	}
	m.refilter()
	return m
}

// Init implements tea.Model.
func (m *PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 3 {
			m.height = 3
		}
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Save):
			m.saved = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Toggle):
			if len(m.visible) > 0 {
				it := &m.items[m.visible[m.cursor]]
				it.Enabled = !it.Enabled
			}
		case key.Matches(msg, m.keys.All):
			m.setVisible(true)
		case key.Matches(msg, m.keys.None):
			m.setVisible(false)
		case key.Matches(msg, m.keys.Filter):
			m.filtering = true
			return m, m.filter.Focus()
		}
	}
	return m, nil
}

func (m *PickerModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyCtrlC:
		m.cancelled = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *PickerModel) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.visible)) % len(m.visible)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m *PickerModel) setVisible(enabled bool) {
	for _, i := range m.visible {
		m.items[i].Enabled = enabled
	}
}

func (m *PickerModel) refilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, it := range m.items {
		if q == "" || strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.RelPath), q) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = 0
	m.offset = 0
}

// View implements tea.Model.
func (m *PickerModel) View() string {
	if m.cancelled {
		return "Cancelled.\n"
	}
	if m.saved {
		return ""
	}

	var b strings.Builder
	enabled := 0
	for _, it := range m.items {
		if it.Enabled {
			enabled++
		}
	}
	b.WriteString(m.styles.Header.Render(fmt.Sprintf("Mods  %d/%d enabled", enabled, len(m.items))))
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(m.styles.Dim.Render("  no mods match"))
		b.WriteString("\n")
	}

	end := m.offset + m.height
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for row := m.offset; row < end; row++ {
		it := m.items[m.visible[row]]
		cursor := "  "
		if row == m.cursor {
			cursor = m.styles.Cursor.Render("> ")
		}
		box := "[ ]"
		if it.Enabled {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", box, it.Name, m.styles.Label.Render("("+it.Type+", "+it.RelPath+")"))
		switch {
		case it.Broken:
			line = m.styles.Broken.Render(line)
		case it.Enabled:
			line = m.styles.Checked.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Saved reports whether the user confirmed the selection.
func (m *PickerModel) Saved() bool { return m.saved }

// Items returns the items with their current state.
func (m *PickerModel) Items() []PickerItem {
	return append([]PickerItem(nil), m.items...)
}

// RunPicker shows the picker on in/out and returns the final items.
// ok is false when the user cancelled.
func RunPicker(items []PickerItem, in io.Reader, out io.Writer, styles Styles) ([]PickerItem, bool, error) {
	m := NewPicker(items, styles)
	p := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, false, fmt.Errorf("mod picker failed: %w", err)
	}
	pm := final.(*PickerModel)
	return pm.Items(), pm.Saved(), nil
}
