package browsecmder

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/chatmem/pkg/cliui"
	"github.com/papercomputeco/chatmem/pkg/llm"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

// conversationSource is the read side of a conversation store.
type conversationSource interface {
	ListConversationIDs(ctx context.Context) ([]string, error)
	FindMessages(ctx context.Context, conversationID string) ([]llm.Message, error)
}

type browseView int

const (
	viewList browseView = iota
	viewConversation
)

const listPaneWidth = 28

type browseModel struct {
	ctx      context.Context
	source   conversationSource
	ids      []string
	current  string
	messages []llm.Message
	view     browseView
	cursor   int
	offset   int
	width    int
	height   int
	err      error
	keys     browseKeyMap
	help     help.Model
}

var (
	browseTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	browseMutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	browseDividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	browseHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("214")).Bold(true)
	browseErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type browseKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Enter, k.Back, k.Refresh, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up, k.Enter, k.Back}, {k.Refresh, k.Quit}}
}

func defaultKeyMap() browseKeyMap {
	return browseKeyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Enter:   key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("h", "esc"), key.WithHelp("h", "back")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type idsLoadedMsg struct {
	ids []string
	err error
}

type conversationLoadedMsg struct {
	id       string
	messages []llm.Message
	err      error
}

func runBrowseTUI(ctx context.Context, source conversationSource, conversationID string) error {
	ids, err := source.ListConversationIDs(ctx)
	if err != nil {
		return err
	}

	model := newBrowseModel(ctx, source, ids)

	if conversationID != "" {
		messages, err := source.FindMessages(ctx, conversationID)
		if err != nil {
			return err
		}
		model.current = conversationID
		model.messages = messages
		model.view = viewConversation
	}

	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	_, err = program.Run()
	return err
}

func newBrowseModel(ctx context.Context, source conversationSource, ids []string) browseModel {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	return browseModel{
		ctx:    ctx,
		source: source,
		ids:    sorted,
		view:   viewList,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

func (m browseModel) Init() bubbletea.Cmd {
	return nil
}

func (m browseModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case idsLoadedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.ids = slices.Clone(msg.ids)
		slices.Sort(m.ids)
		m.cursor = clamp(m.cursor, len(m.ids)-1)
		return m, nil
	case conversationLoadedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.current = msg.id
		m.messages = msg.messages
		m.offset = 0
		m.view = viewConversation
		return m, nil
	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m browseModel) View() string {
	switch m.view {
	case viewConversation:
		return m.viewConversation()
	default:
		return m.viewList()
	}
}

func (m browseModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, bubbletea.Quit
	case key.Matches(msg, m.keys.Down):
		return m.move(1), nil
	case key.Matches(msg, m.keys.Up):
		return m.move(-1), nil
	case key.Matches(msg, m.keys.Enter):
		if m.view == viewList && len(m.ids) > 0 {
			return m, loadConversationCmd(m.ctx, m.source, m.ids[m.cursor])
		}
	case key.Matches(msg, m.keys.Back):
		m.view = viewList
		m.offset = 0
	case key.Matches(msg, m.keys.Refresh):
		if m.view == viewConversation {
			return m, loadConversationCmd(m.ctx, m.source, m.current)
		}
		return m, loadIDsCmd(m.ctx, m.source)
	}

	return m, nil
}

func (m browseModel) move(delta int) browseModel {
	if m.view == viewList {
		if len(m.ids) > 0 {
			m.cursor = clamp(m.cursor+delta, len(m.ids)-1)
		}
		return m
	}

	m.offset = clamp(m.offset+delta, max(len(m.messageLines())-m.bodyHeight(), 0))
	return m
}

func (m browseModel) viewList() string {
	var b strings.Builder
	b.WriteString(browseTitleStyle.Render("chatmem"))
	b.WriteString(browseMutedStyle.Render(fmt.Sprintf("  %d conversations", len(m.ids))))
	b.WriteString("\n")
	b.WriteString(renderRule(m.width))
	b.WriteString("\n")

	if len(m.ids) == 0 {
		b.WriteString(browseMutedStyle.Render("No conversations stored."))
		b.WriteString("\n")
	}

	start, end := visibleRange(len(m.ids), m.cursor, m.bodyHeight())
	for i := start; i < end; i++ {
		line := cliui.Truncate(m.ids[i], max(m.width-2, listPaneWidth))
		if i == m.cursor {
			b.WriteString(browseHighlightStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString(m.viewFooter())
	return b.String()
}

func (m browseModel) viewConversation() string {
	var b strings.Builder
	b.WriteString(browseTitleStyle.Render(m.current))
	b.WriteString(browseMutedStyle.Render(fmt.Sprintf("  %d messages", len(m.messages))))
	b.WriteString("\n")
	b.WriteString(renderRule(m.width))
	b.WriteString("\n")

	lines := m.messageLines()
	if len(lines) == 0 {
		b.WriteString(browseMutedStyle.Render("Conversation is empty."))
		b.WriteString("\n")
	}

	end := min(m.offset+m.bodyHeight(), len(lines))
	for _, line := range lines[min(m.offset, end):end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.viewFooter())
	return b.String()
}

func (m browseModel) viewFooter() string {
	footer := m.help.View(m.keys)
	if m.err != nil {
		footer = browseErrorStyle.Render(m.err.Error()) + "\n" + footer
	}
	return footer
}

// messageLines lays out the open conversation as wrapped lines, one block
// per message.
func (m browseModel) messageLines() []string {
	width := m.width - 4
	if width <= 0 {
		width = 80
	}

	lines := []string{}
	for i := range m.messages {
		msg := &m.messages[i]
		lines = append(lines, cliui.RenderRole(msg.Role()))
		for _, line := range wrapText(msg.GetText(), width) {
			lines = append(lines, "  "+line)
		}
		for _, call := range msg.ToolCalls {
			lines = append(lines, browseMutedStyle.Render(cliui.Truncate(fmt.Sprintf("  → %s(%s)", call.Name, call.Arguments), width)))
		}
		lines = append(lines, "")
	}
	return lines
}

func (m browseModel) bodyHeight() int {
	// title, rule, and help footer
	const chrome = 4
	if m.height <= chrome {
		return 20
	}
	return m.height - chrome
}

func loadIDsCmd(ctx context.Context, source conversationSource) bubbletea.Cmd {
	return func() bubbletea.Msg {
		ids, err := source.ListConversationIDs(ctx)
		return idsLoadedMsg{ids: ids, err: err}
	}
}

func loadConversationCmd(ctx context.Context, source conversationSource, id string) bubbletea.Cmd {
	return func() bubbletea.Msg {
		messages, err := source.FindMessages(ctx, id)
		return conversationLoadedMsg{id: id, messages: messages, err: err}
	}
}

func clamp(value, upper int) int {
	if upper < 0 {
		return 0
	}
	if value < 0 {
		return 0
	}
	if value > upper {
		return upper
	}
	return value
}

func renderRule(width int) string {
	if width <= 0 {
		width = 40
	}
	return browseDividerStyle.Render(strings.Repeat("─", width))
}

func visibleRange(total, cursor, size int) (int, int) {
	if total <= 0 || size <= 0 {
		return 0, 0
	}
	if total <= size {
		return 0, total
	}
	cursor = clamp(cursor, total-1)
	start := max(cursor-(size/2), 0)
	end := start + size
	if end > total {
		end = total
		start = max(end-size, 0)
	}
	return start, end
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	lines := []string{}
	current := ""
	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
			current = current + " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
