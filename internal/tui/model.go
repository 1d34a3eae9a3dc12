package tui

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcdonaldj/rarlens/internal/compare"
	"github.com/mcdonaldj/rarlens/internal/config"
	"github.com/mcdonaldj/rarlens/internal/driver"
	"github.com/mcdonaldj/rarlens/internal/ports"
)

// View represents the current view state
type View int

const (
	EntriesView View = iota
	PreviewView      // Showing one member's content
	DiffView         // Showing a line diff of two marked members
)

// EntryItem represents an archive entry in the list
type EntryItem struct {
	Name        string
	Size        uint64
	PackedSize  uint64
	IsDirectory bool
	ModTime     time.Time
	CRC         string
}

// Preview holds the content of the member being viewed
type Preview struct {
	Name     string
	Lines    []string
	Size     int
	IsBinary bool
}

// Model is the main TUI model
type Model struct {
	config   *config.Config
	service  ports.TUIService
	archive  string
	view     View
	width    int
	height   int
	quitting bool

	// Entries view
	entries []EntryItem
	cursor  int
	marked  []int // Indices of marked entries, in marking order

	// Preview view
	preview       *Preview
	previewScroll int

	// Diff view
	fileDiffResult *compare.FileDiffResult
	fileDiffScroll int
	diffSwapped    bool // Whether sides are swapped (second member on left)

	// Status message
	statusMsg string
	statusErr bool
}

// Key bindings
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Enter      key.Binding
	Back       key.Binding
	Mark       key.Binding
	Extract    key.Binding
	ExtractAll key.Binding
	Diff       key.Binding
	Swap       key.Binding
	Refresh    key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "preview"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Mark: key.NewBinding(
		key.WithKeys(" ", "tab"),
		key.WithHelp("space", "mark"),
	),
	Extract: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "extract"),
	),
	ExtractAll: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "extract all"),
	),
	Diff: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "diff"),
	),
	Swap: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "swap"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// NewModelWithService loads the config and the archive listing through svc.
func NewModelWithService(svc ports.TUIService, archive string) (*Model, error) {
	cfg, err := svc.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	m := NewModelWithConfig(cfg, svc, archive)
	if err := m.loadEntries(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewModelWithConfig creates a model without loading the listing.
func NewModelWithConfig(cfg *config.Config, svc ports.TUIService, archive string) *Model {
	return &Model{
		config:  cfg,
		service: svc,
		archive: archive,
		view:    EntriesView,
	}
}

// loadEntries lists the archive
func (m *Model) loadEntries() error {
	infos, err := m.service.ListEntries(m.config, m.archive)
	if err != nil {
		return err
	}

	m.entries = nil
	for _, info := range infos {
		m.entries = append(m.entries, EntryItem{
			Name:        info.Name,
			Size:        info.Size,
			PackedSize:  info.PackedSize,
			IsDirectory: info.IsDirectory,
			ModTime:     info.ModTime,
			CRC:         info.CRC,
		})
	}
	m.marked = nil
	if m.cursor >= len(m.entries) {
		m.cursor = max(len(m.entries)-1, 0)
	}
	return nil
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.statusMsg = msg.msg
		m.statusErr = msg.err
		return m, nil

	case previewMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Preview failed: %v", msg.err)
			m.statusErr = true
		} else {
			m.preview = msg.preview
			m.previewScroll = 0
			m.view = PreviewView
			m.statusMsg = ""
		}
		return m, nil

	case fileDiffMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Diff failed: %v", msg.err)
			m.statusErr = true
		} else {
			m.fileDiffResult = msg.result
			m.fileDiffScroll = 0
			m.diffSwapped = false
			m.view = DiffView
			m.statusMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		// Clear status on any key
		m.statusMsg = ""
		m.statusErr = false

		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			m.moveCursor(-1)

		case key.Matches(msg, keys.Down):
			m.moveCursor(1)

		case key.Matches(msg, keys.Enter):
			if m.view == EntriesView && len(m.entries) > 0 {
				e := m.entries[m.cursor]
				if e.IsDirectory {
					m.statusMsg = fmt.Sprintf("%s is a directory", e.Name)
					return m, nil
				}
				return m, m.loadPreview(e.Name)
			}

		case key.Matches(msg, keys.Back):
			switch m.view {
			case PreviewView:
				m.view = EntriesView
				m.preview = nil
				m.previewScroll = 0
			case DiffView:
				m.view = EntriesView
				m.fileDiffResult = nil
				m.fileDiffScroll = 0
			case EntriesView:
				m.marked = nil
			}

		case key.Matches(msg, keys.Mark):
			if m.view == EntriesView {
				m.toggleMark()
			}

		case key.Matches(msg, keys.Extract):
			if m.view == EntriesView {
				return m, m.runExtract()
			}

		case key.Matches(msg, keys.ExtractAll):
			if m.view == EntriesView {
				return m, m.runExtractAll()
			}

		case key.Matches(msg, keys.Diff):
			if m.view == EntriesView {
				return m, m.computeFileDiff()
			}

		case key.Matches(msg, keys.Swap):
			if m.view == DiffView && m.fileDiffResult != nil {
				m.diffSwapped = !m.diffSwapped
			}

		case key.Matches(msg, keys.Refresh):
			if m.view == EntriesView {
				if err := m.loadEntries(); err != nil {
					m.statusMsg = fmt.Sprintf("Error: %v", err)
					m.statusErr = true
				}
			}
		}
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	switch m.view {
	case EntriesView:
		m.cursor = clamp(m.cursor+delta, 0, len(m.entries)-1)
	case PreviewView:
		if m.preview != nil {
			m.previewScroll = clamp(m.previewScroll+delta, 0, len(m.preview.Lines)-m.visibleLines())
		}
	case DiffView:
		if m.fileDiffResult != nil {
			m.fileDiffScroll = clamp(m.fileDiffScroll+delta, 0, len(m.fileDiffResult.Lines)-m.visibleLines())
		}
	}
}

// visibleLines is the number of content rows that fit on screen
func (m *Model) visibleLines() int {
	return max(m.height-10, 5)
}

func (m *Model) toggleMark() {
	if len(m.entries) == 0 {
		return
	}
	idx := m.cursor
	for i, sel := range m.marked {
		if sel == idx {
			m.marked = append(m.marked[:i], m.marked[i+1:]...)
			return
		}
	}
	m.marked = append(m.marked, idx)
}

func (m *Model) isMarked(idx int) bool {
	for _, sel := range m.marked {
		if sel == idx {
			return true
		}
	}
	return false
}

// markedFiles returns marked non-directory names in marking order
func (m *Model) markedFiles() []string {
	var names []string
	for _, idx := range m.marked {
		if !m.entries[idx].IsDirectory {
			names = append(names, m.entries[idx].Name)
		}
	}
	return names
}

type statusMsg struct {
	msg string
	err bool
}

type previewMsg struct {
	preview *Preview
	err     error
}

type fileDiffMsg struct {
	result *compare.FileDiffResult
	err    error
}

func (m *Model) loadPreview(name string) tea.Cmd {
	return func() tea.Msg {
		content, err := m.service.ReadEntry(m.config, m.archive, name)
		if err != nil {
			return previewMsg{err: err}
		}
		p := &Preview{Name: name, Size: len(content)}
		text := string(content)
		if compare.IsBinaryContent(text) {
			p.IsBinary = true
		} else {
			p.Lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		}
		return previewMsg{preview: p}
	}
}

// runExtract extracts the marked files, or the file under the cursor when nothing is marked
func (m *Model) runExtract() tea.Cmd {
	names := m.markedFiles()
	if len(names) == 0 && len(m.entries) > 0 && !m.entries[m.cursor].IsDirectory {
		names = []string{m.entries[m.cursor].Name}
	}
	if len(names) == 0 {
		return func() tea.Msg {
			return statusMsg{err: true, msg: "No file selected"}
		}
	}

	return func() tea.Msg {
		n, err := m.service.ExtractEntries(m.config, m.archive, names)
		if err != nil {
			return statusMsg{err: true, msg: fmt.Sprintf("Extract failed: %v", err)}
		}
		return statusMsg{msg: fmt.Sprintf("✓ Extracted %d files to %s", n, m.config.OutputDir)}
	}
}

func (m *Model) runExtractAll() tea.Cmd {
	return func() tea.Msg {
		if err := m.service.ExtractAll(m.config, m.archive); err != nil {
			return statusMsg{err: true, msg: fmt.Sprintf("Extract failed: %v", err)}
		}
		return statusMsg{msg: fmt.Sprintf("✓ Extracted %s to %s", path.Base(m.archive), m.config.OutputDir)}
	}
}

// computeFileDiff diffs the two marked files
func (m *Model) computeFileDiff() tea.Cmd {
	names := m.markedFiles()
	if len(names) != 2 {
		return func() tea.Msg {
			return statusMsg{err: true, msg: "Mark exactly 2 files to diff (space to mark)"}
		}
	}

	return func() tea.Msg {
		content1, err := m.service.ReadEntry(m.config, m.archive, names[0])
		if err != nil {
			return fileDiffMsg{err: fmt.Errorf("reading %s: %w", names[0], err)}
		}
		content2, err := m.service.ReadEntry(m.config, m.archive, names[1])
		if err != nil {
			return fileDiffMsg{err: fmt.Errorf("reading %s: %w", names[1], err)}
		}
		return fileDiffMsg{result: compare.Files(names[0], names[1], content1, content2)}
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.view {
	case EntriesView:
		content = m.renderEntriesView()
	case PreviewView:
		content = m.renderPreviewView()
	case DiffView:
		content = m.renderFileDiffView()
	}

	return appStyle.Render(content)
}

func (m *Model) renderEntriesView() string {
	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf(" 🗜 %s ", path.Base(m.archive)))
	b.WriteString(title)
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("  Archive is empty"))
		b.WriteString("\n\n")
	} else {
		header := fmt.Sprintf("      %-36s %10s %10s %s",
			"NAME", "SIZE", "PACKED", "MODIFIED")
		b.WriteString(dimStyle.Render(header))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(strings.Repeat("─", 76)))
		b.WriteString("\n")

		visibleHeight := m.visibleLines()
		start := 0
		if m.cursor >= visibleHeight {
			start = m.cursor - visibleHeight + 1
		}

		for i := start; i < len(m.entries) && i < start+visibleHeight; i++ {
			e := m.entries[i]
			cursor := "  "
			style := normalStyle
			if i == m.cursor {
				cursor = "▸ "
				style = selectedStyle
			}
			checkbox := "[ ]"
			if m.isMarked(i) {
				checkbox = "[✓]"
			}

			name := e.Name
			size := driver.FormatSize(e.Size)
			packed := driver.FormatSize(e.PackedSize)
			if e.IsDirectory {
				name += "/"
				size, packed = "-", "-"
				if i != m.cursor {
					style = dirStyle
				}
			}

			modified := "-"
			if !e.ModTime.IsZero() {
				modified = relativeTime(e.ModTime)
			}

			line := fmt.Sprintf("%s%s %-36s %10s %10s %s",
				cursor, checkbox, truncate(name, 36), size, packed, modified)
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}

		// Pad to fixed height
		for i := len(m.entries); i < visibleHeight; i++ {
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderStatus())

	help := "[↑/↓] navigate  [enter] preview  [space] mark  [x] extract  [X] extract all  [d] diff  [q] quit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) renderPreviewView() string {
	var b strings.Builder

	if m.preview == nil {
		return "Loading..."
	}

	title := titleStyle.Render(fmt.Sprintf(" 📄 %s ", m.preview.Name))
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s", driver.FormatSize(uint64(m.preview.Size)))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 76)))
	b.WriteString("\n")

	switch {
	case m.preview.IsBinary:
		b.WriteString(dimStyle.Render("  Binary file - preview not available"))
		b.WriteString("\n")
	case m.preview.Size == 0:
		b.WriteString(dimStyle.Render("  Empty file"))
		b.WriteString("\n")
	default:
		visibleHeight := m.visibleLines()
		endIdx := min(m.previewScroll+visibleHeight, len(m.preview.Lines))

		for i := m.previewScroll; i < endIdx; i++ {
			line := fmt.Sprintf("%4d  %s", i+1, truncate(m.preview.Lines[i], 70))
			b.WriteString(normalStyle.Render(line))
			b.WriteString("\n")
		}

		if len(m.preview.Lines) > visibleHeight {
			scrollInfo := fmt.Sprintf("  Lines %d-%d of %d",
				m.previewScroll+1, endIdx, len(m.preview.Lines))
			b.WriteString(dimStyle.Render(scrollInfo))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderStatus())

	help := "[↑/↓] scroll  [esc] back  [q] quit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) renderFileDiffView() string {
	var b strings.Builder

	if m.fileDiffResult == nil {
		return "Loading..."
	}

	p1, p2 := m.fileDiffResult.Path1, m.fileDiffResult.Path2
	if m.diffSwapped {
		p1, p2 = p2, p1
	}
	title := titleStyle.Render(fmt.Sprintf(" 📊 %s vs %s ", p1, p2))
	b.WriteString(title)
	b.WriteString("\n")

	summary := fmt.Sprintf("  Added: %d   Deleted: %d", m.fileDiffResult.Added, m.fileDiffResult.Deleted)
	b.WriteString(dimStyle.Render(summary))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 76)))
	b.WriteString("\n")

	switch {
	case m.fileDiffResult.IsBinary:
		b.WriteString(dimStyle.Render("  Binary file - content diff not available"))
		b.WriteString("\n")
	case m.fileDiffResult.Identical():
		b.WriteString(dimStyle.Render("  No differences"))
		b.WriteString("\n")
	default:
		visibleHeight := m.visibleLines()
		endIdx := min(m.fileDiffScroll+visibleHeight, len(m.fileDiffResult.Lines))

		for i := m.fileDiffScroll; i < endIdx; i++ {
			line := m.fileDiffResult.Lines[i]

			ln1 := "   "
			ln2 := "   "
			if line.LineNum1 > 0 {
				ln1 = fmt.Sprintf("%3d", line.LineNum1)
			}
			if line.LineNum2 > 0 {
				ln2 = fmt.Sprintf("%3d", line.LineNum2)
			}

			// Swapping sides also flips the direction of each change
			lineType := line.Type
			if m.diffSwapped {
				ln1, ln2 = ln2, ln1
				switch lineType {
				case '+':
					lineType = '-'
				case '-':
					lineType = '+'
				}
			}

			content := truncate(line.Content, 60)
			switch lineType {
			case '+':
				b.WriteString(addedStyle.Render(fmt.Sprintf("%s  + │ %s  + %s", ln1, ln2, content)))
			case '-':
				b.WriteString(deletedStyle.Render(fmt.Sprintf("%s  - │ %s  - %s", ln1, ln2, content)))
			default:
				b.WriteString(dimStyle.Render(fmt.Sprintf("%s    │ %s    %s", ln1, ln2, content)))
			}
			b.WriteString("\n")
		}

		if len(m.fileDiffResult.Lines) > visibleHeight {
			scrollInfo := fmt.Sprintf("  Lines %d-%d of %d",
				m.fileDiffScroll+1, endIdx, len(m.fileDiffResult.Lines))
			b.WriteString(dimStyle.Render(scrollInfo))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderStatus())

	help := "[↑/↓] scroll  [s] swap sides  [esc] back  [q] quit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) renderStatus() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.statusMsg != "" {
		if m.statusErr {
			b.WriteString(errorBadge.Render(m.statusMsg))
		} else {
			b.WriteString(successBadge.Render(m.statusMsg))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Run starts the TUI on archive
func Run(svc ports.TUIService, archive string) error {
	m, err := NewModelWithService(svc, archive)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// Helper functions
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func relativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2 2006")
	}
}
