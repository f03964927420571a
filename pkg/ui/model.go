package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treework/internal/datasource"
	"github.com/vanderheijden86/treework/pkg/config"
	"github.com/vanderheijden86/treework/pkg/debug"
	"github.com/vanderheijden86/treework/pkg/metrics"
	"github.com/vanderheijden86/treework/pkg/outline"
	"github.com/vanderheijden86/treework/pkg/tree"
	"github.com/vanderheijden86/treework/pkg/watcher"
)

// FileChangedMsg is sent when the outline source changes on disk.
type FileChangedMsg struct{}

// WatchFileCmd returns a command that waits for the next file change.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// mode is the model's input mode. Normal mode routes keys to navigation and
// structure commands; the others route them to a modal.
type mode int

const (
	modeNormal mode = iota
	modeInput       // textinput modal (insert or rename)
	modeConfirm
	modeHelp
)

// inputAction says what the textinput modal will do on submit.
type inputAction int

const (
	inputInsertAfter inputAction = iota
	inputInsertChild
	inputInsertParent
	inputRename
)

// confirmAction says what pressing y in the confirm prompt will do.
type confirmAction int

const (
	confirmDeleteSubtree confirmAction = iota
	confirmDeleteChildren
)

// Options configures a new Model.
type Options struct {
	Items  []outline.Item
	Config config.Config
	Theme  Theme

	// SavePath is where w writes the outline as JSONL. Empty disables
	// saving.
	SavePath string
	// SourcePath is the file reloaded on watcher events. Usually equals
	// SavePath but differs when viewing a SQLite source.
	Source  datasource.Source
	Watcher *watcher.Watcher
	// TwDir holds view-state.json. Empty disables persistence.
	TwDir string

	// Browse enables read-only filesystem browsing with lazy directory
	// loading.
	Browse     bool
	BrowseOpts datasource.BrowseOptions
}

// Model is the top-level Bubble Tea model.
type Model struct {
	treeView TreeView
	theme    Theme
	cfg      config.Config

	mode          mode
	input         textinput.Model
	inputAction   inputAction
	confirmAction confirmAction

	statusMsg     string
	statusIsError bool

	width  int
	height int

	savePath string
	source   datasource.Source
	watcher  *watcher.Watcher
	// lastItems is the snapshot the next disk reload is diffed against.
	lastItems []outline.Item
	dirty     bool

	browse     bool
	browseOpts datasource.BrowseOptions

	quitting bool
}

// NewModel builds the model and its tree view from the given options.
func NewModel(opts Options) Model {
	theme := opts.Theme
	if theme.Renderer == nil {
		theme = DefaultTheme(lipgloss.DefaultRenderer())
	}

	tv := NewTreeView(theme)
	tv.SetTwDir(opts.TwDir)
	tv.SetGlyphs(opts.Config.Tree.Glyphs)
	tv.SetWrap(opts.Config.Navigation.Wrap)
	tv.SetPageSize(opts.Config.Navigation.PageSize)
	tv.SetExpandDepth(opts.Config.Tree.ExpandDepth())
	tv.SetSize(80, 24)
	tv.Build(opts.Items)

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	return Model{
		treeView:   tv,
		theme:      theme,
		cfg:        opts.Config,
		input:      ti,
		width:      80,
		height:     24,
		savePath:   opts.SavePath,
		source:     opts.Source,
		watcher:    opts.Watcher,
		lastItems:  opts.Items,
		browse:     opts.Browse,
		browseOpts: opts.BrowseOpts,
	}
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.treeView.SetSize(msg.Width, m.treeHeight())
		return m, nil

	case FileChangedMsg:
		return m.handleFileChanged()

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeHelp:
			return m.updateHelp(msg)
		default:
			return m.updateNormal(msg)
		}
	}

	return m, nil
}

// treeHeight is the space left for the tree view after the status bar.
func (m Model) treeHeight() int {
	h := m.height
	if m.cfg.UI.StatusVisible() {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

// ── Disk reload ──

func (m Model) handleFileChanged() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}

	done := metrics.Timer(metrics.WatchReload)
	defer done()

	items, err := datasource.LoadFromSource(m.source)
	if err != nil {
		m.statusMsg = fmt.Sprintf("Reload error: %v", err)
		m.statusIsError = true
		return m, tea.Batch(cmds...)
	}

	diff := datasource.DetectChanges(m.lastItems, items, datasource.DefaultDiffOptions())
	if !diff.HasChanges() {
		return m, tea.Batch(cmds...)
	}

	debug.Log("reload: %s", diff.Summary())
	m.treeView.Reload(items)
	m.lastItems = items
	m.dirty = false
	m.statusMsg = "Reloaded: " + diff.Summary()
	m.statusIsError = false
	return m, tea.Batch(cmds...)
}

// ── Normal mode ──

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		m.treeView.MoveDown()
	case "k", "up":
		m.treeView.MoveUp()
	case "h", "left":
		m.treeView.CollapseOrJumpToParent()
	case "l", "right":
		if m.treeView.ExpandOrMoveToChild() {
			m.lazyLoadChildren()
		}
	case "g":
		m.treeView.JumpToTop()
	case "G":
		m.treeView.JumpToBottom()
	case "pgup", "ctrl+u":
		m.treeView.PageUp()
	case "pgdown", "ctrl+d":
		m.treeView.PageDown()
	case "p":
		m.treeView.JumpToParent()

	case "enter", " ":
		if m.treeView.ToggleCollapse() {
			m.lazyLoadChildren()
		}
	case "X":
		m.treeView.ExpandAll()
	case "Z":
		m.treeView.CollapseAll()

	case "i":
		return m.startInput(inputInsertAfter, "New item")
	case "I":
		return m.startInput(inputInsertChild, "New child")
	case "O":
		return m.startInput(inputInsertParent, "New parent")
	case "r":
		return m.startRename()
	case "c":
		m.toggleContainer()
	case "d":
		return m.startConfirm(confirmDeleteSubtree)
	case "D":
		return m.startConfirm(confirmDeleteChildren)
	case "x":
		m.extractSelected()

	case "y":
		m.yankTitle()
	case "w":
		m.save()

	case "?":
		m.mode = modeHelp
	}

	return m, nil
}

// lazyLoadChildren populates an expanded empty directory in browse mode.
// Folding a loaded directory, or unfolding it again, must not re-fetch.
func (m *Model) lazyLoadChildren() {
	if !m.browse || !m.treeView.selectedUnloadedContainer() {
		return
	}
	item, ok := m.treeView.SelectedItem()
	if !ok {
		return
	}
	children, err := datasource.LoadChildren(item.ID, m.browseOpts)
	if err != nil {
		m.statusMsg = fmt.Sprintf("Cannot read %s: %v", item.Title, err)
		m.statusIsError = true
		return
	}
	n := m.treeView.InsertLoadedChildren(item.ID, children)
	if n > 0 {
		m.statusMsg = fmt.Sprintf("Loaded %d entries", n)
		m.statusIsError = false
	}
}

func (m Model) startInput(action inputAction, placeholder string) (tea.Model, tea.Cmd) {
	if m.browse {
		return m.readOnlyStatus()
	}
	m.inputAction = action
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
	m.mode = modeInput
	return m, textinput.Blink
}

func (m Model) startRename() (tea.Model, tea.Cmd) {
	if m.browse {
		return m.readOnlyStatus()
	}
	item, ok := m.treeView.SelectedItem()
	if !ok {
		return m, nil
	}
	m.inputAction = inputRename
	m.input.Placeholder = "Title"
	m.input.SetValue(item.Title)
	m.input.CursorEnd()
	m.input.Focus()
	m.mode = modeInput
	return m, textinput.Blink
}

func (m Model) startConfirm(action confirmAction) (tea.Model, tea.Cmd) {
	if m.browse {
		return m.readOnlyStatus()
	}
	if _, ok := m.treeView.SelectedItem(); !ok {
		return m, nil
	}
	m.confirmAction = action
	m.mode = modeConfirm
	return m, nil
}

func (m Model) readOnlyStatus() (tea.Model, tea.Cmd) {
	m.statusMsg = "Read-only while browsing"
	m.statusIsError = true
	return m, nil
}

func (m *Model) toggleContainer() {
	if m.browse {
		m.statusMsg = "Read-only while browsing"
		m.statusIsError = true
		return
	}
	if err := m.treeView.ToggleContainerKind(); err != nil {
		return
	}
	m.dirty = true
	if item, ok := m.treeView.SelectedItem(); ok {
		if item.IsContainer() {
			m.statusMsg = "Now a heading"
		} else {
			m.statusMsg = "Now a note"
		}
		m.statusIsError = false
	}
}

func (m *Model) extractSelected() {
	if m.browse {
		m.statusMsg = "Read-only while browsing"
		m.statusIsError = true
		return
	}
	item, err := m.treeView.ExtractSelected()
	if err != nil {
		return
	}
	m.dirty = true
	m.statusMsg = fmt.Sprintf("Extracted %q, children promoted", item.Title)
	m.statusIsError = false
}

func (m *Model) yankTitle() {
	item, ok := m.treeView.SelectedItem()
	if !ok {
		return
	}
	if err := clipboard.WriteAll(item.Title); err != nil {
		m.statusMsg = fmt.Sprintf("Clipboard error: %v", err)
		m.statusIsError = true
		return
	}
	m.statusMsg = fmt.Sprintf("Copied %q", truncate(item.Title, 40))
	m.statusIsError = false
}

func (m *Model) save() {
	if m.browse || m.savePath == "" {
		m.statusMsg = "Nowhere to save"
		m.statusIsError = true
		return
	}
	items := m.treeView.Items()
	if err := datasource.SaveJSONL(m.savePath, items); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		m.statusIsError = true
		return
	}
	m.lastItems = items
	m.dirty = false
	m.statusMsg = fmt.Sprintf("Saved %d items", len(items))
	m.statusIsError = false
}

// ── Input mode ──

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		m.mode = modeNormal
		m.input.Blur()
		if title == "" {
			return m, nil
		}
		m.applyInput(title)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyInput(title string) {
	if m.inputAction == inputRename {
		if err := m.treeView.Rename(title); err != nil {
			m.statusMsg = fmt.Sprintf("Rename failed: %v", err)
			m.statusIsError = true
			return
		}
		m.dirty = true
		m.statusMsg = "Renamed"
		m.statusIsError = false
		return
	}

	var (
		item outline.Item
		p    tree.Placement
	)
	switch m.inputAction {
	case inputInsertChild:
		item = outline.NewItem(title)
		p = tree.FirstChild
	case inputInsertParent:
		// A spliced-in parent gets heading semantics so it folds like
		// the structural node it now is.
		item = outline.NewHeading(title)
		p = tree.Parent
	default:
		item = outline.NewItem(title)
		p = tree.After
	}
	item.UpdatedAt = time.Now()

	if err := m.treeView.InsertItem(item, p); err != nil {
		m.statusMsg = fmt.Sprintf("Insert failed: %v", err)
		m.statusIsError = true
		return
	}
	m.dirty = true
	m.statusMsg = fmt.Sprintf("Added %q", truncate(title, 40))
	m.statusIsError = false
}

// ── Confirm mode ──

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = modeNormal
		m.applyConfirm()
	case "n", "N", "esc", "q":
		m.mode = modeNormal
	}
	return m, nil
}

func (m *Model) applyConfirm() {
	var (
		removed []outline.Item
		err     error
		what    string
	)
	if m.confirmAction == confirmDeleteChildren {
		removed, err = m.treeView.RemoveSelectedChildren()
		what = "children"
	} else {
		removed, err = m.treeView.RemoveSelectedSubtree()
		what = "subtree"
	}
	if err != nil {
		m.statusMsg = fmt.Sprintf("Delete failed: %v", err)
		m.statusIsError = true
		return
	}
	m.dirty = true
	m.statusMsg = fmt.Sprintf("Removed %s (%d items)", what, len(removed))
	m.statusIsError = false
}

// ── Help mode ──

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q", "enter":
		m.mode = modeNormal
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// ── View ──

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.mode == modeHelp {
		help := RenderHelp(m.theme, m.width, m.height)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, help)
	}

	var sb strings.Builder
	sb.WriteString(m.treeView.View())

	if m.mode == modeInput {
		sb.WriteString("\n")
		sb.WriteString(m.renderInputModal())
	}
	if m.mode == modeConfirm {
		sb.WriteString("\n")
		sb.WriteString(m.renderConfirmPrompt())
	}

	if m.cfg.UI.StatusVisible() {
		sb.WriteString("\n")
		sb.WriteString(m.renderStatusBar())
	}

	return sb.String()
}

func (m Model) renderInputModal() string {
	var label string
	switch m.inputAction {
	case inputInsertChild:
		label = "Insert child"
	case inputInsertParent:
		label = "Insert parent"
	case inputRename:
		label = "Rename"
	default:
		label = "Insert after"
	}

	r := m.theme.Renderer
	labelStyle := r.NewStyle().Bold(true).Foreground(m.theme.Primary)
	boxStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Secondary).
		Padding(0, 1)

	return boxStyle.Render(labelStyle.Render(label) + "\n" + m.input.View())
}

func (m Model) renderConfirmPrompt() string {
	item, _ := m.treeView.SelectedItem()
	var question string
	if m.confirmAction == confirmDeleteChildren {
		question = fmt.Sprintf("Delete children of %q? (y/n)", truncate(item.Title, 40))
	} else {
		question = fmt.Sprintf("Delete %q and its subtree? (y/n)", truncate(item.Title, 40))
	}
	return m.theme.StatusError.Render(" " + question)
}

func (m Model) renderStatusBar() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	left := m.statusMsg
	if left == "" {
		if m.browse {
			left = "browsing (read-only)"
		} else if m.dirty {
			left = "unsaved changes · w to save"
		} else {
			left = "? for help"
		}
	}

	right := fmt.Sprintf("%d/%d rows · %d items",
		m.treeView.SelectedRow()+1, m.treeView.RowCount(), m.treeView.NodeCount())
	if m.treeView.RowCount() == 0 {
		right = "empty"
	}

	style := m.theme.StatusText
	if m.statusIsError {
		style = m.theme.StatusError
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := " " + left + strings.Repeat(" ", gap) + right
	return style.Width(width).MaxWidth(width).Render(line)
}

// Mode exposes the current input mode for tests.
func (m Model) Mode() int { return int(m.mode) }

// StatusMessage exposes the status line for tests.
func (m Model) StatusMessage() string { return m.statusMsg }

// TreeView returns a pointer-free copy accessor used by tests to inspect
// selection and row state.
func (m Model) CurrentTreeView() *TreeView { return &m.treeView }
