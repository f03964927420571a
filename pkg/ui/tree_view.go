package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treework/pkg/metrics"
	"github.com/vanderheijden86/treework/pkg/outline"
	"github.com/vanderheijden86/treework/pkg/tree"
)

// GlyphSet holds the characters used to draw tree structure. Each branch
// glyph is exactly four cells wide so depth maps linearly onto columns.
type GlyphSet struct {
	Vertical  string // continuation line through an ancestor level
	Blank     string // empty ancestor level
	Branch    string // node with siblings below
	Last      string // last child
	Expanded  string // fold indicator, open
	Collapsed string // fold indicator, closed
	Leaf      string // fold indicator, leaf
}

// UnicodeGlyphs is the default glyph set.
var UnicodeGlyphs = GlyphSet{
	Vertical:  "│   ",
	Blank:     "    ",
	Branch:    "├── ",
	Last:      "└── ",
	Expanded:  "▾",
	Collapsed: "▸",
	Leaf:      "•",
}

// ASCIIGlyphs avoids box-drawing characters for terminals that render them
// poorly.
var ASCIIGlyphs = GlyphSet{
	Vertical:  "|   ",
	Blank:     "    ",
	Branch:    "|-- ",
	Last:      "`-- ",
	Expanded:  "v",
	Collapsed: ">",
	Leaf:      "*",
}

// GlyphSetByName resolves the tree.glyphs config value.
func GlyphSetByName(name string) GlyphSet {
	if name == "ascii" {
		return ASCIIGlyphs
	}
	return UnicodeGlyphs
}

// TreeView renders an outline tree as a windowed, navigable list of visible
// rows. The projection and selection live in pkg/tree; this type owns only
// presentation state (viewport, glyphs, theme) and the item-ID bookkeeping
// needed to survive reloads.
type TreeView struct {
	tree     *tree.Tree[outline.Item]
	nav      *tree.Navigator[outline.Item]
	nodeByID map[string]tree.NodeID

	theme    Theme
	glyphs   GlyphSet
	width    int
	height   int
	offset   int // first visible row index (windowed rendering)
	pageSize int
	wrap     bool

	expandDepth int    // levels expanded by default on build
	twDir       string // directory for view-state.json; empty disables persistence

	built    bool
	lastHash string
}

// NewTreeView returns an empty tree view.
func NewTreeView(theme Theme) TreeView {
	return TreeView{
		theme:       theme,
		glyphs:      UnicodeGlyphs,
		pageSize:    10,
		expandDepth: 1,
		nodeByID:    make(map[string]tree.NodeID),
	}
}

// SetSize updates the available dimensions for the tree view.
func (tv *TreeView) SetSize(width, height int) {
	tv.width = width
	tv.height = height
	tv.ensureCursorVisible()
}

// SetTwDir sets the directory used for view-state persistence. Must be
// called before Build if fold state should be restored. Empty disables
// persistence entirely so tests never touch the working directory.
func (tv *TreeView) SetTwDir(dir string) { tv.twDir = dir }

// SetGlyphs selects the glyph set by config name ("unicode" or "ascii").
func (tv *TreeView) SetGlyphs(name string) { tv.glyphs = GlyphSetByName(name) }

// SetWrap sets the boundary policy for single-step moves. Off by default:
// the selection clamps at the first and last row.
func (tv *TreeView) SetWrap(wrap bool) {
	tv.wrap = wrap
	if tv.nav != nil {
		tv.nav.SetWrap(wrap)
	}
}

// SetPageSize sets the rows moved by page up/down.
func (tv *TreeView) SetPageSize(n int) {
	if n > 0 {
		tv.pageSize = n
	}
}

// SetExpandDepth sets how many levels are expanded when an outline is built
// (before the persisted view state is applied on top).
func (tv *TreeView) SetExpandDepth(depth int) { tv.expandDepth = depth }

// Build constructs the tree from outline items, applies default fold state
// and the persisted view state, and selects the first row (or the persisted
// selection when it is still visible).
func (tv *TreeView) Build(items []outline.Item) {
	done := metrics.Timer(metrics.TreeBuild)
	defer done()

	tv.tree, tv.nodeByID = outline.BuildTree(items)
	tv.nav = tree.NewNavigator(tv.tree)
	tv.nav.SetWrap(tv.wrap)
	tv.offset = 0

	tv.applyDefaultFold()

	state := LoadViewState(tv.twDir)
	tv.applyState(state)

	tv.nav.OnStructureChanged()
	if state.Selected != "" {
		if id, ok := tv.nodeByID[state.Selected]; ok {
			_ = tv.nav.Select(id) // hidden or stale: keep the repaired selection
		}
	}

	tv.built = true
	tv.lastHash = outline.Hash(items)
	tv.ensureCursorVisible()
}

// Reload rebuilds the view from fresh items while preserving the current
// fold state and selection by item ID. Used by the live-reload path.
func (tv *TreeView) Reload(items []outline.Item) {
	if !tv.built {
		tv.Build(items)
		return
	}

	collapsed := tv.collapsedByID()
	selectedID := tv.SelectedID()

	tv.tree, tv.nodeByID = outline.BuildTree(items)
	tv.nav = tree.NewNavigator(tv.tree)
	tv.nav.SetWrap(tv.wrap)

	tv.applyDefaultFold()
	for itemID, c := range collapsed {
		if id, ok := tv.nodeByID[itemID]; ok {
			_, _ = tv.tree.SetCollapsed(id, c)
		}
	}

	tv.nav.OnStructureChanged()
	if selectedID != "" {
		if id, ok := tv.nodeByID[selectedID]; ok {
			_ = tv.nav.Select(id)
		}
	}
	tv.lastHash = outline.Hash(items)
	tv.ensureCursorVisible()
}

// walkAll visits every node (hidden ones included) in pre-order with an
// explicit stack and yields its depth.
func (tv *TreeView) walkAll(visit func(id tree.NodeID, depth int)) {
	type frame struct {
		id    tree.NodeID
		depth int
	}
	var stack []frame
	var roots []tree.NodeID
	for r := range tv.tree.Roots() {
		roots = append(roots, r)
	}
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(f.id, f.depth)

		var kids []tree.NodeID
		for c := range tv.tree.Children(f.id) {
			kids = append(kids, c)
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{kids[i], f.depth + 1})
		}
	}
}

// applyDefaultFold collapses everything at or below the configured expand
// depth and expands the levels above it.
func (tv *TreeView) applyDefaultFold() {
	tv.walkAll(func(id tree.NodeID, depth int) {
		_, _ = tv.tree.SetCollapsed(id, depth >= tv.expandDepth)
	})
}

// defaultCollapsed is the fold state a node has when the user never touched
// it; saveState records only deviations from this.
func (tv *TreeView) defaultCollapsed(depth int) bool {
	return depth >= tv.expandDepth
}

// applyState overlays explicit user fold choices from the persisted state.
// Stale item IDs are silently ignored.
func (tv *TreeView) applyState(state *ViewState) {
	if state == nil || len(state.Collapsed) == 0 {
		return
	}
	for itemID, collapsed := range state.Collapsed {
		if id, ok := tv.nodeByID[itemID]; ok {
			_, _ = tv.tree.SetCollapsed(id, collapsed)
		}
	}
}

// collapsedByID snapshots the current fold flag of every foldable node.
func (tv *TreeView) collapsedByID() map[string]bool {
	out := make(map[string]bool)
	tv.walkAll(func(id tree.NodeID, depth int) {
		item, err := tv.tree.Payload(id)
		if err != nil {
			return
		}
		if c, err := tv.tree.Collapsed(id); err == nil {
			out[item.ID] = c
		}
	})
	return out
}

// saveState persists fold deviations and the selection. Skipped entirely
// when no persistence directory is configured.
func (tv *TreeView) saveState() {
	if tv.twDir == "" || tv.tree == nil {
		return
	}
	state := DefaultViewState()
	tv.walkAll(func(id tree.NodeID, depth int) {
		hasKids, _ := tv.tree.HasChildren(id)
		container, _ := tv.tree.IsContainer(id)
		if !hasKids && !container {
			return
		}
		collapsed, err := tv.tree.Collapsed(id)
		if err != nil || collapsed == tv.defaultCollapsed(depth) {
			return
		}
		if item, err := tv.tree.Payload(id); err == nil {
			state.Collapsed[item.ID] = collapsed
		}
	})
	state.Selected = tv.SelectedID()
	SaveViewState(tv.twDir, state)
}

// Tree exposes the underlying tree for stats and snapshot export.
func (tv *TreeView) Tree() *tree.Tree[outline.Item] { return tv.tree }

// IsBuilt reports whether an outline has been loaded.
func (tv *TreeView) IsBuilt() bool { return tv.built }

// DataHash returns the content hash of the last loaded items.
func (tv *TreeView) DataHash() string { return tv.lastHash }

// RowCount returns the number of currently visible rows.
func (tv *TreeView) RowCount() int {
	if tv.tree == nil {
		return 0
	}
	return tv.tree.RowCount()
}

// NodeCount returns the number of items in the outline, hidden included.
func (tv *TreeView) NodeCount() int {
	if tv.tree == nil {
		return 0
	}
	return tv.tree.Len()
}

// SelectedItem returns the item under the cursor. ok is false when the
// outline is empty.
func (tv *TreeView) SelectedItem() (outline.Item, bool) {
	if tv.nav == nil {
		return outline.Item{}, false
	}
	row, ok := tv.nav.Selection()
	if !ok {
		return outline.Item{}, false
	}
	return row.Payload, true
}

// SelectedID returns the selected item's ID, or empty when none.
func (tv *TreeView) SelectedID() string {
	if item, ok := tv.SelectedItem(); ok {
		return item.ID
	}
	return ""
}

// SelectedRow returns the selected list position, or -1 when none.
func (tv *TreeView) SelectedRow() int {
	if tv.nav == nil {
		return -1
	}
	return tv.nav.SelectedRow()
}

// SelectByID moves the selection to the item with the given ID if it is
// currently visible. Reports whether the selection moved.
func (tv *TreeView) SelectByID(itemID string) bool {
	id, ok := tv.nodeByID[itemID]
	if !ok || tv.nav == nil {
		return false
	}
	if err := tv.nav.Select(id); err != nil {
		return false
	}
	tv.ensureCursorVisible()
	return true
}

// ── Movement ──

// MoveDown moves the cursor one row down.
func (tv *TreeView) MoveDown() {
	if tv.nav == nil {
		return
	}
	tv.nav.MoveDown()
	tv.ensureCursorVisible()
}

// MoveUp moves the cursor one row up.
func (tv *TreeView) MoveUp() {
	if tv.nav == nil {
		return
	}
	tv.nav.MoveUp()
	tv.ensureCursorVisible()
}

// PageDown moves the cursor a page down, clamping at the last row.
func (tv *TreeView) PageDown() {
	if tv.nav == nil {
		return
	}
	tv.nav.MoveBy(tv.pageSize)
	tv.ensureCursorVisible()
}

// PageUp moves the cursor a page up, clamping at the first row.
func (tv *TreeView) PageUp() {
	if tv.nav == nil {
		return
	}
	tv.nav.MoveBy(-tv.pageSize)
	tv.ensureCursorVisible()
}

// JumpToTop moves the cursor to the first row.
func (tv *TreeView) JumpToTop() {
	if tv.nav == nil {
		return
	}
	tv.nav.MoveToTop()
	tv.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last row.
func (tv *TreeView) JumpToBottom() {
	if tv.nav == nil {
		return
	}
	tv.nav.MoveToBottom()
	tv.ensureCursorVisible()
}

// JumpToParent moves the cursor to the selected node's parent. Roots stay
// put.
func (tv *TreeView) JumpToParent() {
	if tv.nav == nil {
		return
	}
	tv.nav.MoveToParent()
	tv.ensureCursorVisible()
}

// ── Fold operations ──

// ToggleCollapse folds or unfolds the selected node. Reports whether
// anything changed (leaves without container semantics never do).
func (tv *TreeView) ToggleCollapse() bool {
	if tv.nav == nil {
		return false
	}
	row, ok := tv.nav.Selection()
	if !ok {
		return false
	}
	before := row.Collapsed
	_, err := tv.tree.ToggleCollapsed(row.Node)
	if err != nil {
		return false
	}
	after, _ := tv.tree.Collapsed(row.Node)
	if before == after {
		return false
	}
	tv.afterMutation()
	return true
}

// ExpandOrMoveToChild handles the l / → key: unfold a folded node, step
// into the first child of an unfolded one, ignore leaves. Reports whether
// an empty container was expanded, which is the lazy-load trigger in
// browse mode.
func (tv *TreeView) ExpandOrMoveToChild() (expandedEmpty bool) {
	if tv.nav == nil {
		return false
	}
	row, ok := tv.nav.Selection()
	if !ok {
		return false
	}
	if row.Collapsed {
		_, _ = tv.tree.SetCollapsed(row.Node, false)
		tv.afterMutation()
		return row.Container && !row.HasChildren
	}
	tv.nav.MoveToFirstChild()
	tv.ensureCursorVisible()
	return false
}

// selectedUnloadedContainer reports whether the selection is an unfolded
// container with no children yet. Browse mode keys use this to decide
// whether a directory listing still needs to be fetched.
func (tv *TreeView) selectedUnloadedContainer() bool {
	if tv.nav == nil {
		return false
	}
	row, ok := tv.nav.Selection()
	if !ok {
		return false
	}
	return row.Container && !row.HasChildren && !row.Collapsed
}

// CollapseOrJumpToParent handles the h / ← key: fold an unfolded parent,
// otherwise jump to the parent.
func (tv *TreeView) CollapseOrJumpToParent() {
	if tv.nav == nil {
		return
	}
	row, ok := tv.nav.Selection()
	if !ok {
		return
	}
	if (row.HasChildren || row.Container) && !row.Collapsed {
		_, _ = tv.tree.SetCollapsed(row.Node, true)
		tv.afterMutation()
		return
	}
	tv.JumpToParent()
}

// ExpandAll unfolds every node.
func (tv *TreeView) ExpandAll() {
	tv.setAllCollapsed(false)
}

// CollapseAll folds every foldable node.
func (tv *TreeView) CollapseAll() {
	tv.setAllCollapsed(true)
}

func (tv *TreeView) setAllCollapsed(collapsed bool) {
	if tv.tree == nil {
		return
	}
	tv.walkAll(func(id tree.NodeID, depth int) {
		_, _ = tv.tree.SetCollapsed(id, collapsed)
	})
	tv.afterMutation()
}

// ── Structural mutations ──

// InsertItem splices a new item relative to the selection and selects it.
// With an empty outline any placement appends a root. Heading items become
// container nodes.
func (tv *TreeView) InsertItem(item outline.Item, p tree.Placement) error {
	done := metrics.Timer(metrics.TreeMutation)
	defer done()

	if tv.tree == nil {
		return tree.ErrInvalidNode
	}

	var id tree.NodeID
	ref := tv.selectedNode()
	if ref.IsNone() {
		if item.IsContainer() {
			id = tv.tree.AppendContainer(item)
		} else {
			id = tv.tree.Append(item)
		}
	} else {
		var err error
		if item.IsContainer() {
			id, err = tv.tree.InsertContainer(item, p, ref)
		} else {
			id, err = tv.tree.Insert(item, p, ref)
		}
		if err != nil {
			return err
		}
	}

	tv.nodeByID[item.ID] = id
	// Inserting under a folded parent leaves the new node hidden; unfold so
	// the user sees what they just created.
	if parent, err := tv.tree.ParentOf(id); err == nil && !parent.IsNone() {
		_, _ = tv.tree.SetCollapsed(parent, false)
	}
	tv.afterMutation()
	_ = tv.nav.Select(id)
	tv.ensureCursorVisible()
	return nil
}

// Rename replaces the selected item's title.
func (tv *TreeView) Rename(title string) error {
	row, ok := tv.selection()
	if !ok {
		return tree.ErrInvalidNode
	}
	item := row.Payload
	item.Title = title
	return tv.tree.SetPayload(row.Node, item)
}

// RemoveSelectedSubtree removes the selected node and all its descendants,
// returning the removed items.
func (tv *TreeView) RemoveSelectedSubtree() ([]outline.Item, error) {
	done := metrics.Timer(metrics.TreeMutation)
	defer done()

	row, ok := tv.selection()
	if !ok {
		return nil, tree.ErrInvalidNode
	}
	removed, err := tv.tree.RemoveSubtree(row.Node)
	if err != nil {
		return nil, err
	}
	tv.dropFromIndex(removed)
	tv.afterMutation()
	return removed, nil
}

// RemoveSelectedChildren removes the selected node's descendants but keeps
// the node itself, fold flag included.
func (tv *TreeView) RemoveSelectedChildren() ([]outline.Item, error) {
	done := metrics.Timer(metrics.TreeMutation)
	defer done()

	row, ok := tv.selection()
	if !ok {
		return nil, tree.ErrInvalidNode
	}
	removed, err := tv.tree.RemoveChildren(row.Node)
	if err != nil {
		return nil, err
	}
	tv.dropFromIndex(removed)
	tv.afterMutation()
	return removed, nil
}

// ExtractSelected removes only the selected node, promoting its children
// into its place.
func (tv *TreeView) ExtractSelected() (outline.Item, error) {
	done := metrics.Timer(metrics.TreeMutation)
	defer done()

	row, ok := tv.selection()
	if !ok {
		return outline.Item{}, tree.ErrInvalidNode
	}
	item, err := tv.tree.Extract(row.Node)
	if err != nil {
		return outline.Item{}, err
	}
	delete(tv.nodeByID, item.ID)
	tv.afterMutation()
	return item, nil
}

// ToggleContainerKind flips the selected item between heading and note,
// keeping the tree's container flag in sync.
func (tv *TreeView) ToggleContainerKind() error {
	row, ok := tv.selection()
	if !ok {
		return tree.ErrInvalidNode
	}
	item := row.Payload
	if item.Kind == outline.KindHeading {
		item.Kind = outline.KindNote
	} else {
		item.Kind = outline.KindHeading
	}
	if err := tv.tree.SetContainer(row.Node, item.IsContainer()); err != nil {
		return err
	}
	if err := tv.tree.SetPayload(row.Node, item); err != nil {
		return err
	}
	tv.afterMutation()
	return nil
}

// InsertLoadedChildren appends lazily loaded items under the node with the
// given item ID, in order. Browse mode calls this when an unexplored
// directory expands. Returns the number of nodes added.
func (tv *TreeView) InsertLoadedChildren(parentItemID string, items []outline.Item) int {
	done := metrics.Timer(metrics.TreeMutation)
	defer done()

	parent, ok := tv.nodeByID[parentItemID]
	if !ok {
		return 0
	}
	added := 0
	for _, item := range items {
		var (
			id  tree.NodeID
			err error
		)
		if item.IsContainer() {
			id, err = tv.tree.InsertContainer(item, tree.LastChild, parent)
		} else {
			id, err = tv.tree.Insert(item, tree.LastChild, parent)
		}
		if err != nil {
			continue
		}
		// Directories start folded until the user steps into them.
		if item.IsContainer() {
			_, _ = tv.tree.SetCollapsed(id, true)
		}
		tv.nodeByID[item.ID] = id
		added++
	}
	if added > 0 {
		tv.afterMutation()
	}
	return added
}

// Items flattens the current tree back into records for saving, with
// parent links and positions rewritten from the live structure.
func (tv *TreeView) Items() []outline.Item {
	if tv.tree == nil {
		return nil
	}
	return outline.Flatten(tv.tree)
}

func (tv *TreeView) selection() (tree.Row[outline.Item], bool) {
	if tv.nav == nil {
		return tree.Row[outline.Item]{}, false
	}
	return tv.nav.Selection()
}

func (tv *TreeView) selectedNode() tree.NodeID {
	if tv.nav == nil {
		return tree.NoNode
	}
	return tv.nav.SelectedNode()
}

func (tv *TreeView) dropFromIndex(items []outline.Item) {
	for _, it := range items {
		delete(tv.nodeByID, it.ID)
	}
}

// afterMutation repairs the selection, persists fold state, and keeps the
// cursor on screen. Every structural or fold change funnels through here.
func (tv *TreeView) afterMutation() {
	done := metrics.Timer(metrics.SelectionRepair)
	tv.nav.OnStructureChanged()
	done()
	tv.saveState()
	tv.ensureCursorVisible()
}

// ── Viewport math ──

// effectiveVisibleCount returns the number of row lines that fit, keeping
// room for the header and, when scrolling, the position indicator.
func (tv *TreeView) effectiveVisibleCount() int {
	visible := tv.height - 1 // header row
	if visible <= 0 {
		visible = 19
	}
	if tv.RowCount() > visible {
		visible-- // position indicator
	}
	if visible < 1 {
		visible = 1
	}
	return visible
}

// ensureCursorVisible scrolls the window just enough to keep the cursor on
// screen.
func (tv *TreeView) ensureCursorVisible() {
	count := tv.RowCount()
	if count == 0 {
		tv.offset = 0
		return
	}
	cursor := tv.SelectedRow()
	if cursor < 0 {
		return
	}
	visible := tv.effectiveVisibleCount()

	if cursor < tv.offset {
		tv.offset = cursor
	}
	if cursor >= tv.offset+visible {
		tv.offset = cursor - visible + 1
	}

	maxOffset := count - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if tv.offset > maxOffset {
		tv.offset = maxOffset
	}
	if tv.offset < 0 {
		tv.offset = 0
	}
}

// visibleRange returns the [start, end) row window to render.
func (tv *TreeView) visibleRange() (start, end int) {
	count := tv.RowCount()
	if count == 0 {
		return 0, 0
	}
	visible := tv.effectiveVisibleCount()
	start = tv.offset
	if start < 0 {
		start = 0
	}
	end = start + visible
	if end > count {
		end = count
		start = end - visible
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// Offset returns the current window offset (for tests).
func (tv *TreeView) Offset() int { return tv.offset }

// ── Rendering ──

// View renders the header, the visible row window, and the position
// indicator when scrolling is needed.
func (tv *TreeView) View() string {
	done := metrics.Timer(metrics.UIRender)
	defer done()

	if !tv.built || tv.RowCount() == 0 {
		return tv.renderEmptyState()
	}

	var sb strings.Builder
	sb.WriteString(tv.RenderHeader())
	sb.WriteString("\n")

	rows := tv.tree.Rows()
	start, end := tv.visibleRange()
	cursor := tv.SelectedRow()

	for i := start; i < end; i++ {
		line := tv.renderRow(rows[i], i == cursor)
		if i == cursor {
			line = tv.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(rows) > tv.effectiveVisibleCount() {
		sb.WriteString(tv.renderPositionIndicator(start, end, len(rows)))
	}

	return sb.String()
}

// RenderHeader returns the styled column header row.
func (tv *TreeView) RenderHeader() string {
	width := tv.width
	if width <= 0 {
		width = 80
	}
	headerStyle := tv.theme.Renderer.NewStyle().
		Background(tv.theme.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Width(width)

	return headerStyle.Render("  OUTLINE")
}

func (tv *TreeView) renderEmptyState() string {
	r := tv.theme.Renderer
	titleStyle := r.NewStyle().Foreground(tv.theme.Primary).Bold(true)
	mutedStyle := r.NewStyle().Foreground(tv.theme.Muted)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Outline"))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("No items to display."))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("Press i to create the first item, or run 'tw --init'."))
	return sb.String()
}

// renderPositionIndicator shows "Page X/Y (start-end of total)" when the
// outline does not fit in the window.
func (tv *TreeView) renderPositionIndicator(start, end, total int) string {
	pageSize := tv.effectiveVisibleCount()
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	currentPage := (tv.offset / pageSize) + 1
	if currentPage > totalPages {
		currentPage = totalPages
	}
	indicator := fmt.Sprintf(" Page %d/%d (%d-%d of %d)", currentPage, totalPages, start+1, end, total)
	return tv.theme.MutedText.Render(indicator)
}

// renderRow renders one visible row:
// [branch prefix] [fold indicator] [kind icon] [title] ... [age].
func (tv *TreeView) renderRow(row tree.Row[outline.Item], selected bool) string {
	item := row.Payload
	r := tv.theme.Renderer
	width := tv.width
	if width <= 0 {
		width = 80
	}
	// Reduce width by 1 to prevent terminal wrapping on the exact edge
	width--

	var left strings.Builder

	prefix := tv.buildPrefix(row.Node, row.Depth)
	left.WriteString(tv.theme.BranchText.Render(prefix))
	prefixWidth := lipgloss.Width(prefix)

	left.WriteString(tv.theme.SecondaryText.Render(tv.foldIndicator(row)))
	left.WriteString(" ")

	icon, iconColor := tv.theme.GetKindIcon(string(item.Kind), item.Done())
	iconWidth := lipgloss.Width(icon)
	left.WriteString(r.NewStyle().Foreground(iconColor).Render(icon))
	left.WriteString(" ")

	fixedWidth := prefixWidth + 1 + 1 + iconWidth + 1

	// Right side: due date and age columns on wide terminals.
	rightWidth := 0
	var rightParts []string
	if width > 60 {
		if due := FormatDue(item.DueDate, nowFunc()); due != "" {
			style := tv.theme.MutedText
			if strings.HasPrefix(due, "overdue") {
				style = tv.theme.OverdueText
			}
			rightParts = append(rightParts, style.Render(fmt.Sprintf("%11s", due)))
			rightWidth += 12
		}
		rightParts = append(rightParts, tv.theme.MutedText.Render(fmt.Sprintf("%8s", FormatTimeRel(item.CreatedAt))))
		rightWidth += 9
	}

	titleWidth := width - fixedWidth - rightWidth - 2
	if titleWidth < 5 {
		titleWidth = 5
	}
	title := truncateRunesHelper(item.Title, titleWidth, "…")
	if w := lipgloss.Width(title); w < titleWidth {
		title += strings.Repeat(" ", titleWidth-w)
	}

	titleStyle := r.NewStyle()
	switch {
	case selected:
		titleStyle = titleStyle.Foreground(tv.theme.Primary).Bold(true)
	case item.Done():
		titleStyle = tv.theme.DoneText
	case item.Kind == outline.KindHeading:
		titleStyle = titleStyle.Foreground(tv.theme.Heading).Bold(true)
	default:
		titleStyle = titleStyle.Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E8E8E8"})
	}
	left.WriteString(titleStyle.Render(title))

	rightSide := strings.Join(rightParts, " ")
	padding := width - lipgloss.Width(left.String()) - lipgloss.Width(rightSide)
	if padding < 0 {
		padding = 0
	}

	line := left.String() + strings.Repeat(" ", padding) + rightSide
	return r.NewStyle().Width(width).MaxWidth(width).Render(line)
}

// foldIndicator picks the marker drawn before an item: open/closed for
// foldable nodes (containers fold even while empty), a leaf dot otherwise.
func (tv *TreeView) foldIndicator(row tree.Row[outline.Item]) string {
	if !row.HasChildren && !row.Container {
		return tv.glyphs.Leaf
	}
	if row.Collapsed {
		return tv.glyphs.Collapsed
	}
	return tv.glyphs.Expanded
}

// buildPrefix draws the indentation and branch characters for a row: one
// continuation cell per ancestor, then the branch cell for the node itself.
func (tv *TreeView) buildPrefix(id tree.NodeID, depth int) string {
	if depth == 0 {
		return ""
	}

	ancestors := tv.ancestorChain(id)
	var parts []string
	for _, a := range ancestors {
		if tv.hasSiblingBelow(a) {
			parts = append(parts, tv.glyphs.Vertical)
		} else {
			parts = append(parts, tv.glyphs.Blank)
		}
	}
	if tv.hasSiblingBelow(id) {
		parts = append(parts, tv.glyphs.Branch)
	} else {
		parts = append(parts, tv.glyphs.Last)
	}
	return strings.Join(parts, "")
}

// ancestorChain returns the node's ancestors root-first.
func (tv *TreeView) ancestorChain(id tree.NodeID) []tree.NodeID {
	seq, err := tv.tree.Ancestors(id)
	if err != nil {
		return nil
	}
	var chain []tree.NodeID
	for a := range seq {
		chain = append(chain, a)
	}
	// Ancestors yields nearest-first; the prefix wants root-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// hasSiblingBelow reports whether a node is followed by another sibling,
// which decides between a continuation line and blank space.
func (tv *TreeView) hasSiblingBelow(id tree.NodeID) bool {
	parent, err := tv.tree.ParentOf(id)
	if err != nil {
		return false
	}
	var siblings func(func(tree.NodeID) bool)
	if parent.IsNone() {
		siblings = tv.tree.Roots()
	} else {
		siblings = tv.tree.Children(parent)
	}
	found := false
	for s := range siblings {
		if found {
			return true
		}
		if s == id {
			found = true
		}
	}
	return false
}
