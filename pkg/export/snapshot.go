// Package export renders outline snapshots to static image files. The
// snapshot shows the current projection — what the widget would draw —
// so a collapsed branch appears as one row with a hidden-count badge.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/treework/pkg/analysis"
	"github.com/vanderheijden86/treework/pkg/metrics"
	"github.com/vanderheijden86/treework/pkg/outline"
	"github.com/vanderheijden86/treework/pkg/tree"
)

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path     string                   // Output path; format inferred from extension when Format empty
	Format   string                   // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title    string                   // Optional title rendered in summary block
	Preset   string                   // Layout preset: "compact" (default) or "roomy"
	Tree     *tree.Tree[outline.Item] // Outline to render in its current collapse state
	Stats    *analysis.OutlineStats   // Outline statistics used for the summary block
	DataHash string                   // Hash of the loaded items for provenance
}

// WriteSnapshot renders a static snapshot (SVG or PNG) of the outline's
// visible rows with a minimal summary block. The visual language stays
// small enough to read without auxiliary docs.
func WriteSnapshot(opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	if opts.Tree == nil || opts.Tree.Len() == 0 {
		return fmt.Errorf("no rows to export")
	}
	if opts.Stats == nil {
		return fmt.Errorf("outline stats are required for snapshot export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildLayout(opts)

	switch format {
	case "svg":
		return renderSVG(opts, layout)
	case "png":
		return renderPNG(opts, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- layout computation ----------------------------------------------------

type layoutRow struct {
	Title string
	Badge string // fold marker plus hidden-descendant count
	Kind  outline.Kind
	Done  bool
	X, Y  float64
	W, H  float64
}

type layoutResult struct {
	Rows    []layoutRow
	Width   int
	Height  int
	Header  float64
	Summary summaryInfo
}

type summaryInfo struct {
	Title       string
	DataHash    string
	NodeCount   int
	VisibleRows int
	MaxDepth    int
}

func buildLayout(opts SnapshotOptions) layoutResult {
	const (
		rowWCompact   = 420.0
		rowHCompact   = 26.0
		rowGapCompact = 6.0
		rowWRoomy     = 480.0
		rowHRoomy     = 32.0
		rowGapRoomy   = 10.0
		indentW       = 24.0
		padding       = 36.0
		headerHeight  = 120.0
	)

	roomy := strings.EqualFold(opts.Preset, "roomy")
	rowW := rowWCompact
	rowH := rowHCompact
	rowGap := rowGapCompact
	if roomy {
		rowW = rowWRoomy
		rowH = rowHRoomy
		rowGap = rowGapRoomy
	}

	t := opts.Tree
	rows := t.Rows()

	laid := make([]layoutRow, 0, len(rows))
	maxDepth := 0
	for i, r := range rows {
		if r.Depth > maxDepth {
			maxDepth = r.Depth
		}

		lr := layoutRow{
			Title: truncate(r.Payload.Title, 48),
			Kind:  r.Payload.Kind,
			Done:  r.Payload.Done(),
			X:     padding + float64(r.Depth)*indentW,
			Y:     padding + headerHeight + float64(i)*(rowH+rowGap),
			W:     rowW,
			H:     rowH,
		}
		switch {
		case r.Collapsed && (r.HasChildren || r.Container):
			if hidden := hiddenDescendants(t, r.Node); hidden > 0 {
				lr.Badge = fmt.Sprintf("▸ +%d", hidden)
			} else {
				lr.Badge = "▸"
			}
		case r.HasChildren || r.Container:
			lr.Badge = "▾"
		default:
			lr.Badge = "•"
		}
		laid = append(laid, lr)
	}

	width := int(padding*2 + float64(maxDepth)*indentW + rowW)
	if width < 640 {
		width = 640
	}
	height := int(padding*2 + headerHeight + float64(len(laid))*(rowH+rowGap) + rowH)
	if height < 480 {
		height = 480
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Outline Snapshot"
	}

	return layoutResult{
		Rows:   laid,
		Width:  width,
		Height: height,
		Header: headerHeight,
		Summary: summaryInfo{
			Title:       title,
			DataHash:    opts.DataHash,
			NodeCount:   opts.Stats.Nodes,
			VisibleRows: opts.Stats.VisibleRows,
			MaxDepth:    opts.Stats.MaxDepth,
		},
	}
}

// hiddenDescendants counts the nodes a collapsed row is hiding.
func hiddenDescendants(t *tree.Tree[outline.Item], id tree.NodeID) int {
	count := 0
	stack := []tree.NodeID{}
	for child := range t.Children(id) {
		stack = append(stack, child)
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		for child := range t.Children(cur) {
			stack = append(stack, child)
		}
	}
	return count
}

// --- rendering -------------------------------------------------------------

var (
	colorNote     = color.RGBA{0xe3, 0xf2, 0xfd, 0xff}
	colorTask     = color.RGBA{0xff, 0xf3, 0xe0, 0xff}
	colorTaskDone = color.RGBA{0xcf, 0xd8, 0xdc, 0xff}
	colorHeading  = color.RGBA{0xc8, 0xe6, 0xc9, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

func rowColor(r layoutRow) color.RGBA {
	switch {
	case r.Done:
		return colorTaskDone
	case r.Kind == outline.KindTask:
		return colorTask
	case r.Kind == outline.KindHeading:
		return colorHeading
	default:
		return colorNote
	}
}

func renderPNG(opts SnapshotOptions, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	// header
	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)

	drawSummaryBlock(dc, layout)
	drawLegend(dc, layout)

	for _, r := range layout.Rows {
		drawRow(dc, r)
	}

	return dc.SavePNG(opts.Path)
}

func renderSVG(opts SnapshotOptions, layout layoutResult) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawSummaryBlockSVG(canvas, layout)
	drawLegendSVG(canvas, layout)

	for _, r := range layout.Rows {
		x := int(r.X)
		y := int(r.Y)
		canvas.Roundrect(x, y, int(r.W), int(r.H), 6, 6,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(rowColor(r)), css(colorStroke)))
		canvas.Text(x+8, y+int(r.H/2)+4, r.Badge,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
		canvas.Text(x+44, y+int(r.H/2)+4, r.Title,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorText)))
	}

	canvas.End()
	return nil
}

func drawRow(dc *gg.Context, r layoutRow) {
	dc.SetColor(rowColor(r))
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 6)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 6)
	dc.Stroke()

	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(r.Badge, r.X+8, r.Y+r.H/2, 0, 0.5)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(r.Title, r.X+44, r.Y+r.H/2, 0, 0.5)
}

func drawSummaryBlock(dc *gg.Context, layout layoutResult) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("data_hash: %s", layout.Summary.DataHash), 32, 64, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("nodes: %d  visible: %d", layout.Summary.NodeCount, layout.Summary.VisibleRows), 32, 84, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("max depth: %d", layout.Summary.MaxDepth), 32, 104, 0, 0.5)
}

func drawLegend(dc *gg.Context, layout layoutResult) {
	boxW := 180.0
	boxH := 96.0
	x := float64(layout.Width) - boxW - 20
	y := 24.0
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Legend", x+12, y+18, 0, 0.5)
	drawLegendRow(dc, x+12, y+36, colorNote, "Note")
	drawLegendRow(dc, x+12, y+52, colorTask, "Task (open)")
	drawLegendRow(dc, x+12, y+68, colorTaskDone, "Task (done)")
	drawLegendRow(dc, x+12, y+84, colorHeading, "Heading")
}

func drawLegendRow(dc *gg.Context, x, y float64, c color.RGBA, label string) {
	dc.SetColor(c)
	dc.DrawRoundedRectangle(x, y-8, 14, 14, 3)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y-8, 14, 14, 3)
	dc.Stroke()
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(label, x+20, y, 0, 0.5)
}

func drawSummaryBlockSVG(canvas *svg.SVG, layout layoutResult) {
	canvas.Text(32, 44, layout.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, fmt.Sprintf("data_hash: %s", layout.Summary.DataHash), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 84, fmt.Sprintf("nodes: %d  visible: %d", layout.Summary.NodeCount, layout.Summary.VisibleRows), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 104, fmt.Sprintf("max depth: %d", layout.Summary.MaxDepth), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
}

func drawLegendSVG(canvas *svg.SVG, layout layoutResult) {
	boxW := 180
	boxH := 96
	x := layout.Width - boxW - 20
	y := 24
	canvas.Roundrect(x, y, boxW, boxH, 10, 10, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorStroke)))
	canvas.Text(x+12, y+18, "Legend", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	drawLegendRowSVG(canvas, x+12, y+36, colorNote, "Note")
	drawLegendRowSVG(canvas, x+12, y+52, colorTask, "Task (open)")
	drawLegendRowSVG(canvas, x+12, y+68, colorTaskDone, "Task (done)")
	drawLegendRowSVG(canvas, x+12, y+84, colorHeading, "Heading")
}

func drawLegendRowSVG(canvas *svg.SVG, x, y int, c color.RGBA, label string) {
	canvas.Roundrect(x, y-8, 14, 14, 3, 3, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(c), css(colorStroke)))
	canvas.Text(x+20, y, label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
