// Package analysis computes structural statistics over a loaded outline
// tree. It backs the `tw --stats` report and has no UI dependencies, so
// scripts can consume the numbers directly.
package analysis

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/treework/pkg/metrics"
	"github.com/vanderheijden86/treework/pkg/outline"
	"github.com/vanderheijden86/treework/pkg/tree"
)

// OutlineStats summarizes the shape and content of an outline tree.
// Structural fields describe the tree as stored; VisibleRows reflects the
// current collapse state.
type OutlineStats struct {
	Nodes       int `json:"nodes"`
	VisibleRows int `json:"visible_rows"`
	Leaves      int `json:"leaves"`
	Parents     int `json:"parents"`
	Containers  int `json:"containers"`
	Collapsed   int `json:"collapsed"`

	Notes     int `json:"notes"`
	Tasks     int `json:"tasks"`
	TasksDone int `json:"tasks_done"`
	Overdue   int `json:"overdue"`
	Headings  int `json:"headings"`

	MaxDepth    int   `json:"max_depth"`
	DepthCounts []int `json:"depth_counts"`
	WidestDepth int   `json:"widest_depth"`
	WidestCount int   `json:"widest_count"`

	// Branching statistics cover nodes with at least one child.
	BranchingMean   float64 `json:"branching_mean"`
	BranchingStdDev float64 `json:"branching_stddev"`
}

// Stats computes outline statistics with overdue counted against the
// current time.
func Stats(t *tree.Tree[outline.Item]) OutlineStats {
	return StatsAsOf(t, time.Now().UTC())
}

// StatsAsOf computes outline statistics, counting a task as overdue when
// it is not done and its due date is before now. One pass over the tree.
func StatsAsOf(t *tree.Tree[outline.Item], now time.Time) OutlineStats {
	defer metrics.Timer(metrics.StatsCompute)()

	s := OutlineStats{
		Nodes:       t.Len(),
		VisibleRows: t.RowCount(),
	}

	type frame struct {
		id    tree.NodeID
		depth int
	}
	stack := make([]frame, 0, 64)
	for root := range t.Roots() {
		stack = append(stack, frame{root, 0})
	}

	var branching []float64
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > s.MaxDepth {
			s.MaxDepth = f.depth
		}
		for len(s.DepthCounts) <= f.depth {
			s.DepthCounts = append(s.DepthCounts, 0)
		}
		s.DepthCounts[f.depth]++

		if collapsed, err := t.Collapsed(f.id); err == nil && collapsed {
			s.Collapsed++
		}
		if container, err := t.IsContainer(f.id); err == nil && container {
			s.Containers++
		}

		if it, err := t.Payload(f.id); err == nil {
			switch it.Kind {
			case outline.KindTask:
				s.Tasks++
				if it.Status == outline.StatusDone {
					s.TasksDone++
				} else if it.DueDate != nil && it.DueDate.Before(now) {
					s.Overdue++
				}
			case outline.KindHeading:
				s.Headings++
			default:
				s.Notes++
			}
		}

		children, err := t.ChildCount(f.id)
		if err != nil {
			continue
		}
		if children == 0 {
			s.Leaves++
		} else {
			s.Parents++
			branching = append(branching, float64(children))
		}
		for child := range t.Children(f.id) {
			stack = append(stack, frame{child, f.depth + 1})
		}
	}

	for depth, count := range s.DepthCounts {
		if count > s.WidestCount {
			s.WidestDepth = depth
			s.WidestCount = count
		}
	}

	if len(branching) > 0 {
		s.BranchingMean = stat.Mean(branching, nil)
	}
	if len(branching) > 1 {
		s.BranchingStdDev = stat.StdDev(branching, nil)
	}

	return s
}

// String renders the statistics as the plain-text report printed by
// `tw --stats`.
func (s OutlineStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outline statistics\n")
	fmt.Fprintf(&b, "──────────────────\n")
	fmt.Fprintf(&b, "%-12s %d (%d visible)\n", "Nodes", s.Nodes, s.VisibleRows)
	fmt.Fprintf(&b, "%-12s %d\n", "  notes", s.Notes)
	fmt.Fprintf(&b, "%-12s %d (%d done, %d overdue)\n", "  tasks", s.Tasks, s.TasksDone, s.Overdue)
	fmt.Fprintf(&b, "%-12s %d\n", "  headings", s.Headings)
	fmt.Fprintf(&b, "%-12s %d\n", "Leaves", s.Leaves)
	fmt.Fprintf(&b, "%-12s %d (%d containers, %d collapsed)\n", "Parents", s.Parents, s.Containers, s.Collapsed)
	fmt.Fprintf(&b, "%-12s max %d, widest level %d (%d nodes)\n", "Depth", s.MaxDepth, s.WidestDepth, s.WidestCount)
	fmt.Fprintf(&b, "%-12s mean %.2f, stddev %.2f\n", "Branching", s.BranchingMean, s.BranchingStdDev)
	return b.String()
}
