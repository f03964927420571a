package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/treework/internal/datasource"
	"github.com/vanderheijden86/treework/pkg/analysis"
	"github.com/vanderheijden86/treework/pkg/config"
	"github.com/vanderheijden86/treework/pkg/debug"
	"github.com/vanderheijden86/treework/pkg/export"
	"github.com/vanderheijden86/treework/pkg/outline"
	"github.com/vanderheijden86/treework/pkg/template"
	"github.com/vanderheijden86/treework/pkg/ui"
	"github.com/vanderheijden86/treework/pkg/version"
	"github.com/vanderheijden86/treework/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	filePath := flag.String("file", "", "Open a specific outline file instead of discovering one")
	browseDir := flag.String("browse", "", "Browse a directory tree read-only")
	statsFlag := flag.Bool("stats", false, "Print outline statistics and exit")
	snapshotPath := flag.String("snapshot", "", "Write an SVG or PNG snapshot of the outline and exit")
	initFlag := flag.Bool("init", false, "Scaffold a new outline from a template")
	noWatch := flag.Bool("no-watch", false, "Disable live reload on file changes")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: tw [options]")
		fmt.Println("\nA TUI outline viewer and editor.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("tw %s\n", version.Version)
		os.Exit(0)
	}

	if *initFlag {
		runInit()
		os.Exit(0)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		cfg = config.DefaultConfig()
	}

	ctx := context.Background()

	var (
		items   []outline.Item
		source  datasource.Source
		browse  = *browseDir != ""
		loadErr error
	)
	switch {
	case browse:
		items, loadErr = datasource.LoadDirectory(*browseDir, datasource.DefaultBrowseOptions())
		// Directories stay folded until explored, so expansion can lazily
		// read one level at a time.
		cfg.Tree.AutoExpandDepth = -1
	case *filePath != "":
		items, source, loadErr = datasource.LoadFile(ctx, *filePath)
	default:
		items, source, loadErr = datasource.Load(ctx, "")
	}
	if loadErr != nil {
		fmt.Fprintf(os.Stderr, "Error loading outline: %v\n", loadErr)
		if errors.Is(loadErr, datasource.ErrNoSources) {
			fmt.Fprintln(os.Stderr, "Run 'tw --init' to create one.")
		}
		os.Exit(1)
	}

	if *statsFlag {
		printStats(items)
		os.Exit(0)
	}

	if *snapshotPath != "" {
		if err := writeSnapshot(*snapshotPath, items); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written to %s\n", *snapshotPath)
		os.Exit(0)
	}

	opts := ui.Options{
		Items:  items,
		Config: cfg,
		Source: source,
		Browse: browse,
	}
	if browse {
		opts.BrowseOpts = datasource.DefaultBrowseOptions()
	} else {
		// JSONL sources are writable in place; SQLite views are read-only.
		if source.Type != datasource.SourceTypeSQLite {
			opts.SavePath = source.Path
		}
		if twDir, err := datasource.TwDir(filepath.Dir(source.Path)); err == nil {
			opts.TwDir = twDir
		}

		if !*noWatch && cfg.Watch.IsEnabled() && source.Path != "" {
			w, err := watcher.NewWatcher(source.Path,
				watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond),
				watcher.WithLogger(debug.Log),
			)
			if err != nil {
				debug.Log("watcher unavailable: %v", err)
			} else if err := w.Start(ctx); err != nil {
				debug.Log("watcher start failed: %v", err)
			} else {
				opts.Watcher = w
				defer w.Stop()
			}
		}
	}

	m := ui.NewModel(opts)
	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running outline viewer: %v\n", err)
		os.Exit(1)
	}
}

func runInit() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	wizard := template.NewWizard(cwd, nil)
	result, err := wizard.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s (%d items from %q)\n", result.Path, result.ItemCount, result.Template)
	fmt.Println("Run 'tw' to open it.")
}

func printStats(items []outline.Item) {
	t, _ := outline.BuildTree(items)
	stats := analysis.Stats(t)
	fmt.Print(stats.String())
}

func writeSnapshot(path string, items []outline.Item) error {
	t, _ := outline.BuildTree(items)
	stats := analysis.Stats(t)
	return export.WriteSnapshot(export.SnapshotOptions{
		Path:     path,
		Tree:     t,
		Stats:    &stats,
		DataHash: outline.Hash(items),
	})
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set TW_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TW_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
