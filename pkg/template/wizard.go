package template

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/treework/internal/datasource"
)

// ErrCancelled is returned when the user backs out of the init flow.
var ErrCancelled = errors.New("init cancelled")

// WizardResult describes what the init flow wrote.
type WizardResult struct {
	Path      string
	Template  string
	ItemCount int
}

// Wizard drives the interactive `tw --init` flow: pick a template, name
// the outline, confirm the target file, write it.
type Wizard struct {
	loader *Loader
	dir    string
}

// NewWizard creates an init wizard rooted at dir (the prospective project
// directory). A nil loader falls back to LoadDefault semantics scoped to
// dir.
func NewWizard(dir string, loader *Loader) *Wizard {
	return &Wizard{loader: loader, dir: dir}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run executes the interactive init flow.
func (w *Wizard) Run() (*WizardResult, error) {
	if w.loader == nil {
		w.loader = NewLoader(WithProjectDir(w.dir))
		if err := w.loader.Load(); err != nil {
			return nil, err
		}
	}

	w.printBanner()

	name, err := w.selectTemplate()
	if err != nil {
		return nil, err
	}
	tpl := w.loader.Get(name)
	if tpl == nil {
		return nil, fmt.Errorf("unknown template %q", name)
	}

	title, err := w.collectTitle()
	if err != nil {
		return nil, err
	}

	target := OutlinePath(w.dir)
	if err := w.confirmWrite(target); err != nil {
		return nil, err
	}

	result, err := Scaffold(w.dir, tpl, title, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	fmt.Printf("Created %s (%d items from %q)\n", result.Path, result.ItemCount, result.Template)
	fmt.Println("Run tw in this directory to open it.")
	return result, nil
}

func (w *Wizard) printBanner() {
	fmt.Println("")
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║              tw — new outline setup              ║")
	fmt.Println("╠══════════════════════════════════════════════════╣")
	fmt.Println("║  Pick a template, name the outline, and tw will  ║")
	fmt.Println("║  write .tw/outline.jsonl in this directory.      ║")
	fmt.Println("║                                                  ║")
	fmt.Println("║  Press Ctrl+C anytime to cancel                  ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println("")
}

func (w *Wizard) selectTemplate() (string, error) {
	fmt.Println("Step 1: Template")
	fmt.Println("────────────────────────────")

	summaries := w.loader.ListSummaries()
	options := make([]huh.Option[string], 0, len(summaries))
	for _, s := range summaries {
		label := s.Name
		if s.Description != "" {
			label = fmt.Sprintf("%s — %s", s.Name, s.Description)
		}
		options = append(options, huh.NewOption(label, s.Name))
	}

	var name string
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which template?").
				Options(options...).
				Value(&name),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}

	fmt.Println("")
	return name, nil
}

func (w *Wizard) collectTitle() (string, error) {
	fmt.Println("Step 2: Title")
	fmt.Println("────────────────────────────")

	// Suggest a title from the directory name
	abs, err := filepath.Abs(w.dir)
	if err != nil {
		abs = w.dir
	}
	suggested := filepath.Base(abs)
	if suggested == "." || suggested == string(filepath.Separator) {
		suggested = "Outline"
	}

	var title string
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Outline title (blank keeps the template's)").
				Value(&title).
				Placeholder(suggested),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}

	fmt.Println("")
	return title, nil
}

func (w *Wizard) confirmWrite(target string) error {
	fmt.Println("Step 3: Confirm")
	fmt.Println("────────────────────────────")

	prompt := fmt.Sprintf("Write %s?", target)
	confirmed := true
	if _, err := os.Stat(target); err == nil {
		prompt = fmt.Sprintf("%s already exists. Overwrite it?", target)
		confirmed = false
	}

	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Value(&confirmed).
				Affirmative("Yes, write it").
				Negative("No, cancel"),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !confirmed {
		return ErrCancelled
	}

	fmt.Println("")
	return nil
}

// OutlinePath returns the outline file the init flow targets under dir.
func OutlinePath(dir string) string {
	return filepath.Join(dir, ".tw", "outline.jsonl")
}

// Scaffold materializes the template and writes it as the outline file
// under dir. A non-empty title renames the first root item. This is the
// non-interactive core of the wizard, usable directly by tooling.
func Scaffold(dir string, tpl *Template, title string, now time.Time) (*WizardResult, error) {
	items, err := tpl.Materialize(now)
	if err != nil {
		return nil, err
	}
	if title != "" {
		for i := range items {
			if items[i].ParentID == "" {
				items[i].Title = title
				break
			}
		}
	}

	path := OutlinePath(dir)
	if err := datasource.SaveJSONL(path, items); err != nil {
		return nil, err
	}

	return &WizardResult{
		Path:      path,
		Template:  tpl.Name,
		ItemCount: len(items),
	}, nil
}
