package main

import (
	"os"
	"strings"
)

// init runs before Bubble Tea acquires the terminal (and before any TUI starts).
//
// In some PTY/TTY capture environments (notably CI runners), Bubble Tea's init
// triggers Lipgloss/Termenv background detection, which can emit OSC/DSR control
// sequences to stdout. Those sequences are harmless in a real terminal but
// corrupt the plain-text output of the non-interactive flags.
//
// Termenv uses CI to disable TTY probing, so set it early for non-interactive
// invocations.
func init() {
	if os.Getenv("CI") != "" {
		return
	}

	if !shouldSuppressTTYQueries(os.Args, os.Getenv("TW_TEST_MODE") != "") {
		return
	}

	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}

	for _, arg := range args {
		if strings.HasPrefix(arg, "-snapshot") || strings.HasPrefix(arg, "--snapshot") {
			return true
		}
		switch arg {
		case "-version", "--version", "-help", "--help", "-h",
			"-stats", "--stats", "-init", "--init":
			return true
		}
	}

	return false
}
