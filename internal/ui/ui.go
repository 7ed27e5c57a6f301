// Package ui abstracts user-facing prompts. Failure notifications and the
// first-run token prompt go through the Prompter interface; the production
// implementations are native OS dialogs (zenity) with a stdin fallback for
// headless runs.
package ui

import (
	"os"
	"runtime"
)

// Prompter shows messages and questions to the user.
// Implementations: GuiPrompter (native OS dialogs via zenity) and
// CliPrompter (stdin fallback).
type Prompter interface {
	// Notify sends a passive desktop notification. Best effort.
	Notify(title, message string)
	// Error shows an error message.
	Error(title, message string)
	// Entry prompts for text input. Returns the value and true, or "" and
	// false if cancelled.
	Entry(title, text string) (string, bool)
	// Question shows message with the given button labels and blocks until
	// the user answers. Returns the chosen label and true, or "" and false
	// when the prompt was dismissed without a choice.
	Question(title, message string, buttons []string) (string, bool)
}

// New selects the GUI prompter when native dialogs are available, otherwise
// the CLI fallback.
func New() Prompter {
	if IsGuiAvailable() {
		return NewGuiPrompter()
	}
	return NewCliPrompter()
}

// IsGuiAvailable returns true if native GUI dialogs can be shown.
// Always true on Windows and macOS. On Linux, requires DISPLAY or WAYLAND_DISPLAY.
func IsGuiAvailable() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return true
	default:
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}
}
