package ui

import (
	"errors"

	"github.com/ncruces/zenity"
)

// GuiPrompter uses native OS dialogs via zenity (Win32 on Windows, osascript
// on macOS, zenity/kdialog on Linux).
type GuiPrompter struct{}

// NewGuiPrompter returns a new GUI-based prompter.
func NewGuiPrompter() *GuiPrompter {
	return &GuiPrompter{}
}

func (g *GuiPrompter) Notify(title, message string) {
	_ = zenity.Notify(message, zenity.Title(title), zenity.InfoIcon)
}

func (g *GuiPrompter) Error(title, message string) {
	_ = zenity.Error(message, zenity.Title(title))
}

func (g *GuiPrompter) Entry(title, text string) (string, bool) {
	val, err := zenity.Entry(text, zenity.Title(title))
	if err != nil {
		return "", false
	}
	return val, true
}

// Question maps up to two buttons onto a native question dialog (OK plus one
// extra button; closing the window dismisses). Three or more buttons use a
// selection list so every label stays distinguishable from dismissal.
func (g *GuiPrompter) Question(title, message string, buttons []string) (string, bool) {
	switch len(buttons) {
	case 0:
		_ = zenity.Info(message, zenity.Title(title))
		return "", false
	case 1, 2:
		opts := []zenity.Option{
			zenity.Title(title),
			zenity.OKLabel(buttons[0]),
			zenity.CancelLabel("Dismiss"),
			zenity.WarningIcon,
		}
		if len(buttons) == 2 {
			opts = append(opts, zenity.ExtraButton(buttons[1]))
		}
		err := zenity.Question(message, opts...)
		switch {
		case err == nil:
			return buttons[0], true
		case errors.Is(err, zenity.ErrExtraButton):
			return buttons[1], true
		default:
			return "", false
		}
	default:
		choice, err := zenity.List(message, buttons, zenity.Title(title))
		if err != nil || choice == "" {
			return "", false
		}
		return choice, true
	}
}
