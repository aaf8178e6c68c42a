package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard shortcuts. Letters go to the focused input,
// so every command sits on a control or alt chord.
type KeyMap struct {
	Quit   key.Binding
	Submit key.Binding
	Escape key.Binding

	// Navigation
	Switch    key.Binding
	NextField key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	History   key.Binding

	// Dashboard
	ToggleMode key.Binding
	CycleExam  key.Binding
	CycleStyle key.Binding
	Copy       key.Binding

	// Account
	Feedback key.Binding
	Upgrade  key.Binding
	SignOut  key.Binding

	// Modal actions
	Accept key.Binding
	Open   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Switch: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "summarizer"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "field"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		History: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3"),
			key.WithHelp("alt+1-3", "recent"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "explain/solve"),
		),
		CycleExam: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "exam"),
		),
		CycleStyle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "style"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy"),
		),
		Feedback: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "feedback"),
		),
		Upgrade: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "upgrade"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "sign out"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "accept"),
		),
		Open: key.NewBinding(
			key.WithKeys("u", "enter"),
			key.WithHelp("u", "upgrade"),
		),
	}
}

// historyIndex maps alt+1..alt+3 to a history slot.
func historyIndex(k string) int {
	switch k {
	case "alt+1":
		return 0
	case "alt+2":
		return 1
	case "alt+3":
		return 2
	}
	return -1
}
