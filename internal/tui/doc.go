// Package tui renders the skeld start screen.
//
// The screen shows the banner with the command, bookmark and project
// buttons below it, centered as one block, and a short help line in the
// bottom right corner. A button is chosen with its keybind, with
// j/k/enter, or with the mouse:
//
//	data, err := tui.BuildData(cfg)
//	action, err := tui.Run(data)
//	if action != nil {
//	    code, err := action.Execute(cfg)
//	}
//
// Typed characters accumulate and a button fires as soon as its keybind
// is a suffix of the accumulated input, so multi-character keybinds
// work without timeouts. The longest matching keybind wins.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - event loop and terminal handling
//   - github.com/charmbracelet/bubbles - key bindings
//   - github.com/charmbracelet/lipgloss - styling
package tui
