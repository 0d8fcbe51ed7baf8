package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/skeld-sh/skeld/internal/config"
	"github.com/skeld-sh/skeld/internal/project"
)

// BuildData assembles the start screen from the global configuration and
// the user's project and bookmark files. Buttons without a configured
// keybind get ascending numeric ones, empty sections disappear.
func BuildData(cfg *config.Config) (Data, error) {
	var commands []Button
	for _, command := range cfg.Commands {
		commands = append(commands, Button{
			Keybind: command.Keybind,
			Label:   command.Name,
			Action:  project.CommandAction{Command: command},
		})
	}

	bookmarks, err := config.Bookmarks()
	if err != nil {
		return Data{}, err
	}
	projects, err := config.Projects()
	if err != nil {
		return Data{}, err
	}

	sections := []Section{
		{Heading: "Commands", Buttons: commands},
		{Heading: "Bookmarks", Buttons: fileButtons(bookmarks)},
		{Heading: "Projects", Buttons: fileButtons(projects)},
	}
	assignKeybinds(sections)

	var filtered []Section
	for _, section := range sections {
		if len(section.Buttons) > 0 {
			filtered = append(filtered, section)
		}
	}

	help := ""
	if !cfg.DisableHelp {
		help = helpLine()
	}

	return Data{
		Banner:   cfg.Banner,
		Sections: filtered,
		Colors:   cfg.Colorscheme,
		HelpText: help,
	}, nil
}

func fileButtons(files []config.ProjectButton) []Button {
	var buttons []Button
	for _, file := range files {
		buttons = append(buttons, Button{
			Keybind: file.Keybind,
			Label:   file.Name,
			Action:  project.OpenAction{Path: file.Path},
		})
	}
	return buttons
}

// assignKeybinds fills empty keybinds from a counter shared across all
// sections, in display order.
func assignKeybinds(sections []Section) {
	next := 0
	for si := range sections {
		for bi := range sections[si].Buttons {
			if sections[si].Buttons[bi].Keybind == "" {
				sections[si].Buttons[bi].Keybind = strconv.Itoa(next)
				next++
			}
		}
	}
}

// helpLine renders the start screen controls as one line for the bottom
// right corner.
func helpLine() string {
	bindings := []key.Binding{defaultKeyMap.Down, defaultKeyMap.Select, defaultKeyMap.Quit}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, fmt.Sprintf("%s: %s", help.Key, help.Desc))
	}
	return strings.Join(parts, "  ")
}
