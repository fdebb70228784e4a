package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is one full-screen section of the dashboard. The root model routes
// key input to whichever View is active.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel carries state shared by every screen.
type CommonModel struct{}

// BackMsg asks the root model to return to the menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
