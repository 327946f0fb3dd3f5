package main

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

var flavor = catppuccin.Mocha

// bannerWidth is the width of the star rule around the title.
const bannerWidth = 48

var (
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(flavor.Sky().Hex))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(flavor.Blue().Hex)).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(flavor.Overlay0().Hex))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(flavor.Green().Hex))
)
