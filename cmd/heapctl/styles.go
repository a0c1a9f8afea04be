package main

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	primaryColor = lipgloss.Color("#7D56F4")
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF4B4B")
	mutedColor   = lipgloss.Color("#666666")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	okStyle = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)

// render applies s unless colors are disabled.
func render(s lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return s.Render(text)
}

var numbers = message.NewPrinter(language.English)

// num formats n with thousands separators.
func num[T ~int | ~int64 | ~uint64](n T) string {
	return numbers.Sprintf("%d", n)
}

// field prints one aligned "label: value" line.
func field(label, value string) {
	printInfo("  %s %s\n", render(labelStyle, label+":"), value)
}
