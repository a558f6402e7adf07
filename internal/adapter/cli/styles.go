package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	primaryColor = lipgloss.Color("86")
	successColor = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")
	subtleColor  = lipgloss.Color("241")
)

// styles are bound to the output's renderer, so plain writers get no escape codes.
type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	subtle  lipgloss.Style
	prompt  lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)

	return styles{
		title:   r.NewStyle().Bold(true).Foreground(primaryColor),
		header:  r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(successColor),
		warning: r.NewStyle().Foreground(warningColor),
		err:     r.NewStyle().Foreground(errorColor),
		subtle:  r.NewStyle().Foreground(subtleColor),
		prompt:  r.NewStyle().Bold(true),
	}
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
