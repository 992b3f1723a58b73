// Package ui renders CLI output: headers, status lines, tables and markdown.
package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// Printer writes styled output to one writer
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Writer returns the destination of the printer
func (p *Printer) Writer() io.Writer { return p.w }

func (p *Printer) width() int {
	if w := pterm.GetTerminalWidth(); w > 0 && w < 120 {
		return w
	}
	return 80
}

// Header prints a boxed title
func (p *Printer) Header(title, subtitle string) {
	header := lipgloss.NewStyle().
		Width(p.width()-2).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 2).
		Render(lipgloss.JoinVertical(lipgloss.Center,
			TitleStyle.Render(title),
			SecondaryStyle.Render(subtitle),
		))
	fmt.Fprintln(p.w, header)
}

func (p *Printer) Success(format string, args ...interface{}) {
	fmt.Fprintln(p.w, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Error(format string, args ...interface{}) {
	fmt.Fprintln(p.w, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Warning(format string, args ...interface{}) {
	fmt.Fprintln(p.w, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Info(format string, args ...interface{}) {
	fmt.Fprintln(p.w, InfoStyle.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// Section prints an underlined section title
func (p *Printer) Section(title string) {
	section := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(SecondaryColor).
		Render(title)
	fmt.Fprintln(p.w, section)
}

// Table prints rows under headers
func (p *Printer) Table(headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(p.w, out)
	return nil
}

// Markdown renders markdown for the terminal
func (p *Printer) Markdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(p.width()),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(content)
	if err != nil {
		return err
	}
	fmt.Fprint(p.w, out)
	return nil
}

// Code prints a SQL statement with its arguments
func (p *Printer) Code(code string, args []interface{}) {
	fmt.Fprintln(p.w, lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SecondaryColor).
		Padding(0, 1).
		Render(code))
	for i, arg := range args {
		fmt.Fprintf(p.w, "  %s %s\n", Muted.Sprintf("$%d", i+1), FormatValue(arg))
	}
}

var (
	Muted = color.New(color.FgHiBlack)
	Null  = color.New(color.FgYellow, color.Italic)
	Mark  = color.New(color.FgGreen, color.Bold)
)

// FormatValue renders a database value for a table cell
func FormatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return Null.Sprint("null")
	case []byte:
		return string(v)
	case string:
		return v
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + FormatValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}

// Check renders a boolean flag as a check mark or nothing
func Check(on bool) string {
	if on {
		return Mark.Sprint("✓")
	}
	return ""
}
