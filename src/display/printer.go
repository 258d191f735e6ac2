package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes prefixed status messages. Colour is used only when the
// writer is a terminal.
type Printer struct {
	w io.Writer
	r *lipgloss.Renderer

	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	errs    lipgloss.Style
	bold    lipgloss.Style
	dim     lipgloss.Style
	banner  lipgloss.Style
}

// NewPrinter creates a printer for w
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		r:       r,
		info:    r.NewStyle().Foreground(Purple).Bold(true),
		success: r.NewStyle().Foreground(Green).Bold(true),
		warning: r.NewStyle().Foreground(Yellow).Bold(true),
		errs:    r.NewStyle().Foreground(Red).Bold(true),
		bold:    r.NewStyle().Bold(true),
		dim:     r.NewStyle().Foreground(Comment),
		banner:  r.NewStyle().Foreground(Cyan).Bold(true),
	}
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.w
}

func (p *Printer) prefixed(style lipgloss.Style, prefix, format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", style.Render(prefix), fmt.Sprintf(format, args...))
}

// Info prints a [*] line
func (p *Printer) Info(format string, args ...any) {
	p.prefixed(p.info, "[*]", format, args...)
}

// Success prints a [+] line
func (p *Printer) Success(format string, args ...any) {
	p.prefixed(p.success, "[+]", format, args...)
}

// Warning prints a [!] line
func (p *Printer) Warning(format string, args ...any) {
	p.prefixed(p.warning, "[!]", format, args...)
}

// Error prints a [-] line
func (p *Printer) Error(format string, args ...any) {
	p.prefixed(p.errs, "[-]", format, args...)
}

// Searching prints a [>] line
func (p *Printer) Searching(format string, args ...any) {
	p.prefixed(p.warning, "[>]", format, args...)
}

// Blank prints an empty line
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

// Heading prints a bold line
func (p *Printer) Heading(text string) {
	fmt.Fprintln(p.w, p.bold.Render(text))
}

// Dim prints a muted line
func (p *Printer) Dim(format string, args ...any) {
	fmt.Fprintln(p.w, p.dim.Render(fmt.Sprintf(format, args...)))
}

// Panel prints body inside a rounded border
func (p *Printer) Panel(color lipgloss.Color, body string) {
	style := p.r.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2)
	fmt.Fprintln(p.w, style.Render(body))
	fmt.Fprintln(p.w)
}

var bannerArt = []string{
	"  ███████╗ █████╗  ██████╗███████╗████████╗██████╗  █████╗  ██████╗███████╗",
	"  ██╔════╝██╔══██╗██╔════╝██╔════╝╚══██╔══╝██╔══██╗██╔══██╗██╔════╝██╔════╝",
	"  █████╗  ███████║██║     █████╗     ██║   ██████╔╝███████║██║     █████╗  ",
	"  ██╔══╝  ██╔══██║██║     ██╔══╝     ██║   ██╔══██╗██╔══██║██║     ██╔══╝  ",
	"  ██║     ██║  ██║╚██████╗███████╗   ██║   ██║  ██║██║  ██║╚██████╗███████╗",
	"  ╚═╝     ╚═╝  ╚═╝ ╚═════╝╚══════╝   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝╚══════╝",
}

const bannerTagline = "Reverse Face Search - Find anyone, anywhere"

// bannerMinWidth is the narrowest terminal that fits the art
const bannerMinWidth = 76

// Banner prints the startup banner. Narrow terminals get a one line title.
func (p *Printer) Banner() {
	if width, ok := TerminalWidth(p.w); ok && width < bannerMinWidth {
		fmt.Fprintln(p.w, p.banner.Render("FACETRACE")+" "+p.dim.Render(bannerTagline))
		fmt.Fprintln(p.w)
		return
	}
	fmt.Fprintln(p.w, p.banner.Render(strings.Join(bannerArt, "\n")))
	fmt.Fprintln(p.w, p.dim.Render("           "+bannerTagline))
	fmt.Fprintln(p.w)
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminalFunc(int(f.Fd()))
}

// TerminalWidth returns the column count when w is a terminal
func TerminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !isTerminalFunc(int(f.Fd())) {
		return 0, false
	}
	width, _, err := getSizeFunc(int(f.Fd()))
	if err != nil {
		return 0, false
	}
	return width, true
}
