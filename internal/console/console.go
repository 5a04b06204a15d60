package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Printer writes role-colored conversation output. A nil writer means stdout.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out}
}

func (p *Printer) System(content string) {
	fmt.Fprintf(p.out, "%s %s\n", systemStyle.Render("system"), content)
}

func (p *Printer) User(content string) {
	fmt.Fprintf(p.out, "%s %s\n", userStyle.Render("user"), content)
}

// AssistantLabel prints the role tag without a trailing newline so streamed
// deltas continue on the same line.
func (p *Printer) AssistantLabel() {
	fmt.Fprintf(p.out, "%s ", assistantStyle.Render("assistant"))
}

func (p *Printer) AssistantDelta(delta string) {
	fmt.Fprint(p.out, assistantStyle.Render(delta))
}

func (p *Printer) Warn(message string) {
	fmt.Fprintln(p.out, warnStyle.Render(message))
}

func (p *Printer) Newline() {
	fmt.Fprintln(p.out)
}

func (p *Printer) Linef(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
