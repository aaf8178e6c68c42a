package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/render"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/study"
)

// Styles for command output
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFDD57"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4DABF7"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	codeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFDD57"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFDD57")).
			Padding(0, 2)
)

const outputWidth = 100

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// newRenderer styles markdown only when writing to a terminal.
func newRenderer(w io.Writer) *render.Renderer {
	if isTerminal(w) {
		return render.New(render.DefaultStyles(), outputWidth)
	}
	return render.New(render.PlainStyles(), 0)
}

// printBundle writes notes, flashcards, exam tips and resources.
func printBundle(w io.Writer, r *render.Renderer, b *study.Bundle) {
	if b == nil {
		return
	}

	fmt.Fprintln(w, r.Render(b.Notes))

	if len(b.Flashcards) > 0 && b.Mode != study.ModeSolve {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render("🃏 Flashcards"))
		for _, card := range b.Flashcards {
			fc := study.ParseFlashcard(card)
			fmt.Fprintf(w, "  Q: %s\n  A: %s\n\n", fc.Question, fc.Answer)
		}
	}

	if b.Tips != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render("💡 Exam Tips"))
		fmt.Fprintln(w, "  "+b.Tips)
	}

	if b.Mode == study.ModeChat {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render("📚 Resources"))
	if len(b.Resources) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  No resources available."))
		return
	}
	for _, res := range b.Resources {
		fmt.Fprintf(w, "  • %s\n    %s\n", res.Title, res.URL)
	}
}

// matchChoice returns the canonical spelling of value from choices, ignoring case.
func matchChoice(kind, value string, choices []string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	for _, c := range choices {
		if strings.EqualFold(c, value) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown %s %q (choose from %s)", kind, value, strings.Join(choices, ", "))
}
