// Package render turns the service's markdown into terminal text and HTML.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Styles used for terminal output.
type Styles struct {
	Heading lipgloss.Style
	Strong  lipgloss.Style
	Italic  lipgloss.Style
	Strike  lipgloss.Style
	Code    lipgloss.Style
	Link    lipgloss.Style
	Quote   lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles matches the dashboard palette.
func DefaultStyles() Styles {
	return Styles{
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFDD57")),
		Strong:  lipgloss.NewStyle().Bold(true),
		Italic:  lipgloss.NewStyle().Italic(true),
		Strike:  lipgloss.NewStyle().Strikethrough(true),
		Code:    lipgloss.NewStyle().Foreground(lipgloss.Color("#74C0FC")),
		Link:    lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#4DABF7")),
		Quote:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
}

// PlainStyles renders without any escape codes.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Heading: s, Strong: s, Italic: s, Strike: s, Code: s, Link: s, Quote: s, Muted: s}
}

// Renderer renders markdown for the terminal.
type Renderer struct {
	md     goldmark.Markdown
	styles Styles
	width  int
}

// New creates a renderer. Width 0 disables wrapping.
func New(styles Styles, width int) *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		styles: styles,
		width:  width,
	}
}

// SetWidth changes the wrap width.
func (r *Renderer) SetWidth(width int) {
	r.width = width
}

// link collected during inline rendering
type link struct {
	text string
	url  string
}

type renderState struct {
	source []byte
	links  []link
}

// Render converts markdown to styled terminal text. Links are numbered inline
// and listed with their URLs at the end.
func (r *Renderer) Render(markdown string) string {
	st := &renderState{source: []byte(markdown)}
	doc := r.md.Parser().Parse(text.NewReader(st.source))

	var b strings.Builder
	r.blocks(&b, doc, st, "")

	out := strings.TrimRight(b.String(), "\n")
	if len(st.links) > 0 {
		var refs []string
		for i, l := range st.links {
			refs = append(refs, fmt.Sprintf("[%d] %s", i+1, r.styles.Link.Render(l.url)))
		}
		out += "\n\n" + r.styles.Muted.Render("Links:") + "\n" + strings.Join(refs, "\n")
	}
	return out
}

// ToHTML converts markdown to an HTML fragment. Raw HTML in the input is omitted.
func (r *Renderer) ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) blocks(b *strings.Builder, parent ast.Node, st *renderState, indent string) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		r.block(b, n, st, indent)
	}
}

func (r *Renderer) block(b *strings.Builder, n ast.Node, st *renderState, indent string) {
	switch node := n.(type) {
	case *ast.Heading:
		line := r.inline(node, st)
		if node.Level <= 2 {
			line = strings.ToUpper(line)
		}
		writeBlock(b, indent, r.styles.Heading.Render(line))

	case *ast.Paragraph:
		writeBlock(b, indent, r.wrap(r.inline(node, st), indent))

	case *ast.TextBlock:
		b.WriteString(prefixLines(r.wrap(r.inline(node, st), indent), indent))
		b.WriteString("\n")

	case *ast.List:
		r.list(b, node, st, indent)
		if node.Parent() != nil && node.Parent().Kind() != ast.KindListItem {
			b.WriteString("\n")
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		var code []string
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code = append(code, r.styles.Code.Render(strings.TrimRight(string(seg.Value(st.source)), "\n")))
		}
		writeBlock(b, indent+"    ", strings.Join(code, "\n"))

	case *ast.Blockquote:
		var inner strings.Builder
		r.blocks(&inner, node, st, "")
		quoted := prefixLines(strings.TrimRight(inner.String(), "\n"), "│ ")
		writeBlock(b, indent, r.styles.Quote.Render(quoted))

	case *ast.ThematicBreak:
		writeBlock(b, indent, r.styles.Muted.Render(strings.Repeat("─", 24)))

	case *east.Table:
		var rows []string
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, r.inline(cell, st))
			}
			line := strings.Join(cells, " │ ")
			if row.Kind() == east.KindTableHeader {
				line = r.styles.Strong.Render(line)
			}
			rows = append(rows, line)
		}
		writeBlock(b, indent, strings.Join(rows, "\n"))

	case *ast.HTMLBlock:
		// dropped

	default:
		if n.Type() == ast.TypeBlock && n.HasChildren() && n.FirstChild().Type() == ast.TypeBlock {
			r.blocks(b, n, st, indent)
			return
		}
		writeBlock(b, indent, r.inline(n, st))
	}
}

func (r *Renderer) list(b *strings.Builder, list *ast.List, st *renderState, indent string) {
	num := list.Start
	if num == 0 {
		num = 1
	}

	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}

		var inner strings.Builder
		r.blocks(&inner, item, st, "")
		body := strings.TrimRight(inner.String(), "\n")

		pad := strings.Repeat(" ", lipgloss.Width(marker))
		lines := strings.Split(body, "\n")
		for i, line := range lines {
			if i == 0 {
				b.WriteString(indent + marker + line + "\n")
				continue
			}
			if line == "" {
				b.WriteString("\n")
				continue
			}
			b.WriteString(indent + pad + line + "\n")
		}
	}
}

func (r *Renderer) inline(parent ast.Node, st *renderState) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(st.source))
			if node.HardLineBreak() {
				b.WriteString("\n")
			} else if node.SoftLineBreak() {
				b.WriteString(" ")
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.Emphasis:
			inner := r.inline(node, st)
			if node.Level >= 2 {
				b.WriteString(r.styles.Strong.Render(inner))
			} else {
				b.WriteString(r.styles.Italic.Render(inner))
			}
		case *east.Strikethrough:
			b.WriteString(r.styles.Strike.Render(r.inline(node, st)))
		case *ast.CodeSpan:
			b.WriteString(r.styles.Code.Render(r.inline(node, st)))
		case *ast.Link:
			label := r.inline(node, st)
			st.links = append(st.links, link{text: label, url: string(node.Destination)})
			fmt.Fprintf(&b, "%s[%d]", r.styles.Link.Render(label), len(st.links))
		case *ast.AutoLink:
			b.WriteString(r.styles.Link.Render(string(node.URL(st.source))))
		case *ast.Image:
			alt := r.inline(node, st)
			st.links = append(st.links, link{text: alt, url: string(node.Destination)})
			fmt.Fprintf(&b, "[image: %s][%d]", alt, len(st.links))
		case *east.TaskCheckBox:
			if node.IsChecked {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
		case *ast.RawHTML:
			// dropped
		default:
			b.WriteString(r.inline(n, st))
		}
	}
	return b.String()
}

func (r *Renderer) wrap(s, indent string) string {
	width := r.width - lipgloss.Width(indent)
	if r.width <= 0 || width <= 10 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func writeBlock(b *strings.Builder, indent, s string) {
	b.WriteString(prefixLines(s, indent))
	b.WriteString("\n\n")
}

func prefixLines(s, prefix string) string {
	if prefix == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
