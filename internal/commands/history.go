package commands

import (
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/render"
)

var historyHTML string

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent questions and answers",
	Long: `Show the recent questions and answers stored on this device, newest first.
Pass --html to export them as a standalone HTML page.`,
	RunE: runHistory,
}

func init() {
	HistoryCmd.Flags().StringVar(&historyHTML, "html", "", "Write the history as HTML to this file")
}

func runHistory(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.gate.Require(); err != nil {
		return fmt.Errorf("%w. Run 'vikal login' first", err)
	}

	records, err := rt.ledger.Records(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No history yet.")
		return nil
	}

	if historyHTML != "" {
		page, err := historyPage(render.New(render.PlainStyles(), 0), records)
		if err != nil {
			return err
		}
		if err := os.WriteFile(historyHTML, []byte(page), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", historyHTML, err)
		}
		fmt.Fprintf(out, "✅ Exported %d entries to %s\n", len(records), historyHTML)
		return nil
	}

	printHistory(out, newRenderer(out), records)
	return nil
}

func printHistory(w io.Writer, r *render.Renderer, records []ledger.Record) {
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, dimStyle.Render(strings.Repeat("─", 40)))
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(fmt.Sprintf("%d.", i+1)), rec.Question)
		fmt.Fprintln(w, dimStyle.Render(recordMeta(rec)))
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Render(rec.Response))
	}
}

func recordMeta(rec ledger.Record) string {
	meta := rec.Mode + " · " + rec.Style
	if !rec.CreatedAt.IsZero() {
		meta += " · " + rec.CreatedAt.Local().Format("02 Jan 2006 15:04")
	}
	return meta
}

// historyPage renders records as a self-contained HTML document.
func historyPage(r *render.Renderer, records []ledger.Record) (string, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>VIKAL history</title>\n")
	b.WriteString("<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem}" +
		".meta{color:#6b7280;font-size:.9rem}section{border-bottom:1px solid #e5e7eb;padding-bottom:1rem}</style>\n")
	b.WriteString("</head>\n<body>\n<h1>VIKAL history</h1>\n")

	for _, rec := range records {
		body, err := r.ToHTML(rec.Response)
		if err != nil {
			return "", err
		}
		b.WriteString("<section>\n")
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(rec.Question))
		fmt.Fprintf(&b, "<p class=\"meta\">%s</p>\n", html.EscapeString(recordMeta(rec)))
		b.WriteString(body)
		b.WriteString("</section>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
