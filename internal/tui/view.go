package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/app"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/study"
)

func (a *App) View() (output string) {
	// Recover from any panics to prevent TUI crash
	defer func() {
		if r := recover(); r != nil {
			output = fmt.Sprintf("\n  Error rendering view: %v\n\n  Press ctrl+c to quit.", r)
		}
	}()

	if a.quitting {
		return ""
	}
	if !a.ready {
		return "\n  " + a.spinner.View() + " Starting..."
	}

	w, h := a.size()

	if !a.state.SignedIn() {
		out := a.viewWelcome(w, h)
		if time.Now().Before(a.toastExpiry) && a.toast != "" {
			out = a.overlayToast(out, w)
		}
		return out
	}

	var b strings.Builder
	b.WriteString(a.viewHeader(w))
	b.WriteString("\n")
	b.WriteString(a.viewTabs(w))
	b.WriteString("\n")
	b.WriteString(a.viewContent(w, h-chromeHeight))

	lines := strings.Count(b.String(), "\n")
	for lines < h-2 {
		b.WriteString("\n")
		lines++
	}
	b.WriteString(a.viewFooter(w))

	out := b.String()

	if modal := a.state.ActiveModal(); modal != app.ModalNone {
		out = a.overlayModal(modal, w, h)
	}
	if time.Now().Before(a.toastExpiry) && a.toast != "" {
		out = a.overlayToast(out, w)
	}

	return out
}

func (a *App) viewWelcome(w, h int) string {
	var b strings.Builder
	b.WriteString(a.theme.LogoDot.Render("◉") + a.theme.Logo.Render(" VIKAL") + "\n\n")
	b.WriteString(a.theme.Title.Render("Ace Exams & Learn Smart") + "\n")
	b.WriteString(a.theme.Subtitle.Render("Explain topics, solve problems and summarize lectures for UPSC, GATE and RRB.") + "\n\n")

	switch {
	case a.signingIn && a.signInCode != nil:
		code := a.signInCode
		uri := code.VerificationURIComplete
		if uri == "" {
			uri = code.VerificationURI
		}
		b.WriteString(a.theme.Label.Render("Open ") + a.theme.StatusInfo.Render(uri) + "\n")
		b.WriteString(a.theme.Label.Render("and enter the code ") + a.theme.Code.Render(code.FormattedUserCode()) + "\n\n")
		b.WriteString(a.spinner.View() + " Waiting for authorization...\n\n")
		b.WriteString(a.helpKey("esc", "cancel"))
	case a.signingIn:
		b.WriteString(a.spinner.View() + " Requesting a sign-in code...\n\n")
		b.WriteString(a.helpKey("esc", "cancel"))
	default:
		b.WriteString(a.theme.ButtonPrimary.Render("Get Started") + "\n\n")
		b.WriteString(a.helpKey("enter", "sign in") + "  " + a.helpKey("q", "quit"))
	}

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, a.theme.Panel.Padding(1, 3).Render(b.String()))
}

func (a *App) viewHeader(w int) string {
	logo := a.theme.LogoDot.Render("◉") + a.theme.Logo.Render(" VIKAL")

	var usage string
	if a.upgraded {
		usage = a.theme.BadgePro.Render("PRO")
	} else {
		used := len(a.state.History)
		badge := a.theme.BadgeMuted
		if used >= ledger.Capacity {
			badge = a.theme.BadgeAccent
		}
		usage = badge.Render(fmt.Sprintf("Free %d/%d", used, ledger.Capacity))
	}

	right := usage
	if a.state.User != nil {
		right += "  " + a.theme.UserName.Render(a.state.User.Name)
	}

	gap := w - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return a.theme.HeaderContainer.Width(w).Render(logo + strings.Repeat(" ", gap) + right)
}

func (a *App) viewTabs(w int) string {
	var tabs []string
	for _, r := range []app.Route{app.RouteDashboard, app.RouteSummarizer} {
		label := " " + r.String() + " "
		if r == a.state.Route {
			tabs = append(tabs, a.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, a.theme.TabInactive.Render(label))
		}
	}
	return a.theme.TabContainer.Width(w).Render(strings.Join(tabs, " "))
}

func (a *App) viewContent(w, h int) string {
	if a.state.Route == app.RouteSummarizer {
		return a.viewSummarizer(w, h)
	}
	return a.viewDashboard(w, h)
}

func (a *App) viewDashboard(w, h int) string {
	sidebar := a.theme.Sidebar.Width(sidebarWidth - 2).Height(h).Render(a.viewHistory())

	var b strings.Builder
	b.WriteString(a.viewModeLine() + "\n")
	b.WriteString(a.inputBox(a.question, a.question.Focused()) + "\n")
	b.WriteString(a.viewStatus("Generating notes...") + "\n")
	b.WriteString(a.response.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", b.String())
}

func (a *App) viewHistory() string {
	var b strings.Builder
	b.WriteString(a.theme.SectionTitle.Render("Recent") + "\n\n")

	if len(a.state.History) == 0 {
		b.WriteString(a.theme.ValueMuted.Render("No history yet"))
		return b.String()
	}

	for i, rec := range a.state.History {
		style := a.theme.ListItem
		if i == a.state.Selected {
			style = a.theme.ListItemActive
		}
		b.WriteString(a.theme.HelpKey.Render(fmt.Sprintf("%d ", i+1)))
		b.WriteString(style.Render(truncate(rec.Question, sidebarWidth-8)) + "\n")
		b.WriteString("  " + a.theme.ValueMuted.Render(rec.Mode+" · "+rec.Style) + "\n\n")
	}
	return b.String()
}

func (a *App) viewModeLine() string {
	var parts []string
	for _, m := range []study.Mode{study.ModeExplain, study.ModeSolve} {
		label := " " + strings.ToUpper(string(m[:1])) + string(m[1:]) + " "
		if m == a.state.Mode {
			parts = append(parts, a.theme.TabActive.Render(label))
		} else {
			parts = append(parts, a.theme.TabInactive.Render(label))
		}
	}
	line := strings.Join(parts, " ")

	if a.state.Mode == study.ModeSolve {
		exam := pick(study.Exams, a.examIdx)
		if exam == "" {
			exam = "Any"
		}
		style := pick(study.Styles, a.styleIdx)
		if style == "" {
			style = "Default"
		}
		line += "   " + a.theme.Label.Render("Exam: ") + a.theme.Value.Render(exam) +
			"   " + a.theme.Label.Render("Style: ") + a.theme.Value.Render(style)
	}
	return line
}

func (a *App) viewSummarizer(w, h int) string {
	var b strings.Builder
	b.WriteString(a.inputBox(a.videoURL, a.videoURL.Focused()) + "\n")
	b.WriteString(a.inputBox(a.chatQuery, a.chatQuery.Focused()) + "\n")

	if a.state.Summary != nil && a.state.Summary.VideoID != "" {
		b.WriteString(a.theme.ValueMuted.Render("Video: "+a.state.Summary.VideoID) + "\n")
	} else {
		b.WriteString(a.theme.ValueMuted.Render("Summarize a video, then ask questions about it.") + "\n")
	}
	b.WriteString(a.viewStatus("Working on it...") + "\n")
	b.WriteString(a.response.View())
	return b.String()
}

func (a *App) inputBox(in interface{ View() string }, focused bool) string {
	style := a.theme.Input
	if focused {
		style = a.theme.InputFocus
	}
	return style.Width(a.response.Width - 2).Render(in.View())
}

func (a *App) viewStatus(loading string) string {
	switch {
	case a.state.Loading():
		return a.spinner.View() + " " + a.theme.StatusInfo.Render(loading)
	case a.state.LastError != "":
		return a.theme.StatusError.Render("✗ " + a.state.LastError)
	}
	return ""
}

// dashboardContent is the response pane for explain and solve.
func (a *App) dashboardContent() string {
	bundle := a.state.Bundle
	if bundle == nil {
		if a.state.Loading() {
			return ""
		}
		return a.theme.ValueMuted.Render("Ask a question to get notes, flashcards and exam tips.")
	}

	var b strings.Builder
	b.WriteString(a.md.Render(bundle.Notes))

	if len(bundle.Flashcards) > 0 && bundle.Mode != study.ModeSolve {
		b.WriteString("\n\n" + a.theme.SectionTitle.Render("Flashcards") + "\n")
		for _, card := range bundle.Flashcards {
			fc := study.ParseFlashcard(card)
			b.WriteString(a.theme.Flashcard.Render(
				a.theme.Value.Render("Q: "+fc.Question)+"\n"+a.theme.Label.Render("A: "+fc.Answer),
			) + "\n")
		}
	}

	if bundle.Tips != "" {
		b.WriteString("\n" + a.theme.SectionTitle.Render("Exam Tips") + "\n")
		b.WriteString(a.theme.Tips.Width(a.response.Width-2).Render(bundle.Tips) + "\n")
	}

	// History entries keep only the notes.
	if a.state.Selected < 0 {
		b.WriteString(a.viewResources(bundle.Resources))
	}
	return b.String()
}

// summarizerContent is the response pane for summaries and video chat.
func (a *App) summarizerContent() string {
	summary := a.state.Summary
	if summary == nil && a.state.ChatAnswer == "" {
		return ""
	}

	var b strings.Builder
	if summary != nil {
		b.WriteString(a.theme.SectionTitle.Render("Summary") + "\n\n")
		b.WriteString(a.md.Render(summary.Notes) + "\n")
		b.WriteString(a.viewResources(summary.Resources))
	}
	if a.state.ChatAnswer != "" {
		if summary != nil {
			b.WriteString("\n" + a.theme.HorizontalLine(a.response.Width-2) + "\n")
		}
		b.WriteString("\n" + a.theme.SectionTitle.Render("Answer") + "\n\n")
		b.WriteString(a.md.Render(a.state.ChatAnswer) + "\n")
	}
	return b.String()
}

func (a *App) viewResources(resources []study.Resource) string {
	var b strings.Builder
	b.WriteString("\n" + a.theme.SectionTitle.Render("Resources") + "\n")
	if len(resources) == 0 {
		b.WriteString(a.theme.ValueMuted.Render("No resources available.") + "\n")
		return b.String()
	}
	for _, r := range resources {
		b.WriteString("• " + a.theme.Value.Render(r.Title) + "\n  " + a.theme.StatusInfo.Render(r.URL) + "\n")
	}
	return b.String()
}

func (a *App) viewFooter(w int) string {
	help := a.getHelp()
	right := ""
	if a.deps.Version != "" {
		right = a.theme.ValueMuted.Render("v" + a.deps.Version)
	}

	gap := w - lipgloss.Width(help) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return a.theme.FooterContainer.Width(w).Render(help + strings.Repeat(" ", gap) + right)
}

func (a *App) getHelp() string {
	base := a.helpKey("enter", "send") + "  "
	switch a.state.Route {
	case app.RouteSummarizer:
		base += a.helpKey("tab", "field") + "  " + a.helpKey("ctrl+n", "dashboard")
	default:
		base += a.helpKey("ctrl+e", "mode")
		if a.state.Mode == study.ModeSolve {
			base += "  " + a.helpKey("ctrl+x", "exam") + "  " + a.helpKey("ctrl+t", "style")
		}
		base += "  " + a.helpKey("alt+1-3", "recent") + "  " + a.helpKey("ctrl+n", "summarizer")
	}
	return base + "  " + a.helpKey("ctrl+y", "copy") + "  " + a.helpKey("ctrl+f", "feedback") +
		"  " + a.helpKey("ctrl+u", "upgrade") + "  " + a.helpKey("ctrl+l", "sign out")
}

func (a *App) helpKey(k, desc string) string {
	return a.theme.HelpKey.Render("["+k+"]") + " " + a.theme.Help.Render(desc)
}

func (a *App) overlayModal(modal app.Modal, w, h int) string {
	var title, body, help string
	switch modal {
	case app.ModalTerms:
		title = "Terms & Conditions"
		body = app.TermsText
		help = a.helpKey("y", "accept") + "  " + a.helpKey("ctrl+c", "quit")
	case app.ModalTrialEnded:
		title = "Your free trial has ended"
		body = fmt.Sprintf("You have used all %d free requests. Upgrade to Pro for unlimited explanations, solutions and video chats.", ledger.Capacity)
		help = a.helpKey("u", "upgrade") + "  " + a.helpKey("esc", "later")
	case app.ModalUpgrade:
		title = "Upgrade to Pro"
		body = study.QuotaMessage + "\n\nPayment opens in your browser:\n" + a.theme.StatusInfo.Render(a.deps.UpgradeURL)
		help = a.helpKey("u", "open payment page") + "  " + a.helpKey("esc", "close")
	case app.ModalFeedback:
		title = "Send Feedback"
		body = a.theme.InputFocus.Width(50).Render(a.feedbackInput.View())
		help = a.helpKey("enter", "send") + "  " + a.helpKey("esc", "cancel")
	}

	content := a.theme.ModalTitle.Render(title) + "\n\n" +
		a.theme.ModalContent.Render(body) + "\n\n" +
		help

	box := a.theme.ModalContainer.Render(content)

	// Use lipgloss.Place for proper ANSI-safe centering
	return lipgloss.Place(w, h,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("#000000")),
	)
}

func (a *App) overlayToast(base string, w int) string {
	maxLen := w - 8
	if maxLen < 10 {
		maxLen = 10
	}
	msg := truncate(a.toast, maxLen)

	color := ColorBlue
	switch a.toastType {
	case ToastSuccess:
		color = ColorSuccess
	case ToastWarning:
		color = ColorWarning
	case ToastError:
		color = ColorError
	}

	toast := lipgloss.NewStyle().
		Foreground(color).
		Background(ColorSurface).
		Padding(0, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Render(msg)

	x := (w - lipgloss.Width(toast)) / 2
	return overlay(x, 2, toast, base)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 3 {
		return s
	}
	return string(r[:max-2]) + ".."
}

// overlay draws top over base with its upper-left corner at (x, y).
func overlay(x, y int, top, base string) string {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	baseLines := strings.Split(base, "\n")
	for i, line := range strings.Split(top, "\n") {
		row := y + i
		if row >= len(baseLines) {
			break
		}

		baseLine := baseLines[row]
		baseW := lipgloss.Width(baseLine)

		var b strings.Builder
		if x > 0 {
			if baseW >= x {
				b.WriteString(truncateAnsi(baseLine, x))
			} else {
				b.WriteString(baseLine + strings.Repeat(" ", x-baseW))
			}
		}
		b.WriteString(line)

		// Pad instead of slicing the right side to keep ANSI state intact
		if rest := baseW - x - lipgloss.Width(line); rest > 0 {
			b.WriteString(strings.Repeat(" ", rest))
		}
		baseLines[row] = b.String()
	}
	return strings.Join(baseLines, "\n")
}

// truncateAnsi truncates a string to a visual width, preserving ANSI sequences
func truncateAnsi(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
