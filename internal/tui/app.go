// Package tui is the interactive terminal client. It renders app.State and
// turns keys and service results into app actions.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/app"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/auth"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/browser"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/render"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/study"
)

// Gatekeeper owns the session. *auth.Gate implements it.
type Gatekeeper interface {
	Current() *auth.Session
	BeginSignIn(ctx context.Context) (auth.SignInResult, error)
	EndSession(ctx context.Context) error
}

// Submitter sends study requests. *study.Orchestrator implements it.
type Submitter interface {
	Submit(ctx context.Context, sub study.Submission) study.Result
	SubmitFeedback(ctx context.Context, text string) error
}

// UsageStore reads the persisted usage list and markers. *ledger.Ledger implements it.
type UsageStore interface {
	Records(ctx context.Context) ([]ledger.Record, error)
	IsUpgraded(ctx context.Context) (bool, error)
	TermsAccepted(ctx context.Context) (bool, error)
	AcceptTerms(ctx context.Context) error
}

// Deps wires the TUI to the services.
type Deps struct {
	Gate       Gatekeeper
	Study      Submitter
	Usage      UsageStore
	UpgradeURL string
	Version    string

	// OpenURL defaults to browser.Open.
	OpenURL browser.Opener
	// Copy defaults to the system clipboard.
	Copy func(text string) error
}

const (
	sidebarWidth = 30
	chromeHeight = 6 // header, tabs and footer
)

// summarizer input focus
const (
	focusVideoURL = iota
	focusChat
)

// App is the main TUI application model
type App struct {
	deps  Deps
	theme *Theme
	keys  KeyMap
	md    *render.Renderer

	ctx    context.Context
	cancel context.CancelFunc

	state    app.State
	upgraded bool

	width, height int
	ready         bool
	quitting      bool

	spinner spinner.Model

	question      textinput.Model
	videoURL      textinput.Model
	chatQuery     textinput.Model
	feedbackInput textinput.Model
	summaryFocus  int

	examIdx  int // -1 when no exam is selected
	styleIdx int // -1 when no style is selected

	response    viewport.Model
	lastContent string

	// Sign-in progress
	signingIn    bool
	signInCode   *auth.DeviceCode
	signInCancel context.CancelFunc

	// Toast
	toast       string
	toastType   ToastType
	toastExpiry time.Time
}

// NewApp creates the model and restores any persisted session.
func NewApp(deps Deps) *App {
	if deps.OpenURL == nil {
		deps.OpenURL = browser.Open
	}
	if deps.Copy == nil {
		deps.Copy = clipboard.WriteAll
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = DefaultTheme.Spinner

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		deps:          deps,
		theme:         DefaultTheme,
		keys:          DefaultKeyMap(),
		md:            render.New(render.DefaultStyles(), 80),
		ctx:           ctx,
		cancel:        cancel,
		state:         app.Initial(),
		spinner:       s,
		question:      newInput("Ask a topic or paste a problem...", "▸ ", 2000),
		videoURL:      newInput("https://www.youtube.com/watch?v=...", "Video ▸ ", 300),
		chatQuery:     newInput("Ask about the video...", "Chat  ▸ ", 500),
		feedbackInput: newInput("Tell us what to improve", "", 1000),
		examIdx:       -1,
		styleIdx:      -1,
		response:      viewport.New(80, 10),
	}

	if sess := deps.Gate.Current(); sess != nil {
		action, upgraded := loadSignIn(ctx, deps.Usage, sess, false)
		action.TrialEnded = len(action.History) >= ledger.Capacity && !upgraded
		a.upgraded = upgraded
		a.dispatch(action)
	}
	a.focusRoute()

	return a
}

func newInput(placeholder, prompt string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = prompt
	ti.CharLimit = limit
	ti.Width = 60
	return ti
}

// loadSignIn builds the sign-in action from the persisted usage.
func loadSignIn(ctx context.Context, usage UsageStore, s *auth.Session, trialEnded bool) (app.SignIn, bool) {
	history, err := usage.Records(ctx)
	if err != nil {
		slog.Warn("failed to load usage history", "error", err)
	}
	terms, err := usage.TermsAccepted(ctx)
	if err != nil {
		slog.Warn("failed to read terms marker", "error", err)
	}
	upgraded, err := usage.IsUpgraded(ctx)
	if err != nil {
		slog.Warn("failed to read upgrade marker", "error", err)
	}

	return app.SignIn{
		User:          app.User{ID: s.UserID, Name: s.Name(), Email: s.Email},
		TermsAccepted: terms,
		TrialEnded:    trialEnded,
		History:       history,
	}, upgraded
}

// State returns the current interface state.
func (a *App) State() app.State {
	return a.state
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.tick(), textinput.Blink)
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func (a *App) dispatch(action app.Action) {
	a.state = app.Reduce(a.state, action)
	a.refreshResponse()
}

func (a *App) showToast(msg string, typ ToastType, d time.Duration) {
	if d == 0 {
		d = 3 * time.Second
	}
	a.toast = msg
	a.toastType = typ
	a.toastExpiry = time.Now().Add(d)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case TickMsg:
		return a, a.tick()

	case ToastMsg:
		a.showToast(msg.Message, msg.Type, msg.Duration)
		return a, nil

	case SignInPromptMsg:
		code := msg.Code
		a.signInCode = &code
		return a, nil

	case SignInDoneMsg:
		a.signingIn = false
		a.signInCode = nil
		a.signInCancel = nil
		if msg.Err != nil {
			if errors.Is(msg.Err, auth.ErrSignInAborted) {
				a.showToast("Sign-in cancelled", ToastWarning, 0)
			} else {
				a.showToast("Sign-in failed: "+msg.Err.Error(), ToastError, 5*time.Second)
			}
			return a, nil
		}
		a.upgraded = msg.Upgraded
		a.dispatch(msg.Action)
		a.resize()
		a.showToast("Signed in as "+msg.Action.User.Name, ToastSuccess, 0)
		return a, a.focusRoute()

	case SubmitDoneMsg:
		// Results that land after sign-out belong to nobody.
		if !a.state.SignedIn() {
			return a, nil
		}
		a.handleResult(msg)
		return a, nil

	case FeedbackDoneMsg:
		switch {
		case msg.Err == nil:
			a.feedbackInput.SetValue("")
			a.feedbackInput.Blur()
			a.dispatch(app.SetFeedbackShown{Shown: false})
			a.showToast("Thanks for your feedback!", ToastSuccess, 0)
			return a, a.focusRoute()
		case errors.Is(msg.Err, study.ErrEmptyFeedback):
			a.showToast("Please enter feedback", ToastWarning, 0)
		default:
			a.showToast("Failed to submit feedback", ToastError, 0)
		}
		return a, nil

	case SignOutDoneMsg:
		a.dispatch(app.SignOut{})
		a.resetInputs()
		a.upgraded = false
		if msg.Err != nil {
			a.showToast("Signed out, but local data could not be cleared: "+msg.Err.Error(), ToastWarning, 5*time.Second)
		} else {
			a.showToast("Signed out", ToastInfo, 0)
		}
		return a, nil

	case TermsAcceptedMsg:
		if msg.Err != nil {
			a.showToast("Could not save terms acceptance: "+msg.Err.Error(), ToastError, 5*time.Second)
			return a, nil
		}
		a.dispatch(app.AcceptTerms{})
		return a, a.focusRoute()

	case ClipboardMsg:
		if msg.Err != nil {
			a.showToast("Copy failed: "+msg.Err.Error(), ToastError, 0)
		} else {
			a.showToast("Notes copied to clipboard", ToastSuccess, 2*time.Second)
		}
		return a, nil

	case BrowserMsg:
		if msg.Err != nil {
			a.showToast("Open "+msg.URL+" in your browser", ToastInfo, 8*time.Second)
		}
		return a, nil
	}

	// Cursor blink and other input internals
	return a, a.updateFocused(msg)
}

func (a *App) handleResult(msg SubmitDoneMsg) {
	res := msg.Result
	switch msg.Mode {
	case study.ModeSummarize:
		a.dispatch(app.SummaryFinished{Result: res})
	case study.ModeChat:
		a.dispatch(app.ChatFinished{Result: res})
		if res.Outcome == study.OutcomeOK {
			a.chatQuery.SetValue("")
		}
	default:
		a.dispatch(app.SubmitFinished{Result: res})
	}

	switch res.Outcome {
	case study.OutcomeQuotaExceeded:
		a.blurAll()
	case study.OutcomeFailure:
		if res.Err != nil {
			a.showToast(res.Err.Error(), ToastError, 5*time.Second)
		}
	}
	a.response.GotoTop()
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		if a.signInCancel != nil {
			a.signInCancel()
		}
		a.cancel()
		a.quitting = true
		return a, tea.Quit
	}

	if !a.state.SignedIn() {
		return a.handleWelcomeKey(msg)
	}

	switch a.state.ActiveModal() {
	case app.ModalTerms:
		if key.Matches(msg, a.keys.Accept) {
			return a, a.acceptTermsCmd()
		}
		return a, nil

	case app.ModalTrialEnded:
		switch {
		case key.Matches(msg, a.keys.Open):
			a.dispatch(app.SetTrialEndedShown{Shown: false})
			a.dispatch(app.SetUpgradeShown{Shown: true})
		case key.Matches(msg, a.keys.Escape):
			a.dispatch(app.SetTrialEndedShown{Shown: false})
			return a, a.focusRoute()
		}
		return a, nil

	case app.ModalUpgrade:
		switch {
		case key.Matches(msg, a.keys.Open):
			a.dispatch(app.SetUpgradeShown{Shown: false})
			a.focusRoute()
			return a, a.openURLCmd(a.deps.UpgradeURL)
		case key.Matches(msg, a.keys.Escape):
			a.dispatch(app.SetUpgradeShown{Shown: false})
			return a, a.focusRoute()
		}
		return a, nil

	case app.ModalFeedback:
		switch {
		case key.Matches(msg, a.keys.Escape):
			a.feedbackInput.Blur()
			a.dispatch(app.SetFeedbackShown{Shown: false})
			return a, a.focusRoute()
		case key.Matches(msg, a.keys.Submit):
			return a, a.feedbackCmd(a.feedbackInput.Value())
		}
		var cmd tea.Cmd
		a.feedbackInput, cmd = a.feedbackInput.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Switch):
		next := app.RouteSummarizer
		if a.state.Route == app.RouteSummarizer {
			next = app.RouteDashboard
		}
		a.dispatch(app.Navigate{Route: next})
		a.resize()
		return a, a.focusRoute()

	case key.Matches(msg, a.keys.Feedback):
		a.blurAll()
		a.dispatch(app.SetFeedbackShown{Shown: true})
		return a, a.feedbackInput.Focus()

	case key.Matches(msg, a.keys.Upgrade):
		a.blurAll()
		a.dispatch(app.SetUpgradeShown{Shown: true})
		return a, nil

	case key.Matches(msg, a.keys.SignOut):
		return a, a.signOutCmd()

	case key.Matches(msg, a.keys.PageUp), key.Matches(msg, a.keys.PageDown):
		var cmd tea.Cmd
		a.response, cmd = a.response.Update(msg)
		return a, cmd

	case key.Matches(msg, a.keys.Copy):
		return a, a.copyCmd()

	case key.Matches(msg, a.keys.History):
		a.dispatch(app.SelectHistory{Index: historyIndex(msg.String())})
		a.resize()
		return a, a.focusRoute()
	}

	if a.state.Route == app.RouteSummarizer {
		return a.handleSummarizerKey(msg)
	}
	return a.handleDashboardKey(msg)
}

func (a *App) handleWelcomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Submit):
		if !a.signingIn {
			return a, a.signInCmd()
		}
	case key.Matches(msg, a.keys.Escape):
		if a.signInCancel != nil {
			a.signInCancel()
		}
	case msg.String() == "q" && !a.signingIn:
		a.cancel()
		a.quitting = true
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.ToggleMode):
		mode := study.ModeSolve
		if a.state.Mode == study.ModeSolve {
			mode = study.ModeExplain
		}
		a.dispatch(app.SetMode{Mode: mode})
		return a, nil

	case key.Matches(msg, a.keys.CycleExam):
		if a.state.Mode == study.ModeSolve {
			a.examIdx = cycle(a.examIdx, len(study.Exams))
		}
		return a, nil

	case key.Matches(msg, a.keys.CycleStyle):
		if a.state.Mode == study.ModeSolve {
			a.styleIdx = cycle(a.styleIdx, len(study.Styles))
		}
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		return a, a.submitCmd(a.dashboardSubmission())
	}

	var cmd tea.Cmd
	a.question, cmd = a.question.Update(msg)
	return a, cmd
}

func (a *App) handleSummarizerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.NextField):
		if a.summaryFocus == focusVideoURL {
			a.summaryFocus = focusChat
		} else {
			a.summaryFocus = focusVideoURL
		}
		return a, a.focusRoute()

	case key.Matches(msg, a.keys.Submit):
		if a.summaryFocus == focusVideoURL {
			return a, a.submitCmd(study.Submission{Mode: study.ModeSummarize, Input: strings.TrimSpace(a.videoURL.Value())})
		}
		sub := study.Submission{Mode: study.ModeChat, Input: strings.TrimSpace(a.chatQuery.Value())}
		if a.state.Summary != nil {
			sub.VideoID = a.state.Summary.VideoID
		}
		return a, a.submitCmd(sub)
	}

	var cmd tea.Cmd
	if a.summaryFocus == focusVideoURL {
		a.videoURL, cmd = a.videoURL.Update(msg)
	} else {
		a.chatQuery, cmd = a.chatQuery.Update(msg)
	}
	return a, cmd
}

func (a *App) dashboardSubmission() study.Submission {
	sub := study.Submission{Mode: a.state.Mode, Input: strings.TrimSpace(a.question.Value())}
	if sub.Mode == study.ModeSolve {
		sub.Exam = pick(study.Exams, a.examIdx)
		sub.Style = pick(study.Styles, a.styleIdx)
	}
	return sub
}

// cycle steps through -1 (none) and 0..n-1.
func cycle(i, n int) int {
	if i+1 >= n {
		return -1
	}
	return i + 1
}

func pick(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

// Commands

func (a *App) submitCmd(sub study.Submission) tea.Cmd {
	a.dispatch(app.SubmitStarted{Mode: sub.Mode})
	ctx, submitter := a.ctx, a.deps.Study
	return func() tea.Msg {
		return SubmitDoneMsg{Mode: sub.Mode, Result: submitter.Submit(ctx, sub)}
	}
}

func (a *App) signInCmd() tea.Cmd {
	ctx, cancel := context.WithCancel(a.ctx)
	a.signingIn = true
	a.signInCancel = cancel
	gate, usage := a.deps.Gate, a.deps.Usage

	return func() tea.Msg {
		defer cancel()
		res, err := gate.BeginSignIn(ctx)
		if err != nil {
			return SignInDoneMsg{Err: err}
		}
		action, upgraded := loadSignIn(ctx, usage, res.Session, res.TrialEnded)
		return SignInDoneMsg{Action: action, Upgraded: upgraded}
	}
}

func (a *App) signOutCmd() tea.Cmd {
	ctx, gate := a.ctx, a.deps.Gate
	return func() tea.Msg {
		return SignOutDoneMsg{Err: gate.EndSession(ctx)}
	}
}

func (a *App) acceptTermsCmd() tea.Cmd {
	ctx, usage := a.ctx, a.deps.Usage
	return func() tea.Msg {
		return TermsAcceptedMsg{Err: usage.AcceptTerms(ctx)}
	}
}

func (a *App) feedbackCmd(text string) tea.Cmd {
	ctx, submitter := a.ctx, a.deps.Study
	return func() tea.Msg {
		return FeedbackDoneMsg{Err: submitter.SubmitFeedback(ctx, text)}
	}
}

func (a *App) openURLCmd(url string) tea.Cmd {
	open := a.deps.OpenURL
	return func() tea.Msg {
		return BrowserMsg{URL: url, Err: open(url)}
	}
}

func (a *App) copyCmd() tea.Cmd {
	text := a.copyText()
	if text == "" {
		a.showToast("Nothing to copy yet", ToastWarning, 2*time.Second)
		return nil
	}
	copyFn := a.deps.Copy
	return func() tea.Msg {
		return ClipboardMsg{Err: copyFn(text)}
	}
}

func (a *App) copyText() string {
	if a.state.Route == app.RouteSummarizer {
		if a.state.ChatAnswer != "" {
			return a.state.ChatAnswer
		}
		if a.state.Summary != nil {
			return a.state.Summary.Notes
		}
		return ""
	}
	if a.state.Bundle != nil {
		return a.state.Bundle.Notes
	}
	return ""
}

// Focus handling

func (a *App) blurAll() {
	a.question.Blur()
	a.videoURL.Blur()
	a.chatQuery.Blur()
}

func (a *App) focusRoute() tea.Cmd {
	a.blurAll()
	if a.state.ActiveModal() != app.ModalNone {
		return nil
	}
	switch a.state.Route {
	case app.RouteSummarizer:
		if a.summaryFocus == focusChat {
			return a.chatQuery.Focus()
		}
		return a.videoURL.Focus()
	case app.RouteDashboard:
		return a.question.Focus()
	}
	return nil
}

func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.feedbackInput.Focused():
		a.feedbackInput, cmd = a.feedbackInput.Update(msg)
	case a.question.Focused():
		a.question, cmd = a.question.Update(msg)
	case a.videoURL.Focused():
		a.videoURL, cmd = a.videoURL.Update(msg)
	case a.chatQuery.Focused():
		a.chatQuery, cmd = a.chatQuery.Update(msg)
	}
	return cmd
}

func (a *App) resetInputs() {
	for _, in := range []*textinput.Model{&a.question, &a.videoURL, &a.chatQuery, &a.feedbackInput} {
		in.SetValue("")
		in.Blur()
	}
	a.examIdx, a.styleIdx = -1, -1
	a.summaryFocus = focusVideoURL
}

// resize lays out the inputs and response pane for the current route.
func (a *App) resize() {
	w, h := a.size()
	contentH := h - chromeHeight

	var vpW, vpH int
	if a.state.Route == app.RouteSummarizer {
		vpW = w - 4
		vpH = contentH - 8
	} else {
		vpW = w - sidebarWidth - 4
		vpH = contentH - 6
	}
	if vpW < 20 {
		vpW = 20
	}
	if vpH < 3 {
		vpH = 3
	}

	a.response.Width = vpW
	a.response.Height = vpH
	a.md.SetWidth(vpW - 2)

	inputW := vpW - 12
	if inputW < 10 {
		inputW = 10
	}
	a.question.Width = inputW
	a.videoURL.Width = inputW
	a.chatQuery.Width = inputW
	a.feedbackInput.Width = 48

	a.lastContent = ""
	a.refreshResponse()
}

func (a *App) size() (int, int) {
	w, h := a.width, a.height
	if w < 60 {
		w = 60
	}
	if h < 16 {
		h = 16
	}
	return w, h
}

// refreshResponse re-renders the response pane when its content changes.
func (a *App) refreshResponse() {
	var content string
	switch a.state.Route {
	case app.RouteDashboard:
		content = a.dashboardContent()
	case app.RouteSummarizer:
		content = a.summarizerContent()
	}
	if content == a.lastContent {
		return
	}
	a.lastContent = content
	a.response.SetContent(content)
}

// Run starts the TUI. bind receives the program before it starts so that
// callbacks running outside the model, like the sign-in prompt, can Send to it.
func Run(deps Deps, bind func(*tea.Program)) error {
	a := NewApp(deps)
	p := tea.NewProgram(a, tea.WithAltScreen())
	if bind != nil {
		bind(p)
	}
	_, err := p.Run()
	a.cancel()
	return err
}
