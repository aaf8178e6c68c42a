// Package app holds the interface state and the reducer that changes it.
// Views render a State; user actions and service results become Actions.
package app

import (
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/study"
)

// Route is the active screen.
type Route int

const (
	RouteWelcome Route = iota
	RouteDashboard
	RouteSummarizer
)

func (r Route) String() string {
	switch r {
	case RouteWelcome:
		return "Welcome"
	case RouteDashboard:
		return "Dashboard"
	case RouteSummarizer:
		return "Summarizer"
	default:
		return "Unknown"
	}
}

// Modal is the overlay currently in front of the route.
type Modal int

const (
	ModalNone Modal = iota
	ModalTerms
	ModalTrialEnded
	ModalUpgrade
	ModalFeedback
)

// User is the signed-in identity as shown in the interface.
type User struct {
	ID    string
	Name  string
	Email string
}

// State is everything the views need.
type State struct {
	User          *User
	TermsAccepted bool
	Route         Route

	// Dashboard
	Mode     study.Mode // ModeExplain or ModeSolve
	Bundle   *study.Bundle
	History  []ledger.Record
	Selected int // index into History, -1 when none

	// Summarizer
	Summary    *study.Bundle
	ChatAnswer string

	Pending   int // submissions in flight
	LastError string
	Notice    string

	TrialEndedShown bool
	UpgradeShown    bool
	FeedbackShown   bool
}

// Initial is the signed-out state.
func Initial() State {
	return State{Route: RouteWelcome, Mode: study.ModeExplain, Selected: -1}
}

// Loading reports whether any submission is in flight.
func (s State) Loading() bool {
	return s.Pending > 0
}

// SignedIn reports whether a user is present.
func (s State) SignedIn() bool {
	return s.User != nil
}

// ActiveModal applies the overlay precedence: terms gate everything while
// signed in, then trial-ended, then upgrade, then feedback.
func (s State) ActiveModal() Modal {
	switch {
	case s.User == nil:
		return ModalNone
	case !s.TermsAccepted:
		return ModalTerms
	case s.TrialEndedShown:
		return ModalTrialEnded
	case s.UpgradeShown:
		return ModalUpgrade
	case s.FeedbackShown:
		return ModalFeedback
	default:
		return ModalNone
	}
}

// Action changes State through Reduce.
type Action interface {
	isAction()
}

type (
	SignIn struct {
		User          User
		TermsAccepted bool
		TrialEnded    bool
		History       []ledger.Record
	}
	SignOut            struct{}
	AcceptTerms        struct{}
	SubmitStarted      struct{ Mode study.Mode }
	SubmitFinished     struct{ Result study.Result }
	AppendUsage        struct{ Record ledger.Record }
	SetUpgradeShown    struct{ Shown bool }
	SetTrialEndedShown struct{ Shown bool }
	SetFeedbackShown   struct{ Shown bool }
	SetMode            struct{ Mode study.Mode }
	Navigate           struct{ Route Route }
	SelectHistory      struct{ Index int }
	SummaryFinished    struct{ Result study.Result }
	ChatFinished       struct{ Result study.Result }
	SetNotice          struct{ Text string }
	ClearError         struct{}
)

func (SignIn) isAction()             {}
func (SignOut) isAction()            {}
func (AcceptTerms) isAction()        {}
func (SubmitStarted) isAction()      {}
func (SubmitFinished) isAction()     {}
func (AppendUsage) isAction()        {}
func (SetUpgradeShown) isAction()    {}
func (SetTrialEndedShown) isAction() {}
func (SetFeedbackShown) isAction()   {}
func (SetMode) isAction()            {}
func (Navigate) isAction()           {}
func (SelectHistory) isAction()      {}
func (SummaryFinished) isAction()    {}
func (ChatFinished) isAction()       {}
func (SetNotice) isAction()          {}
func (ClearError) isAction()         {}

// Reduce returns the state after a. It does not mutate s.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case SignIn:
		u := act.User
		next := Initial()
		next.User = &u
		next.Route = RouteDashboard
		next.TermsAccepted = act.TermsAccepted
		next.TrialEndedShown = act.TrialEnded
		next.History = capHistory(act.History)
		return next

	case SignOut:
		return Initial()

	case AcceptTerms:
		s.TermsAccepted = true

	case SubmitStarted:
		s.Pending++
		s.LastError = ""
		switch act.Mode {
		case study.ModeExplain, study.ModeSolve:
			s.Bundle = nil
			s.Selected = -1
		case study.ModeSummarize:
			s.Summary = nil
			s.ChatAnswer = ""
		}

	case SubmitFinished:
		s = finish(s, act.Result)
		if act.Result.Outcome == study.OutcomeOK {
			s.Bundle = act.Result.Bundle
		}

	case SummaryFinished:
		s = finish(s, act.Result)
		if act.Result.Outcome == study.OutcomeOK {
			s.Summary = act.Result.Bundle
			s.ChatAnswer = ""
		}

	case ChatFinished:
		s = finish(s, act.Result)
		if act.Result.Outcome == study.OutcomeOK && act.Result.Bundle != nil {
			s.ChatAnswer = act.Result.Bundle.Notes
		}

	case AppendUsage:
		s.History = prependRecord(s.History, act.Record)

	case SetUpgradeShown:
		s.UpgradeShown = act.Shown

	case SetTrialEndedShown:
		s.TrialEndedShown = act.Shown

	case SetFeedbackShown:
		s.FeedbackShown = act.Shown

	case SetMode:
		if act.Mode == study.ModeExplain || act.Mode == study.ModeSolve {
			s.Mode = act.Mode
		}

	case Navigate:
		if s.User == nil {
			s.Route = RouteWelcome
		} else if act.Route != RouteWelcome {
			s.Route = act.Route
		}

	case SelectHistory:
		if act.Index < 0 || act.Index >= len(s.History) {
			return s
		}
		rec := s.History[act.Index]
		s.Selected = act.Index
		s.Route = RouteDashboard
		s.Bundle = &study.Bundle{Mode: study.Mode(rec.Mode), Notes: rec.Response}

	case SetNotice:
		s.Notice = act.Text

	case ClearError:
		s.LastError = ""
	}
	return s
}

// finish applies what every result kind shares: the in-flight count,
// the upgrade prompt, the error text and the new usage record.
func finish(s State, res study.Result) State {
	if s.Pending > 0 {
		s.Pending--
	}

	switch res.Outcome {
	case study.OutcomeOK:
		s.LastError = ""
		if res.Record != nil {
			s.History = prependRecord(s.History, *res.Record)
		}
	case study.OutcomeQuotaExceeded:
		s.UpgradeShown = true
	case study.OutcomeFailure:
		if res.Err != nil {
			s.LastError = res.Err.Error()
		} else {
			s.LastError = "Unknown error"
		}
	}
	return s
}

func prependRecord(history []ledger.Record, rec ledger.Record) []ledger.Record {
	out := make([]ledger.Record, 0, ledger.Capacity)
	out = append(out, rec)
	for _, r := range history {
		if r.ID == rec.ID && rec.ID != "" {
			continue
		}
		out = append(out, r)
	}
	return capHistory(out)
}

func capHistory(history []ledger.Record) []ledger.Record {
	if len(history) > ledger.Capacity {
		history = history[:ledger.Capacity]
	}
	out := make([]ledger.Record, len(history))
	copy(out, history)
	return out
}
