package app

import (
	"errors"
	"testing"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/study"
)

func signedIn(terms bool) State {
	return Reduce(Initial(), SignIn{User: User{ID: "u1", Name: "Asha"}, TermsAccepted: terms})
}

func TestActiveModal_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Modal
	}{
		{"signed out", Initial(), ModalNone},
		{"terms first", func() State {
			s := signedIn(false)
			s.TrialEndedShown, s.UpgradeShown, s.FeedbackShown = true, true, true
			return s
		}(), ModalTerms},
		{"trial ended over upgrade", func() State {
			s := signedIn(true)
			s.TrialEndedShown, s.UpgradeShown = true, true
			return s
		}(), ModalTrialEnded},
		{"upgrade over feedback", func() State {
			s := signedIn(true)
			s.UpgradeShown, s.FeedbackShown = true, true
			return s
		}(), ModalUpgrade},
		{"feedback", Reduce(signedIn(true), SetFeedbackShown{Shown: true}), ModalFeedback},
		{"none", signedIn(true), ModalNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.ActiveModal(); got != tt.want {
				t.Errorf("Expected modal %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReduce_SignInAndOut(t *testing.T) {
	history := []ledger.Record{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}
	s := Reduce(Initial(), SignIn{User: User{ID: "u1"}, TrialEnded: true, History: history})

	if !s.SignedIn() || s.Route != RouteDashboard {
		t.Errorf("Expected signed-in dashboard, got %+v", s)
	}
	if len(s.History) != ledger.Capacity {
		t.Errorf("Expected history capped at %d, got %d", ledger.Capacity, len(s.History))
	}
	if !s.TrialEndedShown {
		t.Error("Expected trial-ended modal flag")
	}

	s = Reduce(s, SignOut{})
	if s.SignedIn() || s.Route != RouteWelcome || len(s.History) != 0 || s.TermsAccepted {
		t.Errorf("Expected reset state after sign-out, got %+v", s)
	}
}

func TestReduce_SubmitLifecycle(t *testing.T) {
	s := signedIn(true)
	s = Reduce(s, SubmitStarted{Mode: study.ModeExplain})
	if !s.Loading() {
		t.Error("Expected loading after SubmitStarted")
	}

	rec := ledger.Record{ID: "r1", Question: "photosynthesis", Response: "notes"}
	bundle := &study.Bundle{Mode: study.ModeExplain, Notes: "notes", Tips: "tips"}
	s = Reduce(s, SubmitFinished{Result: study.Result{Outcome: study.OutcomeOK, Bundle: bundle, Record: &rec}})

	if s.Loading() {
		t.Error("Expected not loading after SubmitFinished")
	}
	if s.Bundle != bundle {
		t.Error("Expected bundle to be displayed")
	}
	if len(s.History) != 1 || s.History[0].ID != "r1" {
		t.Errorf("Expected history to contain r1, got %+v", s.History)
	}

	s = Reduce(s, SubmitStarted{Mode: study.ModeSolve})
	if s.Bundle != nil {
		t.Error("Expected bundle cleared on new submission")
	}
	s = Reduce(s, SubmitFinished{Result: study.Result{Outcome: study.OutcomeFailure, Err: errors.New("Server error: 500 - boom")}})
	if s.LastError != "Server error: 500 - boom" {
		t.Errorf("Expected error text, got %q", s.LastError)
	}
	if len(s.History) != 1 {
		t.Errorf("Expected history unchanged on failure, got %d", len(s.History))
	}

	s = Reduce(s, SubmitStarted{Mode: study.ModeExplain})
	s = Reduce(s, SubmitFinished{Result: study.Result{Outcome: study.OutcomeQuotaExceeded}})
	if s.ActiveModal() != ModalUpgrade {
		t.Errorf("Expected upgrade modal, got %v", s.ActiveModal())
	}
}

func TestReduce_LastResponseWins(t *testing.T) {
	s := signedIn(true)
	s = Reduce(s, SubmitStarted{Mode: study.ModeExplain})
	s = Reduce(s, SubmitStarted{Mode: study.ModeExplain})

	first := &study.Bundle{Notes: "first"}
	second := &study.Bundle{Notes: "second"}
	s = Reduce(s, SubmitFinished{Result: study.Result{Outcome: study.OutcomeOK, Bundle: second}})
	if !s.Loading() {
		t.Error("Expected one submission still in flight")
	}
	s = Reduce(s, SubmitFinished{Result: study.Result{Outcome: study.OutcomeOK, Bundle: first}})

	if s.Bundle.Notes != "first" {
		t.Errorf("Expected the last arriving response, got %q", s.Bundle.Notes)
	}
}

func TestReduce_HistoryCapAndSelect(t *testing.T) {
	s := signedIn(true)
	for _, id := range []string{"a", "b", "c", "d"} {
		s = Reduce(s, AppendUsage{Record: ledger.Record{ID: id, Response: "resp " + id, Mode: "explain"}})
	}
	if len(s.History) != 3 || s.History[0].ID != "d" || s.History[2].ID != "b" {
		t.Errorf("Expected [d c b], got %+v", s.History)
	}

	s = Reduce(s, Navigate{Route: RouteSummarizer})
	s = Reduce(s, SelectHistory{Index: 1})
	if s.Route != RouteDashboard || s.Bundle == nil || s.Bundle.Notes != "resp c" {
		t.Errorf("Expected history entry c on dashboard, got route=%v bundle=%+v", s.Route, s.Bundle)
	}

	before := s
	s = Reduce(s, SelectHistory{Index: 9})
	if s.Selected != before.Selected {
		t.Error("Expected out-of-range selection to be ignored")
	}
}

func TestReduce_Summarizer(t *testing.T) {
	s := Reduce(signedIn(true), Navigate{Route: RouteSummarizer})
	s = Reduce(s, SubmitStarted{Mode: study.ModeSummarize})
	s = Reduce(s, SummaryFinished{Result: study.Result{Outcome: study.OutcomeFailure, Err: errors.New("No summary returned")}})
	if s.Summary != nil || s.LastError != "No summary returned" {
		t.Errorf("Expected empty summary with error, got %+v / %q", s.Summary, s.LastError)
	}

	summary := &study.Bundle{Mode: study.ModeSummarize, Notes: "summary", VideoID: "v1"}
	s = Reduce(s, SubmitStarted{Mode: study.ModeSummarize})
	s = Reduce(s, SummaryFinished{Result: study.Result{Outcome: study.OutcomeOK, Bundle: summary}})
	s = Reduce(s, SubmitStarted{Mode: study.ModeChat})
	s = Reduce(s, ChatFinished{Result: study.Result{Outcome: study.OutcomeOK, Bundle: &study.Bundle{Notes: "answer"}}})

	if s.Summary.VideoID != "v1" || s.ChatAnswer != "answer" {
		t.Errorf("Expected summary and chat answer, got %+v / %q", s.Summary, s.ChatAnswer)
	}
}

func TestReduce_NavigateRequiresSession(t *testing.T) {
	s := Reduce(Initial(), Navigate{Route: RouteSummarizer})
	if s.Route != RouteWelcome {
		t.Errorf("Expected welcome when signed out, got %v", s.Route)
	}
}
