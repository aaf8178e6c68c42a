package study

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/auth"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/store"
)

type fakeSessions struct {
	session *auth.Session
}

func (f fakeSessions) Require() (*auth.Session, error) {
	if f.session == nil {
		return nil, auth.ErrNotSignedIn
	}
	return f.session, nil
}

func (f fakeSessions) WhileSignedIn(userID string, fn func() error) error {
	if f.session == nil || f.session.UserID != userID {
		return auth.ErrNotSignedIn
	}
	return fn()
}

type recordedCall struct {
	Path string
	Body map[string]any
}

// fakeService records every request and answers from a per-path handler.
type fakeService struct {
	mu       sync.Mutex
	calls    []recordedCall
	handlers map[string]func(w http.ResponseWriter)
	srv      *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{handlers: map[string]func(w http.ResponseWriter){}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		json.Unmarshal(data, &body)

		f.mu.Lock()
		f.calls = append(f.calls, recordedCall{Path: r.URL.Path, Body: body})
		h := f.handlers[r.URL.Path]
		f.mu.Unlock()

		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) handle(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func (f *fakeService) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		out = append(out, c.Path)
	}
	return out
}

type harness struct {
	svc    *fakeService
	ledger *ledger.Ledger
	orch   *Orchestrator
}

func newHarness(t *testing.T, signedIn bool, tips TipsProvider) *harness {
	t.Helper()
	svc := newFakeService(t)
	l := ledger.New(store.NewMemory())

	var sessions fakeSessions
	if signedIn {
		sessions.session = &auth.Session{UserID: "uid-1"}
	}

	client := NewClient(svc.srv.URL, svc.srv.URL+"/", 5*time.Second)
	if tips == nil {
		tips = &StaticTips{}
	}
	return &harness{
		svc:    svc,
		ledger: l,
		orch:   NewOrchestrator(sessions, l, client, tips, 100),
	}
}

func TestSubmit_ExplainSuccess(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true, nil)
	h.svc.handle("/tips", http.StatusOK, `{"tips":"1. Remember the light reactions."}`)
	h.orch.tips = NewRemoteTips(h.svc.srv.URL+"/tips", 5*time.Second)
	h.svc.handle("/explain", http.StatusOK, `{
		"notes": "## Photosynthesis\nPlants make sugar.",
		"flashcards": ["What is ATP? - Energy currency"],
		"resources": [{"title": "Khan Academy", "url": "https://khanacademy.org"}]
	}`)

	res := h.orch.Submit(ctx, Submission{Mode: ModeExplain, Input: "photosynthesis"})

	if res.Outcome != OutcomeOK {
		t.Fatalf("Expected OK, got %v (%v)", res.Outcome, res.Err)
	}
	if diff := cmp.Diff([]string{"/explain", "/tips"}, h.svc.paths()); diff != "" {
		t.Errorf("Unexpected request order (-want +got):\n%s", diff)
	}
	if res.Bundle.Notes != "## Photosynthesis\nPlants make sugar." {
		t.Errorf("Unexpected notes: %q", res.Bundle.Notes)
	}
	if res.Bundle.Tips != "1. Remember the light reactions." {
		t.Errorf("Unexpected tips: %q", res.Bundle.Tips)
	}
	wantResources := []Resource{{Title: "Khan Academy", URL: "https://khanacademy.org"}}
	if diff := cmp.Diff(wantResources, res.Bundle.Resources); diff != "" {
		t.Errorf("Unexpected resources (-want +got):\n%s", diff)
	}

	records, _ := h.ledger.Records(ctx)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Style != "generic" || records[0].Question != "photosynthesis" {
		t.Errorf("Unexpected record: %+v", records[0])
	}
	if res.Record == nil || res.Record.ID != records[0].ID {
		t.Errorf("Expected result record to match stored record")
	}

	explainBody := h.svc.calls[0].Body
	if explainBody["user_id"] != "uid-1" || explainBody["topic"] != "photosynthesis" {
		t.Errorf("Unexpected explain body: %v", explainBody)
	}
	if v, ok := explainBody["exam"]; !ok || v != nil {
		t.Errorf("Expected exam null, got %v (present=%v)", v, ok)
	}
	tipsBody := h.svc.calls[1].Body
	if tipsBody["max_tokens"] != float64(100) {
		t.Errorf("Expected max_tokens 100, got %v", tipsBody["max_tokens"])
	}
	if !strings.HasPrefix(tipsBody["prompt"].(string), "Given this explanation: ## Photosynthesis") {
		t.Errorf("Unexpected tips prompt: %v", tipsBody["prompt"])
	}
}

func TestSubmit_SolvePayloadAndStyleTag(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true, nil)
	h.svc.handle("/solve", http.StatusOK, `{"notes":"x = 2"}`)

	res := h.orch.Submit(ctx, Submission{Mode: ModeSolve, Input: "2x = 4", Exam: "GATE", Style: "Step-by-Step"})
	if res.Outcome != OutcomeOK {
		t.Fatalf("Expected OK, got %v (%v)", res.Outcome, res.Err)
	}

	body := h.svc.calls[0].Body
	if body["problem"] != "2x = 4" || body["exam"] != "gate" || body["explanation_style"] != "step-by-step" {
		t.Errorf("Unexpected solve body: %v", body)
	}
	if res.Record.Style != "Step-by-Step" {
		t.Errorf("Expected style tag Step-by-Step, got %s", res.Record.Style)
	}
	if res.Bundle.Tips != SampleTips {
		t.Errorf("Expected static tips, got %q", res.Bundle.Tips)
	}

	res = h.orch.Submit(ctx, Submission{Mode: ModeSolve, Input: "3x = 9"})
	body = h.svc.calls[1].Body
	if body["exam"] != nil || body["explanation_style"] != nil {
		t.Errorf("Expected null exam and style, got %v", body)
	}
	if res.Record.Style != "generic" {
		t.Errorf("Expected generic style tag, got %s", res.Record.Style)
	}
}

func TestSubmit_LocalQuotaBlocksWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true, nil)
	h.svc.handle("/explain", http.StatusOK, `{"notes":"n"}`)

	for i := 0; i < 3; i++ {
		if res := h.orch.Submit(ctx, Submission{Mode: ModeExplain, Input: "topic"}); res.Outcome != OutcomeOK {
			t.Fatalf("Submission %d: expected OK, got %v (%v)", i, res.Outcome, res.Err)
		}
	}
	before := len(h.svc.paths())

	for _, mode := range []Mode{ModeExplain, ModeSolve, ModeSummarize, ModeChat} {
		res := h.orch.Submit(ctx, Submission{Mode: mode, Input: "more"})
		if res.Outcome != OutcomeQuotaExceeded {
			t.Errorf("%s: expected QuotaExceeded, got %v", mode, res.Outcome)
		}
	}
	if after := len(h.svc.paths()); after != before {
		t.Errorf("Expected no network calls once exhausted, got %d new", after-before)
	}

	h.ledger.MarkUpgraded(ctx)
	if res := h.orch.Submit(ctx, Submission{Mode: ModeExplain, Input: "topic"}); res.Outcome != OutcomeOK {
		t.Errorf("Expected OK after upgrade, got %v", res.Outcome)
	}
}

func TestSubmit_ServerQuotaMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"2xx error field", http.StatusOK, `{"error":"Chat limit reached. Upgrade to Pro for unlimited chats!"}`},
		{"non-2xx", http.StatusForbidden, `{"error":"Chat limit reached. Upgrade to Pro for unlimited chats!"}`},
		{"variant text", http.StatusOK, `{"error":"Daily limit reached"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, true, nil)
			h.svc.handle("/explain", tt.status, tt.body)

			res := h.orch.Submit(ctx, Submission{Mode: ModeExplain, Input: "topic"})
			if res.Outcome != OutcomeQuotaExceeded {
				t.Errorf("Expected QuotaExceeded, got %v (%v)", res.Outcome, res.Err)
			}
			if count, _ := h.ledger.Count(ctx); count != 0 {
				t.Errorf("Expected no ledger change, got count %d", count)
			}
		})
	}
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name    string
		sub     Submission
		path    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error", Submission{Mode: ModeExplain, Input: "t"}, "/explain", 500, "boom", "Server error: 500 - boom"},
		{"empty notes", Submission{Mode: ModeSolve, Input: "p"}, "/solve", 200, `{}`, "No response from server"},
		{"error field", Submission{Mode: ModeExplain, Input: "t"}, "/explain", 200, `{"error":"Topic too vague"}`, "Topic too vague"},
		{"no summary", Submission{Mode: ModeSummarize, Input: "https://youtu.be/x"}, "/summarize-youtube", 200, `{"error":"No summary returned"}`, "No summary returned"},
		{"empty summary", Submission{Mode: ModeSummarize, Input: "https://youtu.be/x"}, "/summarize-youtube", 200, `{"summary":""}`, "No summary returned"},
		{"no chat", Submission{Mode: ModeChat, Input: "why?"}, "/chat-youtube", 200, `{}`, "No chat response"},
		{"malformed", Submission{Mode: ModeExplain, Input: "t"}, "/explain", 200, `{"notes":`, "failed to parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, true, nil)
			h.svc.handle(tt.path, tt.status, tt.body)

			res := h.orch.Submit(ctx, tt.sub)
			if res.Outcome != OutcomeFailure {
				t.Fatalf("Expected Failure, got %v", res.Outcome)
			}
			if !strings.Contains(res.Err.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.wantMsg, res.Err.Error())
			}
			if res.Bundle != nil {
				t.Error("Expected no bundle on failure")
			}
			if count, _ := h.ledger.Count(ctx); count != 0 {
				t.Errorf("Expected no ledger change, got count %d", count)
			}
		})
	}
}

func TestSubmit_ServerErrorType(t *testing.T) {
	h := newHarness(t, true, nil)
	h.svc.handle("/explain", http.StatusBadGateway, "upstream down")

	res := h.orch.Submit(context.Background(), Submission{Mode: ModeExplain, Input: "t"})

	var serverErr *ServerError
	if !errors.As(res.Err, &serverErr) {
		t.Fatalf("Expected *ServerError, got %T", res.Err)
	}
	if serverErr.Status != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", serverErr.Status)
	}
}

type failingTips struct{}

func (failingTips) Tips(context.Context, string, string, int) (string, error) {
	return "", errors.New("tips service down")
}

func TestSubmit_TipsFailureStillCommits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true, failingTips{})
	h.svc.handle("/explain", http.StatusOK, `{"notes":"notes"}`)

	res := h.orch.Submit(ctx, Submission{Mode: ModeExplain, Input: "t"})
	if res.Outcome != OutcomeOK {
		t.Fatalf("Expected OK, got %v (%v)", res.Outcome, res.Err)
	}
	if res.Bundle.Tips != NoTipsPlaceholder {
		t.Errorf("Expected placeholder tips, got %q", res.Bundle.Tips)
	}
	if count, _ := h.ledger.Count(ctx); count != 1 {
		t.Errorf("Expected 1 record, got %d", count)
	}
}

func TestSubmit_SummarizeThenChat(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true, nil)
	h.svc.handle("/summarize-youtube", http.StatusOK, `{"summary":"A talk on DP.","video_id":"abc123","resources":[]}`)
	h.svc.handle("/chat-youtube", http.StatusOK, `{"response":"Memoization."}`)

	sum := h.orch.Submit(ctx, Submission{Mode: ModeSummarize, Input: "https://youtu.be/abc123"})
	if sum.Outcome != OutcomeOK {
		t.Fatalf("Expected OK, got %v (%v)", sum.Outcome, sum.Err)
	}
	if sum.Bundle.VideoID != "abc123" || sum.Record.Style != "summary" {
		t.Errorf("Unexpected summary result: %+v %+v", sum.Bundle, sum.Record)
	}
	if sum.Bundle.Tips != "" {
		t.Errorf("Expected no tips for summaries, got %q", sum.Bundle.Tips)
	}

	chat := h.orch.Submit(ctx, Submission{Mode: ModeChat, Input: "key idea?", VideoID: sum.Bundle.VideoID})
	if chat.Outcome != OutcomeOK {
		t.Fatalf("Expected OK, got %v (%v)", chat.Outcome, chat.Err)
	}
	if chat.Bundle.Notes != "Memoization." || chat.Record.Style != "chat" {
		t.Errorf("Unexpected chat result: %+v %+v", chat.Bundle, chat.Record)
	}

	if diff := cmp.Diff([]string{"/summarize-youtube", "/chat-youtube"}, h.svc.paths()); diff != "" {
		t.Errorf("Unexpected requests (-want +got):\n%s", diff)
	}
	body := h.svc.calls[1].Body
	if body["video_id"] != "abc123" || body["query"] != "key idea?" {
		t.Errorf("Unexpected chat body: %v", body)
	}
	if h.svc.calls[0].Body["videoUrl"] != "https://youtu.be/abc123" {
		t.Errorf("Unexpected summarize body: %v", h.svc.calls[0].Body)
	}
}

func TestSubmit_GuardsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		signedIn bool
		sub      Submission
		wantErr  error
	}{
		{"signed out", false, Submission{Mode: ModeExplain, Input: "t"}, auth.ErrNotSignedIn},
		{"empty input", true, Submission{Mode: ModeExplain, Input: "   "}, ErrEmptyInput},
		{"unknown mode", true, Submission{Mode: "dance", Input: "t"}, ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.signedIn, nil)
			res := h.orch.Submit(context.Background(), tt.sub)
			if res.Outcome != OutcomeFailure || !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Expected Failure with %v, got %v (%v)", tt.wantErr, res.Outcome, res.Err)
			}
			if n := len(h.svc.paths()); n != 0 {
				t.Errorf("Expected no network calls, got %d", n)
			}
		})
	}
}

func TestSubmitFeedback(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true, nil)
	h.svc.handle("/feedback", http.StatusOK, ``)

	if err := h.orch.SubmitFeedback(ctx, "  "); !errors.Is(err, ErrEmptyFeedback) {
		t.Errorf("Expected ErrEmptyFeedback, got %v", err)
	}
	if n := len(h.svc.paths()); n != 0 {
		t.Errorf("Expected no call for empty feedback, got %d", n)
	}

	if err := h.orch.SubmitFeedback(ctx, "Great app"); err != nil {
		t.Fatalf("SubmitFeedback returned error: %v", err)
	}
	if h.svc.calls[0].Body["feedback"] != "Great app" {
		t.Errorf("Unexpected feedback body: %v", h.svc.calls[0].Body)
	}
	if count, _ := h.ledger.Count(ctx); count != 0 {
		t.Errorf("Expected feedback not to touch the ledger, got %d", count)
	}

	h.svc.handle("/feedback", http.StatusInternalServerError, "nope")
	if err := h.orch.SubmitFeedback(ctx, "again"); err == nil {
		t.Error("Expected error on non-2xx feedback")
	}
}

type stubProvider struct{}

func (stubProvider) SignIn(ctx context.Context) (*auth.Session, error) { return nil, auth.ErrSignInAborted }
func (stubProvider) Revoke(ctx context.Context, s *auth.Session) error { return nil }

type storedSession struct {
	session *auth.Session
}

func (s *storedSession) Load() (*auth.Session, error) { return s.session, nil }
func (s *storedSession) Save(v *auth.Session) error   { s.session = v; return nil }
func (s *storedSession) Clear() error                 { s.session = nil; return nil }

func TestSubmit_SignOutDuringRequestLeavesLedgerEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newFakeService(t)
	l := ledger.New(store.NewMemory())

	gate, err := auth.NewGate(stubProvider{}, &storedSession{session: &auth.Session{UserID: "uid-1"}}, l)
	if err != nil {
		t.Fatalf("NewGate returned error: %v", err)
	}

	arrived := make(chan struct{})
	release := make(chan struct{})
	svc.mu.Lock()
	svc.handlers["/explain"] = func(w http.ResponseWriter) {
		close(arrived)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"notes": "Plants make sugar."}`))
	}
	svc.mu.Unlock()

	orch := NewOrchestrator(gate, l, NewClient(svc.srv.URL, svc.srv.URL, 5*time.Second), &StaticTips{}, 100)

	done := make(chan Result, 1)
	go func() {
		done <- orch.Submit(ctx, Submission{Mode: ModeExplain, Input: "photosynthesis"})
	}()

	<-arrived
	if err := gate.EndSession(ctx); err != nil {
		t.Fatalf("EndSession returned error: %v", err)
	}
	close(release)
	res := <-done

	if res.Outcome != OutcomeFailure || !errors.Is(res.Err, auth.ErrNotSignedIn) {
		t.Errorf("Expected failure with ErrNotSignedIn, got %v (%v)", res.Outcome, res.Err)
	}
	if n, _ := l.Count(ctx); n != 0 {
		t.Errorf("Expected empty ledger after sign-out, got %d records", n)
	}
}
