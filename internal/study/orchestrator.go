package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/auth"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/logging"
)

// SessionSource yields the signed-in session.
type SessionSource interface {
	Require() (*auth.Session, error)
	WhileSignedIn(userID string, fn func() error) error
}

// Service is the remote study service.
type Service interface {
	Explain(ctx context.Context, userID, topic string) (*NotesResponse, error)
	Solve(ctx context.Context, userID, problem, exam, style string) (*NotesResponse, error)
	Feedback(ctx context.Context, userID, text string) error
	Summarize(ctx context.Context, userID, videoURL string) (*SummaryResponse, error)
	Chat(ctx context.Context, userID, videoID, query string) (*ChatResponse, error)
}

// Orchestrator runs one submission end to end: session check, quota check,
// one remote call, optional exam tips, and the ledger append.
type Orchestrator struct {
	sessions      SessionSource
	ledger        *ledger.Ledger
	service       Service
	tips          TipsProvider
	tipsMaxTokens int
}

// NewOrchestrator wires the collaborators. A nil tips provider uses StaticTips.
func NewOrchestrator(sessions SessionSource, l *ledger.Ledger, service Service, tips TipsProvider, tipsMaxTokens int) *Orchestrator {
	if tips == nil {
		tips = NewStaticTips()
	}
	if tipsMaxTokens <= 0 {
		tipsMaxTokens = 100
	}
	return &Orchestrator{
		sessions:      sessions,
		ledger:        l,
		service:       service,
		tips:          tips,
		tipsMaxTokens: tipsMaxTokens,
	}
}

// Submit performs sub. Submissions are independent; nothing cancels an
// earlier one, and callers keep whichever result arrives last.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (res Result) {
	ctx, span := startSubmitSpan(ctx, sub)
	defer func() { endSubmitSpan(span, res) }()

	session, err := o.sessions.Require()
	if err != nil {
		return failure(err)
	}
	if !sub.Mode.Valid() {
		return failure(fmt.Errorf("%w: %q", ErrUnknownMode, sub.Mode))
	}

	logger := logging.WithSubmission(logging.WithUser(session.UserID), string(sub.Mode), uuid.New().String())

	exhausted, err := o.ledger.IsExhausted(ctx)
	if err != nil {
		return failure(err)
	}
	if exhausted {
		logger.Info("free tier exhausted, submission blocked")
		return quotaExceeded()
	}

	if strings.TrimSpace(sub.Input) == "" {
		return failure(ErrEmptyInput)
	}

	bundle, err := o.call(ctx, session.UserID, sub)
	if errors.Is(err, ErrQuotaExceeded) {
		logger.Info("service reported quota exhausted")
		return quotaExceeded()
	}
	if err != nil {
		logger.Warn("submission failed", "error", err)
		return failure(err)
	}

	if sub.Mode == ModeExplain || sub.Mode == ModeSolve {
		bundle.Tips = o.examTips(ctx, session.UserID, sub.Mode, bundle.Notes, logger)
	}

	// The user may have signed out while the request was in flight.
	var rec ledger.Record
	err = o.sessions.WhileSignedIn(session.UserID, func() error {
		var err error
		rec, err = o.ledger.Append(ctx, ledger.Record{
			Question: sub.Input,
			Response: bundle.Notes,
			Style:    styleTag(sub),
			Mode:     string(sub.Mode),
		})
		return err
	})
	if errors.Is(err, auth.ErrNotSignedIn) {
		logger.Info("signed out during submission, result discarded")
		return failure(err)
	}
	if err != nil {
		logger.Error("failed to record usage", "error", err)
		return failure(err)
	}

	logger.Info("submission completed", "record_id", rec.ID)
	return Result{Outcome: OutcomeOK, Bundle: bundle, Record: &rec}
}

// SubmitFeedback sends free text feedback. It does not touch the ledger.
func (o *Orchestrator) SubmitFeedback(ctx context.Context, text string) error {
	session, err := o.sessions.Require()
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyFeedback
	}

	if err := o.service.Feedback(ctx, session.UserID, text); err != nil {
		logging.WithUser(session.UserID).Warn("feedback failed", "error", err)
		return fmt.Errorf("failed to submit feedback: %w", err)
	}
	return nil
}

// call issues the single remote request for sub and maps the reply.
func (o *Orchestrator) call(ctx context.Context, userID string, sub Submission) (*Bundle, error) {
	switch sub.Mode {
	case ModeExplain, ModeSolve:
		var resp *NotesResponse
		var err error
		if sub.Mode == ModeExplain {
			resp, err = o.service.Explain(ctx, userID, sub.Input)
		} else {
			resp, err = o.service.Solve(ctx, userID, sub.Input, sub.Exam, sub.Style)
		}
		if err != nil {
			return nil, err
		}
		if resp.Notes == "" {
			return nil, replyError(resp.Error, "No response from server")
		}
		return &Bundle{
			Mode:       sub.Mode,
			Notes:      resp.Notes,
			Flashcards: resp.Flashcards,
			Resources:  resp.Resources,
		}, nil

	case ModeSummarize:
		resp, err := o.service.Summarize(ctx, userID, sub.Input)
		if err != nil {
			return nil, err
		}
		if resp.Summary == "" {
			return nil, replyError(resp.Error, "No summary returned")
		}
		return &Bundle{
			Mode:      sub.Mode,
			Notes:     resp.Summary,
			Resources: resp.Resources,
			VideoID:   resp.VideoID,
		}, nil

	case ModeChat:
		resp, err := o.service.Chat(ctx, userID, sub.VideoID, sub.Input)
		if err != nil {
			return nil, err
		}
		if resp.Response == "" {
			return nil, replyError(resp.Error, "No chat response")
		}
		return &Bundle{
			Mode:    sub.Mode,
			Notes:   resp.Response,
			VideoID: sub.VideoID,
		}, nil
	}
	return nil, ErrUnknownMode
}

// examTips never fails; errors degrade to the placeholder.
func (o *Orchestrator) examTips(ctx context.Context, userID string, mode Mode, notes string, logger *slog.Logger) string {
	tips, err := o.tips.Tips(ctx, userID, TipsPrompt(mode, notes), o.tipsMaxTokens)
	if err != nil {
		logger.Warn("exam tips unavailable", "error", err)
		return NoTipsPlaceholder
	}
	if strings.TrimSpace(tips) == "" {
		return NoTipsPlaceholder
	}
	return tips
}

// replyError maps a 2xx reply without a result.
func replyError(serviceErr, fallback string) error {
	if IsQuotaMessage(serviceErr) {
		return ErrQuotaExceeded
	}
	if serviceErr != "" {
		return errors.New(serviceErr)
	}
	return errors.New(fallback)
}

func styleTag(sub Submission) string {
	switch sub.Mode {
	case ModeSolve:
		if sub.Style != "" {
			return sub.Style
		}
		return "generic"
	case ModeSummarize:
		return "summary"
	case ModeChat:
		return "chat"
	default:
		return "generic"
	}
}
