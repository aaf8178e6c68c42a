// Package study submits questions and videos to the remote study service
// and turns the replies into displayable bundles.
package study

import (
	"strings"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
)

// Mode selects the remote operation.
type Mode string

const (
	ModeExplain   Mode = "explain"
	ModeSolve     Mode = "solve"
	ModeSummarize Mode = "summarize"
	ModeChat      Mode = "chat"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeExplain, ModeSolve, ModeSummarize, ModeChat:
		return true
	}
	return false
}

// Selector values offered in solve mode.
var (
	Exams  = []string{"UPSC", "GATE", "RRB"}
	Styles = []string{"Smart & Quick", "Step-by-Step", "Teacher Mode", "Research Style"}
)

// Submission is one user request.
type Submission struct {
	Mode    Mode
	Input   string // topic, problem, video URL or chat question
	Exam    string // solve only; empty when not selected
	Style   string // solve only; empty when not selected
	VideoID string // chat only
}

// Resource is a link returned alongside notes or a summary.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Bundle is the displayable result of one successful submission.
// It is replaced wholesale by the next submission and never persisted.
type Bundle struct {
	Mode       Mode
	Notes      string // notes, summary or chat answer
	Flashcards []string
	Resources  []Resource
	Tips       string
	VideoID    string
}

// Flashcard is a "question - answer" card.
type Flashcard struct {
	Question string
	Answer   string
}

// ParseFlashcard splits a card on the first " - ".
func ParseFlashcard(card string) Flashcard {
	q, a, ok := strings.Cut(card, " - ")
	if !ok {
		return Flashcard{Question: card, Answer: "No answer provided"}
	}
	return Flashcard{Question: strings.TrimSpace(q), Answer: strings.TrimSpace(a)}
}

// Outcome tags a Result.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeQuotaExceeded
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeQuotaExceeded:
		return "quota_exceeded"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is what Submit returns. Bundle and Record are set for OutcomeOK,
// Err for OutcomeFailure.
type Result struct {
	Outcome Outcome
	Bundle  *Bundle
	Record  *ledger.Record
	Err     error
}

func failure(err error) Result {
	return Result{Outcome: OutcomeFailure, Err: err}
}

func quotaExceeded() Result {
	return Result{Outcome: OutcomeQuotaExceeded}
}
