package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/study"
)

var (
	solveExam  string
	solveStyle string
	chatVideo  string
)

var ExplainCmd = &cobra.Command{
	Use:   "explain <topic>",
	Short: "Explain a topic with notes, flashcards and exam tips",
	Example: `  vikal explain photosynthesis
  vikal explain "Fundamental rights in the Indian constitution"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmit(cmd, study.Submission{Mode: study.ModeExplain, Input: strings.Join(args, " ")})
	},
}

var SolveCmd = &cobra.Command{
	Use:   "solve <problem>",
	Short: "Solve a problem step by step",
	Example: `  vikal solve "2x + 3 = 7"
  vikal solve --exam GATE --style "Step-by-Step" "Find the eigenvalues of [[2,0],[0,3]]"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSolve,
}

var SummarizeCmd = &cobra.Command{
	Use:   "summarize <video-url>",
	Short: "Summarize a YouTube lecture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmit(cmd, study.Submission{Mode: study.ModeSummarize, Input: args[0]})
	},
}

var ChatCmd = &cobra.Command{
	Use:   "chat <question>",
	Short: "Ask a question about a summarized video",
	Long: `Ask a follow-up question about a video. Pass the video id printed by
'vikal summarize' with --video.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmit(cmd, study.Submission{
			Mode:    study.ModeChat,
			Input:   strings.Join(args, " "),
			VideoID: chatVideo,
		})
	},
}

var FeedbackCmd = &cobra.Command{
	Use:   "feedback <text>",
	Short: "Send feedback to the VIKAL team",
	Args:  cobra.ArbitraryArgs,
	RunE:  runFeedback,
}

func init() {
	SolveCmd.Flags().StringVar(&solveExam, "exam", "", "Target exam ("+strings.Join(study.Exams, ", ")+")")
	SolveCmd.Flags().StringVar(&solveStyle, "style", "", "Explanation style ("+strings.Join(study.Styles, ", ")+")")
	ChatCmd.Flags().StringVar(&chatVideo, "video", "", "Video id from 'vikal summarize'")
}

func runSolve(cmd *cobra.Command, args []string) error {
	exam, err := matchChoice("exam", solveExam, study.Exams)
	if err != nil {
		return err
	}
	style, err := matchChoice("style", solveStyle, study.Styles)
	if err != nil {
		return err
	}
	return runSubmit(cmd, study.Submission{
		Mode:  study.ModeSolve,
		Input: strings.Join(args, " "),
		Exam:  exam,
		Style: style,
	})
}

func runSubmit(cmd *cobra.Command, sub study.Submission) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	if _, err := rt.requireReady(ctx); err != nil {
		return err
	}

	res := rt.study.Submit(ctx, sub)
	switch res.Outcome {
	case study.OutcomeQuotaExceeded:
		return fmt.Errorf("%w. %s\n   Upgrade: %s", study.ErrQuotaExceeded, study.QuotaMessage, rt.cfg.UpgradeURL)
	case study.OutcomeFailure:
		return res.Err
	}

	out := cmd.OutOrStdout()
	printBundle(out, newRenderer(out), res.Bundle)

	if sub.Mode == study.ModeSummarize && res.Bundle != nil && res.Bundle.VideoID != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render("Ask about it: vikal chat --video "+res.Bundle.VideoID+" \"<question>\""))
	}

	upgraded, err := rt.ledger.IsUpgraded(ctx)
	if err == nil && !upgraded && res.Record != nil {
		count, err := rt.ledger.Count(ctx)
		if err == nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Free requests used: %d/%d", count, ledger.Capacity)))
		}
	}
	return nil
}

func runFeedback(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.requireReady(cmd.Context()); err != nil {
		return err
	}

	err = rt.study.SubmitFeedback(cmd.Context(), strings.Join(args, " "))
	switch {
	case errors.Is(err, study.ErrEmptyFeedback):
		return fmt.Errorf("%w, e.g. vikal feedback \"more GATE examples\"", err)
	case err != nil:
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ Thanks for your feedback!")
	return nil
}
