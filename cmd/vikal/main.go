package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/commands"
)

// Version is set at build time via -ldflags "-X main.Version=X.Y.Z"
var Version = "0.0.0-dev"

var rootCmd = &cobra.Command{
	Use:   "vikal",
	Short: "VIKAL - AI study assistant for UPSC, GATE and RRB",
	Long: `VIKAL explains topics, solves problems and summarizes YouTube lectures
with notes, flashcards and exam tips.

Quick Start:
  vikal                      Launch interactive dashboard (default)
  vikal login                Sign in (first time)
  vikal terms --accept       Accept the terms of use

Commands:
  login                      Sign in with your account
  logout                     Sign out and remove local usage data
  status                     Show account, usage and endpoints
  terms                      Show or accept the terms of use
  explain <topic>            Notes, flashcards and exam tips for a topic
  solve <problem>            Step-by-step solution (--exam, --style)
  summarize <video-url>      Summarize a YouTube lecture
  chat <question>            Ask about a summarized video (--video)
  feedback <text>            Send feedback
  history                    Recent answers (--html to export)
  upgrade                    Upgrade to Pro

Examples:
  vikal explain photosynthesis
  vikal solve --exam GATE --style "Step-by-Step" "Find the rank of [[1,2],[2,4]]"
  vikal summarize https://www.youtube.com/watch?v=dQw4w9WgXcQ

Free accounts include 3 requests.

Config: ~/.vikal/config.yaml
Logs:   ~/.vikal/logs/vikal.log`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is specified, try to launch TUI
		return commands.RunTUIDefault(cmd)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&commands.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&commands.Ephemeral, "ephemeral", false, "Keep usage in memory for this run only")

	rootCmd.AddCommand(commands.TUICmd)
	rootCmd.AddCommand(commands.LoginCmd)
	rootCmd.AddCommand(commands.LogoutCmd)
	rootCmd.AddCommand(commands.StatusCmd)
	rootCmd.AddCommand(commands.TermsCmd)
	rootCmd.AddCommand(commands.ExplainCmd)
	rootCmd.AddCommand(commands.SolveCmd)
	rootCmd.AddCommand(commands.SummarizeCmd)
	rootCmd.AddCommand(commands.ChatCmd)
	rootCmd.AddCommand(commands.FeedbackCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.UpgradeCmd)
}

func main() {
	commands.AppVersion = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
