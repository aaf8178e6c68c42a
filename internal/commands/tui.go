package commands

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/auth"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/tui"
)

// TUICmd launches the interactive TUI application
var TUICmd = &cobra.Command{
	Use:    "tui",
	Short:  "Launch the interactive study dashboard",
	Hidden: true, // running `vikal` without args launches the TUI
	Long: `Launch the interactive terminal dashboard.

The dashboard provides:
  - Explain and solve with exam and style selectors
  - Notes, flashcards, exam tips and resources
  - Your three most recent answers
  - YouTube summaries with follow-up chat`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	// The provider prompts from the sign-in goroutine; route it into the program.
	var program *tea.Program
	rt.provider.Prompt = func(code auth.DeviceCode) {
		if program != nil {
			program.Send(tui.SignInPromptMsg{Code: code})
		}
	}

	deps := tui.Deps{
		Gate:       rt.gate,
		Study:      rt.study,
		Usage:      rt.ledger,
		UpgradeURL: rt.cfg.UpgradeURL,
		Version:    AppVersion,
		OpenURL:    openURL,
	}
	return tui.Run(deps, func(p *tea.Program) { program = p })
}

// RunTUIDefault runs the TUI when stdout is a terminal.
func RunTUIDefault(cmd *cobra.Command) error {
	fi, err := os.Stdout.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return fmt.Errorf("not a terminal, use specific commands instead (see 'vikal --help')")
	}
	return runTUI(cmd, nil)
}
