package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/app"
)

var acceptTerms bool

var TermsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Show or accept the terms of use",
	Long: `Show the terms of use. Pass --accept to accept them for the current session.
Acceptance is required before the first request and is cleared on logout.`,
	RunE: runTerms,
}

func init() {
	TermsCmd.Flags().BoolVar(&acceptTerms, "accept", false, "Accept the terms for this session")
}

func runTerms(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()

	if !acceptTerms {
		fmt.Fprintln(out, titleStyle.Render("📜 Terms & Conditions"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, app.TermsText)
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render("Run 'vikal terms --accept' to accept."))
		return nil
	}

	if _, err := rt.gate.Require(); err != nil {
		return fmt.Errorf("%w. Run 'vikal login' first", err)
	}
	if err := rt.ledger.AcceptTerms(cmd.Context()); err != nil {
		return fmt.Errorf("failed to save terms acceptance: %w", err)
	}
	fmt.Fprintln(out, "✅ Terms accepted")
	return nil
}
