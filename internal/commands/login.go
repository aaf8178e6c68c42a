package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/auth"
)

var noBrowser bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to VIKAL",
	Long: `Sign in with your VIKAL account using device authorization.

A short code is shown and your browser opens the verification page.
Approve the code there and the CLI picks up the session automatically.`,
	RunE: runLogin,
}

func init() {
	LoginCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Don't automatically open browser")
}

func runLogin(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()

	if s := rt.gate.Current(); s != nil {
		fmt.Fprintf(out, "✅ Already signed in as %s\n", s.Name())
		fmt.Fprintln(out, "   Run 'vikal logout' to switch accounts")
		return nil
	}

	rt.provider.Prompt = func(code auth.DeviceCode) {
		printDeviceCode(out, code)
	}
	if noBrowser {
		rt.provider.OpenBrowser = nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := rt.gate.BeginSignIn(ctx)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, successStyle.Render("✅ Signed in as "+res.Session.Name()))

	if res.TrialEnded {
		fmt.Fprintln(out)
		fmt.Fprintln(out, warnStyle.Render("⚠️  Your free trial has ended."))
		fmt.Fprintln(out, "   Run 'vikal upgrade' for unlimited access.")
	}

	accepted, err := rt.ledger.TermsAccepted(ctx)
	if err == nil && !accepted {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "📜 Please review the terms before your first request:")
		fmt.Fprintln(out, "   vikal terms --accept")
	}
	return nil
}

func printDeviceCode(w io.Writer, code auth.DeviceCode) {
	uri := code.VerificationURIComplete
	if uri == "" {
		uri = code.VerificationURI
	}

	fmt.Fprintln(w, titleStyle.Render("◉ VIKAL sign-in"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, boxStyle.Render(
		"Open:  "+uri+"\n"+
			"Code:  "+codeStyle.Render(code.FormattedUserCode()),
	))
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render("Waiting for authorization... (Ctrl+C to cancel)"))
}
