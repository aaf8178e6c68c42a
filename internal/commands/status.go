package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/config"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
)

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account, usage and configuration",
	Long:  `Display the signed-in account, free usage, terms acceptance and the configured endpoints.`,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "📊 VIKAL Status")
	fmt.Fprintln(out)

	session := rt.gate.Current()
	if session != nil {
		fmt.Fprintf(out, "🔐 Account: ✅ Signed in as %s\n", session.Name())
		if session.Email != "" {
			fmt.Fprintf(out, "   Email: %s\n", session.Email)
		}
	} else {
		fmt.Fprintln(out, "🔐 Account: ❌ Not signed in")
		fmt.Fprintln(out, "   Run 'vikal login' to sign in")
	}

	if session != nil {
		accepted, err := rt.ledger.TermsAccepted(ctx)
		if err != nil {
			return err
		}
		if accepted {
			fmt.Fprintln(out, "📜 Terms: ✅ Accepted")
		} else {
			fmt.Fprintln(out, "📜 Terms: ❌ Not accepted (run 'vikal terms --accept')")
		}

		count, err := rt.ledger.Count(ctx)
		if err != nil {
			return err
		}
		upgraded, err := rt.ledger.IsUpgraded(ctx)
		if err != nil {
			return err
		}
		switch {
		case upgraded:
			fmt.Fprintln(out, "💎 Plan: Pro")
		case count >= ledger.Capacity:
			fmt.Fprintf(out, "📈 Usage: %d/%d free requests used. Run 'vikal upgrade' to continue\n", count, ledger.Capacity)
		default:
			fmt.Fprintf(out, "📈 Usage: %d/%d free requests used\n", count, ledger.Capacity)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "🌐 API: %s\n", rt.cfg.APIURL)
	fmt.Fprintf(out, "🎬 Summarizer: %s\n", rt.cfg.SummarizerURL)
	if rt.cfg.Tips.Endpoint != "" {
		fmt.Fprintf(out, "💡 Tips: %s\n", rt.cfg.Tips.Endpoint)
	} else {
		fmt.Fprintln(out, "💡 Tips: built-in")
	}
	if Ephemeral {
		fmt.Fprintln(out, "🗄  Cache: in memory (this run only)")
	} else {
		fmt.Fprintf(out, "🗄  Cache: %s\n", rt.cfg.CacheFile())
	}
	fmt.Fprintf(out, "📁 Config file: %s\n", config.GetConfigPath())
	return nil
}
