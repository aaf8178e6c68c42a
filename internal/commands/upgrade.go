package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/browser"
)

var upgradeNoBrowser bool

// openURL is swapped in tests.
var openURL browser.Opener = browser.Open

var UpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade to Pro for unlimited requests",
	Long: `Open the payment page for VIKAL Pro.

After paying, run 'vikal upgrade activate' to lift the free limit on this device.`,
	RunE: runUpgrade,
}

var upgradeActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Mark this device as upgraded after payment",
	RunE:  runUpgradeActivate,
}

func init() {
	UpgradeCmd.Flags().BoolVar(&upgradeNoBrowser, "no-browser", false, "Print the payment link instead of opening it")
	UpgradeCmd.AddCommand(upgradeActivateCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	url := rt.cfg.UpgradeURL

	fmt.Fprintln(out, titleStyle.Render("💎 Upgrade to Pro"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Unlimited explanations, solutions and video chats.")
	fmt.Fprintln(out)

	if upgradeNoBrowser {
		fmt.Fprintf(out, "Open this link to pay: %s\n", url)
	} else if err := openURL(url); err != nil {
		fmt.Fprintf(out, "Could not open a browser. Open this link to pay: %s\n", url)
	} else {
		fmt.Fprintf(out, "🌐 Opened %s\n", url)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, dimStyle.Render("After paying, run 'vikal upgrade activate'."))
	return nil
}

func runUpgradeActivate(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.gate.Require(); err != nil {
		return fmt.Errorf("%w. Run 'vikal login' first", err)
	}
	if err := rt.ledger.MarkUpgraded(cmd.Context()); err != nil {
		return fmt.Errorf("failed to save upgrade: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ Pro activated on this device")
	return nil
}
