package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear local usage",
	Long: `Sign out, revoke this device and remove the usage history,
terms acceptance and upgrade marker stored on this machine.`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	hadSession := rt.gate.Current() != nil

	// Revocation failures are logged by the gate; local data is cleared regardless.
	if err := rt.gate.EndSession(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear local data: %w", err)
	}

	if !hadSession {
		fmt.Fprintln(out, "✅ Logged out (no active session). Local usage cleared.")
		return nil
	}
	fmt.Fprintln(out, "✅ Logged out. Usage history and markers removed from this device.")
	return nil
}
