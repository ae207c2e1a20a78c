package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe the session: memory, state and persisted data",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip confirmation")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetForce {
		fmt.Printf("Wipe session %q and all its memories? [y/N] ", cfg.SessionID)
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() || strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := session.Reset(context.Background()); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	fmt.Println("Session reset. Éveil initial.")
	return nil
}
