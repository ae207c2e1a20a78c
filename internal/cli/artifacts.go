package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List the creative artifacts of this session",
	RunE:  runArtifacts,
}

func runArtifacts(cmd *cobra.Command, args []string) error {
	artifacts, err := session.Artifacts(context.Background())
	if err != nil {
		return fmt.Errorf("list artifacts: %w", err)
	}
	if len(artifacts) == 0 {
		fmt.Println("No artifacts yet.")
		return nil
	}

	for _, a := range artifacts {
		line := fmt.Sprintf("%s  %-12s %-8s %s",
			a.CreatedAt.Format("2006-01-02 15:04"), a.Kind, a.Outcome, a.ID)
		if a.Path != "" {
			line += labelStyle.Render("  → " + a.Path)
		}
		fmt.Println(line)
		fmt.Println(labelStyle.Render("  " + truncate(a.Payload, 120)))
	}
	return nil
}
