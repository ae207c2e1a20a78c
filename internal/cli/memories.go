package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var memoriesLimit int

var memoriesCmd = &cobra.Command{
	Use:   "memories",
	Short: "Show the most recent memory entries",
	RunE:  runMemories,
}

func init() {
	memoriesCmd.Flags().IntVarP(&memoriesLimit, "limit", "n", 10, "how many entries to show")
}

func runMemories(cmd *cobra.Command, args []string) error {
	entries := session.Memories(memoriesLimit)
	if len(entries) == 0 {
		fmt.Println("Éveil initial - aucun souvenir formé")
		return nil
	}

	for _, e := range entries {
		header := fmt.Sprintf("%s  %s  reward %.3f  pain %.2f  priority %.2f",
			e.Recorded.Format("2006-01-02 15:04"),
			emotionStyle(e.Interaction.Emotion).Render(e.Interaction.Emotion),
			e.Interaction.Reward, e.Interaction.PainScore, e.Priority)
		if e.ArtifactRef != nil {
			header += artifactStyle.Render("  ✦ artifact")
		}
		fmt.Println(header)
		fmt.Println(labelStyle.Render("  vous:  ") + truncate(e.Interaction.UserText, 100))
		fmt.Println(labelStyle.Render("  anima: ") + truncate(e.Interaction.AIText, 100))
		fmt.Println()
	}
	return nil
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
