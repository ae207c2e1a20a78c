package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the agent. The emotional
state evolves turn by turn; type "exit" or "quit" to leave.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println(headerStyle.Render("anima") + labelStyle.Render("  (session: "+cfg.SessionID+", exit/quit to leave)"))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(labelStyle.Render("vous> "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		result, err := session.ProcessTurn(ctx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Println()
		fmt.Println(emotionStyle(result.Score.Emotion).Render("["+result.Score.Emotion+"]") + " " + result.Response)
		if result.Artifact != nil {
			note := fmt.Sprintf("✦ artifact %s (%s)", result.Artifact.ID, result.Artifact.Kind)
			if result.Artifact.Path != "" {
				note += " → " + result.Artifact.Path
			}
			fmt.Println(artifactStyle.Render(note))
		}
		if result.PersistErr != nil {
			fmt.Fprintln(os.Stderr, labelStyle.Render("(persistence degraded, session continues in memory)"))
		}
		fmt.Println()
	}

	return scanner.Err()
}
