package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// benchmarkQuestions is the canned series used to observe the state
// trajectory over a few turns.
var benchmarkQuestions = []string{
	"Qu'est-ce que la conscience ?",
	"Pourquoi souffrons-nous ?",
	"Quel est le sens de l'existence ?",
	"Comment définir l'intelligence ?",
	"Que ressens-tu maintenant ?",
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run the canned question series and print the state trajectory",
	RunE:  runBenchmark,
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println(headerStyle.Render(fmt.Sprintf("benchmark: %d questions", len(benchmarkQuestions))))
	for i, question := range benchmarkQuestions {
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(benchmarkQuestions), question)

		result, err := session.ProcessTurn(ctx, question)
		if err != nil {
			return fmt.Errorf("turn %d: %w", i+1, err)
		}

		fmt.Println(emotionStyle(result.Score.Emotion).Render("["+result.Score.Emotion+"]") + " " + result.Response)
		fmt.Printf("%s reward %.3f  pain %.2f  satisfaction %.2f  temp %.2f  tier %s\n",
			labelStyle.Render("→"),
			result.Score.Reward, result.State.PainLevel, result.State.SatisfactionLevel,
			result.Config.Temperature, result.Config.Tier)
		if result.Artifact != nil {
			fmt.Println(artifactStyle.Render(fmt.Sprintf("✦ artifact %s (%s)", result.Artifact.ID, result.Artifact.Kind)))
		}
	}

	snap := session.Metrics()
	fmt.Println()
	fmt.Println(headerStyle.Render("benchmark complete"))
	fmt.Printf("  turns %d  creative triggers %d  state warnings %d\n",
		snap.Turns, snap.CreativeTriggers, snap.StateWarnings)
	if snap.LLMGenerate != nil {
		fmt.Printf("  llm: %d calls, avg %.0fms\n", snap.LLMGenerate.Count, snap.LLMGenerate.AvgTimeMs)
	}
	return nil
}
