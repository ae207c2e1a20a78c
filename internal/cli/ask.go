package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var askBenchmark bool

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Process a single turn and print the response",
	Long: `Process a single turn and print the response.

With --benchmark the full turn telemetry is printed: the feature
vector, the reward, the resulting state and the sampling parameters
the next turn would use.

Examples:
  anima ask "Parle-moi de la conscience artificielle"
  anima ask --benchmark "Invente un concept nouveau"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askBenchmark, "benchmark", false, "print turn telemetry")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	start := time.Now()
	result, err := session.ProcessTurn(ctx, args[0])
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println(emotionStyle(result.Score.Emotion).Render("["+result.Score.Emotion+"]") + " " + result.Response)
	if result.Artifact != nil {
		fmt.Println(artifactStyle.Render(fmt.Sprintf("✦ artifact %s (%s)", result.Artifact.ID, result.Artifact.Kind)))
	}

	if askBenchmark {
		fmt.Println()
		fmt.Println(headerStyle.Render("turn telemetry"))
		fmt.Printf("  %s %.0fms\n", labelStyle.Render("duration:"), float64(elapsed.Milliseconds()))
		fmt.Printf("  %s novelty %.2f  relevance %.2f  entropy %.2f  coherence %.2f  intensity %.2f\n",
			labelStyle.Render("features:"),
			result.Features.Novelty, result.Features.Relevance, result.Features.Entropy,
			result.Features.Coherence, result.Features.Intensity)
		fmt.Printf("  %s %.3f (pain %.2f, satisfaction %.2f, repetition %v)\n",
			labelStyle.Render("reward:  "),
			result.Score.Reward, result.Score.Pain, result.Score.Satisfaction, result.Score.Repetition)
		fmt.Printf("  %s tier %s  temp %.2f  top_p %.2f  freq_pen %.2f  pres_pen %.2f\n",
			labelStyle.Render("sampling:"),
			result.Config.Tier, result.Config.Temperature, result.Config.TopP,
			result.Config.FrequencyPenalty, result.Config.PresencePenalty)
	}

	if result.PersistErr != nil {
		fmt.Println(labelStyle.Render("(persistence degraded, session continues in memory)"))
	}
	return nil
}
