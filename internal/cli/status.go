package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the emotional state and session telemetry",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	state := session.State()
	genCfg := session.GenerationConfig()
	stats := session.MemoryStats()
	snap := session.Metrics()

	fmt.Println(headerStyle.Render("emotional state") + "  " +
		emotionStyle(state.Emotion).Render(state.Emotion))
	fmt.Printf("  %s %s %.2f\n", labelStyle.Render("pain        "), gauge(state.PainLevel), state.PainLevel)
	fmt.Printf("  %s %s %.2f\n", labelStyle.Render("satisfaction"), gauge(state.SatisfactionLevel), state.SatisfactionLevel)
	fmt.Printf("  %s %s %.2f\n", labelStyle.Render("creativity  "), gauge(state.CreativityDrive), state.CreativityDrive)
	fmt.Printf("  %s %s %.2f\n", labelStyle.Render("exploration "), gauge(state.ExplorationTendency), state.ExplorationTendency)
	fmt.Printf("  %s %s %.2f\n", labelStyle.Render("stability   "), gauge(state.StabilityNeed), state.StabilityNeed)
	fmt.Printf("  %s %.2f\n", labelStyle.Render("balance     "), state.StabilityIndex())

	fmt.Println()
	fmt.Println(headerStyle.Render("next generation"))
	fmt.Printf("  tier %s  temp %.2f  top_p %.2f  freq_pen %.2f  pres_pen %.2f\n",
		genCfg.Tier, genCfg.Temperature, genCfg.TopP, genCfg.FrequencyPenalty, genCfg.PresencePenalty)

	fmt.Println()
	fmt.Println(headerStyle.Render("memory"))
	fmt.Printf("  %d entries  avg reward %.3f  avg pain %.2f", stats.Total, stats.AvgReward, stats.AvgPain)
	if stats.DominantEmotion != "" {
		fmt.Printf("  dominant %s", stats.DominantEmotion)
	}
	fmt.Println()

	fmt.Println()
	fmt.Println(headerStyle.Render("telemetry"))
	fmt.Printf("  turns %d  creative triggers %d  state warnings %d\n",
		snap.Turns, snap.CreativeTriggers, snap.StateWarnings)
	if snap.LLMGenerate != nil {
		fmt.Printf("  llm: %d calls, avg %.0fms (%d errors)\n",
			snap.LLMGenerate.Count, snap.LLMGenerate.AvgTimeMs, snap.LLMGenerate.Errors)
	}
	return nil
}
