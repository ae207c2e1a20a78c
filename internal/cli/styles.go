package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorJoy     = lipgloss.Color("#98C379")
	colorPain    = lipgloss.Color("#E06C75")
	colorNeutral = lipgloss.Color("#ABB2BF")
	colorAccent  = lipgloss.Color("#61AFEF")
	colorMuted   = lipgloss.Color("#5C6370")

	emotionStyles = map[string]lipgloss.Style{
		"joie":              lipgloss.NewStyle().Foreground(colorJoy).Bold(true),
		"émerveillement":    lipgloss.NewStyle().Foreground(colorJoy).Bold(true),
		"curiosité":         lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		"douleur":           lipgloss.NewStyle().Foreground(colorPain).Bold(true),
		"angoisse créative": lipgloss.NewStyle().Foreground(colorPain).Bold(true),
		"frustration":       lipgloss.NewStyle().Foreground(colorPain),
	}
	neutralEmotionStyle = lipgloss.NewStyle().Foreground(colorNeutral).Bold(true)

	headerStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	artifactStyle = lipgloss.NewStyle().Foreground(colorJoy).Italic(true)
)

func emotionStyle(emotion string) lipgloss.Style {
	if style, ok := emotionStyles[emotion]; ok {
		return style
	}
	return neutralEmotionStyle
}

// gauge renders a 10-segment bar for a [0,1] value.
func gauge(v float64) string {
	filled := int(v*10 + 0.5)
	if filled > 10 {
		filled = 10
	}
	bar := ""
	for i := 0; i < 10; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}
