package viz

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/akmonengine/rigidscene/internal/scenario"
)

// Summary renders the outcome of a finished run: the probe samples taken
// once per frame, and the final pose of the bodies.
func Summary(scene *scenario.Scene, samples []float64, elapsed time.Duration) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(scene.Name)) + "\n")
	s.WriteString(row("Frames", fmt.Sprintf("%d", len(samples))))
	s.WriteString(row("Wall time", elapsed.Round(time.Microsecond).String()))

	if len(samples) > 0 {
		s.WriteString(row(scene.ProbeName, fmt.Sprintf("%.3f", samples[len(samples)-1])))
		s.WriteString(row("min", fmt.Sprintf("%.3f", slices.Min(samples))))
		s.WriteString(row("max", fmt.Sprintf("%.3f", slices.Max(samples))))
	}
	if len(samples) > 1 {
		chart := asciigraph.Plot(samples, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption(scene.ProbeName))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	for i, b := range scene.Bodies {
		p := b.Position()
		s.WriteString(fmt.Sprintf("  #%d  %7.3f %7.3f %7.3f\n", i, p.X(), p.Y(), p.Z()))
	}
	return s.String()
}
