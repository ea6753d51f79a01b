// Package viz renders a running scenario in the terminal: a bubbletea live
// view for watch, and a static summary for run.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/akmonengine/rigidscene"
	"github.com/akmonengine/rigidscene/internal/scenario"
)

const (
	historyCapacity = 600
	maxListedBodies = 6
)

type TickMsg time.Time

// Model steps a scene through its manager on every tick.
type Model struct {
	scene     *scenario.Scene
	manager   *rigidscene.Manager
	fps       int
	maxFrames int

	frame   int
	elapsed float64
	running bool
	history []float64
}

// NewModel runs the first detection pass of scene. A maxFrames of zero runs
// until quit.
func NewModel(scene *scenario.Scene, manager *rigidscene.Manager, fps, maxFrames int) Model {
	manager.PreFrame()
	return Model{
		scene:     scene,
		manager:   manager,
		fps:       max(fps, 1),
		maxFrames: maxFrames,
		running:   true,
		history:   make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles the keys and advances one frame per tick while running.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) done() bool {
	return m.maxFrames > 0 && m.frame >= m.maxFrames
}

func (m *Model) step() {
	if m.done() {
		return
	}
	m.manager.PostFrame(nil)
	m.manager.PreFrame()
	m.frame++
	m.elapsed += m.manager.Timestep()

	m.history = append(m.history, m.scene.Probe())
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// Frame returns the number of frames stepped so far.
func (m Model) Frame() int {
	return m.frame
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.scene.Name)) + "\n")

	switch {
	case m.done():
		s.WriteString(pausedStyle.Render("DONE") + "\n\n")
	case m.running:
		s.WriteString(runningStyle.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(pausedStyle.Render("PAUSED") + "\n\n")
	}

	s.WriteString(row("Frame", fmt.Sprintf("%d", m.frame)))
	s.WriteString(row("Time", fmt.Sprintf("%.2fs", m.elapsed)))
	s.WriteString(row("Timestep", fmt.Sprintf("%.4fs", m.manager.Timestep())))
	s.WriteString(row(m.scene.ProbeName, fmt.Sprintf("%.3f", m.scene.Probe())))
	if sensor := m.scene.Sensor; sensor != nil {
		contacts := fmt.Sprintf("%d", len(sensor.Contacts()))
		if sensor.IsActive() {
			contacts = activeStyle.Render(contacts)
		}
		s.WriteString(row("Contacts", contacts))
	}

	s.WriteString("\nBODIES\n")
	for i, b := range m.scene.Bodies {
		if i == maxListedBodies {
			s.WriteString(fmt.Sprintf("  ... %d more\n", len(m.scene.Bodies)-i))
			break
		}
		p := b.Position()
		s.WriteString(fmt.Sprintf("  #%d  %7.3f %7.3f %7.3f\n", i, p.X(), p.Y(), p.Z()))
	}
	s.WriteString(helpStyle.Render("SP:Pause N:Step Q:Quit"))
	stats := panelStyle.Render(s.String())

	if len(m.history) < 2 {
		return stats
	}
	chart := asciigraph.Plot(m.history, asciigraph.Height(12), asciigraph.Width(60), asciigraph.Caption(m.scene.ProbeName))
	return lipgloss.JoinHorizontal(lipgloss.Top, stats, graphStyle.Render(chart))
}

// Run opens the live view until the user quits.
func Run(scene *scenario.Scene, manager *rigidscene.Manager, fps, maxFrames int) error {
	_, err := tea.NewProgram(NewModel(scene, manager, fps, maxFrames)).Run()
	return err
}
