package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/resimlab/resim/internal/model"
	"github.com/resimlab/resim/internal/sde"
)

const historyCapacity = 400

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model runs a single live trial of the chemoresistance system, one
// simulated day per animation tick.
type Model struct {
	params     model.Parameters
	dyn        *model.Dynamics
	integ      *sde.EulerMaruyama
	seed       int64
	doseActive bool

	state sde.State
	day   int

	burden []float64
	conc   []float64

	running  bool
	hitDay   int
	observed bool
}

func NewModel(p model.Parameters, seed int64) Model {
	m := Model{
		params:     p,
		seed:       seed,
		doseActive: p.Dose > 0,
		running:    true,
	}
	m.restart()
	return m
}

func (m *Model) restart() {
	m.dyn = model.NewDynamics(m.params, m.doseActive)
	m.integ = sde.NewEulerMaruyama(m.seed)
	m.state = sde.State(m.params.Init[:])
	m.day = 0
	m.burden = m.burden[:0]
	m.conc = m.conc[:0]
	m.observed = false
	m.hitDay = 0
	m.record()
}

func (m *Model) record() {
	total := 0.0
	for i := model.Sensitive; i <= model.Quiescent; i++ {
		if m.state[i] > 0 {
			total += m.state[i]
		}
	}
	m.burden = append(m.burden, total)
	c := m.state[model.Concentration]
	if c < 0 {
		c = 0
	}
	m.conc = append(m.conc, c)
	if len(m.burden) > historyCapacity {
		m.burden = m.burden[1:]
		m.conc = m.conc[1:]
	}
	if !m.observed && total > m.params.ProgressionThreshold() {
		m.observed = true
		m.hitDay = m.day
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		case "d":
			m.doseActive = !m.doseActive
			m.dyn = model.NewDynamics(m.params, m.doseActive)
		}
	case TickMsg:
		if m.running && m.day < m.params.HorizonDays {
			m.state = m.integ.Step(m.dyn, m.state, float64(m.day), 1)
			m.day++
			m.record()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("RESIM LIVE TRIAL") + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if m.day >= m.params.HorizonDays {
		status = "DONE"
	}
	s.WriteString(status + "\n")

	if len(m.burden) > 1 {
		chart := asciigraph.Plot(m.burden,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("total tumor burden"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.doseActive && len(m.conc) > 1 {
		chart := asciigraph.Plot(m.conc,
			asciigraph.Height(6),
			asciigraph.Width(70),
			asciigraph.Caption("drug concentration"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("Day") + valueStyle.Render(fmt.Sprintf("%d / %d", m.day, m.params.HorizonDays)) + "\n")
	regime := "control (no dose)"
	if m.doseActive {
		regime = fmt.Sprintf("dosed (%.0f)", m.params.Dose)
	}
	s.WriteString(labelStyle.Render("Regime") + valueStyle.Render(regime) + "\n")
	s.WriteString(labelStyle.Render("Burden") + valueStyle.Render(fmt.Sprintf("%.4f", m.burden[len(m.burden)-1])) + "\n")
	s.WriteString(labelStyle.Render("Threshold") + valueStyle.Render(fmt.Sprintf("%.4f", m.params.ProgressionThreshold())) + "\n")
	if m.observed {
		s.WriteString(alertStyle.Render(fmt.Sprintf("progression at day %d", m.hitDay)) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Restart D:Toggle-dose Q:Quit"))
	return s.String()
}
