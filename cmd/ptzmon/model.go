package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teslashibe/go-ptz/pkg/autotrack"
	"github.com/teslashibe/go-ptz/pkg/tracking"
)

const (
	pollInterval = 2 * time.Second
	barWidth     = 17
	// velocityScale is the speed that fills half a velocity bar.
	velocityScale = 1.2
)

type pollMsg time.Time

// regionView is the latest known state of one region.
type regionView struct {
	debug    tracking.Debug
	status   *autotrack.Status
	ticks    int
	lastSeen time.Time
}

// shared holds state that every copy of the model points at.
type shared struct {
	regions map[string]*regionView
	order   []string
}

type model struct {
	width  int
	height int

	api      *api
	selected int

	connected bool
	connErr   error
	note      string
	clients   int

	shared *shared
}

func newModel(a *api) model {
	return model{
		api:    a,
		shared: &shared{regions: make(map[string]*regionView)},
	}
}

func (m model) Init() tea.Cmd {
	return m.fetchStatus()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connMsg:
		m.connected = msg.Connected
		m.connErr = msg.Err
		return m, nil

	case tickMsg:
		r := m.region(msg.Region)
		r.debug = msg.Debug
		r.ticks++
		r.lastSeen = time.Now()
		return m, nil

	case regionStatusMsg:
		st := msg.Status
		m.region(st.ID).status = &st
		return m, nil

	case pollMsg:
		return m, m.fetchStatus()

	case statusMsg:
		if msg.Err != nil {
			m.note = "status: " + msg.Err.Error()
		} else {
			m.clients = msg.Status.Debug.Clients
			for i := range msg.Status.Regions {
				st := msg.Status.Regions[i]
				m.region(st.ID).status = &st
			}
		}
		return m, pollCmd()

	case actionMsg:
		if msg.Err != nil {
			m.note = fmt.Sprintf("%s: %v", msg.Region, msg.Err)
			return m, nil
		}
		if msg.Enabled {
			m.note = msg.Region + " enabled"
		} else {
			m.note = msg.Region + " disabled"
		}
		return m, m.fetchStatus()
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.shared.order)-1 {
			m.selected++
		}

	case "e":
		if id, ok := m.selectedID(); ok {
			return m, m.setEnabled(id, true)
		}

	case "d":
		if id, ok := m.selectedID(); ok {
			return m, m.setEnabled(id, false)
		}
	}

	return m, nil
}

func (m model) region(id string) *regionView {
	r, ok := m.shared.regions[id]
	if !ok {
		r = &regionView{}
		m.shared.regions[id] = r
		m.shared.order = append(m.shared.order, id)
		slices.Sort(m.shared.order)
	}
	return r
}

func (m model) selectedID() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.shared.order) {
		return "", false
	}
	return m.shared.order[m.selected], true
}

func (m model) fetchStatus() tea.Cmd {
	if m.api == nil {
		return nil
	}
	a := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pollInterval)
		defer cancel()
		st, err := a.status(ctx)
		return statusMsg{Status: st, Err: err}
	}
}

func (m model) setEnabled(id string, enabled bool) tea.Cmd {
	if m.api == nil {
		return nil
	}
	a := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return actionMsg{Region: id, Enabled: enabled, Err: a.setEnabled(ctx, id, enabled)}
	}
}

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Connecting to autotrack..."
	}

	title := styleTitleBar.Width(m.width).Render("PTZ autotrack monitor")

	var rows []string
	rows = append(rows, styleHeader.Render(fmt.Sprintf("  %-12s %-4s %-4s %-13s %-9s %-15s %-*s %-*s",
		"REGION", "CAM", "ON", "PHASE", "ZONE", "ERROR", barWidth, "PAN", barWidth, "TILT")))
	for i, id := range m.shared.order {
		rows = append(rows, m.renderRow(id, i == m.selected))
	}
	if len(m.shared.order) == 0 {
		rows = append(rows, styleDim.Render("  waiting for regions"))
	}
	table := stylePanel.Render(strings.Join(rows, "\n"))

	detail := ""
	if id, ok := m.selectedID(); ok {
		detail = stylePanel.Render(m.renderDetail(id))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, table, detail, m.renderStatusBar())
}

func (m model) renderRow(id string, selected bool) string {
	r := m.shared.regions[id]

	camera, enabled := "-", "-"
	if r.status != nil {
		if r.status.CameraIndex != nil {
			camera = fmt.Sprint(*r.status.CameraIndex)
		}
		enabled = "no"
		if r.status.Enabled {
			enabled = "yes"
		}
	}

	phase, zone := string(r.debug.Phase), string(r.debug.Zone)
	if r.ticks == 0 {
		phase, zone = "-", "-"
		if r.status != nil {
			phase = string(r.status.Phase)
		}
	}

	cursor, style := "  ", styleRow
	if selected {
		cursor, style = "> ", styleSelected
	}

	return style.Render(fmt.Sprintf("%s%-12s %-4s %-4s ", cursor, truncate(id, 12), camera, enabled)) +
		phaseStyle(phase).Render(fmt.Sprintf("%-13s ", phase)) +
		zoneStyle(zone).Render(fmt.Sprintf("%-9s ", zone)) +
		style.Render(fmt.Sprintf("%+6.3f,%+6.3f  ", r.debug.Error.X, r.debug.Error.Y)) +
		velocityBar(r.debug.CameraVelocity.X) + " " +
		velocityBar(r.debug.CameraVelocity.Y)
}

func (m model) renderDetail(id string) string {
	r := m.shared.regions[id]
	d := r.debug

	vec := func(label string, x, y float64) string {
		return fmt.Sprintf("%-20s %+8.4f %+8.4f", label, x, y)
	}

	lines := []string{
		styleSelected.Render(id) + styleDim.Render(fmt.Sprintf("  ticks %d  dt %.3fs  ts %d", r.ticks, d.Dt, d.Timestamp)),
	}
	if d.Subject != nil {
		lines = append(lines, vec("subject", d.Subject.X, d.Subject.Y))
	} else {
		lines = append(lines, fmt.Sprintf("%-20s %s", "subject", styleDim.Render("none")))
	}
	lines = append(lines,
		vec("predicted", d.Predicted.X, d.Predicted.Y),
		vec("error", d.Error.X, d.Error.Y),
		vec("apparent velocity", d.ApparentVelocity.X, d.ApparentVelocity.Y),
		vec("world velocity", d.WorldVelocity.X, d.WorldVelocity.Y),
		vec("feedforward", d.Feedforward.X, d.Feedforward.Y),
		vec("feedback", d.Feedback.X, d.Feedback.Y),
		vec("target velocity", d.TargetVelocity.X, d.TargetVelocity.Y),
		vec("camera velocity", d.CameraVelocity.X, d.CameraVelocity.Y),
		vec("camera accel", d.CameraAcceleration.X, d.CameraAcceleration.Y),
	)
	return strings.Join(lines, "\n")
}

func (m model) renderStatusBar() string {
	conn := styleDisconnected.Render("disconnected")
	if m.connected {
		conn = styleConnected.Render("connected")
	} else if m.connErr != nil {
		conn += styleDim.Render(" (" + truncate(m.connErr.Error(), 40) + ")")
	}

	parts := []string{
		conn,
		fmt.Sprintf("%d regions", len(m.shared.order)),
		fmt.Sprintf("%d viewers", m.clients),
		"↑/↓ select  e enable  d disable  q quit",
	}
	if m.note != "" {
		parts = append(parts, m.note)
	}
	return styleStatusBar.Width(m.width).Render(strings.Join(parts, " │ "))
}

// velocityBar draws a centred bar whose filled side and length follow v.
func velocityBar(v float64) string {
	half := barWidth / 2
	n := int(min(abs(v)/velocityScale, 1) * float64(half))
	if n == 0 && v != 0 {
		n = 1
	}

	left := strings.Repeat(" ", half)
	right := strings.Repeat(" ", half)
	if v < 0 {
		left = strings.Repeat(" ", half-n) + strings.Repeat("█", n)
	} else if v > 0 {
		right = strings.Repeat("█", n) + strings.Repeat(" ", half-n)
	}
	return styleBarFill.Render(left) + styleDim.Render("│") + styleBarFill.Render(right)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
