// Package tui implements the interactive port inspector session.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/kavaltui/kaval/internal/process"
	"github.com/kavaltui/kaval/internal/scan"
	"github.com/kavaltui/kaval/internal/snapshot"
)

const (
	refreshInterval = 2 * time.Second
	statusTTL       = 3 * time.Second
)

// sessionState tracks which interaction mode the session is in.
type sessionState int

const (
	stateRunning sessionState = iota
	stateConfirmKill
	stateConfirmForceKill
)

// sortField selects the table sort column.
type sortField int

const (
	sortByPort sortField = iota
	sortByName
	sortByCpu
	sortByMemory
)

// next advances the sort cycle: port, name, cpu, memory, back to port.
func (f sortField) next() sortField {
	return (f + 1) % 4
}

func (f sortField) label() string {
	switch f {
	case sortByName:
		return "Name"
	case sortByCpu:
		return "CPU"
	case sortByMemory:
		return "Mem"
	default:
		return "Port"
	}
}

// descending reports the field's default direction. Usage columns start
// with the heaviest consumer on top.
func (f sortField) descending() bool {
	return f == sortByCpu || f == sortByMemory
}

// protoFilter is the protocol view toggle.
type protoFilter int

const (
	protoAll protoFilter = iota
	protoTCP
	protoUDP
)

func (p protoFilter) next() protoFilter {
	return (p + 1) % 3
}

func (p protoFilter) allows(proto scan.Protocol) bool {
	switch p {
	case protoTCP:
		return proto == scan.TCP
	case protoUDP:
		return proto == scan.UDP
	default:
		return true
	}
}

// Status message severity.
type statusLevel int

const (
	statusInfo statusLevel = iota
	statusOK
	statusErr
)

// Messages for async operations.
type tickMsg time.Time

type scanDoneMsg struct {
	snap *snapshot.Snapshot
	err  error
}

type killDoneMsg struct {
	pid     int
	process string
	port    int
	forced  bool
	err     error
}

// Resolver produces one classified snapshot per call.
type Resolver interface {
	Resolve(ctx context.Context) (*snapshot.Snapshot, error)
}

// Model is the bubbletea model for the session. Messages are processed
// one at a time, so no field needs locking.
type Model struct {
	resolver Resolver
	killer   process.Killer
	version  string

	snap     *snapshot.Snapshot
	filtered []int // view: indices into snap.Endpoints, filtered and sorted

	cursor       int          // index into filtered, -1 when the view is empty
	selected     snapshot.Key // identity of the endpoint under the cursor
	scrollOffset int

	filterText  string
	typing      bool // filter input mode
	protoFilter protoFilter
	sortBy      sortField
	sortDesc    bool
	showDetail  bool

	pendingKill *snapshot.Endpoint

	statusMsg string
	statusLvl statusLevel
	statusAt  time.Time

	state    sessionState
	scanning bool
	quitting bool
	spinner  spinner.Model

	width  int
	height int
}

// New creates the session model.
func New(resolver Resolver, killer process.Killer, version string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		resolver: resolver,
		killer:   killer,
		version:  version,
		cursor:   -1,
		scanning: true,
		spinner:  sp,
	}
}

// Init starts the spinner, the first scan, and the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.doScan(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) doScan() tea.Cmd {
	res := m.resolver
	return func() tea.Msg {
		snap, err := res.Resolve(context.Background())
		return scanDoneMsg{snap: snap, err: err}
	}
}

func (m Model) doKill(target snapshot.Endpoint, force bool) tea.Cmd {
	k := m.killer
	return func() tea.Msg {
		err := k.Terminate(target.PID, force)
		return killDoneMsg{
			pid:     target.PID,
			process: target.ProcessName(),
			port:    target.Port,
			forced:  force,
			err:     err,
		}
	}
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case spinner.TickMsg:
		if m.scanning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tickMsg:
		// Refresh only while running, and never start a second pass
		// while one is in flight.
		if m.state == stateRunning && !m.scanning {
			m.scanning = true
			return m, tea.Batch(m.doScan(), tickCmd(), m.spinner.Tick)
		}
		return m, tickCmd()

	case scanDoneMsg:
		return m.applyScan(msg)

	case killDoneMsg:
		return m.applyKill(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// applyScan installs a completed resolution pass. The snapshot is
// replaced wholesale; on failure the previous one stays current.
func (m Model) applyScan(msg scanDoneMsg) (tea.Model, tea.Cmd) {
	m.scanning = false
	if msg.err != nil {
		m.setStatus(statusErr, fmt.Sprintf("Scan failed: %v", msg.err))
		return m, nil
	}

	// Surface listener churn, but never clobber a fresh status.
	if m.snap != nil && time.Since(m.statusAt) >= statusTTL {
		if events := snapshot.Diff(m.snap, msg.snap); len(events) > 0 {
			m.setStatus(statusInfo, describeEvents(events))
		}
	}
	m.snap = msg.snap
	m.rebuildView()
	return m, nil
}

func (m Model) applyKill(msg killDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(statusErr, fmt.Sprintf("Kill failed: %v", msg.err))
		return m, nil
	}
	verb := "Killed"
	if msg.forced {
		verb = "Force killed"
	}
	m.setStatus(statusOK, fmt.Sprintf("%s %s (PID %d) on port %d", verb, msg.process, msg.pid, msg.port))
	if !m.scanning {
		m.scanning = true
		return m, tea.Batch(m.doScan(), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case stateConfirmKill:
		return m.handleConfirmKey(msg, false)
	case stateConfirmForceKill:
		return m.handleConfirmKey(msg, true)
	default:
		return m.handleRunningKey(msg)
	}
}

// handleConfirmKey drives both confirmation dialogs. Accepting sends the
// signal and returns to running. Pressing f in the plain dialog escalates
// to the force dialog, which needs its own confirmation. Anything else
// cancels and discards the target.
func (m Model) handleConfirmKey(msg tea.KeyMsg, force bool) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target := *m.pendingKill
		m.pendingKill = nil
		m.state = stateRunning
		return m, m.doKill(target, force)
	case "f", "F":
		if !force {
			m.state = stateConfirmForceKill
			return m, nil
		}
	}
	m.pendingKill = nil
	m.state = stateRunning
	return m, nil
}

func (m Model) handleRunningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Control shortcuts work even while a filter is being typed.
	switch msg.String() {
	case "ctrl+x":
		if target := m.selectedEndpoint(); target != nil {
			m.pendingKill = target
			m.state = stateConfirmKill
		}
		return m, nil

	case "ctrl+k":
		// Quick force kill, no confirmation.
		if target := m.selectedEndpoint(); target != nil {
			return m, m.doKill(*target, true)
		}
		return m, nil

	case "ctrl+d":
		m.showDetail = !m.showDetail
		return m, nil

	case "ctrl+s":
		m.sortBy = m.sortBy.next()
		m.sortDesc = m.sortBy.descending()
		m.rebuildView()
		return m, nil

	case "ctrl+t":
		m.protoFilter = m.protoFilter.next()
		m.rebuildView()
		return m, nil

	case "ctrl+r":
		if !m.scanning {
			m.scanning = true
			m.setStatus(statusInfo, "Refreshed")
			return m, tea.Batch(m.doScan(), m.spinner.Tick)
		}
		return m, nil
	}

	if m.typing {
		return m.handleFilterKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "/":
		m.typing = true
	case "esc":
		if m.filterText != "" {
			m.filterText = ""
			m.rebuildView()
		} else {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.typing = false
	case tea.KeyBackspace:
		if m.filterText != "" {
			runes := []rune(m.filterText)
			m.filterText = string(runes[:len(runes)-1])
			m.rebuildView()
		}
	case tea.KeySpace:
		m.filterText += " "
		m.rebuildView()
	case tea.KeyRunes:
		m.filterText += string(msg.Runes)
		m.rebuildView()
	}
	return m, nil
}

// moveCursor shifts the selection, clamped to the view bounds.
func (m *Model) moveCursor(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 {
		next = 0
	}
	if next > len(m.filtered)-1 {
		next = len(m.filtered) - 1
	}
	m.cursor = next
	m.selected = m.endpointAt(m.cursor).Key()
	m.clampScroll()
}

// selectedEndpoint returns a copy of the endpoint under the cursor, or
// nil when nothing is selected.
func (m *Model) selectedEndpoint() *snapshot.Endpoint {
	if m.snap == nil || m.cursor < 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	e := m.snap.Endpoints[m.filtered[m.cursor]]
	return &e
}

func (m *Model) endpointAt(viewIdx int) snapshot.Endpoint {
	return m.snap.Endpoints[m.filtered[viewIdx]]
}

// rebuildView recomputes the filtered, sorted index view over the current
// snapshot and re-binds the selection: the previously selected endpoint
// keeps the cursor if it is still visible, otherwise the cursor clamps to
// the nearest row, or clears when the view is empty.
func (m *Model) rebuildView() {
	hadSelection := m.cursor >= 0
	prevKey := m.selected
	prevCursor := m.cursor

	m.filtered = m.filtered[:0]
	if m.snap != nil {
		query := strings.ToLower(m.filterText)
		for i, e := range m.snap.Endpoints {
			if !m.protoFilter.allows(e.Protocol) {
				continue
			}
			if query != "" && !matchesQuery(e, query) {
				continue
			}
			m.filtered = append(m.filtered, i)
		}
	}
	m.sortView()

	if len(m.filtered) == 0 {
		m.cursor = -1
	} else {
		m.cursor = -1
		if hadSelection {
			for i, idx := range m.filtered {
				if m.snap.Endpoints[idx].Key() == prevKey {
					m.cursor = i
					break
				}
			}
		}
		if m.cursor == -1 {
			m.cursor = 0
			if hadSelection && prevCursor > 0 {
				m.cursor = min(prevCursor, len(m.filtered)-1)
			}
		}
		m.selected = m.endpointAt(m.cursor).Key()
	}
	m.clampScroll()
}

// matchesQuery is the filter predicate: case-insensitive containment over
// the port digits, process name, and service label.
func matchesQuery(e snapshot.Endpoint, query string) bool {
	return strings.Contains(strconv.Itoa(e.Port), query) ||
		strings.Contains(strings.ToLower(e.ProcessName()), query) ||
		strings.Contains(strings.ToLower(e.Service.Label), query)
}

// sortView stably orders the index view. Ties keep snapshot order, which
// is port-ascending.
func (m *Model) sortView() {
	if m.snap == nil || (m.sortBy == sortByPort && !m.sortDesc) {
		return
	}
	eps := m.snap.Endpoints
	less := func(a, b snapshot.Endpoint) bool {
		switch m.sortBy {
		case sortByName:
			return strings.ToLower(a.ProcessName()) < strings.ToLower(b.ProcessName())
		case sortByCpu:
			return a.CPU() < b.CPU()
		case sortByMemory:
			return a.RSS() < b.RSS()
		default:
			return a.Port < b.Port
		}
	}
	sort.SliceStable(m.filtered, func(i, j int) bool {
		a, b := eps[m.filtered[i]], eps[m.filtered[j]]
		if m.sortDesc {
			a, b = b, a
		}
		return less(a, b)
	})
}

func (m *Model) setStatus(lvl statusLevel, s string) {
	m.statusMsg = s
	m.statusLvl = lvl
	m.statusAt = time.Now()
}

// status returns the transient message while it is fresh.
func (m Model) status() (string, statusLevel) {
	if m.statusMsg != "" && time.Since(m.statusAt) < statusTTL {
		return m.statusMsg, m.statusLvl
	}
	return "", statusInfo
}

// describeEvents summarizes listener churn for the status line.
func describeEvents(events []snapshot.Event) string {
	if len(events) == 1 {
		e := events[0]
		if e.Type == snapshot.EventOpen {
			return fmt.Sprintf("New listener: %d/%s (%s)", e.Port, e.Protocol, e.Process)
		}
		return fmt.Sprintf("Listener gone: %d/%s (%s)", e.Port, e.Protocol, e.Process)
	}
	var opened, closed int
	for _, e := range events {
		if e.Type == snapshot.EventOpen {
			opened++
		} else {
			closed++
		}
	}
	switch {
	case closed == 0:
		return fmt.Sprintf("%d new listeners", opened)
	case opened == 0:
		return fmt.Sprintf("%d listeners gone", closed)
	default:
		return fmt.Sprintf("%d new listeners, %d gone", opened, closed)
	}
}

// clampScroll keeps the cursor inside the visible window and the window
// inside the view.
func (m *Model) clampScroll() {
	visible := m.visibleRows()
	if m.cursor >= 0 {
		if m.cursor < m.scrollOffset {
			m.scrollOffset = m.cursor
		}
		if m.cursor >= m.scrollOffset+visible {
			m.scrollOffset = m.cursor - visible + 1
		}
	}
	maxOffset := len(m.filtered) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m Model) visibleRows() int {
	// Reserved lines: header box (3), column header (1), table borders
	// (2), status bar (1).
	const reserved = 7
	visible := m.height - reserved
	if visible < 1 {
		visible = 1
	}
	return visible
}

// View renders the session.
func (m Model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}

	switch m.state {
	case stateConfirmKill:
		return m.viewConfirm(false)
	case stateConfirmForceKill:
		return m.viewConfirm(true)
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	if m.showDetail {
		tw := m.width * 60 / 100
		table := m.viewTable(tw)
		detail := m.viewDetail(m.width - tw)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, table, detail))
	} else {
		b.WriteString(m.viewTable(m.width))
	}
	b.WriteString("\n")
	b.WriteString(m.viewStatusBar())
	return b.String()
}

func (m Model) viewHeader() string {
	left := titleStyle.Render("Kaval") + " " + mutedStyle.Render(m.version) + "  " + taglineStyle.Render("Guard your ports")
	if m.typing {
		left += "   " + textStyle.Render(fmt.Sprintf("Filter: %s▌", m.filterText))
	} else if m.filterText != "" {
		left += "   " + dimStyle.Render("Filter: "+m.filterText)
	}

	tcp, udp := "✓", "✓"
	switch m.protoFilter {
	case protoTCP:
		udp = "✗"
	case protoUDP:
		tcp = "✗"
	}
	count := 0
	if m.snap != nil {
		count = len(m.snap.Endpoints)
	}
	sortLabel := "Sort: " + m.sortBy.label()
	if m.sortDesc {
		sortLabel += " ↓"
	}
	right := dimStyle.Render(fmt.Sprintf("[TCP %s] [UDP %s]  %d ports  %s", tcp, udp, count, sortLabel))

	content := m.width - 4 // box borders and padding
	gap := content - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return headerBoxStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) viewTable(width int) string {
	var b strings.Builder

	if m.snap == nil {
		b.WriteString(" " + m.spinner.View() + " " + dimStyle.Render("Scanning ports..."))
		return tableBoxStyle.Width(width - 2).Render(b.String())
	}

	b.WriteString(" " + columnStyle.Render(fmt.Sprintf("%-7s %-6s %-14s %-16s %-7s %-7s %-9s %-8s",
		"PORT", "PROTO", "PROCESS", "SERVICE", "PID", "CPU", "MEM", "UPTIME")))
	b.WriteString("\n")

	if len(m.filtered) == 0 {
		if m.filterText != "" {
			b.WriteString(dimStyle.Render(" No matches for: " + m.filterText))
		} else {
			b.WriteString(dimStyle.Render(" No listening ports found."))
		}
	} else {
		visible := m.visibleRows()
		end := m.scrollOffset + visible
		if end > len(m.filtered) {
			end = len(m.filtered)
		}
		for i := m.scrollOffset; i < end; i++ {
			b.WriteString(m.renderRow(i))
			if i < end-1 {
				b.WriteString("\n")
			}
		}
		if len(m.filtered) > visible {
			b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf(" %d-%d of %d", m.scrollOffset+1, end, len(m.filtered))))
		}
	}

	return tableBoxStyle.Width(width - 2).Render(b.String())
}

// renderRow renders one endpoint line. The selected row gets the
// highlight style instead of per-cell colors.
func (m Model) renderRow(viewIdx int) string {
	e := m.endpointAt(viewIdx)

	service := e.Service.Label
	if service == "" {
		service = "—"
	}

	port := fmt.Sprintf("%-7d", e.Port)
	proto := fmt.Sprintf("%-6s", e.Protocol)
	proc := fmt.Sprintf("%-14s", truncate(e.ProcessName(), 14))
	svc := fmt.Sprintf("%-16s", truncate(service, 16))
	pid := fmt.Sprintf("%-7d", e.PID)
	cpu := fmt.Sprintf("%-7s", fmt.Sprintf("%.1f%%", e.CPU()))
	mem := fmt.Sprintf("%-9s", e.MemoryDisplay())
	up := fmt.Sprintf("%-8s", e.UptimeDisplay())

	if viewIdx == m.cursor {
		return selectedStyle.Render(" " + port + " " + proto + " " + proc + " " + svc + " " + pid + " " + cpu + " " + mem + " " + up)
	}

	cat := categoryStyle(e.Service.Category)
	return " " + textStyle.Render(port) + " " + dimStyle.Render(proto) + " " +
		cat.Render(proc) + " " + cat.Render(svc) + " " +
		dimStyle.Render(pid) + " " + cpuStyle(e.CPU()).Render(cpu) + " " +
		textStyle.Render(mem) + " " + dimStyle.Render(up)
}

// viewDetail renders the side pane for the selected endpoint.
func (m Model) viewDetail(width int) string {
	target := m.selectedEndpoint()
	if target == nil {
		return detailBoxStyle.Width(width - 2).Render(dimStyle.Render("Nothing selected"))
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(detailLabelStyle.Render(label) + textStyle.Render(value) + "\n")
	}
	row("Port", fmt.Sprintf("%d/%s", target.Port, target.Protocol))
	row("Address", target.AddrDisplay())
	row("Process", target.ProcessName())
	row("PID", strconv.Itoa(target.PID))
	service := target.Service.Label
	if service == "" {
		service = "—"
	}
	row("Service", service)
	b.WriteString("\n")
	row("CPU", fmt.Sprintf("%.1f%%", target.CPU()))
	row("Memory", target.MemoryDisplay())
	row("Uptime", target.UptimeDisplay())
	if target.Proc != nil {
		if target.Proc.User != "" {
			row("User", target.Proc.User)
		}
		if target.Proc.Cmdline != "" {
			inner := width - 6
			if inner < 10 {
				inner = 10
			}
			b.WriteString("\n")
			b.WriteString(detailLabelStyle.Render("Command") + "\n")
			b.WriteString(dimStyle.Render(wrap.String(target.Proc.Cmdline, inner)))
			b.WriteString("\n")
		}
	}

	return detailBoxStyle.Width(width - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) viewStatusBar() string {
	if s, lvl := m.status(); s != "" {
		switch lvl {
		case statusOK:
			return " " + successStyle.Render(s)
		case statusErr:
			return " " + errorStyle.Render(s)
		default:
			return " " + warningStyle.Render(s)
		}
	}
	help := "/ Filter   ^X Kill   ^K Force   ^D Detail   ^S Sort   ^T Proto   ^R Refresh   ^Q Quit"
	return " " + helpStyle.Render(help)
}

// viewConfirm renders the centered kill confirmation dialog.
func (m Model) viewConfirm(force bool) string {
	target := m.pendingKill
	if target == nil {
		return ""
	}

	title, verb, hint := " Confirm Kill ", "Kill", "y = confirm, f = force kill, any other key = cancel"
	if force {
		title, verb, hint = " Confirm Force Kill ", "Force kill", "y = confirm, any other key = cancel"
	}

	var b strings.Builder
	b.WriteString(dialogTitleStyle.Render(title) + "\n\n")
	b.WriteString(textStyle.Render(fmt.Sprintf("%s %s (PID %d) on port %d?", verb, target.ProcessName(), target.PID, target.Port)) + "\n\n")
	b.WriteString(dimStyle.Render(hint))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialogStyle.Render(b.String()))
}

// truncate shortens s to max display runes, ending with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(runes[:max-1]) + "…"
}
