package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/logitrack/dispatch/internal/api"
	"github.com/logitrack/dispatch/internal/app"
	"github.com/logitrack/dispatch/internal/geo"
	"github.com/logitrack/dispatch/internal/selection"
)

// courierDetail carries the extras shown in the detail panel next to the
// selection enrichment.
type courierDetail struct {
	orders []api.Order
}

// destinationMsg is the enrichment result for a selected courier. seq ties it
// to the dispatch that requested it; stale results are discarded.
type destinationMsg struct {
	id     int64
	seq    uint64
	dest   *api.Destination
	orders []api.Order
	err    error
}

type routeComputedMsg struct{}

// handleCouriersKey processes keyboard input for the tracking view.
func (m Model) handleCouriersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	couriers := m.couriers.Items

	switch msg.String() {
	case "j", "down":
		m.courierRow = moveCursor(m.courierRow, 1, len(couriers))
	case "k", "up":
		m.courierRow = moveCursor(m.courierRow, -1, len(couriers))
	case "g", "home":
		m.courierRow = 0
	case "G", "end":
		m.courierRow = moveCursor(m.courierRow, len(couriers), len(couriers))

	case "enter":
		if m.courierRow < len(couriers) {
			courier := couriers[m.courierRow]
			seq := m.app.CourierSel.Select(courier.ID)
			m.courierDetail = courierDetail{}
			m.statusMsg = ""
			return m, selectCourierCmd(m.ctx, m.app, courier.ID, seq)
		}

	case "esc":
		m.app.CourierSel.Cancel()
		m.courierDetail = courierDetail{}

	case "a":
		// Toggle the selected courier's availability flag.
		if view := m.app.CourierSel.Current(); view.Selected() {
			if courier, ok := m.app.Couriers.Get(view.ID); ok {
				return m, setCourierActiveCmd(m.ctx, m.app, courier.ID, !courier.Active)
			}
		}
	}

	return m, nil
}

// handleDestination applies an enrichment result, then kicks off the route
// computation when both endpoints are known.
func (m Model) handleDestination(msg destinationMsg) (tea.Model, tea.Cmd) {
	enrichment := selection.Enrichment{}
	if msg.err == nil && msg.dest != nil {
		enrichment.Address = msg.dest.Address
		if pos, ok := msg.dest.Position(); ok {
			enrichment.Position = pos
			enrichment.HasPosition = true
		}
	}

	applied := m.app.CourierSel.Resolve(msg.seq, enrichment, msg.err)
	if !applied {
		// Late arrival for a cancelled or superseded selection.
		return m, nil
	}

	m.courierDetail.orders = msg.orders

	if msg.err == nil && enrichment.HasPosition && m.app.Routes != nil {
		if courier, ok := m.app.Couriers.Get(msg.id); ok {
			if origin, ok := courier.Position(); ok {
				return m, computeRouteCmd(m.ctx, m.app, msg.id, origin, enrichment.Position)
			}
		}
	}
	return m, nil
}

// renderCouriers renders the marker list and the detail panel.
func (m Model) renderCouriers() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Title.Render("Courier Tracking"))
	b.WriteString("\n")

	couriers := m.couriers.Items
	if len(couriers) == 0 {
		if m.couriers.LastError != nil {
			b.WriteString(styles.WarningText.Render("courier poll failing, no data yet"))
		} else {
			b.WriteString(styles.MutedText.Render("no active couriers"))
		}
		return b.String()
	}

	sel := m.app.CourierSel.Current()

	var rows []string
	for i, courier := range couriers {
		rows = append(rows, m.renderCourierRow(courier, i == m.courierRow, sel))
	}
	list := strings.Join(rows, "\n")

	detail := m.renderCourierDetail(sel)
	if detail == "" {
		return b.String() + list + "\n" + styles.MutedText.Render("enter: inspect courier  esc: close detail")
	}
	return b.String() + lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail)
}

// renderCourierRow renders one list entry. Couriers with unparsable
// coordinates stay in the list but get no map marker.
func (m Model) renderCourierRow(courier api.Courier, cursor bool, sel selection.View) string {
	styles := m.theme.Styles()

	marker := "–"
	coords := "position unknown"
	if pos, ok := courier.Position(); ok {
		marker = "●"
		coords = fmt.Sprintf("%.4f, %.4f", pos.Lat, pos.Lng)
	}

	name := courier.Name
	if name == "" {
		name = fmt.Sprintf("courier #%d", courier.ID)
	}

	line := fmt.Sprintf("%s %s  %s", marker, padRight(truncate(name, 20), 20), coords)
	if sel.Selected() && sel.ID == courier.ID {
		line += "  ◀"
	}
	if cursor {
		return styles.Selected.Render(line)
	}
	return styles.Text.Render(line)
}

// renderCourierDetail renders the panel for the selected courier.
func (m Model) renderCourierDetail(sel selection.View) string {
	if !sel.Selected() {
		return ""
	}
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Courier #%d", sel.ID)))
	b.WriteString("\n")

	switch sel.Phase {
	case selection.Enriching:
		b.WriteString(styles.MutedText.Render("looking up destination..."))
	case selection.Enriched:
		status, address := destinationLabels(sel.Enrichment)
		b.WriteString("Status: " + status + "\n")
		b.WriteString("Destination: " + address + "\n")
		b.WriteString(m.renderRouteSummary(sel))
	}

	if len(m.courierDetail.orders) > 0 {
		b.WriteString("\nOrders:\n")
		for _, order := range m.courierDetail.orders {
			b.WriteString(fmt.Sprintf("  #%d %s (%s)\n", order.ID, truncate(order.Address, 28), order.Status))
		}
	}

	return styles.Card.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderRouteSummary(sel selection.View) string {
	styles := m.theme.Styles()
	if m.app.Routes == nil {
		return styles.MutedText.Render("routing disabled (no maps key)")
	}
	path, ok := m.app.Routes.Cached(sel.ID)
	if !ok {
		return styles.MutedText.Render("route: computing...")
	}
	summary := path.Summary
	if summary == "" {
		summary = "route"
	}
	return fmt.Sprintf("%s: %.1f km, %s", summary, float64(path.Meters)/1000, formatDuration(int64(path.Duration.Seconds())))
}

// destinationLabels maps the enrichment to the detail panel strings. A failed
// lookup shows the sentinel values instead of failing the selection.
func destinationLabels(e selection.Enrichment) (status, address string) {
	if !e.Known || e.Address == "" {
		return "no destination", "none"
	}
	return "en route", e.Address
}

// Commands

func selectCourierCmd(ctx context.Context, a *app.App, id int64, seq uint64) tea.Cmd {
	return func() tea.Msg {
		dest, err := a.Client.CourierDestination(ctx, id)
		if err != nil {
			return destinationMsg{id: id, seq: seq, err: err}
		}
		// Orders are best effort; the destination is the enrichment proper.
		orders, err := a.Client.CourierOrders(ctx, id)
		if err != nil {
			orders = nil
		}
		return destinationMsg{id: id, seq: seq, dest: dest, orders: orders}
	}
}

func computeRouteCmd(ctx context.Context, a *app.App, id int64, origin, destination geo.LatLng) tea.Cmd {
	return func() tea.Msg {
		a.Routes.Compute(ctx, id, origin, destination)
		return routeComputedMsg{}
	}
}

func setCourierActiveCmd(ctx context.Context, a *app.App, id int64, active bool) tea.Cmd {
	return func() tea.Msg {
		err := a.Client.SetCourierActive(ctx, id, active)
		return actionResultMsg{what: "courier availability", err: err}
	}
}
