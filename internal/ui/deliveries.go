package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/logitrack/dispatch/internal/api"
	"github.com/logitrack/dispatch/internal/app"
	"github.com/logitrack/dispatch/internal/route"
)

// optimizeResultMsg carries the display order suggested by the routing
// provider. The stored delivery list is never mutated.
type optimizeResultMsg struct {
	deliveries []api.Delivery
	err        error
}

// visibleDeliveries returns the list currently rendered: the optimized
// ordering when active, the store order otherwise.
func (m Model) visibleDeliveries() []api.Delivery {
	if m.showOptimized && len(m.optimized) > 0 {
		return m.optimized
	}
	return m.deliveries.Items
}

// handleDeliveriesKey processes keyboard input for the deliveries view.
func (m Model) handleDeliveriesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ordersMode {
		return m.handleOrdersKey(msg)
	}

	deliveries := m.visibleDeliveries()

	switch msg.String() {
	case "j", "down":
		m.deliveryRow = moveCursor(m.deliveryRow, 1, len(deliveries))
	case "k", "up":
		m.deliveryRow = moveCursor(m.deliveryRow, -1, len(deliveries))
	case "g", "home":
		m.deliveryRow = 0
	case "G", "end":
		m.deliveryRow = moveCursor(m.deliveryRow, len(deliveries), len(deliveries))

	case "r":
		return m, fetchDeliveriesCmd(m.ctx, m.app)

	case "s":
		if m.deliveryRow < len(deliveries) {
			return m, startDeliveryCmd(m.ctx, m.app, deliveries[m.deliveryRow].ID)
		}

	case "c":
		if m.deliveryRow < len(deliveries) {
			return m, completeDeliveryCmd(m.ctx, m.app, deliveries[m.deliveryRow].ID)
		}

	case "t":
		// Edit the estimated time for the delivery under the cursor.
		if m.deliveryRow < len(deliveries) {
			m.etaEditing = true
			m.etaInput.SetValue("")
			m.etaInput.Focus()
		}

	case "n":
		m.addrAdding = true
		m.addrInput.SetValue("")
		m.addrInput.Focus()

	case "o":
		if m.showOptimized {
			m.showOptimized = false
			return m, nil
		}
		if m.app.Routes == nil {
			m.statusMsg = "route optimization needs a maps key"
			return m, nil
		}
		return m, optimizeOrderCmd(m.ctx, m.app, m.deliveries.Items)

	case "p":
		// Flip to the pending order pane.
		m.ordersMode = true
		return m, fetchOrdersCmd(m.ctx, m.app)

	case "A":
		return m, autoAssignCmd(m.ctx, m.app)
	}

	return m, nil
}

// handleInputKey routes keystrokes while a text input has focus.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.etaEditing = false
		m.nameAdding = false
		m.addrAdding = false
		m.etaInput.Blur()
		m.nameInput.Blur()
		m.addrInput.Blur()
		return m, nil

	case "enter":
		if m.etaEditing {
			return m.submitEstimatedTime()
		}
		if m.addrAdding {
			return m.submitNewDelivery()
		}
		if m.nameAdding {
			return m.submitNewProduct()
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.etaEditing:
		m.etaInput, cmd = m.etaInput.Update(msg)
	case m.addrAdding:
		m.addrInput, cmd = m.addrInput.Update(msg)
	default:
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitEstimatedTime() (tea.Model, tea.Cmd) {
	m.etaEditing = false
	m.etaInput.Blur()

	deliveries := m.visibleDeliveries()
	if m.deliveryRow >= len(deliveries) {
		return m, nil
	}

	seconds, err := parseDurationText(m.etaInput.Value())
	if err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}
	return m, setEstimatedTimeCmd(m.ctx, m.app, deliveries[m.deliveryRow].ID, seconds)
}

func (m Model) submitNewDelivery() (tea.Model, tea.Cmd) {
	m.addrAdding = false
	m.addrInput.Blur()

	address := strings.TrimSpace(m.addrInput.Value())
	if address == "" {
		return m, nil
	}
	return m, addDeliveryCmd(m.ctx, m.app, api.NewDelivery{Address: address})
}

func (m Model) handleActionResult(msg actionResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.statusMsg = msg.what + " failed: " + msg.err.Error()
		return m, refreshSnapshotsCmd(m.app)
	}
	m.statusMsg = msg.what + " ok"

	// Writes change server state, so re-pull the affected collections.
	switch m.currentView {
	case ViewDeliveries:
		if m.ordersMode {
			return m, fetchOrdersCmd(m.ctx, m.app)
		}
		return m, fetchDeliveriesCmd(m.ctx, m.app)
	case ViewWarehouse:
		return m, fetchProductsCmd(m.ctx, m.app)
	case ViewUsers:
		return m, fetchUsersCmd(m.ctx, m.app)
	}
	return m, refreshSnapshotsCmd(m.app)
}

func (m Model) handleOptimizeResult(msg optimizeResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.statusMsg = "optimize failed: " + msg.err.Error()
		return m, nil
	}
	m.optimized = msg.deliveries
	m.showOptimized = true
	m.deliveryRow = 0
	return m, nil
}

// renderDeliveries renders the delivery table, or the order pane when the
// operator flipped to it.
func (m Model) renderDeliveries() string {
	if m.ordersMode {
		return m.renderOrders()
	}

	styles := m.theme.Styles()

	title := "Deliveries"
	if m.showOptimized {
		title = "Deliveries (optimized order)"
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	deliveries := m.visibleDeliveries()
	if len(deliveries) == 0 {
		b.WriteString(styles.MutedText.Render("no deliveries"))
		b.WriteString("\n")
	} else {
		header := fmt.Sprintf("  %s %s %s %s",
			padRight("ADDRESS", 28), padRight("STATUS", 12), padRight("ETA", 10), "COURIER")
		b.WriteString(styles.MutedText.Render(header))
		b.WriteString("\n")

		for i, d := range deliveries {
			b.WriteString(m.renderDeliveryRow(d, i == m.deliveryRow))
			b.WriteString("\n")
		}
	}

	switch {
	case m.etaEditing:
		b.WriteString("\nEstimated time: " + m.etaInput.View())
	case m.addrAdding:
		b.WriteString("\nNew delivery address: " + m.addrInput.View())
	default:
		b.WriteString("\n" + styles.MutedText.Render("n: new delivery  s: start  c: complete  t: set eta  o: optimize order  p: orders  A: auto assign  r: refresh"))
	}
	return b.String()
}

func (m Model) renderDeliveryRow(d api.Delivery, cursor bool) string {
	styles := m.theme.Styles()

	eta := "-"
	if d.EstimatedSeconds > 0 {
		eta = formatDuration(d.EstimatedSeconds)
	}

	courier := "unassigned"
	if d.CourierID != nil {
		courier = fmt.Sprintf("#%d", *d.CourierID)
	}

	line := fmt.Sprintf("  %s %s %s %s",
		padRight(truncate(d.Address, 28), 28),
		padRight(d.Status, 12),
		padRight(eta, 10),
		courier)
	if len(d.Products) > 0 {
		line += fmt.Sprintf("  (%d items)", len(d.Products))
	}

	if cursor {
		return styles.Selected.Render(line)
	}
	switch d.Status {
	case api.StatusDelivered:
		return styles.SuccessText.Render(line)
	case api.StatusInProgress:
		return styles.AccentText.Render(line)
	default:
		return styles.Text.Render(line)
	}
}

// Commands

func startDeliveryCmd(ctx context.Context, a *app.App, id int64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "start delivery", err: a.Client.StartDelivery(ctx, id)}
	}
}

func completeDeliveryCmd(ctx context.Context, a *app.App, id int64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "complete delivery", err: a.Client.CompleteDelivery(ctx, id)}
	}
}

func addDeliveryCmd(ctx context.Context, a *app.App, delivery api.NewDelivery) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "add delivery", err: a.Client.AddDelivery(ctx, delivery)}
	}
}

func setEstimatedTimeCmd(ctx context.Context, a *app.App, id, seconds int64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "set eta", err: a.Client.SetEstimatedTime(ctx, id, seconds)}
	}
}

func autoAssignCmd(ctx context.Context, a *app.App) tea.Cmd {
	return func() tea.Msg {
		_, err := a.Client.AutoAssignOrders(ctx)
		return actionResultMsg{what: "auto assign", err: err}
	}
}

// optimizeOrderCmd asks the routing provider for the cheapest visiting order
// of the deliveries that carry usable coordinates, from the operator's own
// position. Deliveries without coordinates keep their place at the end.
func optimizeOrderCmd(ctx context.Context, a *app.App, deliveries []api.Delivery) tea.Cmd {
	return func() tea.Msg {
		var stops []route.Stop
		byID := make(map[int64]api.Delivery, len(deliveries))
		var skipped []api.Delivery
		for _, d := range deliveries {
			byID[d.ID] = d
			if pos, ok := d.Position(); ok && d.Status != api.StatusDelivered {
				stops = append(stops, route.Stop{ID: d.ID, Pos: pos})
			} else {
				skipped = append(skipped, d)
			}
		}

		ordered, err := a.Routes.OptimizeOrder(ctx, a.OwnPosition(), stops)
		if err != nil {
			return optimizeResultMsg{err: err}
		}

		result := make([]api.Delivery, 0, len(deliveries))
		for _, stop := range ordered {
			result = append(result, byID[stop.ID])
		}
		result = append(result, skipped...)
		return optimizeResultMsg{deliveries: result}
	}
}
