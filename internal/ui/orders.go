package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/logitrack/dispatch/internal/app"
)

// handleOrdersKey processes keyboard input while the orders pane is shown
// inside the deliveries view.
func (m Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	orders := m.orders.Items

	switch msg.String() {
	case "j", "down":
		m.orderRow = moveCursor(m.orderRow, 1, len(orders))
	case "k", "up":
		m.orderRow = moveCursor(m.orderRow, -1, len(orders))

	case "p", "esc":
		m.ordersMode = false

	case "r":
		return m, fetchOrdersCmd(m.ctx, m.app)

	case "a":
		// Assign the order to the courier inspected in the tracking view.
		if m.orderRow < len(orders) {
			view := m.app.CourierSel.Current()
			if !view.Selected() {
				m.statusMsg = "select a courier in the tracking view first"
				return m, nil
			}
			return m, assignOrderCmd(m.ctx, m.app, orders[m.orderRow].ID, view.ID)
		}

	case "A":
		return m, autoAssignCmd(m.ctx, m.app)

	case "x":
		if m.orderRow < len(orders) {
			return m, removeOrderCmd(m.ctx, m.app, orders[m.orderRow].ID)
		}
	}

	return m, nil
}

// renderOrders renders the pending order pane.
func (m Model) renderOrders() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Title.Render("Orders"))
	b.WriteString("\n")

	orders := m.orders.Items
	if len(orders) == 0 {
		b.WriteString(styles.MutedText.Render("no orders"))
	} else {
		header := fmt.Sprintf("  %s %s %s",
			padRight("ADDRESS", 28), padRight("STATUS", 12), "COURIER")
		b.WriteString(styles.MutedText.Render(header))
		b.WriteString("\n")
		for i, o := range orders {
			courier := "unassigned"
			if o.CourierID != nil {
				courier = fmt.Sprintf("#%d", *o.CourierID)
			}
			line := fmt.Sprintf("  %s %s %s",
				padRight(truncate(o.Address, 28), 28),
				padRight(o.Status, 12),
				courier)
			if i == m.orderRow {
				b.WriteString(styles.Selected.Render(line))
			} else {
				b.WriteString(styles.Text.Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + styles.MutedText.Render("a: assign to inspected courier  A: auto assign  x: remove  p: back  r: refresh"))
	return b.String()
}

// Commands

func fetchOrdersCmd(ctx context.Context, a *app.App) tea.Cmd {
	return func() tea.Msg {
		orders, err := a.Client.Orders(ctx)
		if err != nil {
			a.Orders.Fail(err)
			return collectionMsg{err: err}
		}
		a.Orders.Replace(orders)
		return collectionMsg{}
	}
}

func assignOrderCmd(ctx context.Context, a *app.App, orderID, courierID int64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "assign order", err: a.Client.AssignOrder(ctx, orderID, courierID)}
	}
}

func removeOrderCmd(ctx context.Context, a *app.App, orderID int64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "remove order", err: a.Client.RemoveOrder(ctx, orderID)}
	}
}
