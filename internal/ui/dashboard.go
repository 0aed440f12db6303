package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/logitrack/dispatch/internal/api"
)

// renderDashboard renders the aggregate cards fed by the ~60s stats poller.
func (m Model) renderDashboard() string {
	styles := m.theme.Styles()

	var stats api.Stats
	if len(m.stats.Items) > 0 {
		stats = m.stats.Items[0]
	}

	warehouse := styles.Card.Render(
		styles.Title.Render("Warehouse") + "\n" +
			fmt.Sprintf("Products: %d\n", stats.Warehouse.Products) +
			fmt.Sprintf("Free slots: %d\n", stats.Warehouse.FreeSlots) +
			fmt.Sprintf("Need restock: %d", stats.Warehouse.Restock))

	orders := styles.Card.Render(
		styles.Title.Render("Active Orders") + "\n" +
			fmt.Sprintf("In progress: %d\n", stats.Delivery.InProgress) +
			fmt.Sprintf("Delivered today: %d\n", stats.Delivery.DeliveredToday) +
			fmt.Sprintf("Delayed: %d", stats.Delivery.Delayed))

	tracking := styles.Card.Render(
		styles.Title.Render("Delivery Tracking") + "\n" +
			fmt.Sprintf("Couriers on route: %d\n", stats.Courier.Active) +
			fmt.Sprintf("Avg delivery: %d min\n", stats.Courier.AvgDeliveryMinutes) +
			fmt.Sprintf("Pending orders: %d", stats.Order.Pending))

	people := styles.Card.Render(
		styles.Title.Render("People") + "\n" +
			fmt.Sprintf("Employees: %d\n", stats.Employee.Total) +
			fmt.Sprintf("Couriers: %d\n", stats.Employee.Couriers) +
			fmt.Sprintf("Accounts: %d", stats.User.Total))

	cards := lipgloss.JoinHorizontal(lipgloss.Top, warehouse, " ", orders, " ", tracking, " ", people)

	footer := ""
	switch {
	case m.stats.IsOffline():
		footer = "\n" + styles.WarningText.Render("stats unavailable, showing last known values")
	case m.stats.LastError != nil:
		footer = "\n" + styles.WarningText.Render("some stats sections failed to refresh")
	case len(m.stats.Items) == 0:
		footer = "\n" + styles.MutedText.Render("waiting for first stats poll...")
	}

	pos := m.app.OwnPosition()
	center := styles.MutedText.Render(fmt.Sprintf("map centre: %.4f, %.4f", pos.Lat, pos.Lng))

	return cards + footer + "\n" + center
}
