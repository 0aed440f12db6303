package ui

import (
	"fmt"
	"strings"
)

var navLabels = []struct {
	key   string
	label string
	view  View
}{
	{"1", "Dashboard", ViewDashboard},
	{"2", "Tracking", ViewCouriers},
	{"3", "Deliveries", ViewDeliveries},
	{"4", "Warehouse", ViewWarehouse},
	{"5", "Users", ViewUsers},
}

// renderHeader renders the title bar: app name, nav hints, connection state
// and the session role.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	var parts []string
	parts = append(parts, styles.Title.Render("LogiTrack"))

	for _, nav := range navLabels {
		label := fmt.Sprintf("[%s] %s", nav.key, nav.label)
		if nav.view == m.currentView {
			parts = append(parts, styles.AccentText.Render(label))
		} else {
			parts = append(parts, styles.MutedText.Render(label))
		}
	}

	if m.couriers.IsOffline() {
		parts = append(parts, styles.DangerText.Render("OFFLINE"))
	} else if !m.loadedAt.IsZero() {
		parts = append(parts, styles.MutedText.Render(m.loadedAt.Format("15:04:05")))
	}

	if role := m.app.Session.Role(); role != "" {
		parts = append(parts, styles.MutedText.Render("role: "+role))
	}
	parts = append(parts, styles.MutedText.Render("[L] logout  [e] exit"))

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}
