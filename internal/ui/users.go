package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/logitrack/dispatch/internal/api"
	"github.com/logitrack/dispatch/internal/app"
)

// roleCycle is the order the role key walks through.
var roleCycle = []string{api.RoleGuest, api.RoleCourier, api.RoleWarehouse, api.RoleAdmin}

func nextRole(current string) string {
	for i, role := range roleCycle {
		if role == current {
			return roleCycle[(i+1)%len(roleCycle)]
		}
	}
	return roleCycle[0]
}

// handleUsersKey processes keyboard input for the user administration view.
func (m Model) handleUsersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	users := m.users.Items

	switch msg.String() {
	case "j", "down":
		m.userRow = moveCursor(m.userRow, 1, len(users))
		m.confirmDeleteID = 0
	case "k", "up":
		m.userRow = moveCursor(m.userRow, -1, len(users))
		m.confirmDeleteID = 0

	case "r":
		return m, fetchUsersCmd(m.ctx, m.app)

	case "tab":
		if m.userRow < len(users) {
			user := users[m.userRow]
			user.Role = nextRole(user.Role)
			return m, updateUserCmd(m.ctx, m.app, user)
		}

	case "x":
		// Deleting an account needs a second press on the same row.
		if m.userRow < len(users) {
			user := users[m.userRow]
			if m.confirmDeleteID == user.ID {
				m.confirmDeleteID = 0
				return m, deleteUserCmd(m.ctx, m.app, user.ID)
			}
			m.confirmDeleteID = user.ID
			m.statusMsg = fmt.Sprintf("press x again to delete %s", user.Username)
		}

	case "esc":
		m.confirmDeleteID = 0
	}

	return m, nil
}

// renderUsers renders the account table.
func (m Model) renderUsers() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Title.Render("Users"))
	b.WriteString("\n")

	users := m.users.Items
	if len(users) == 0 {
		b.WriteString(styles.MutedText.Render("no users"))
		return b.String()
	}

	header := fmt.Sprintf("  %s %s %s",
		padRight("USERNAME", 20), padRight("EMAIL", 28), "ROLE")
	b.WriteString(styles.MutedText.Render(header))
	b.WriteString("\n")

	for i, u := range users {
		line := fmt.Sprintf("  %s %s %s",
			padRight(truncate(u.Username, 20), 20),
			padRight(truncate(u.Email, 28), 28),
			u.Role)
		if m.confirmDeleteID == u.ID {
			line += "  delete?"
		}
		if i == m.userRow {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + styles.MutedText.Render("tab: cycle role  x: delete  r: refresh"))
	return b.String()
}

// Commands

func updateUserCmd(ctx context.Context, a *app.App, user api.User) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "update user", err: a.Client.UpdateUser(ctx, user)}
	}
}

func deleteUserCmd(ctx context.Context, a *app.App, id int64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "delete user", err: a.Client.DeleteUser(ctx, id)}
	}
}
