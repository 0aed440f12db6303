package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/logitrack/dispatch/internal/api"
	"github.com/logitrack/dispatch/internal/app"
)

// handleWarehouseKey processes keyboard input for the warehouse view.
func (m Model) handleWarehouseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	products := m.products.Items

	switch msg.String() {
	case "j", "down":
		m.productRow = moveCursor(m.productRow, 1, len(products))
	case "k", "up":
		m.productRow = moveCursor(m.productRow, -1, len(products))
	case "g", "home":
		m.productRow = 0
	case "G", "end":
		m.productRow = moveCursor(m.productRow, len(products), len(products))

	case "r":
		return m, fetchProductsCmd(m.ctx, m.app)

	case "+", "=":
		if m.productRow < len(products) {
			return m, adjustQuantityCmd(m.ctx, m.app, products[m.productRow], 1)
		}

	case "-":
		if m.productRow < len(products) {
			return m, adjustQuantityCmd(m.ctx, m.app, products[m.productRow], -1)
		}

	case "n":
		m.nameAdding = true
		m.nameInput.SetValue("")
		m.nameInput.Focus()

	case "x":
		if m.productRow < len(products) {
			return m, deleteProductCmd(m.ctx, m.app, products[m.productRow].ID)
		}
	}

	return m, nil
}

func (m Model) submitNewProduct() (tea.Model, tea.Cmd) {
	m.nameAdding = false
	m.nameInput.Blur()

	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" {
		return m, nil
	}
	return m, addProductCmd(m.ctx, m.app, api.Product{Name: name})
}

// renderWarehouse renders the stock list.
func (m Model) renderWarehouse() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Title.Render("Warehouse"))
	b.WriteString("\n")

	products := m.products.Items
	if len(products) == 0 {
		b.WriteString(styles.MutedText.Render("no products"))
	} else {
		header := fmt.Sprintf("  %s %s %s",
			padRight("PRODUCT", 30), padRight("QTY", 6), "LOCATION")
		b.WriteString(styles.MutedText.Render(header))
		b.WriteString("\n")
		for i, p := range products {
			b.WriteString(m.renderProductRow(p, i == m.productRow))
			b.WriteString("\n")
		}
	}

	if m.nameAdding {
		b.WriteString("\nNew product: " + m.nameInput.View())
	} else {
		b.WriteString("\n" + styles.MutedText.Render("+/-: adjust quantity  n: new product  x: delete  r: refresh"))
	}
	return b.String()
}

func (m Model) renderProductRow(p api.Product, cursor bool) string {
	styles := m.theme.Styles()

	line := fmt.Sprintf("  %s %s %s",
		padRight(truncate(p.Name, 30), 30),
		padRight(fmt.Sprintf("%d", p.Quantity), 6),
		p.Location)

	if cursor {
		return styles.Selected.Render(line)
	}
	if p.Quantity == 0 {
		return styles.DangerText.Render(line)
	}
	return styles.Text.Render(line)
}

// Commands

func adjustQuantityCmd(ctx context.Context, a *app.App, product api.Product, delta int) tea.Cmd {
	return func() tea.Msg {
		_, err := a.Inventory.AdjustQuantity(ctx, product, delta)
		return actionResultMsg{what: "adjust quantity", err: err}
	}
}

func addProductCmd(ctx context.Context, a *app.App, product api.Product) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "add product", err: a.Client.AddProduct(ctx, product)}
	}
}

func deleteProductCmd(ctx context.Context, a *app.App, id int64) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{what: "delete product", err: a.Client.DeleteProduct(ctx, id)}
	}
}
