// Package ui implements the Bubble Tea terminal interface: the login screen,
// the dashboard cards, courier tracking with the selection detail panel, and
// the delivery, warehouse and user tables. The model holds only snapshots; all
// shared state lives in the app collaborators.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/logitrack/dispatch/internal/api"
	"github.com/logitrack/dispatch/internal/app"
	"github.com/logitrack/dispatch/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewDashboard
	ViewCouriers
	ViewDeliveries
	ViewWarehouse
	ViewUsers
)

// Options configures the UI.
type Options struct {
	Context  context.Context
	App      *app.App
	PollTick time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx      context.Context
	app      *app.App
	pollTick time.Duration

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	statusMsg   string

	// Data state (latest store snapshots, pulled on every tick)
	couriers   state.Snapshot[api.Courier]
	deliveries state.Snapshot[api.Delivery]
	orders     state.Snapshot[api.Order]
	products   state.Snapshot[api.Product]
	users      state.Snapshot[api.User]
	stats      state.Snapshot[api.Stats]
	loadedAt   time.Time

	// Per-view cursors
	courierRow  int
	deliveryRow int
	orderRow    int
	productRow  int
	userRow     int

	// Couriers view
	courierDetail courierDetail

	// Deliveries view
	optimized     []api.Delivery
	showOptimized bool
	ordersMode    bool
	etaInput      textinput.Model
	etaEditing    bool
	addrInput     textinput.Model
	addrAdding    bool

	// Warehouse view
	nameInput  textinput.Model
	nameAdding bool

	// Users view
	confirmDeleteID int64

	// Login view
	login loginState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	m := Model{
		ctx:      ctx,
		app:      opts.App,
		pollTick: pollTick,
		theme:    DefaultTheme,
	}
	m.initLogin()
	m.initInputs()

	if opts.App != nil && opts.App.Session.Authenticated() {
		m.currentView = ViewDashboard
	} else {
		m.currentView = ViewLogin
	}
	return m
}

func (m *Model) initInputs() {
	m.etaInput = textinput.New()
	m.etaInput.Placeholder = "e.g. 45m or 1h 30m"
	m.etaInput.CharLimit = 16

	m.addrInput = textinput.New()
	m.addrInput.Placeholder = "delivery address"
	m.addrInput.CharLimit = 96

	m.nameInput = textinput.New()
	m.nameInput.Placeholder = "product name"
	m.nameInput.CharLimit = 48
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		refreshSnapshotsCmd(m.app),
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m, tea.Batch(tickCmd(m.pollTick), refreshSnapshotsCmd(m.app))

	case snapshotsMsg:
		m.applySnapshots(msg)
		return m, nil

	case destinationMsg:
		return m.handleDestination(msg)

	case routeComputedMsg:
		// The deriver caches the path; rendering picks it up on read.
		return m, nil

	case collectionMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
		}
		return m, refreshSnapshotsCmd(m.app)

	case actionResultMsg:
		return m.handleActionResult(msg)

	case optimizeResultMsg:
		return m.handleOptimizeResult(msg)

	case authResultMsg:
		return m.handleAuthResult(msg)
	}

	return m, nil
}

// applySnapshots copies the latest store state into the model.
func (m *Model) applySnapshots(msg snapshotsMsg) {
	m.couriers = msg.couriers
	m.deliveries = msg.deliveries
	m.orders = msg.orders
	m.products = msg.products
	m.users = msg.users
	m.stats = msg.stats
	m.loadedAt = time.Now()

	m.clampCursors()

	// Surface the auto-cancel notice exactly once.
	if view := m.app.CourierSel.Current(); view.Notice != "" {
		m.statusMsg = "selection cleared: courier " + view.Notice
		m.app.CourierSel.ClearNotice()
	}
}

func (m *Model) clampCursors() {
	clamp := func(row *int, length int) {
		if *row >= length {
			*row = length - 1
		}
		if *row < 0 {
			*row = 0
		}
	}
	clamp(&m.courierRow, len(m.couriers.Items))
	clamp(&m.deliveryRow, len(m.visibleDeliveries()))
	clamp(&m.orderRow, len(m.orders.Items))
	clamp(&m.productRow, len(m.products.Items))
	clamp(&m.userRow, len(m.users.Items))
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewLogin {
		return m.renderLogin()
	}

	return m.renderHeader() + "\n" + m.renderContent() + m.renderStatusLine()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.renderDashboard()
	case ViewCouriers:
		return m.renderCouriers()
	case ViewDeliveries:
		return m.renderDeliveries()
	case ViewWarehouse:
		return m.renderWarehouse()
	case ViewUsers:
		return m.renderUsers()
	default:
		return ""
	}
}

func (m Model) renderStatusLine() string {
	if m.statusMsg == "" {
		return ""
	}
	return "\n" + m.theme.Styles().WarningText.Render(m.statusMsg)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.currentView == ViewLogin {
		return m.handleLoginKey(msg)
	}

	// Text entry modes capture everything except escape/enter.
	if m.etaEditing || m.nameAdding || m.addrAdding {
		return m.handleInputKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "e":
		return m, tea.Quit

	case "L":
		// Logout: clear session and any persisted copy, back to login.
		m.app.Session.Clear()
		m.app.CourierSel.Cancel()
		m.currentView = ViewLogin
		m.statusMsg = ""
		return m, nil

	case "1":
		m.currentView = ViewDashboard
		return m, nil

	case "2":
		m.currentView = ViewCouriers
		return m, nil

	case "3":
		if !m.roleAllows(ViewDeliveries) {
			return m.denied()
		}
		m.currentView = ViewDeliveries
		return m, fetchDeliveriesCmd(m.ctx, m.app)

	case "4":
		if !m.roleAllows(ViewWarehouse) {
			return m.denied()
		}
		m.currentView = ViewWarehouse
		return m, fetchProductsCmd(m.ctx, m.app)

	case "5":
		if !m.roleAllows(ViewUsers) {
			return m.denied()
		}
		m.currentView = ViewUsers
		return m, fetchUsersCmd(m.ctx, m.app)
	}

	switch m.currentView {
	case ViewCouriers:
		return m.handleCouriersKey(msg)
	case ViewDeliveries:
		return m.handleDeliveriesKey(msg)
	case ViewWarehouse:
		return m.handleWarehouseKey(msg)
	case ViewUsers:
		return m.handleUsersKey(msg)
	}

	return m, nil
}

func (m Model) denied() (tea.Model, tea.Cmd) {
	m.statusMsg = "not authorized for this view (role: " + m.app.Session.Role() + ")"
	return m, nil
}

// roleAllows gates the mutating views by the session role.
func (m Model) roleAllows(view View) bool {
	role := m.app.Session.Role()
	switch view {
	case ViewUsers:
		return role == api.RoleAdmin
	case ViewWarehouse:
		return role == api.RoleAdmin || role == api.RoleWarehouse
	case ViewDeliveries:
		return role == api.RoleAdmin || role == api.RoleWarehouse || role == api.RoleCourier
	default:
		return true
	}
}

func moveCursor(row int, delta, length int) int {
	row += delta
	if row < 0 {
		return 0
	}
	if row >= length {
		if length == 0 {
			return 0
		}
		return length - 1
	}
	return row
}

// Messages

type tickMsg time.Time

type snapshotsMsg struct {
	couriers   state.Snapshot[api.Courier]
	deliveries state.Snapshot[api.Delivery]
	orders     state.Snapshot[api.Order]
	products   state.Snapshot[api.Product]
	users      state.Snapshot[api.User]
	stats      state.Snapshot[api.Stats]
}

// collectionMsg reports a one-shot collection fetch that feeds a store.
type collectionMsg struct {
	err error
}

// actionResultMsg reports a user-initiated write.
type actionResultMsg struct {
	what string
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func refreshSnapshotsCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		return snapshotsMsg{
			couriers:   a.Couriers.Snapshot(),
			deliveries: a.Deliveries.Snapshot(),
			orders:     a.Orders.Snapshot(),
			products:   a.Products.Snapshot(),
			users:      a.Users.Snapshot(),
			stats:      a.Stats.Snapshot(),
		}
	}
}

func fetchDeliveriesCmd(ctx context.Context, a *app.App) tea.Cmd {
	return func() tea.Msg {
		deliveries, err := a.Client.DeliveriesWithProducts(ctx)
		if err != nil {
			a.Deliveries.Fail(err)
			return collectionMsg{err: err}
		}
		a.Deliveries.Replace(deliveries)
		return collectionMsg{}
	}
}

func fetchProductsCmd(ctx context.Context, a *app.App) tea.Cmd {
	return func() tea.Msg {
		products, err := a.Client.Products(ctx)
		if err != nil {
			a.Products.Fail(err)
			return collectionMsg{err: err}
		}
		a.Products.Replace(products)
		return collectionMsg{}
	}
}

func fetchUsersCmd(ctx context.Context, a *app.App) tea.Cmd {
	return func() tea.Msg {
		users, err := a.Client.Users(ctx)
		if err != nil {
			a.Users.Fail(err)
			return collectionMsg{err: err}
		}
		a.Users.Replace(users)
		return collectionMsg{}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
