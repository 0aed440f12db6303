package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/logitrack/dispatch/internal/api"
	"github.com/logitrack/dispatch/internal/config"
	"github.com/logitrack/dispatch/internal/geo"
	"github.com/logitrack/dispatch/internal/inventory"
	"github.com/logitrack/dispatch/internal/route"
	"github.com/logitrack/dispatch/internal/selection"
	"github.com/logitrack/dispatch/internal/session"
	"github.com/logitrack/dispatch/internal/state"
)

// Options configure the dispatch application.
type Options struct {
	ConfigPath  string
	SessionPath string // empty uses default ~/.config/dispatch/session.toml
	PollEvery   int    // seconds; overrides the active-courier cadence
}

// App bundles the shared collaborators the pollers and the UI work against.
type App struct {
	Config  config.Config
	Session *session.Session
	Client  *api.Client

	Couriers   *state.Store[api.Courier]
	Deliveries *state.Store[api.Delivery]
	Orders     *state.Store[api.Order]
	Products   *state.Store[api.Product]
	Users      *state.Store[api.User]
	Stats      *state.Store[api.Stats]

	CourierSel *selection.Controller
	Routes     *route.Deriver
	Inventory  *inventory.Service

	locator geo.Locator

	mu     sync.RWMutex
	ownPos geo.LatLng
}

// OwnPosition returns the latest device position, falling back to the
// configured default centre before the first geolocation tick.
func (a *App) OwnPosition() geo.LatLng {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.ownPos == (geo.LatLng{}) {
		return a.Config.DefaultCenter
	}
	return a.ownPos
}

func (a *App) setOwnPosition(pos geo.LatLng) {
	a.mu.Lock()
	a.ownPos = pos
	a.mu.Unlock()
}

// New assembles the application collaborators and launches the background
// pollers; the caller hands the result to the UI until the context is
// cancelled.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.Intervals.Couriers = time.Duration(opts.PollEvery) * time.Second
	}

	sess := session.Load(opts.SessionPath)

	client, err := api.NewClient(cfg.APIBase, sess)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	a := &App{
		Config:     cfg,
		Session:    sess,
		Client:     client,
		Couriers:   &state.Store[api.Courier]{},
		Deliveries: &state.Store[api.Delivery]{},
		Orders:     &state.Store[api.Order]{},
		Products:   &state.Store[api.Product]{},
		Users:      &state.Store[api.User]{},
		Stats:      &state.Store[api.Stats]{},
		CourierSel: &selection.Controller{},
		Inventory:  inventory.NewService(client),
		locator:    geo.NewFileLocator(cfg.LocationFile),
	}

	if cfg.MapsAPIKey != "" {
		directions, err := route.NewGoogleDirections(cfg.MapsAPIKey)
		if err != nil {
			return nil, fmt.Errorf("init directions provider: %w", err)
		}
		a.Routes = route.NewDeriver(directions)
	} else {
		log.Printf("no maps api key configured, route derivation disabled")
	}

	// Cancelling a selection drops its derived route.
	a.CourierSel.OnClear = func(id int64) {
		if a.Routes != nil {
			a.Routes.Invalidate(id)
		}
	}

	a.startPollers(ctx)

	return a, nil
}
