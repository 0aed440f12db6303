package app

import (
	"context"

	"github.com/logitrack/dispatch/internal/api"
	"github.com/logitrack/dispatch/internal/poll"
)

// startPollers launches the background refresh loops. Each poller is
// independent: one failing does not affect the others, and a failure only
// means waiting for the next natural tick.
func (a *App) startPollers(ctx context.Context) {
	poll.Start(ctx, "active-couriers", a.Config.Intervals.Couriers, a.refreshCouriers)
	poll.Start(ctx, "stats", a.Config.Intervals.Stats, a.refreshStats)
	poll.Start(ctx, "selected-courier", a.Config.Intervals.SelectedCourier, a.refreshSelectedCourier)
	poll.Start(ctx, "geolocation", a.Config.Intervals.Geolocation, a.refreshOwnPosition)
	poll.Start(ctx, "location-report", a.Config.Intervals.LocationReport, a.reportOwnLocation)
}

// refreshCouriers replaces the active-courier snapshot and reconciles the
// selection against it: a selected courier that vanished from the poll is
// auto-cancelled with a notice.
func (a *App) refreshCouriers(ctx context.Context) error {
	if !a.Session.Authenticated() {
		return nil
	}
	couriers, err := a.Client.ActiveCouriers(ctx)
	if err != nil {
		a.Couriers.Fail(err)
		return err
	}
	a.Couriers.Replace(couriers)
	a.CourierSel.Reconcile(a.Couriers.Contains)
	return nil
}

// refreshStats pulls the dashboard aggregates. FetchStats keeps the sections
// that succeeded even when one endpoint fails: a partial result replaces the
// snapshot and records the error, while an all-sections failure only records
// it, so the consecutive-failure count keeps climbing toward offline.
func (a *App) refreshStats(ctx context.Context) error {
	if !a.Session.Authenticated() {
		return nil
	}
	stats, err := a.Client.FetchStats(ctx)
	if err != nil {
		if stats != nil && *stats != (api.Stats{}) {
			a.Stats.Replace([]api.Stats{*stats})
		}
		a.Stats.Fail(err)
		return err
	}
	a.Stats.Replace([]api.Stats{*stats})
	return nil
}

// refreshSelectedCourier re-reads the selected courier's position and drives
// the periodic route recompute while a selection is active. With nothing
// selected the tick is skipped.
func (a *App) refreshSelectedCourier(ctx context.Context) error {
	if !a.Session.Authenticated() {
		return nil
	}
	view := a.CourierSel.Current()
	if !view.Selected() {
		return nil
	}

	courier, err := a.Client.Courier(ctx, view.ID)
	if err != nil {
		return err
	}
	pos, ok := courier.Position()
	if !ok {
		return nil
	}

	if a.Routes != nil && view.Enrichment.Known && view.Enrichment.HasPosition {
		a.Routes.Compute(ctx, view.ID, pos, view.Enrichment.Position)
	}
	return nil
}

// refreshOwnPosition reads the device location. The locator already degrades
// to the default centre, so this never fails the loop in practice.
func (a *App) refreshOwnPosition(ctx context.Context) error {
	pos, err := a.locator.Current(ctx)
	if err != nil {
		a.setOwnPosition(a.Config.DefaultCenter)
		return err
	}
	a.setOwnPosition(pos)
	return nil
}

// reportOwnLocation pushes the device position to the server. Accounts
// without a courier identity skip the tick entirely.
func (a *App) reportOwnLocation(ctx context.Context) error {
	if !a.Session.Authenticated() {
		return nil
	}
	courierID := a.Session.CourierID()
	if courierID == 0 {
		return nil
	}
	pos := a.OwnPosition()
	return a.Client.ReportLocation(ctx, api.LocationReport{
		CourierID: courierID,
		Latitude:  pos.Lat,
		Longitude: pos.Lng,
	})
}
