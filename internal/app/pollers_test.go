package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/logitrack/dispatch/internal/api"
	"github.com/logitrack/dispatch/internal/config"
	"github.com/logitrack/dispatch/internal/geo"
	"github.com/logitrack/dispatch/internal/inventory"
	"github.com/logitrack/dispatch/internal/route"
	"github.com/logitrack/dispatch/internal/selection"
	"github.com/logitrack/dispatch/internal/session"
	"github.com/logitrack/dispatch/internal/state"
)

// recordingDirections captures every Route call for assertions.
type recordingDirections struct {
	mu      sync.Mutex
	origins []geo.LatLng
	dests   []geo.LatLng
}

func (r *recordingDirections) Route(_ context.Context, origin, destination geo.LatLng) (route.Path, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origins = append(r.origins, origin)
	r.dests = append(r.dests, destination)
	return route.Path{Meters: 2500}, nil
}

func (r *recordingDirections) OptimizedOrder(_ context.Context, _ geo.LatLng, _ []geo.LatLng) ([]int, error) {
	return nil, nil
}

func (r *recordingDirections) calls() ([]geo.LatLng, []geo.LatLng) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]geo.LatLng(nil), r.origins...), append([]geo.LatLng(nil), r.dests...)
}

// newTestApp wires an App against the given server with a signed-in admin
// session held in memory only.
func newTestApp(t *testing.T, serverURL string) *App {
	t.Helper()

	sess := session.Load(filepath.Join(t.TempDir(), "session.toml"))
	if err := sess.Establish("test-token", api.RoleAdmin, 0, false); err != nil {
		t.Fatalf("Establish() failed: %v", err)
	}

	client, err := api.NewClient(serverURL, sess)
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}

	return &App{
		Config:     config.Config{DefaultCenter: geo.DefaultCenter},
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
		locator:    geo.StaticLocator{Pos: geo.DefaultCenter},
	}
}

func courierJSON(id int64, name string) string {
	return `{"courier_id":` + jsonInt(id) + `,"name":"` + name + `","latitude":53.43,"longitude":14.55,"active":true}`
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestRefreshCouriersReplacesSnapshot(t *testing.T) {
	var mu sync.Mutex
	body := "[" + courierJSON(1, "Anna") + "," + courierJSON(2, "Piotr") + "]"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/active-couriers" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)

	if err := a.refreshCouriers(context.Background()); err != nil {
		t.Fatalf("refreshCouriers() failed: %v", err)
	}
	if got := len(a.Couriers.Snapshot().Items); got != 2 {
		t.Fatalf("expected 2 couriers, got %d", got)
	}

	// The next poll no longer reports courier 2. The snapshot is replaced
	// wholesale, not merged.
	mu.Lock()
	body = "[" + courierJSON(1, "Anna") + "]"
	mu.Unlock()

	if err := a.refreshCouriers(context.Background()); err != nil {
		t.Fatalf("refreshCouriers() failed: %v", err)
	}
	snap := a.Couriers.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ID != 1 {
		t.Errorf("expected only courier 1 after replace, got %+v", snap.Items)
	}
	if a.Couriers.Contains(2) {
		t.Error("stale courier 2 should have been dropped")
	}
}

func TestRefreshCouriersCancelsVanishedSelection(t *testing.T) {
	var mu sync.Mutex
	body := "[" + courierJSON(1, "Anna") + "," + courierJSON(2, "Piotr") + "]"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)

	var clearedID int64
	a.CourierSel.OnClear = func(id int64) { clearedID = id }

	if err := a.refreshCouriers(context.Background()); err != nil {
		t.Fatalf("refreshCouriers() failed: %v", err)
	}

	seq := a.CourierSel.Select(2)
	a.CourierSel.Resolve(seq, selection.Enrichment{Address: "Main St 1"}, nil)

	// While still reported, the selection survives the poll.
	if err := a.refreshCouriers(context.Background()); err != nil {
		t.Fatalf("refreshCouriers() failed: %v", err)
	}
	if view := a.CourierSel.Current(); !view.Selected() {
		t.Fatal("selection should survive while the courier is still reported")
	}

	mu.Lock()
	body = "[" + courierJSON(1, "Anna") + "]"
	mu.Unlock()

	if err := a.refreshCouriers(context.Background()); err != nil {
		t.Fatalf("refreshCouriers() failed: %v", err)
	}

	view := a.CourierSel.Current()
	if view.Selected() {
		t.Error("selection should auto-cancel when the courier vanishes from the poll")
	}
	if view.Notice == "" {
		t.Error("auto-cancel should leave a user-visible notice")
	}
	if clearedID != 2 {
		t.Errorf("OnClear got id %d, want 2", clearedID)
	}
}

func TestRefreshCouriersFailureKeepsLastSnapshot(t *testing.T) {
	var mu sync.Mutex
	failing := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			http.Error(w, `{"message":"database unavailable"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[" + courierJSON(1, "Anna") + "]"))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)

	if err := a.refreshCouriers(context.Background()); err != nil {
		t.Fatalf("refreshCouriers() failed: %v", err)
	}

	mu.Lock()
	failing = true
	mu.Unlock()

	for i := 0; i < 2; i++ {
		if err := a.refreshCouriers(context.Background()); err == nil {
			t.Fatal("expected refreshCouriers to surface the server error")
		}
	}

	snap := a.Couriers.Snapshot()
	if len(snap.Items) != 1 {
		t.Errorf("stale data should be kept on failure, got %d items", len(snap.Items))
	}
	if snap.LastError == nil {
		t.Error("LastError should record the failure")
	}
	if !snap.IsOffline() {
		t.Error("two consecutive failures should report offline")
	}
}

func TestRefreshCouriersSkipsWhenLoggedOut(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)
	a.Session.Clear()

	if err := a.refreshCouriers(context.Background()); err != nil {
		t.Fatalf("refreshCouriers() failed: %v", err)
	}
	if requests != 0 {
		t.Errorf("logged-out refresh should not hit the server, got %d requests", requests)
	}
}

func TestRefreshStatsPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/warehouse-stats" {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "delivery-stats") {
			w.Write([]byte(`{"in_progress":4,"delivered_today":5,"delayed":1}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)

	if err := a.refreshStats(context.Background()); err == nil {
		t.Fatal("expected refreshStats to surface the partial failure")
	}

	snap := a.Stats.Snapshot()
	if len(snap.Items) != 1 {
		t.Fatalf("partial stats should still replace the snapshot, got %d items", len(snap.Items))
	}
	if got := snap.Items[0].Delivery.InProgress; got != 4 {
		t.Errorf("deliveries in progress = %d, want 4", got)
	}
	if snap.LastError == nil {
		t.Error("LastError should record the failing section")
	}

	// Repeated partial failures keep refreshing most sections, so the store
	// must not drift into the offline state.
	if err := a.refreshStats(context.Background()); err == nil {
		t.Fatal("expected refreshStats to surface the partial failure")
	}
	if a.Stats.Snapshot().IsOffline() {
		t.Error("partial failures should not report the stats store offline")
	}
}

func TestRefreshStatsTotalFailureGoesOffline(t *testing.T) {
	var mu sync.Mutex
	failing := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if failing {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "delivery-stats") {
			w.Write([]byte(`{"in_progress":4,"delivered_today":5,"delayed":1}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)

	if err := a.refreshStats(context.Background()); err != nil {
		t.Fatalf("refreshStats() failed: %v", err)
	}

	mu.Lock()
	failing = true
	mu.Unlock()

	for i := 0; i < 2; i++ {
		if err := a.refreshStats(context.Background()); err == nil {
			t.Fatal("expected refreshStats to surface the total failure")
		}
	}

	snap := a.Stats.Snapshot()
	if !snap.IsOffline() {
		t.Error("two all-sections failures should report the stats store offline")
	}
	if len(snap.Items) != 1 || snap.Items[0].Delivery.InProgress != 4 {
		t.Errorf("last good stats should be kept, got %+v", snap.Items)
	}
}

func TestRefreshSelectedCourierSkipsWithoutSelection(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)
	a.Routes = route.NewDeriver(&recordingDirections{})

	if err := a.refreshSelectedCourier(context.Background()); err != nil {
		t.Fatalf("refreshSelectedCourier() failed: %v", err)
	}
	if requests != 0 {
		t.Errorf("tick without a selection should not hit the server, got %d requests", requests)
	}
}

func TestRefreshSelectedCourierRecomputesRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/couriers/7" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"courier_id":7,"name":"Piotr","latitude":53.5,"longitude":14.6,"active":true}`))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)
	provider := &recordingDirections{}
	a.Routes = route.NewDeriver(provider)

	destination := geo.LatLng{Lat: 53.44, Lng: 14.56}
	seq := a.CourierSel.Select(7)
	if !a.CourierSel.Resolve(seq, selection.Enrichment{Address: "Main St 1", Position: destination, HasPosition: true}, nil) {
		t.Fatal("Resolve() should apply the current sequence")
	}

	if err := a.refreshSelectedCourier(context.Background()); err != nil {
		t.Fatalf("refreshSelectedCourier() failed: %v", err)
	}

	origins, dests := provider.calls()
	if len(origins) != 1 {
		t.Fatalf("provider called %d times, want 1", len(origins))
	}
	if origins[0] != (geo.LatLng{Lat: 53.5, Lng: 14.6}) {
		t.Errorf("route origin = %v, want the freshly fetched courier position", origins[0])
	}
	if dests[0] != destination {
		t.Errorf("route destination = %v, want the enriched destination %v", dests[0], destination)
	}

	// Same position on the next tick is jitter-free, the cached path suffices.
	if err := a.refreshSelectedCourier(context.Background()); err != nil {
		t.Fatalf("refreshSelectedCourier() failed: %v", err)
	}
	if origins, _ := provider.calls(); len(origins) != 1 {
		t.Errorf("unchanged position should reuse the cached path, provider called %d times", len(origins))
	}
}

func TestReportOwnLocationSkipsWithoutCourierIdentity(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	// Admin session, courier id zero.
	a := newTestApp(t, server.URL)

	if err := a.reportOwnLocation(context.Background()); err != nil {
		t.Fatalf("reportOwnLocation() failed: %v", err)
	}
	if requests != 0 {
		t.Errorf("non-courier account should not report location, got %d requests", requests)
	}
}

func TestReportOwnLocationSendsPosition(t *testing.T) {
	var got api.LocationReport
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/courier-location" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode report: %v", err)
		}
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)
	if err := a.Session.Establish("test-token", api.RoleCourier, 7, false); err != nil {
		t.Fatalf("Establish() failed: %v", err)
	}
	a.setOwnPosition(geo.LatLng{Lat: 53.5, Lng: 14.6})

	if err := a.reportOwnLocation(context.Background()); err != nil {
		t.Fatalf("reportOwnLocation() failed: %v", err)
	}
	if got.CourierID != 7 || got.Latitude != 53.5 || got.Longitude != 14.6 {
		t.Errorf("report = %+v, want courier 7 at 53.5, 14.6", got)
	}
}

func TestOwnPositionFallsBackToDefaultCenter(t *testing.T) {
	a := newTestApp(t, "http://127.0.0.1:0")
	if got := a.OwnPosition(); got != geo.DefaultCenter {
		t.Errorf("OwnPosition() = %v, want default centre %v", got, geo.DefaultCenter)
	}

	a.setOwnPosition(geo.LatLng{Lat: 53.5, Lng: 14.6})
	if got := a.OwnPosition(); got != (geo.LatLng{Lat: 53.5, Lng: 14.6}) {
		t.Errorf("OwnPosition() = %v after update", got)
	}
}
