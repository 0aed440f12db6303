// Package route computes drivable paths between an origin and a destination
// through an external directions provider, caching one path per entity so
// small GPS jitter does not burn provider quota.
package route

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/logitrack/dispatch/internal/geo"
)

// Path is a computed route between two points.
type Path struct {
	Points   []geo.LatLng
	Meters   int
	Duration time.Duration
	Summary  string
}

// Stop is one delivery destination in an optimize-order request.
type Stop struct {
	ID  int64
	Pos geo.LatLng
}

// Directions is the external provider contract. Non-OK provider statuses
// surface as errors and are treated as soft failures by the Deriver.
type Directions interface {
	Route(ctx context.Context, origin, destination geo.LatLng) (Path, error)
	OptimizedOrder(ctx context.Context, origin geo.LatLng, waypoints []geo.LatLng) ([]int, error)
}

type entry struct {
	path        Path
	origin      geo.LatLng
	destination geo.LatLng
	seq         uint64
}

// Deriver caches the last computed path per entity id and recomputes only
// when the origin moved beyond the significance threshold or the destination
// changed. Provider failures are logged and leave the previous cached path
// untouched.
type Deriver struct {
	mu       sync.Mutex
	provider Directions
	cache    map[int64]entry
	inflight map[int64]uint64
}

// NewDeriver builds a Deriver over the given provider.
func NewDeriver(provider Directions) *Deriver {
	return &Deriver{
		provider: provider,
		cache:    make(map[int64]entry),
		inflight: make(map[int64]uint64),
	}
}

// Compute returns the path for the entity, reusing the cached one when
// neither endpoint changed meaningfully. The second result is false only
// when no path is available at all (first computation failed).
func (d *Deriver) Compute(ctx context.Context, id int64, origin, destination geo.LatLng) (Path, bool) {
	d.mu.Lock()
	cached, ok := d.cache[id]
	if ok && destination == cached.destination && !origin.MovedSignificantly(cached.origin) {
		d.mu.Unlock()
		return cached.path, true
	}
	// Sequence per entity: a slower older request must not overwrite the
	// result of a newer one.
	d.inflight[id]++
	seq := d.inflight[id]
	d.mu.Unlock()

	path, err := d.provider.Route(ctx, origin, destination)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		log.Printf("route for %d failed: %v", id, err)
		if prev, ok := d.cache[id]; ok {
			return prev.path, true
		}
		return Path{}, false
	}

	if seq == d.inflight[id] {
		d.cache[id] = entry{path: path, origin: origin, destination: destination, seq: seq}
	}
	return path, true
}

// Cached returns the stored path without touching the provider.
func (d *Deriver) Cached(id int64) (Path, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.cache[id]
	return e.path, ok
}

// Invalidate drops the cached path for an entity. Called when its selection
// is cancelled.
func (d *Deriver) Invalidate(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.cache, id)
	d.inflight[id]++
}

// OptimizeOrder requests one multi-waypoint route covering all stops and
// returns the stops reordered by the provider's visiting order. The
// reordering is display state only; persisting it requires a separate
// assignment call.
func (d *Deriver) OptimizeOrder(ctx context.Context, origin geo.LatLng, stops []Stop) ([]Stop, error) {
	if len(stops) < 2 {
		return cloneStops(stops), nil
	}

	waypoints := make([]geo.LatLng, len(stops))
	for i, s := range stops {
		waypoints[i] = s.Pos
	}

	order, err := d.provider.OptimizedOrder(ctx, origin, waypoints)
	if err != nil {
		return nil, err
	}
	if len(order) != len(stops) {
		log.Printf("optimize order returned %d positions for %d stops, keeping original order", len(order), len(stops))
		return cloneStops(stops), nil
	}

	reordered := make([]Stop, 0, len(stops))
	for _, idx := range order {
		if idx < 0 || idx >= len(stops) {
			log.Printf("optimize order returned out-of-range index %d, keeping original order", idx)
			return cloneStops(stops), nil
		}
		reordered = append(reordered, stops[idx])
	}
	return reordered, nil
}

func cloneStops(stops []Stop) []Stop {
	if len(stops) == 0 {
		return nil
	}
	dup := make([]Stop, len(stops))
	copy(dup, stops)
	return dup
}
