package route

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/logitrack/dispatch/internal/geo"
)

// GoogleDirections adapts the Google Maps Directions API to the Directions
// interface.
type GoogleDirections struct {
	client *maps.Client
}

// NewGoogleDirections creates the adapter with the given API key.
func NewGoogleDirections(apiKey string) (*GoogleDirections, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleDirections{client: client}, nil
}

// Route implements Directions. It assumes driving mode.
func (g *GoogleDirections) Route(ctx context.Context, origin, destination geo.LatLng) (Path, error) {
	req := &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return Path{}, fmt.Errorf("directions request: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Path{}, fmt.Errorf("no route found")
	}

	best := routes[0]
	leg := best.Legs[0]

	path := Path{
		Meters:   leg.Distance.Meters,
		Duration: leg.Duration,
		Summary:  best.Summary,
	}
	if decoded, err := best.OverviewPolyline.Decode(); err == nil {
		path.Points = make([]geo.LatLng, len(decoded))
		for i, p := range decoded {
			path.Points[i] = geo.LatLng{Lat: p.Lat, Lng: p.Lng}
		}
	}
	return path, nil
}

// OptimizedOrder implements Directions. It issues a single round trip from
// the origin through every waypoint with optimization enabled and returns
// the provider's visiting order.
func (g *GoogleDirections) OptimizedOrder(ctx context.Context, origin geo.LatLng, waypoints []geo.LatLng) ([]int, error) {
	points := make([]string, len(waypoints))
	for i, w := range waypoints {
		points[i] = w.String()
	}

	req := &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: origin.String(),
		Mode:        maps.TravelModeDriving,
		Waypoints:   points,
		Optimize:    true,
	}

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("no route found")
	}
	return routes[0].WaypointOrder, nil
}
