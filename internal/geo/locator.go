package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Locator reports the device's current position.
type Locator interface {
	Current(ctx context.Context) (LatLng, error)
}

// DefaultCenter is used whenever no device position is available.
// It is the Szczecin city centre, matching the server deployment region.
var DefaultCenter = LatLng{Lat: 53.4285, Lng: 14.5528}

// FileLocator reads the device position from a small JSON file maintained by
// an external location agent. When the file is missing, stale or malformed it
// degrades to the fallback position instead of failing the caller, so the
// pollers built on top of it keep ticking.
type FileLocator struct {
	Path     string
	Fallback LatLng
}

// NewFileLocator builds a FileLocator with the default centre as fallback.
func NewFileLocator(path string) *FileLocator {
	return &FileLocator{Path: path, Fallback: DefaultCenter}
}

// Current implements Locator.
func (l *FileLocator) Current(_ context.Context) (LatLng, error) {
	if l == nil || strings.TrimSpace(l.Path) == "" {
		return DefaultCenter, nil
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return l.fallback(), nil
	}

	var raw struct {
		Latitude  Degrees `json:"latitude"`
		Longitude Degrees `json:"longitude"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return l.fallback(), nil
	}
	pos, ok := Position(raw.Latitude, raw.Longitude)
	if !ok {
		return l.fallback(), nil
	}
	return pos, nil
}

func (l *FileLocator) fallback() LatLng {
	if l.Fallback == (LatLng{}) {
		return DefaultCenter
	}
	return l.Fallback
}

// StaticLocator always reports a fixed position. Used in tests and when no
// location agent is configured.
type StaticLocator struct {
	Pos LatLng
}

// Current implements Locator.
func (l StaticLocator) Current(_ context.Context) (LatLng, error) {
	return l.Pos, nil
}

// FailingLocator always returns an error. Used in tests to exercise the
// degrade-to-default path.
type FailingLocator struct{}

// Current implements Locator.
func (FailingLocator) Current(_ context.Context) (LatLng, error) {
	return LatLng{}, fmt.Errorf("no location source")
}
