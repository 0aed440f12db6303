package geo

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDegrees_UnmarshalVariants(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
	}{
		{"number", `53.43`, true, 53.43},
		{"quoted number", `"14.55"`, true, 14.55},
		{"quoted with spaces", `" 53.4285 "`, true, 53.4285},
		{"negative", `"-14.5"`, true, -14.5},
		{"null", `null`, false, 0},
		{"empty string", `""`, false, 0},
		{"garbage", `"n/a"`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Degrees
			if err := json.Unmarshal([]byte(tt.input), &d); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.input, err)
			}
			if d.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v", d.Valid, tt.wantValid)
			}
			if d.Valid && d.Value != tt.wantValue {
				t.Fatalf("Value = %v, want %v", d.Value, tt.wantValue)
			}
		})
	}
}

func TestDegrees_UnparsableDoesNotFailRecord(t *testing.T) {
	// A record with one broken coordinate must still decode; only the
	// coordinate itself comes back invalid.
	var record struct {
		ID  int64   `json:"id"`
		Lat Degrees `json:"latitude"`
		Lng Degrees `json:"longitude"`
	}
	payload := `{"id": 7, "latitude": "broken", "longitude": "14.55"}`
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if record.ID != 7 {
		t.Fatalf("ID = %d, want 7", record.ID)
	}
	if record.Lat.Valid {
		t.Fatal("latitude should be invalid")
	}
	if !record.Lng.Valid || record.Lng.Value != 14.55 {
		t.Fatalf("longitude = %#v, want valid 14.55", record.Lng)
	}
	if _, ok := Position(record.Lat, record.Lng); ok {
		t.Fatal("Position should be unavailable with an invalid component")
	}
}

func TestLatLng_MovedSignificantly(t *testing.T) {
	origin := LatLng{Lat: 53.4285, Lng: 14.5528}

	jitter := LatLng{Lat: origin.Lat + 0.0005, Lng: origin.Lng - 0.0007}
	if jitter.MovedSignificantly(origin) {
		t.Fatal("sub-threshold jitter reported as significant")
	}

	moved := LatLng{Lat: origin.Lat + 0.002, Lng: origin.Lng}
	if !moved.MovedSignificantly(origin) {
		t.Fatal("movement beyond threshold not reported")
	}
}

func TestLatLng_DistanceKm(t *testing.T) {
	szczecin := LatLng{Lat: 53.4285, Lng: 14.5528}
	berlin := LatLng{Lat: 52.52, Lng: 13.405}

	got := szczecin.DistanceKm(berlin)
	// Roughly 125 km between the two city centres.
	if math.Abs(got-125) > 10 {
		t.Fatalf("DistanceKm = %v, want ~125", got)
	}
	if szczecin.DistanceKm(szczecin) != 0 {
		t.Fatal("distance to self should be zero")
	}
}

func TestFileLocator_ReadsAgentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "position.json")
	if err := os.WriteFile(path, []byte(`{"latitude": "53.43", "longitude": 14.55}`), 0o644); err != nil {
		t.Fatalf("write position file: %v", err)
	}

	loc := NewFileLocator(path)
	pos, err := loc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if pos.Lat != 53.43 || pos.Lng != 14.55 {
		t.Fatalf("position = %v, want 53.43,14.55", pos)
	}
}

func TestFileLocator_DegradesToDefault(t *testing.T) {
	tests := []struct {
		name string
		prep func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "absent.json")
		}},
		{"malformed file", func(t *testing.T) string {
			path := filepath.Join(t.TempDir(), "position.json")
			if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			return path
		}},
		{"invalid coordinates", func(t *testing.T) string {
			path := filepath.Join(t.TempDir(), "position.json")
			if err := os.WriteFile(path, []byte(`{"latitude": null, "longitude": "x"}`), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			return path
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := NewFileLocator(tt.prep(t))
			pos, err := loc.Current(context.Background())
			if err != nil {
				t.Fatalf("Current returned error: %v", err)
			}
			if pos != DefaultCenter {
				t.Fatalf("position = %v, want default centre %v", pos, DefaultCenter)
			}
		})
	}
}
