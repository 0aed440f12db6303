package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/logitrack/dispatch/internal/geo"
)

// Intervals groups the polling cadences. Each poller is independent; none
// share failure state.
type Intervals struct {
	Couriers        time.Duration // active-courier list refresh
	Stats           time.Duration // dashboard aggregates refresh
	SelectedCourier time.Duration // selected-courier position refresh
	Geolocation     time.Duration // own-position read from the location agent
	LocationReport  time.Duration // own-position push to the server
}

// Config captures everything dispatch needs to reach the backend and the
// directions provider.
type Config struct {
	APIBase       string
	MapsAPIKey    string
	LocationFile  string
	DefaultCenter geo.LatLng
	Intervals     Intervals
}

const (
	defaultConfigPath = "~/.config/dispatch/config.toml"
	defaultAPIBase    = "https://vps.logitrack.site:40761"

	mapsKeyEnv = "DISPATCH_MAPS_API_KEY"
)

var defaultIntervals = Intervals{
	Couriers:        5 * time.Second,
	Stats:           60 * time.Second,
	SelectedCourier: 30 * time.Second,
	Geolocation:     15 * time.Second,
	LocationReport:  30 * time.Second,
}

// Load locates and parses the dispatch config, falling back to defaults when
// missing. A .env file in the working directory and the process environment
// are consulted for the maps API key, with the environment winning over the
// config file.
func Load(path string) (Config, error) {
	// Missing .env is the normal case; only explicit values matter.
	_ = godotenv.Load()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBase:       defaultAPIBase,
		DefaultCenter: geo.DefaultCenter,
		Intervals:     defaultIntervals,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase      string  `toml:"api_base"`
		MapsAPIKey   string  `toml:"maps_api_key"`
		LocationFile string  `toml:"location_file"`
		CenterLat    float64 `toml:"center_lat"`
		CenterLng    float64 `toml:"center_lng"`
		CourierPoll  int     `toml:"courier_poll_seconds"`
		StatsPoll    int     `toml:"stats_poll_seconds"`
		SelectedPoll int     `toml:"selected_poll_seconds"`
		GeoPoll      int     `toml:"geolocation_poll_seconds"`
		ReportPoll   int     `toml:"location_report_seconds"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if base := strings.TrimSpace(raw.APIBase); base != "" {
		cfg.APIBase = base
	}
	cfg.MapsAPIKey = strings.TrimSpace(raw.MapsAPIKey)
	if loc := strings.TrimSpace(raw.LocationFile); loc != "" {
		cfg.LocationFile = mustExpand(loc)
	}
	if raw.CenterLat != 0 || raw.CenterLng != 0 {
		cfg.DefaultCenter = geo.LatLng{Lat: raw.CenterLat, Lng: raw.CenterLng}
	}

	applySeconds(&cfg.Intervals.Couriers, raw.CourierPoll)
	applySeconds(&cfg.Intervals.Stats, raw.StatsPoll)
	applySeconds(&cfg.Intervals.SelectedCourier, raw.SelectedPoll)
	applySeconds(&cfg.Intervals.Geolocation, raw.GeoPoll)
	applySeconds(&cfg.Intervals.LocationReport, raw.ReportPoll)

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if key := strings.TrimSpace(os.Getenv(mapsKeyEnv)); key != "" {
		cfg.MapsAPIKey = key
	}
}

func applySeconds(dst *time.Duration, seconds int) {
	if seconds > 0 {
		*dst = time.Duration(seconds) * time.Second
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
