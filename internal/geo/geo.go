package geo

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const earthRadiusKm = 6371.0

// SignificanceThreshold is the minimum coordinate delta, in decimal degrees,
// that justifies recomputing a derived route. Movement below this threshold
// is treated as GPS jitter.
const SignificanceThreshold = 0.001

// LatLng is a position in decimal degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// String renders the position in "lat,lng" form as the directions API expects.
func (p LatLng) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// MovedSignificantly reports whether the position differs from prev by more
// than the significance threshold on either axis.
func (p LatLng) MovedSignificantly(prev LatLng) bool {
	return math.Abs(p.Lat-prev.Lat) > SignificanceThreshold ||
		math.Abs(p.Lng-prev.Lng) > SignificanceThreshold
}

// DistanceKm returns the great-circle distance in kilometres between p and other.
func (p LatLng) DistanceKm(other LatLng) float64 {
	dLat := degreesToRadians(other.Lat - p.Lat)
	dLng := degreesToRadians(other.Lng - p.Lng)

	rLat1 := degreesToRadians(p.Lat)
	rLat2 := degreesToRadians(other.Lat)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Degrees is a coordinate component that the API serves inconsistently:
// sometimes a JSON number, sometimes a quoted string, sometimes null or
// missing before a courier's first location report. Decoding never fails the
// surrounding record; an unusable value simply comes back invalid so the
// entry can stay in list views while being skipped on the map.
type Degrees struct {
	Value float64
	Valid bool
}

// UnmarshalJSON accepts 53.43, "53.43" and null.
func (d *Degrees) UnmarshalJSON(data []byte) error {
	d.Value, d.Valid = 0, false

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		trimmed = strings.TrimSpace(s)
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	d.Value, d.Valid = value, true
	return nil
}

// MarshalJSON writes the plain number, or null when invalid.
func (d Degrees) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Value)
}

// Position combines two components into a LatLng when both are valid.
func Position(lat, lng Degrees) (LatLng, bool) {
	if !lat.Valid || !lng.Valid {
		return LatLng{}, false
	}
	return LatLng{Lat: lat.Value, Lng: lng.Value}, true
}
