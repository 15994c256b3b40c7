package services

import (
	"log"
	"math"

	"github.com/yourusername/vista/models"
)

// Capture timestamps outside this window are suspicious but not fatal.
const (
	minCaptureTime = 0          // 1970-01-01
	maxCaptureTime = 4102444800 // 2100-01-01
)

// NormalizeMetadata returns a copy of the record corrected into the ranges
// the EXIF encoder expects. It never fails; every correction is logged.
// Applying it twice is a no-op.
func NormalizeMetadata(m models.PhotoMetadata) models.PhotoMetadata {
	out := m

	orientation := uint16(1)
	if m.Orientation != nil {
		switch *m.Orientation {
		case 1, 3, 6, 8:
			orientation = *m.Orientation
		default:
			log.Printf("metadata: orientation %d not in {1,3,6,8}, using 1", *m.Orientation)
		}
	}
	out.Orientation = &orientation

	if m.Latitude < -90 || m.Latitude > 90 {
		out.Latitude = math.Max(-90, math.Min(90, m.Latitude))
		log.Printf("metadata: latitude %.6f out of range, clamped to %.6f", m.Latitude, out.Latitude)
	}

	if m.Longitude < -180 || m.Longitude > 180 {
		out.Longitude = wrapLongitude(m.Longitude)
		log.Printf("metadata: longitude %.6f out of range, wrapped to %.6f", m.Longitude, out.Longitude)
	}

	if m.Bearing != nil {
		b := *m.Bearing
		if b < 0 || b >= 360 {
			b = math.Mod(math.Mod(b, 360)+360, 360)
			log.Printf("metadata: bearing %.2f out of range, wrapped to %.2f", *m.Bearing, b)
		}
		out.Bearing = &b
	}

	if m.Accuracy < 0 {
		out.Accuracy = 0
		log.Printf("metadata: negative accuracy %.2f clamped to 0", m.Accuracy)
	}

	if m.Altitude != nil && (*m.Altitude < -500 || *m.Altitude > 10000) {
		log.Printf("metadata: altitude %.1f m outside plausible range [-500,10000]", *m.Altitude)
	}

	if m.CapturedAt < minCaptureTime || m.CapturedAt > maxCaptureTime {
		log.Printf("metadata: capture timestamp %d outside 1970-2100 window", m.CapturedAt)
	}

	if out.LocationSource == "" {
		out.LocationSource = models.ProvenanceUnknown
	}
	if out.BearingSource == "" {
		out.BearingSource = models.ProvenanceUnknown
	}

	return out
}

func wrapLongitude(lon float64) float64 {
	return math.Mod(math.Mod(lon+180, 360)+360, 360) - 180
}
