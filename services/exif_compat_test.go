package services

import (
	"bytes"
	"testing"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/vista/models"
)

// An independent EXIF library must be able to read positions out of our
// output, otherwise gallery apps and photo tools would show nothing.
func TestForeignReaderSeesPosition(t *testing.T) {
	jpg := makeTestJPEG(t)
	meta := models.PhotoMetadata{
		Latitude:   48.8566,
		Longitude:  2.3522,
		Bearing:    f64(274.5),
		CapturedAt: 1700000000,
	}

	tagged, _, err := EmbedMetadata(jpg, meta)
	assert.NoError(t, err)

	x, err := exif.Decode(bytes.NewReader(tagged))
	assert.NoError(t, err)

	lat, lon, err := x.LatLong()
	assert.NoError(t, err)
	assert.InDelta(t, 48.8566, lat, 1e-4)
	assert.InDelta(t, 2.3522, lon, 1e-4)
}

func TestForeignReaderSouthWest(t *testing.T) {
	jpg := makeTestJPEG(t)
	meta := models.PhotoMetadata{
		Latitude:   -33.8688,
		Longitude:  -151.2093,
		CapturedAt: 1700000000,
	}

	tagged, _, err := EmbedMetadata(jpg, meta)
	assert.NoError(t, err)

	x, err := exif.Decode(bytes.NewReader(tagged))
	assert.NoError(t, err)

	lat, lon, err := x.LatLong()
	assert.NoError(t, err)
	assert.InDelta(t, -33.8688, lat, 1e-4)
	assert.InDelta(t, -151.2093, lon, 1e-4)
}
