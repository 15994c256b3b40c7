package services

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/vista/models"
)

// makeTestJPEG encodes a small gradient image so segment-walk tests run
// against a real JPEG stream.
func makeTestJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 10), 128, 255})
		}
	}
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	assert.NoError(t, err)
	return buf.Bytes()
}

func TestEncodeDecodeRoundTripMinimal(t *testing.T) {
	meta := models.PhotoMetadata{
		Latitude:       48.8566,
		Longitude:      2.3522,
		CapturedAt:     1700000000,
		Accuracy:       12.5,
		LocationSource: "gps",
		BearingSource:  "compass",
	}

	raw := EncodeEXIF(meta)
	got, err := DecodeEXIFSegment(raw)
	assert.NoError(t, err)

	assert.InDelta(t, meta.Latitude, got.Latitude, 1e-6)
	assert.InDelta(t, meta.Longitude, got.Longitude, 1e-6)
	assert.Equal(t, meta.CapturedAt, got.CapturedAt)
	assert.Equal(t, "gps", got.LocationSource)
	assert.Equal(t, "compass", got.BearingSource)
	assert.Equal(t, uint16(1), *got.Orientation)
	assert.Nil(t, got.Altitude)
	assert.Nil(t, got.Bearing)
}

func TestEncodeDecodeRoundTripFullRecord(t *testing.T) {
	meta := models.PhotoMetadata{
		Latitude:       48.8566,
		Longitude:      2.3522,
		Altitude:       f64(35.0),
		Bearing:        f64(274.5),
		CapturedAt:     1700000000,
		LocationSource: "fused",
		BearingSource:  "compass",
		Orientation:    u16(6),
	}

	got, err := DecodeEXIFSegment(EncodeEXIF(meta))
	assert.NoError(t, err)

	assert.InDelta(t, 48.8566, got.Latitude, 1e-6)
	assert.InDelta(t, 2.3522, got.Longitude, 1e-6)
	assert.InDelta(t, 35.0, *got.Altitude, 1e-3)
	assert.InDelta(t, 274.5, *got.Bearing, 1e-2)
	assert.Equal(t, uint16(6), *got.Orientation)
	assert.Equal(t, "fused", got.LocationSource)
}

func TestEncodeDecodeSouthernWestern(t *testing.T) {
	meta := models.PhotoMetadata{
		Latitude:   -33.8688,
		Longitude:  -151.2093,
		CapturedAt: 1700000000,
	}

	got, err := DecodeEXIFSegment(EncodeEXIF(meta))
	assert.NoError(t, err)
	assert.InDelta(t, -33.8688, got.Latitude, 1e-6)
	assert.InDelta(t, -151.2093, got.Longitude, 1e-6)
}

func TestEncodeDeterministic(t *testing.T) {
	meta := models.PhotoMetadata{
		Latitude:   10.5,
		Longitude:  -20.25,
		Bearing:    f64(90),
		CapturedAt: 1700000000,
	}
	assert.Equal(t, EncodeEXIF(meta), EncodeEXIF(meta))
}

// readEntries parses the directory table at off and returns the tags in file
// order, plus the inline LONG value of wantTag if present.
func readEntries(t *testing.T, raw []byte, off uint32, wantTag uint16) ([]uint16, uint32) {
	t.Helper()
	n := int(binary.LittleEndian.Uint16(raw[off:]))
	tags := make([]uint16, 0, n)
	var wanted uint32
	for i := 0; i < n; i++ {
		e := raw[int(off)+2+12*i:]
		tag := binary.LittleEndian.Uint16(e[0:2])
		tags = append(tags, tag)
		if tag == wantTag {
			wanted = binary.LittleEndian.Uint32(e[8:12])
		}
	}
	return tags, wanted
}

func TestEncodedTagsAscending(t *testing.T) {
	cases := map[string]models.PhotoMetadata{
		"bare":             {Latitude: 48.8566, Longitude: 2.3522, CapturedAt: 1700000000},
		"altitude":         {Latitude: 48.8566, Longitude: 2.3522, Altitude: f64(12), CapturedAt: 1700000000},
		"bearing":          {Latitude: 48.8566, Longitude: 2.3522, Bearing: f64(1), CapturedAt: 1700000000},
		"altitude+bearing": {Latitude: 48.8566, Longitude: 2.3522, Altitude: f64(12), Bearing: f64(1), CapturedAt: 1700000000},
	}

	for name, meta := range cases {
		t.Run(name, func(t *testing.T) {
			raw := EncodeEXIF(meta)

			assert.Equal(t, byte('I'), raw[0])
			assert.Equal(t, uint16(tiffMagic), binary.LittleEndian.Uint16(raw[2:4]))
			assert.Equal(t, uint32(tiffHeaderLen), binary.LittleEndian.Uint32(raw[4:8]))

			ifd0Tags, gpsOffset := readEntries(t, raw, tiffHeaderLen, tagGPSInfo)
			for i := 1; i < len(ifd0Tags); i++ {
				assert.Less(t, ifd0Tags[i-1], ifd0Tags[i])
			}
			assert.NotZero(t, gpsOffset)

			gpsTags, _ := readEntries(t, raw, gpsOffset, 0xFFFF)
			assert.Equal(t, uint16(tagGPSVersionID), gpsTags[0])
			for i := 1; i < len(gpsTags); i++ {
				assert.Less(t, gpsTags[i-1], gpsTags[i])
			}

			// Every out-of-line value offset must resolve inside the buffer;
			// readIFD rejects anything out of bounds.
			r := &tiffReader{data: raw, bo: binary.LittleEndian}
			_, err := r.readIFD(tiffHeaderLen)
			assert.NoError(t, err)
			_, err = r.readIFD(gpsOffset)
			assert.NoError(t, err)
		})
	}
}

func TestGPSPointerLandsOnDirectory(t *testing.T) {
	raw := EncodeEXIF(models.PhotoMetadata{Latitude: 1, Longitude: 2, CapturedAt: 1700000000})

	_, gpsOffset := readEntries(t, raw, tiffHeaderLen, tagGPSInfo)
	assert.NotZero(t, gpsOffset)
	// The pointer must land past IFD0 and still inside the stream.
	assert.Greater(t, int(gpsOffset), tiffHeaderLen)
	assert.Less(t, int(gpsOffset)+2, len(raw))

	r := &tiffReader{data: raw, bo: binary.LittleEndian}
	fields, err := r.readIFD(gpsOffset)
	assert.NoError(t, err)
	assert.NotEmpty(t, fields)
	assert.Equal(t, tagGPSVersionID, fields[0].tag)
}

func TestUserCommentTruncation(t *testing.T) {
	meta := models.PhotoMetadata{
		Latitude:       1,
		Longitude:      2,
		CapturedAt:     1700000000,
		LocationSource: strings.Repeat("x", 2000),
	}
	raw := EncodeEXIF(meta)

	got, err := DecodeEXIFSegment(raw)
	assert.NoError(t, err)
	// The truncated JSON no longer parses, so provenance degrades to unknown.
	assert.Equal(t, models.ProvenanceUnknown, got.LocationSource)
	assert.Equal(t, models.ProvenanceUnknown, got.BearingSource)
}

func TestDecodeWithoutGPSOrComment(t *testing.T) {
	// A foreign writer's minimal directory: orientation and timestamp only.
	ifd0 := &ifdBuilder{}
	ifd0.addShort(tagOrientation, 3)
	ifd0.addASCII(tagDateTime, "2023:11:14 22:13:20")
	raw := buildTIFF(ifd0, &ifdBuilder{})

	got, err := DecodeEXIFSegment(raw)
	assert.NoError(t, err)
	assert.Equal(t, uint16(3), *got.Orientation)
	assert.Equal(t, int64(1700000000), got.CapturedAt)
	assert.Equal(t, 0.0, got.Latitude)
	assert.Equal(t, models.ProvenanceUnknown, got.LocationSource)
}

func TestDecodeBigEndianOrientation(t *testing.T) {
	raw := []byte{
		'M', 'M', 0x00, 0x2A, // header
		0x00, 0x00, 0x00, 0x08, // IFD0 at 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x06, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	got, err := DecodeEXIFSegment(raw)
	assert.NoError(t, err)
	assert.Equal(t, uint16(6), *got.Orientation)
}

func TestDecodeMalformedSegments(t *testing.T) {
	_, err := DecodeEXIFSegment([]byte("XXxxxxxx"))
	assert.ErrorIs(t, err, ErrInvalidExifFormat)

	_, err = DecodeEXIFSegment([]byte{'I', 'I', 42, 0})
	assert.ErrorIs(t, err, ErrMalformedTIFF)

	// Valid header pointing at a directory outside the stream.
	bad := []byte{'I', 'I', 42, 0, 0xFF, 0x00, 0x00, 0x00}
	_, err = DecodeEXIFSegment(bad)
	assert.ErrorIs(t, err, ErrMalformedTIFF)

	// Entry whose value offset runs past the end.
	ifd0 := &ifdBuilder{}
	ifd0.addASCII(tagDateTime, "2023:11:14 22:13:20")
	raw := buildTIFF(ifd0, &ifdBuilder{})
	truncated := raw[:len(raw)-10]
	_, err = DecodeEXIFSegment(truncated)
	assert.ErrorIs(t, err, ErrMalformedTIFF)
}

func TestEmbedMetadataRoundTrip(t *testing.T) {
	jpg := makeTestJPEG(t)
	meta := models.PhotoMetadata{
		Latitude:       48.8566,
		Longitude:      2.3522,
		Altitude:       f64(35),
		Bearing:        f64(274.5),
		CapturedAt:     1700000000,
		Accuracy:       8,
		LocationSource: "gps",
		BearingSource:  "compass",
	}

	tagged, normalized, err := EmbedMetadata(jpg, meta)
	assert.NoError(t, err)
	assert.Equal(t, meta.Latitude, normalized.Latitude)

	got, err := DecodeEXIF(tagged)
	assert.NoError(t, err)
	assert.InDelta(t, meta.Latitude, got.Latitude, 1e-6)
	assert.InDelta(t, meta.Longitude, got.Longitude, 1e-6)
	assert.InDelta(t, 274.5, *got.Bearing, 1e-2)
	assert.Equal(t, "gps", got.LocationSource)

	// The tagged file still decodes as an image.
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(tagged))
	assert.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 24, cfg.Height)
}

func TestEmbedMetadataIdempotent(t *testing.T) {
	jpg := makeTestJPEG(t)
	meta := models.PhotoMetadata{Latitude: 10, Longitude: 20, CapturedAt: 1700000000}

	once, normalized, err := EmbedMetadata(jpg, meta)
	assert.NoError(t, err)
	twice, _, err := EmbedMetadata(once, normalized)
	assert.NoError(t, err)
	assert.Equal(t, once, twice)
}
