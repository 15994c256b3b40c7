package services

import (
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/yourusername/vista/models"
)

// EncodeEXIF builds a complete EXIF/TIFF segment (no APP1 framing) from the
// given metadata. The caller is expected to normalize the record first; see
// NormalizeMetadata. The output is deterministic for identical input, except
// that a non-positive CapturedAt falls back to the current time.
func EncodeEXIF(meta models.PhotoMetadata) []byte {
	ts := meta.CapturedAt
	if ts <= 0 {
		ts = time.Now().Unix()
		log.Printf("exif: missing capture timestamp, falling back to current time")
	}
	t := time.Unix(ts, 0).UTC()
	datetime := t.Format(exifDateFormat)

	ifd0 := &ifdBuilder{}
	orientation := uint16(1)
	if meta.Orientation != nil {
		orientation = *meta.Orientation
	}
	ifd0.addShort(tagOrientation, orientation)
	ifd0.addASCII(tagDateTime, datetime)
	ifd0.addLong(tagGPSInfo, 0) // resolved by buildTIFF
	ifd0.addASCII(tagDateTimeOriginal, datetime)
	ifd0.addUndefined(tagUserComment, encodeUserComment(meta.Provenance()))

	gps := &ifdBuilder{}
	gps.addBytes(tagGPSVersionID, []byte{2, 3, 0, 0})

	latRef := "N"
	if meta.Latitude < 0 {
		latRef = "S"
	}
	gps.addASCII(tagGPSLatitudeRef, latRef)
	gps.addRationals(tagGPSLatitude, degreesToDMS(math.Abs(meta.Latitude))...)

	// Signed [-180,180] convention: west iff negative.
	lonRef := "E"
	if meta.Longitude < 0 {
		lonRef = "W"
	}
	gps.addASCII(tagGPSLongitudeRef, lonRef)
	gps.addRationals(tagGPSLongitude, degreesToDMS(math.Abs(meta.Longitude))...)

	if meta.Altitude != nil {
		// Reference 0 = above sea level; the value itself is unsigned.
		gps.addBytes(tagGPSAltitudeRef, []byte{0})
		gps.addRationals(tagGPSAltitude, rational{
			num: uint32(math.Round(math.Abs(*meta.Altitude) * 1000)),
			den: 1000,
		})
	}

	gps.addRationals(tagGPSTimeStamp,
		rational{num: uint32(t.Hour()), den: 1},
		rational{num: uint32(t.Minute()), den: 1},
		rational{num: uint32(t.Second()), den: 1},
	)

	if meta.Bearing != nil {
		bearing := rational{num: uint32(math.Round(*meta.Bearing * 100)), den: 100}
		// Always true north; duplicated into the destination-bearing pair so
		// viewers reading either tag agree.
		gps.addASCII(tagGPSImgDirectionRef, "T")
		gps.addRationals(tagGPSImgDirection, bearing)
		gps.addASCII(tagGPSDestBearingRef, "T")
		gps.addRationals(tagGPSDestBearing, bearing)
	}

	return buildTIFF(ifd0, gps)
}

// EmbedMetadata normalizes the metadata, encodes it as an EXIF segment, and
// splices that segment into the JPEG, replacing any EXIF data already
// present. Returns the tagged JPEG and the normalized record it carries.
func EmbedMetadata(jpegBytes []byte, meta models.PhotoMetadata) ([]byte, models.PhotoMetadata, error) {
	normalized := NormalizeMetadata(meta)
	tagged, err := SpliceEXIF(jpegBytes, EncodeEXIF(normalized))
	if err != nil {
		return nil, models.PhotoMetadata{}, err
	}
	return tagged, normalized, nil
}

// degreesToDMS splits an unsigned decimal degree value into the three-
// rational degrees/minutes/seconds encoding, seconds carrying dmsSecondsDen
// precision.
func degreesToDMS(v float64) []rational {
	deg := math.Floor(v)
	min := math.Floor((v - deg) * 60)
	sec := (v-deg)*3600 - min*60
	return []rational{
		{num: uint32(deg), den: 1},
		{num: uint32(min), den: 1},
		{num: uint32(math.Round(sec * dmsSecondsDen)), den: dmsSecondsDen},
	}
}

// encodeUserComment serializes provenance as compact JSON behind the 8-byte
// ASCII character-code header. Payloads over maxUserCommentLen are truncated;
// the decoder treats an unparseable comment as absent provenance.
func encodeUserComment(p models.Provenance) []byte {
	payload, err := json.Marshal(p)
	if err != nil {
		payload = []byte("{}")
	}
	if len(payload) > maxUserCommentLen {
		log.Printf("exif: provenance comment %d bytes, truncating to %d", len(payload), maxUserCommentLen)
		payload = payload[:maxUserCommentLen]
	}
	out := make([]byte, 0, len(userCommentASCII)+len(payload))
	out = append(out, userCommentASCII...)
	out = append(out, payload...)
	return out
}
