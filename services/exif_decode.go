package services

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/vista/models"
)

// DecodeEXIF locates the EXIF segment in a JPEG and reconstructs the
// metadata record the encoder would have produced. Container problems (not a
// JPEG, no EXIF segment, corrupt TIFF structure) are hard errors; individual
// missing or foreign fields degrade to their documented defaults, since the
// segment may have been written by another tool.
func DecodeEXIF(jpegBytes []byte) (models.PhotoMetadata, error) {
	seg, err := FindEXIFSegment(jpegBytes)
	if err != nil {
		return models.PhotoMetadata{}, err
	}
	return DecodeEXIFSegment(seg)
}

// DecodeEXIFSegment parses a raw EXIF segment (an APP1 payload). The optional
// "Exif\0\0" prefix is stripped if present; otherwise the segment must start
// directly with a TIFF byte-order marker.
func DecodeEXIFSegment(seg []byte) (models.PhotoMetadata, error) {
	tiff := seg
	if bytes.HasPrefix(seg, exifHeader) {
		tiff = seg[len(exifHeader):]
	} else if !hasTIFFPrefix(seg) {
		return models.PhotoMetadata{}, ErrInvalidExifFormat
	}
	return parseTIFF(tiff)
}

func hasTIFFPrefix(b []byte) bool {
	if len(b) < 4 {
		return false
	}
	return (b[0] == 'I' && b[1] == 'I') || (b[0] == 'M' && b[1] == 'M')
}

// parsedField is a directory entry with its value bytes already resolved,
// whether they were inline or behind an offset.
type parsedField struct {
	tag   uint16
	typ   fieldType
	count uint32
	data  []byte
}

type tiffReader struct {
	data []byte
	bo   binary.ByteOrder
}

func parseTIFF(data []byte) (models.PhotoMetadata, error) {
	meta := models.PhotoMetadata{
		LocationSource: models.ProvenanceUnknown,
		BearingSource:  models.ProvenanceUnknown,
	}

	if len(data) < tiffHeaderLen {
		return meta, fmt.Errorf("%w: header truncated", ErrMalformedTIFF)
	}
	r := &tiffReader{data: data}
	switch {
	case data[0] == 'I' && data[1] == 'I':
		r.bo = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		r.bo = binary.BigEndian
	default:
		return meta, ErrInvalidExifFormat
	}
	if r.bo.Uint16(data[2:4]) != tiffMagic {
		return meta, fmt.Errorf("%w: bad magic", ErrMalformedTIFF)
	}

	ifd0, err := r.readIFD(r.bo.Uint32(data[4:8]))
	if err != nil {
		return meta, err
	}

	for _, f := range ifd0 {
		switch f.tag {
		case tagOrientation:
			if v, ok := f.shortValue(r.bo); ok {
				o := v
				meta.Orientation = &o
			}
		case tagDateTime:
			if meta.CapturedAt == 0 {
				meta.CapturedAt = parseEXIFDate(f.stringValue())
			}
		case tagDateTimeOriginal:
			if meta.CapturedAt == 0 {
				meta.CapturedAt = parseEXIFDate(f.stringValue())
			}
		case tagUserComment:
			if p, ok := decodeUserComment(f.data); ok {
				meta.LocationSource = p.LocationSource
				meta.BearingSource = p.BearingSource
			}
		case tagGPSInfo:
			if off, ok := f.longValue(r.bo); ok {
				gps, err := r.readIFD(off)
				if err != nil {
					return meta, err
				}
				r.applyGPS(gps, &meta)
			}
		}
	}

	return meta, nil
}

func (r *tiffReader) applyGPS(fields []parsedField, meta *models.PhotoMetadata) {
	var latRef, lonRef string
	var lat, lon []rational
	altRef := byte(0)

	for _, f := range fields {
		switch f.tag {
		case tagGPSLatitudeRef:
			latRef = f.stringValue()
		case tagGPSLatitude:
			lat = f.rationalValues(r.bo)
		case tagGPSLongitudeRef:
			lonRef = f.stringValue()
		case tagGPSLongitude:
			lon = f.rationalValues(r.bo)
		case tagGPSAltitudeRef:
			if len(f.data) > 0 {
				altRef = f.data[0]
			}
		case tagGPSAltitude:
			if rs := f.rationalValues(r.bo); len(rs) > 0 {
				alt := rs[0].float()
				if altRef == 1 {
					alt = -alt
				}
				meta.Altitude = &alt
			}
		case tagGPSImgDirection:
			if rs := f.rationalValues(r.bo); len(rs) > 0 {
				bearing := rs[0].float()
				meta.Bearing = &bearing
			}
		}
	}

	if len(lat) >= 3 {
		meta.Latitude = dmsToDegrees(lat)
		if latRef == "S" {
			meta.Latitude = -meta.Latitude
		}
	}
	if len(lon) >= 3 {
		meta.Longitude = dmsToDegrees(lon)
		if lonRef == "W" {
			meta.Longitude = -meta.Longitude
		}
	}
}

// readIFD resolves every entry of the directory at off. A truncated table or
// an out-of-bounds value offset means the container itself is corrupt.
func (r *tiffReader) readIFD(off uint32) ([]parsedField, error) {
	data := r.data
	if int(off)+2 > len(data) {
		return nil, fmt.Errorf("%w: ifd offset %d out of bounds", ErrMalformedTIFF, off)
	}
	n := int(r.bo.Uint16(data[off:]))
	base := int(off) + 2
	if base+12*n > len(data) {
		return nil, fmt.Errorf("%w: ifd table truncated", ErrMalformedTIFF)
	}

	fields := make([]parsedField, 0, n)
	for i := 0; i < n; i++ {
		e := data[base+12*i : base+12*i+12]
		f := parsedField{
			tag:   r.bo.Uint16(e[0:2]),
			typ:   fieldType(r.bo.Uint16(e[2:4])),
			count: r.bo.Uint32(e[4:8]),
		}
		unit := f.typ.size()
		if unit == 0 {
			// Unknown value type from a foreign writer; skip the entry.
			continue
		}
		size := unit * int(f.count)
		if size <= 4 {
			f.data = e[8 : 8+size]
		} else {
			valOff := int(r.bo.Uint32(e[8:12]))
			if valOff+size > len(data) {
				return nil, fmt.Errorf("%w: value offset %d out of bounds", ErrMalformedTIFF, valOff)
			}
			f.data = data[valOff : valOff+size]
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (f parsedField) stringValue() string {
	if f.typ != typeASCII {
		return ""
	}
	return string(bytes.TrimRight(f.data, "\x00"))
}

func (f parsedField) shortValue(bo binary.ByteOrder) (uint16, bool) {
	if f.typ != typeShort || len(f.data) < 2 {
		return 0, false
	}
	return bo.Uint16(f.data), true
}

func (f parsedField) longValue(bo binary.ByteOrder) (uint32, bool) {
	if f.typ != typeLong || len(f.data) < 4 {
		return 0, false
	}
	return bo.Uint32(f.data), true
}

func (f parsedField) rationalValues(bo binary.ByteOrder) []rational {
	if f.typ != typeRational {
		return nil
	}
	rs := make([]rational, 0, len(f.data)/8)
	for i := 0; i+8 <= len(f.data); i += 8 {
		rs = append(rs, rational{num: bo.Uint32(f.data[i : i+4]), den: bo.Uint32(f.data[i+4 : i+8])})
	}
	return rs
}

func dmsToDegrees(rs []rational) float64 {
	return rs[0].float() + rs[1].float()/60 + rs[2].float()/3600
}

// parseEXIFDate returns Unix seconds for a "YYYY:MM:DD HH:MM:SS" value, or 0
// if it does not parse.
func parseEXIFDate(s string) int64 {
	t, err := time.Parse(exifDateFormat, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// decodeUserComment strips the 8-byte character-code header and attempts a
// JSON parse. A comment written by another tool simply yields no provenance.
func decodeUserComment(data []byte) (models.Provenance, bool) {
	if len(data) <= 8 {
		return models.Provenance{}, false
	}
	var p models.Provenance
	if err := json.Unmarshal(bytes.TrimRight(data[8:], "\x00"), &p); err != nil {
		return models.Provenance{}, false
	}
	if p.LocationSource == "" {
		p.LocationSource = models.ProvenanceUnknown
	}
	if p.BearingSource == "" {
		p.BearingSource = models.ProvenanceUnknown
	}
	return p, true
}
