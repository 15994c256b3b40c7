package services

import "errors"

// TIFF field types used in EXIF directory entries.
type fieldType uint16

const (
	typeByte      fieldType = 1
	typeASCII     fieldType = 2
	typeShort     fieldType = 3
	typeLong      fieldType = 4
	typeRational  fieldType = 5
	typeUndefined fieldType = 7
)

// size returns the byte width of a single value of this type, or 0 for types
// this codec does not handle.
func (t fieldType) size() int {
	switch t {
	case typeByte, typeASCII, typeUndefined:
		return 1
	case typeShort:
		return 2
	case typeLong:
		return 4
	case typeRational:
		return 8
	}
	return 0
}

// rational is the TIFF RATIONAL value: an unsigned fraction.
type rational struct {
	num uint32
	den uint32
}

func (r rational) float() float64 {
	if r.den == 0 {
		return 0
	}
	return float64(r.num) / float64(r.den)
}

// IFD0 tags written by the encoder.
const (
	tagOrientation      uint16 = 0x0112
	tagDateTime         uint16 = 0x0132
	tagGPSInfo          uint16 = 0x8825
	tagDateTimeOriginal uint16 = 0x9003
	tagUserComment      uint16 = 0x9286
)

// GPS IFD tags.
const (
	tagGPSVersionID       uint16 = 0x0000
	tagGPSLatitudeRef     uint16 = 0x0001
	tagGPSLatitude        uint16 = 0x0002
	tagGPSLongitudeRef    uint16 = 0x0003
	tagGPSLongitude       uint16 = 0x0004
	tagGPSAltitudeRef     uint16 = 0x0005
	tagGPSAltitude        uint16 = 0x0006
	tagGPSTimeStamp       uint16 = 0x0007
	tagGPSImgDirectionRef uint16 = 0x0010
	tagGPSImgDirection    uint16 = 0x0011
	tagGPSDestBearingRef  uint16 = 0x0017
	tagGPSDestBearing     uint16 = 0x0018
)

const (
	// exifDateFormat is the 19-character EXIF datetime layout; stored with a
	// trailing NUL for a 20-byte ASCII value.
	exifDateFormat = "2006:01:02 15:04:05"

	// dmsSecondsDen fixes the precision of the DMS seconds rational. Encode
	// and decode must agree on this.
	dmsSecondsDen = 10000

	// maxUserCommentLen caps the provenance payload (excluding the 8-byte
	// character code header).
	maxUserCommentLen = 1000

	tiffHeaderLen = 8
	tiffMagic     = 42
)

// userCommentASCII is the EXIF character-code header marking an ASCII
// UserComment payload.
var userCommentASCII = []byte{'A', 'S', 'C', 'I', 'I', 0, 0, 0}

var (
	// ErrNotJPEG: the input bytes are not a well-formed JPEG stream.
	ErrNotJPEG = errors.New("not a valid jpeg stream")
	// ErrNoExifData: the JPEG carries no EXIF application segment.
	ErrNoExifData = errors.New("no exif data found")
	// ErrInvalidExifFormat: an EXIF segment is present but starts with
	// neither an "Exif\0\0" header nor a TIFF byte-order marker.
	ErrInvalidExifFormat = errors.New("invalid exif segment format")
	// ErrMalformedTIFF: the TIFF directory structure is corrupt.
	ErrMalformedTIFF = errors.New("malformed tiff structure")
)
