package services

import (
	"bytes"
	"fmt"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1
	markerTEM  = 0x01
)

// exifHeader is the APP1 payload prefix identifying an EXIF segment.
var exifHeader = []byte("Exif\x00\x00")

// xmpHeader is the APP1 payload prefix identifying an XMP packet.
var xmpHeader = []byte("http://ns.adobe.com/xap/1.0/\x00")

// walkSegments iterates the marker segments between SOI and SOS, invoking fn
// with the raw segment bytes (marker, length, payload) and the payload alone.
// It returns the offset where the entropy-coded remainder begins (the SOS
// marker, or EOI/end of stream for images without a scan).
func walkSegments(data []byte, fn func(marker byte, seg, payload []byte) error) (int, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return 0, ErrNotJPEG
	}
	i := 2
	for i < len(data) {
		if data[i] != 0xFF {
			return 0, fmt.Errorf("%w: expected marker at offset %d", ErrNotJPEG, i)
		}
		if i+1 >= len(data) {
			return 0, fmt.Errorf("%w: truncated marker", ErrNotJPEG)
		}
		marker := data[i+1]
		switch {
		case marker == 0xFF:
			// fill byte
			i++
			continue
		case marker == markerSOS || marker == markerEOI:
			return i, nil
		case marker == markerTEM || (marker >= 0xD0 && marker <= 0xD7):
			// standalone markers carry no length field
			if err := fn(marker, data[i:i+2], nil); err != nil {
				return 0, err
			}
			i += 2
			continue
		}
		if i+4 > len(data) {
			return 0, fmt.Errorf("%w: truncated segment header", ErrNotJPEG)
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		if length < 2 || i+2+length > len(data) {
			return 0, fmt.Errorf("%w: segment length out of bounds", ErrNotJPEG)
		}
		end := i + 2 + length
		if err := fn(marker, data[i:end], data[i+4:end]); err != nil {
			return 0, err
		}
		i = end
	}
	return i, nil
}

// isEXIFPayload reports whether an APP1 payload is an EXIF segment: either
// "Exif\0\0"-prefixed or starting directly with a TIFF byte-order marker.
func isEXIFPayload(p []byte) bool {
	if bytes.HasPrefix(p, exifHeader) {
		return true
	}
	return len(p) >= 4 &&
		((p[0] == 'I' && p[1] == 'I' && p[2] == 0x2A && p[3] == 0x00) ||
			(p[0] == 'M' && p[1] == 'M' && p[2] == 0x00 && p[3] == 0x2A))
}

// SpliceEXIF returns a copy of the JPEG with its EXIF application segment
// replaced by exifRaw (a bare TIFF stream; the "Exif\0\0" header and APP1
// framing are added here). Every other segment, including the entropy-coded
// scan data, is preserved byte-for-byte. The new APP1 segment is placed
// immediately after SOI.
func SpliceEXIF(data []byte, exifRaw []byte) ([]byte, error) {
	content := make([]byte, 0, len(exifHeader)+len(exifRaw))
	content = append(content, exifHeader...)
	content = append(content, exifRaw...)
	app1 := buildAPP1Segment(content)
	if app1 == nil {
		return nil, fmt.Errorf("exif segment exceeds app1 capacity")
	}

	var kept [][]byte
	scanStart, err := walkSegments(data, func(marker byte, seg, payload []byte) error {
		if marker == markerAPP1 && isEXIFPayload(payload) {
			return nil // drop the old EXIF segment
		}
		kept = append(kept, seg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(data)+len(app1))
	out = append(out, data[:2]...) // SOI
	out = append(out, app1...)
	for _, seg := range kept {
		out = append(out, seg...)
	}
	out = append(out, data[scanStart:]...)
	return out, nil
}

// FindEXIFSegment returns the payload of the first EXIF APP1 segment in the
// JPEG, or ErrNoExifData if the image carries none.
func FindEXIFSegment(data []byte) ([]byte, error) {
	var found []byte
	_, err := walkSegments(data, func(marker byte, seg, payload []byte) error {
		if found == nil && marker == markerAPP1 && isEXIFPayload(payload) {
			found = payload
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNoExifData
	}
	return found, nil
}

// StripMetadata returns a copy of the JPEG with all EXIF and XMP APP1
// segments removed, leaving the image data and remaining segments untouched.
// Used when sharing a photo without its position.
func StripMetadata(data []byte) ([]byte, error) {
	var kept [][]byte
	scanStart, err := walkSegments(data, func(marker byte, seg, payload []byte) error {
		if marker == markerAPP1 && (isEXIFPayload(payload) || bytes.HasPrefix(payload, xmpHeader)) {
			return nil
		}
		kept = append(kept, seg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(data))
	out = append(out, data[:2]...)
	for _, seg := range kept {
		out = append(out, seg...)
	}
	out = append(out, data[scanStart:]...)
	return out, nil
}

// buildAPP1Segment constructs a JPEG APP1 segment from the provided content
// body. The length field includes its own two bytes per the JPEG
// specification. If the segment would be too large (> 65535 bytes including
// length), returns nil.
func buildAPP1Segment(content []byte) []byte {
	segLen := len(content) + 2
	if segLen > 0xFFFF {
		return nil
	}
	seg := []byte{0xFF, markerAPP1, byte(segLen >> 8), byte(segLen & 0xFF)}
	seg = append(seg, content...)
	return seg
}
