package services

import (
	"encoding/json"

	"github.com/dsoprea/go-exif/v3"
)

// InspectEXIF returns a JSON object with every EXIF tag and formatted value
// found in the image, using a general-purpose reader so segments written by
// other cameras and editors are covered. Returns JSON null when the image has
// no readable EXIF data.
func InspectEXIF(imageBytes []byte) json.RawMessage {
	rawExif, err := exif.SearchAndExtractExif(imageBytes)
	if err != nil {
		return json.RawMessage("null")
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return json.RawMessage("null")
	}
	m := map[string]interface{}{}
	for _, e := range entries {
		// TagName might repeat; accumulate with suffix index if needed
		key := e.TagName
		if _, exists := m[key]; exists {
			key = key + "_dup"
		}
		m[key] = e.Formatted
	}
	b, err := json.Marshal(m)
	if err != nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}
