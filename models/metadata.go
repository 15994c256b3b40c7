package models

// PhotoMetadata is the capture-time record embedded into and recovered from a
// photo's EXIF segment. CapturedAt is Unix seconds, UTC. Optional fields use
// pointers; nil means the capture had no such reading.
type PhotoMetadata struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Altitude       *float64 `json:"altitude,omitempty"`
	Bearing        *float64 `json:"bearing,omitempty"`
	CapturedAt     int64    `json:"captured_at"`
	Accuracy       float64  `json:"accuracy"`
	LocationSource string   `json:"location_source"`
	BearingSource  string   `json:"bearing_source"`
	Orientation    *uint16  `json:"orientation_code,omitempty"`
}

// UploadMetadataRequest is the "metadata" form field accompanying a photo
// upload. Latitude and longitude are mandatory; everything else is optional
// and gets normalized server-side.
type UploadMetadataRequest struct {
	Latitude       *float64 `json:"latitude" validate:"required"`
	Longitude      *float64 `json:"longitude" validate:"required"`
	Altitude       *float64 `json:"altitude"`
	Bearing        *float64 `json:"bearing"`
	CapturedAt     int64    `json:"captured_at"`
	Accuracy       float64  `json:"accuracy"`
	LocationSource string   `json:"location_source" validate:"max=64"`
	BearingSource  string   `json:"bearing_source" validate:"max=64"`
	Orientation    *uint16  `json:"orientation_code"`
	Hidden         bool     `json:"hidden"`
}

func (r *UploadMetadataRequest) ToMetadata() PhotoMetadata {
	return PhotoMetadata{
		Latitude:       *r.Latitude,
		Longitude:      *r.Longitude,
		Altitude:       r.Altitude,
		Bearing:        r.Bearing,
		CapturedAt:     r.CapturedAt,
		Accuracy:       r.Accuracy,
		LocationSource: r.LocationSource,
		BearingSource:  r.BearingSource,
		Orientation:    r.Orientation,
	}
}

// Provenance is the payload serialized into the EXIF UserComment tag.
type Provenance struct {
	LocationSource string `json:"location_source"`
	BearingSource  string `json:"bearing_source"`
}

const ProvenanceUnknown = "unknown"

func (m *PhotoMetadata) Provenance() Provenance {
	p := Provenance{LocationSource: m.LocationSource, BearingSource: m.BearingSource}
	if p.LocationSource == "" {
		p.LocationSource = ProvenanceUnknown
	}
	if p.BearingSource == "" {
		p.BearingSource = ProvenanceUnknown
	}
	return p
}
