package models

import (
	"time"

	"github.com/google/uuid"
)

// Photo is one row of the server-side photo index. The geo columns mirror the
// metadata embedded in the stored JPEG so the index can be queried without
// re-reading files.
type Photo struct {
	ID             uuid.UUID `json:"id" db:"id"`
	DeviceID       uuid.UUID `json:"device_id" db:"device_id"`
	Filename       string    `json:"filename" db:"filename"`
	OriginalName   *string   `json:"original_name" db:"original_name"`
	FileSize       *int      `json:"file_size" db:"file_size"`
	Width          *int      `json:"width" db:"width"`
	Height         *int      `json:"height" db:"height"`
	Blurhash       *string   `json:"blurhash" db:"blurhash"`
	DominantColor  *string   `json:"dominant_color" db:"dominant_color"`
	Latitude       float64   `json:"latitude" db:"latitude"`
	Longitude      float64   `json:"longitude" db:"longitude"`
	Altitude       *float64  `json:"altitude" db:"altitude"`
	Bearing        *float64  `json:"bearing" db:"bearing"`
	Accuracy       float64   `json:"accuracy" db:"accuracy"`
	CapturedAt     int64     `json:"captured_at" db:"captured_at"`
	LocationSource string    `json:"location_source" db:"location_source"`
	BearingSource  string    `json:"bearing_source" db:"bearing_source"`
	Orientation    int       `json:"orientation_code" db:"orientation"`
	Hidden         bool      `json:"hidden" db:"hidden"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Metadata reconstructs the capture record from index columns.
func (p *Photo) Metadata() PhotoMetadata {
	o := uint16(p.Orientation)
	return PhotoMetadata{
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Altitude:       p.Altitude,
		Bearing:        p.Bearing,
		CapturedAt:     p.CapturedAt,
		Accuracy:       p.Accuracy,
		LocationSource: p.LocationSource,
		BearingSource:  p.BearingSource,
		Orientation:    &o,
	}
}

type PhotoResponse struct {
	ID            uuid.UUID `json:"id"`
	Filename      string    `json:"filename"`
	URL           string    `json:"url"`
	OriginalName  *string   `json:"original_name"`
	FileSize      *int      `json:"file_size"`
	Width         *int      `json:"width"`
	Height        *int      `json:"height"`
	Blurhash      *string   `json:"blurhash"`
	DominantColor *string   `json:"dominant_color"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Altitude      *float64  `json:"altitude"`
	Bearing       *float64  `json:"bearing"`
	CapturedAt    int64     `json:"captured_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Photo) ToResponse(url string) PhotoResponse {
	return PhotoResponse{
		ID:            p.ID,
		Filename:      p.Filename,
		URL:           url,
		OriginalName:  p.OriginalName,
		FileSize:      p.FileSize,
		Width:         p.Width,
		Height:        p.Height,
		Blurhash:      p.Blurhash,
		DominantColor: p.DominantColor,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		Altitude:      p.Altitude,
		Bearing:       p.Bearing,
		CapturedAt:    p.CapturedAt,
		CreatedAt:     p.CreatedAt,
	}
}

// BoundingBox limits index queries to a geographic window.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

type PhotoListResponse struct {
	Photos []PhotoResponse `json:"photos"`
	Page   int             `json:"page"`
	Total  int             `json:"total"`
}
