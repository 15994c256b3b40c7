package models

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type DeviceRepository struct {
	db *sqlx.DB
}

func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(device *Device) error {
	query := `
		INSERT INTO devices (name, platform, secret_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, last_seen_at`

	return r.db.QueryRow(query, device.Name, device.Platform, device.SecretHash).
		Scan(&device.ID, &device.CreatedAt, &device.LastSeenAt)
}

func (r *DeviceRepository) GetByID(id uuid.UUID) (*Device, error) {
	var device Device
	query := `SELECT * FROM devices WHERE id = $1`
	err := r.db.Get(&device, query, id)
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *DeviceRepository) TouchLastSeen(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE devices SET last_seen_at = NOW() WHERE id = $1`, id)
	return err
}

type PhotoRepository struct {
	db *sqlx.DB
}

func NewPhotoRepository(db *sqlx.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(photo *Photo) error {
	query := `
		INSERT INTO photos (device_id, filename, original_name, file_size, width, height,
			blurhash, dominant_color, latitude, longitude, altitude, bearing, accuracy,
			captured_at, location_source, bearing_source, orientation, hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at`

	return r.db.QueryRow(query,
		photo.DeviceID, photo.Filename, photo.OriginalName, photo.FileSize,
		photo.Width, photo.Height, photo.Blurhash, photo.DominantColor,
		photo.Latitude, photo.Longitude, photo.Altitude, photo.Bearing, photo.Accuracy,
		photo.CapturedAt, photo.LocationSource, photo.BearingSource, photo.Orientation,
		photo.Hidden).
		Scan(&photo.ID, &photo.CreatedAt)
}

func (r *PhotoRepository) GetByID(id uuid.UUID) (*Photo, error) {
	var photo Photo
	query := `SELECT * FROM photos WHERE id = $1`
	err := r.db.Get(&photo, query, id)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *PhotoRepository) GetDevicePhotos(deviceID uuid.UUID, page, limit int, bbox *BoundingBox) ([]Photo, int, error) {
	offset := (page - 1) * limit

	var photos []Photo
	var total int

	if bbox != nil {
		countQuery := `
			SELECT COUNT(*) FROM photos
			WHERE device_id = $1 AND latitude BETWEEN $2 AND $3 AND longitude BETWEEN $4 AND $5`
		if err := r.db.Get(&total, countQuery, deviceID, bbox.MinLat, bbox.MaxLat, bbox.MinLon, bbox.MaxLon); err != nil {
			return nil, 0, err
		}

		query := `
			SELECT * FROM photos
			WHERE device_id = $1 AND latitude BETWEEN $2 AND $3 AND longitude BETWEEN $4 AND $5
			ORDER BY captured_at DESC
			LIMIT $6 OFFSET $7`
		if err := r.db.Select(&photos, query, deviceID, bbox.MinLat, bbox.MaxLat, bbox.MinLon, bbox.MaxLon, limit, offset); err != nil {
			return nil, 0, err
		}
		return photos, total, nil
	}

	countQuery := `SELECT COUNT(*) FROM photos WHERE device_id = $1`
	if err := r.db.Get(&total, countQuery, deviceID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM photos
		WHERE device_id = $1
		ORDER BY captured_at DESC
		LIMIT $2 OFFSET $3`
	if err := r.db.Select(&photos, query, deviceID, limit, offset); err != nil {
		return nil, 0, err
	}

	return photos, total, nil
}

func (r *PhotoRepository) Delete(id, deviceID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM photos WHERE id = $1 AND device_id = $2`, id, deviceID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
