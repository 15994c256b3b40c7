package models

import "github.com/google/uuid"

type DeviceRepositoryInterface interface {
	Create(device *Device) error
	GetByID(id uuid.UUID) (*Device, error)
	TouchLastSeen(id uuid.UUID) error
}

type PhotoRepositoryInterface interface {
	Create(photo *Photo) error
	GetByID(id uuid.UUID) (*Photo, error)
	GetDevicePhotos(deviceID uuid.UUID, page, limit int, bbox *BoundingBox) ([]Photo, int, error)
	Delete(id, deviceID uuid.UUID) (bool, error)
}
