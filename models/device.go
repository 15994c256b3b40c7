package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Device struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Platform   string    `json:"platform" db:"platform"`
	SecretHash string    `json:"-" db:"secret_hash"`
	IsDisabled bool      `json:"is_disabled" db:"is_disabled"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at" db:"last_seen_at"`
}

type RegisterDeviceRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Platform string `json:"platform" validate:"required,oneof=android ios desktop"`
	Secret   string `json:"secret" validate:"required,min=16"`
}

type DeviceLoginRequest struct {
	DeviceID string `json:"device_id" validate:"required,uuid4"`
	Secret   string `json:"secret" validate:"required"`
}

type DeviceResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

func (d *Device) HashSecret(secret string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	d.SecretHash = string(hashed)
	return nil
}

func (d *Device) CheckSecret(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(d.SecretHash), []byte(secret)) == nil
}

func (d *Device) ToResponse() DeviceResponse {
	return DeviceResponse{
		ID:        d.ID,
		Name:      d.Name,
		Platform:  d.Platform,
		CreatedAt: d.CreatedAt,
	}
}
