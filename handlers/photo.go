package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/yourusername/vista/middleware"
	"github.com/yourusername/vista/models"
	"github.com/yourusername/vista/services"
)

type PhotoHandler struct {
	photoRepo  models.PhotoRepositoryInterface
	deviceRepo models.DeviceRepositoryInterface
	storage    services.Storage
	limiter    *services.UploadLimiter
	validator  *validator.Validate
	fileCheck  *services.FileValidator
	config     services.Config
}

func NewPhotoHandler(photoRepo models.PhotoRepositoryInterface, deviceRepo models.DeviceRepositoryInterface, storage services.Storage, limiter *services.UploadLimiter, config services.Config) *PhotoHandler {
	return &PhotoHandler{
		photoRepo:  photoRepo,
		deviceRepo: deviceRepo,
		storage:    storage,
		limiter:    limiter,
		validator:  validator.New(),
		fileCheck:  services.NewFileValidator(int64(config.Upload.MaxFileSizeMB)*1024*1024, config.Upload.MaxDimension),
		config:     config,
	}
}

// Upload accepts a multipart JPEG plus a JSON "metadata" field, embeds the
// metadata into the file's EXIF segment, stores the result, and indexes it.
func (h *PhotoHandler) Upload(c *fiber.Ctx) error {
	deviceID := middleware.GetDeviceID(c)
	if deviceID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	if h.limiter != nil && !h.limiter.Allow(deviceID.String()) {
		c.Set("X-RateLimit-Remaining", "0")
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Upload limit reached, try again later"})
	}
	if h.limiter != nil {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(h.limiter.Remaining(deviceID.String())))
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No photo file provided"})
	}

	var req models.UploadMetadataRequest
	metaField := c.FormValue("metadata")
	if metaField == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing metadata field"})
	}
	if err := json.Unmarshal([]byte(metaField), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid metadata JSON"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": err.Error()})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open uploaded file"})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}

	if err := h.fileCheck.ValidateJPEG(file.Filename, data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tagged, meta, err := services.EmbedMetadata(data, req.ToMetadata())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to embed metadata", "details": err.Error()})
	}

	imageMeta, err := services.ProcessImage(tagged)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to process image"})
	}

	filename := uuid.New().String() + ".jpg"
	key := services.PhotoKey(filename, req.Hidden)
	url, err := h.storage.Save(c.Context(), key, bytes.NewReader(tagged), "image/jpeg")
	if err != nil {
		log.Printf("storage save failed for %s: %v", key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store photo"})
	}

	originalName := file.Filename
	fileSize := len(tagged)
	orientation := 1
	if meta.Orientation != nil {
		orientation = int(*meta.Orientation)
	}

	photo := &models.Photo{
		DeviceID:       deviceID,
		Filename:       filename,
		OriginalName:   &originalName,
		FileSize:       &fileSize,
		Width:          &imageMeta.Width,
		Height:         &imageMeta.Height,
		Blurhash:       &imageMeta.Blurhash,
		DominantColor:  &imageMeta.DominantColor,
		Latitude:       meta.Latitude,
		Longitude:      meta.Longitude,
		Altitude:       meta.Altitude,
		Bearing:        meta.Bearing,
		Accuracy:       meta.Accuracy,
		CapturedAt:     meta.CapturedAt,
		LocationSource: meta.LocationSource,
		BearingSource:  meta.BearingSource,
		Orientation:    orientation,
		Hidden:         req.Hidden,
	}
	if err := h.photoRepo.Create(photo); err != nil {
		_ = h.storage.Delete(c.Context(), key)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to index photo"})
	}

	_ = h.deviceRepo.TouchLastSeen(deviceID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"photo":    photo.ToResponse(url),
		"metadata": meta,
	})
}

// List returns the device's photos, newest first, optionally restricted to a
// bounding box given as bbox=minLat,minLon,maxLat,maxLon.
func (h *PhotoHandler) List(c *fiber.Ctx) error {
	deviceID := middleware.GetDeviceID(c)
	if deviceID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var bbox *models.BoundingBox
	if raw := c.Query("bbox"); raw != "" {
		parsed, err := parseBBox(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bbox, expected minLat,minLon,maxLat,maxLon"})
		}
		bbox = parsed
	}

	photos, total, err := h.photoRepo.GetDevicePhotos(deviceID, page, limit, bbox)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch photos"})
	}

	resp := models.PhotoListResponse{Photos: make([]models.PhotoResponse, 0, len(photos)), Page: page, Total: total}
	for i := range photos {
		url := h.storage.PublicURL(services.PhotoKey(photos[i].Filename, photos[i].Hidden))
		resp.Photos = append(resp.Photos, photos[i].ToResponse(url))
	}
	return c.JSON(resp)
}

// Get returns one indexed photo with its reconstructed capture metadata.
func (h *PhotoHandler) Get(c *fiber.Ctx) error {
	deviceID := middleware.GetDeviceID(c)
	if deviceID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid photo ID"})
	}

	photo, err := h.photoRepo.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Photo not found"})
	}
	if photo.DeviceID != deviceID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your photo"})
	}

	url := h.storage.PublicURL(services.PhotoKey(photo.Filename, photo.Hidden))
	return c.JSON(fiber.Map{
		"photo":    photo.ToResponse(url),
		"metadata": photo.Metadata(),
	})
}

// Delete removes the photo from the index and storage.
func (h *PhotoHandler) Delete(c *fiber.Ctx) error {
	deviceID := middleware.GetDeviceID(c)
	if deviceID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid photo ID"})
	}

	photo, err := h.photoRepo.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Photo not found"})
	}
	if photo.DeviceID != deviceID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your photo"})
	}

	deleted, err := h.photoRepo.Delete(id, deviceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete photo"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Photo not found"})
	}
	if err := h.storage.Delete(c.Context(), services.PhotoKey(photo.Filename, photo.Hidden)); err != nil {
		log.Printf("failed to delete stored object for photo %s: %v", id, err)
	}
	return c.JSON(fiber.Map{"message": "Photo deleted"})
}

func parseBBox(raw string) (*models.BoundingBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, errors.New("bbox needs 4 values")
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	b := &models.BoundingBox{MinLat: vals[0], MinLon: vals[1], MaxLat: vals[2], MaxLon: vals[3]}
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return nil, errors.New("bbox min exceeds max")
	}
	return b, nil
}
