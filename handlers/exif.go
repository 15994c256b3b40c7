package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/yourusername/vista/services"
)

// ExifHandler exposes the metadata codec directly: decode a JPEG's embedded
// capture record, dump all readable EXIF tags, or strip metadata entirely.
type ExifHandler struct{}

func NewExifHandler() *ExifHandler {
	return &ExifHandler{}
}

func readUploadedFile(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("photo")
	if err != nil {
		// Also accept the raw bytes as the request body.
		if body := c.Body(); len(body) > 0 {
			buf := make([]byte, len(body))
			copy(buf, body)
			return buf, nil
		}
		return nil, errors.New("no photo provided")
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// Decode extracts the embedded capture record from a JPEG.
func (h *ExifHandler) Decode(c *fiber.Ctx) error {
	data, err := readUploadedFile(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	meta, err := services.DecodeEXIF(data)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotJPEG):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Not a JPEG file"})
		case errors.Is(err, services.ErrNoExifData):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "No EXIF data found"})
		case errors.Is(err, services.ErrInvalidExifFormat), errors.Is(err, services.ErrMalformedTIFF):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "EXIF data is malformed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to decode EXIF"})
		}
	}
	return c.JSON(fiber.Map{"metadata": meta})
}

// Inspect returns every EXIF tag a general-purpose reader can see in the
// file, useful for checking what third-party tools will make of our output.
func (h *ExifHandler) Inspect(c *fiber.Ctx) error {
	data, err := readUploadedFile(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tags := services.InspectEXIF(data)
	if len(tags) == 0 || string(tags) == "null" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "No EXIF data found"})
	}
	return c.JSON(fiber.Map{"exif": tags})
}

// Strip returns the JPEG with EXIF and XMP segments removed.
func (h *ExifHandler) Strip(c *fiber.Ctx) error {
	data, err := readUploadedFile(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	cleaned, err := services.StripMetadata(data)
	if err != nil {
		if errors.Is(err, services.ErrNotJPEG) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Not a JPEG file"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to strip metadata"})
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(cleaned)
}
