package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/vista/models"
	"github.com/yourusername/vista/services"
)

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 16), uint8(y * 16), 64, 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func taggedJPEG(t *testing.T) []byte {
	t.Helper()
	tagged, _, err := services.EmbedMetadata(testJPEG(t), models.PhotoMetadata{
		Latitude:       48.8566,
		Longitude:      2.3522,
		CapturedAt:     1700000000,
		LocationSource: "gps",
	})
	assert.NoError(t, err)
	return tagged
}

func newExifApp() *fiber.App {
	h := NewExifHandler()
	app := fiber.New()
	app.Post("/decode", h.Decode)
	app.Post("/inspect", h.Inspect)
	app.Post("/strip", h.Strip)
	return app
}

func postBytes(t *testing.T, app *fiber.App, path string, body []byte) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp.StatusCode, raw
}

func TestDecodeEndpoint(t *testing.T) {
	app := newExifApp()

	status, raw := postBytes(t, app, "/decode", taggedJPEG(t))
	assert.Equal(t, fiber.StatusOK, status)

	var body struct {
		Metadata models.PhotoMetadata `json:"metadata"`
	}
	assert.NoError(t, json.Unmarshal(raw, &body))
	assert.InDelta(t, 48.8566, body.Metadata.Latitude, 1e-6)
	assert.InDelta(t, 2.3522, body.Metadata.Longitude, 1e-6)
	assert.Equal(t, "gps", body.Metadata.LocationSource)
}

func TestDecodeEndpointNotJPEG(t *testing.T) {
	app := newExifApp()
	status, _ := postBytes(t, app, "/decode", []byte("this is not a jpeg"))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDecodeEndpointNoExif(t *testing.T) {
	app := newExifApp()
	status, _ := postBytes(t, app, "/decode", testJPEG(t))
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestStripEndpoint(t *testing.T) {
	app := newExifApp()

	status, raw := postBytes(t, app, "/strip", taggedJPEG(t))
	assert.Equal(t, fiber.StatusOK, status)

	_, err := services.FindEXIFSegment(raw)
	assert.ErrorIs(t, err, services.ErrNoExifData)

	_, err = jpeg.DecodeConfig(bytes.NewReader(raw))
	assert.NoError(t, err)
}

func TestStripEndpointNotJPEG(t *testing.T) {
	app := newExifApp()
	status, _ := postBytes(t, app, "/strip", []byte("garbage"))
	assert.Equal(t, fiber.StatusBadRequest, status)
}
