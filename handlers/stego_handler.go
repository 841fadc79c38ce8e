// Package handlers is made to handle requests
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"steganography-codecs/codec"
	"steganography-codecs/models"
	"steganography-codecs/quality"
	"steganography-codecs/stego"
)

type StegoHandler struct {
	registry *codec.Registry
	config   *models.ServerConfig
}

func NewStegoHandler(registry *codec.Registry, config *models.ServerConfig) *StegoHandler {
	return &StegoHandler{
		registry: registry,
		config:   config,
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": "1.0.0",
	})
}

func (h *StegoHandler) ListCodecs(c *gin.Context) {
	kinds := h.registry.Kinds()
	infos := make([]models.CodecInfo, 0, len(kinds))
	for _, kind := range kinds {
		impl, _ := h.registry.Lookup(kind)
		_, lossy := impl.(codec.Signaler)
		infos = append(infos, models.CodecInfo{Name: kind.String(), Lossy: lossy})
	}
	c.JSON(http.StatusOK, models.CodecsResponse{Success: true, Codecs: infos})
}

func (h *StegoHandler) InsertMessage(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}
	kind, impl, ok := h.codecFromForm(c)
	if !ok {
		return
	}

	carrier, carrierName, ok := h.readFormFile(c, "carrier_file", "Carrier file is required")
	if !ok {
		return
	}
	secretData, _, ok := h.readFormFile(c, "secret_file", "Secret file is required")
	if !ok {
		return
	}

	encoded, err := impl.Encode(carrier, secretData)
	if err != nil {
		h.fail(c, fmt.Sprintf("Failed to embed secret data with %s", kind), err)
		return
	}

	if signaler, lossy := impl.(codec.Signaler); lossy {
		psnr, err := measurePSNR(signaler, carrier, encoded)
		if err != nil {
			h.fail(c, "Failed to measure embedding quality", err)
			return
		}
		c.Header("X-Stego-PSNR", quality.FormatPSNR(psnr))
		if quality.ValidatePSNR(psnr, h.config.PSNRThreshold) {
			c.Header("X-Stego-Quality", "ok")
		} else {
			c.Header("X-Stego-Quality", "degraded")
			log.Printf("[%s] %s embedding PSNR %s dB is below %.2f dB",
				requestID(c), kind, quality.FormatPSNR(psnr), h.config.PSNRThreshold)
		}
	}

	ext := filepath.Ext(carrierName)
	outputFilename := fmt.Sprintf("%s_stego%s", strings.TrimSuffix(carrierName, ext), ext)

	c.Header("X-Stego-Method", kind.String())
	c.Header("X-Stego-Message", "Secret data successfully embedded")
	c.Header("X-Stego-Payload-Size", strconv.Itoa(len(secretData)))
	sendFile(c, outputFilename, encoded)
}

func (h *StegoHandler) ExtractMessage(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}
	kind, impl, ok := h.codecFromForm(c)
	if !ok {
		return
	}

	encoded, stegoName, ok := h.readFormFile(c, "stego_file", "Stego file is required")
	if !ok {
		return
	}

	carrier, secretData, err := impl.Decode(encoded)
	if err != nil {
		h.fail(c, fmt.Sprintf("Failed to extract secret data with %s", kind), err)
		return
	}

	outputFilename := c.PostForm("secret_filename")
	if outputFilename == "" {
		outputFilename = strings.TrimSuffix(stegoName, filepath.Ext(stegoName)) + "_secret.bin"
	}

	c.Header("X-Stego-Method", kind.String())
	c.Header("X-Stego-Carrier-Size", strconv.Itoa(len(carrier)))
	sendFile(c, filepath.Base(outputFilename), secretData)
}

func (h *StegoHandler) Capacity(c *gin.Context) {
	if !h.parseForm(c) {
		return
	}
	kind, impl, ok := h.codecFromForm(c)
	if !ok {
		return
	}

	capacitor, ok := impl.(codec.Capacitor)
	if !ok {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Codec %s cannot report its capacity", kind))
		return
	}

	carrier, _, ok := h.readFormFile(c, "carrier_file", "Carrier file is required")
	if !ok {
		return
	}

	capacity, err := capacitor.Capacity(carrier)
	if err != nil {
		h.fail(c, "Failed to calculate capacity", err)
		return
	}

	c.JSON(http.StatusOK, models.CapacityResponse{
		Success:   true,
		Codec:     kind.String(),
		Capacity:  capacity,
		Unbounded: capacity == codec.Unbounded,
		RequestID: requestID(c),
	})
}

func (h *StegoHandler) parseForm(c *gin.Context) bool {
	if err := c.Request.ParseMultipartForm(h.config.MaxUploadBytes()); err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return false
	}
	return true
}

// codecFromForm resolves the "codec" form field. The JPEG segment codec
// honours an optional "start_index" field.
func (h *StegoHandler) codecFromForm(c *gin.Context) (codec.Kind, codec.Codec, bool) {
	kind, err := codec.ParseKind(c.PostForm("codec"))
	if err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid codec: %v", err))
		return codec.KindUnknown, nil, false
	}
	impl, ok := h.registry.Lookup(kind)
	if !ok {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Codec %s is not enabled", kind))
		return codec.KindUnknown, nil, false
	}

	if startIndex := c.PostForm("start_index"); startIndex != "" && kind == codec.KindJPEGSegment {
		index, err := strconv.Atoi(startIndex)
		if err != nil || index < 0 {
			h.respondError(c, http.StatusBadRequest, "Start index must be a non-negative integer")
			return codec.KindUnknown, nil, false
		}
		impl = stego.NewJPEGSegment(index)
	}
	return kind, impl, true
}

func (h *StegoHandler) readFormFile(c *gin.Context, field, missing string) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, missing)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to read %s: %v", field, err))
		return nil, "", false
	}
	return data, header.Filename, true
}

// fail maps a codec error onto an HTTP status.
func (h *StegoHandler) fail(c *gin.Context, message string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s: %v", requestID(c), message, err)
	}
	h.respondError(c, status, fmt.Sprintf("%s: %v", message, err))
}

func (h *StegoHandler) respondError(c *gin.Context, status int, message string) {
	c.JSON(status, models.StegoResponse{
		Success:   false,
		Message:   message,
		RequestID: requestID(c),
	})
}

// StatusFor returns the HTTP status for an error returned by a codec.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, codec.ErrNotEncoded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, codec.ErrInvalid), errors.Is(err, codec.ErrDependency):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func measurePSNR(signaler codec.Signaler, carrier, encoded []byte) (float64, error) {
	original, err := signaler.Signal(carrier)
	if err != nil {
		return 0, err
	}
	modified, err := signaler.Signal(encoded)
	if err != nil {
		return 0, err
	}
	return quality.CalculatePSNR(original, modified), nil
}

func sendFile(c *gin.Context, filename string, data []byte) {
	contentType := http.DetectContentType(data)

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", strconv.Itoa(len(data)))

	c.Data(http.StatusOK, contentType, data)
}
