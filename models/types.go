// Package models contain needed models
package models

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// StegoResponse represents the JSON body returned when an operation fails
// or when it produces no file.
type StegoResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// CodecInfo describes one registered codec
type CodecInfo struct {
	Name  string `json:"name"`
	Lossy bool   `json:"lossy"`
}

// CodecsResponse lists the codecs the server can use
type CodecsResponse struct {
	Success bool        `json:"success"`
	Codecs  []CodecInfo `json:"codecs"`
}

// CapacityResponse represents the response of a capacity query. Unbounded
// is set when the codec accepts payloads of any size.
type CapacityResponse struct {
	Success   bool   `json:"success"`
	Codec     string `json:"codec"`
	Capacity  int    `json:"capacity"`
	Unbounded bool   `json:"unbounded"`
	RequestID string `json:"request_id,omitempty"`
}

// ServerConfig represents configuration for the HTTP server
type ServerConfig struct {
	Port           string
	CORSOrigins    []string
	MaxUploadMB    int
	JPEGStartIndex int
	// PSNRThreshold is the quality in dB below which an encoding is
	// reported as degraded.
	PSNRThreshold float64
}

// MaxUploadBytes returns the multipart memory limit in bytes.
func (c *ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// DefaultServerConfig returns the configuration used when no environment
// variables are set.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           "8080",
		CORSOrigins:    []string{"http://localhost:3000"},
		MaxUploadMB:    32,
		JPEGStartIndex: 3,
		PSNRThreshold:  30,
	}
}

// LoadServerConfig reads the server configuration from the environment,
// falling back to DefaultServerConfig for unset variables.
func LoadServerConfig() (*ServerConfig, error) {
	return loadServerConfig(os.Getenv)
}

func loadServerConfig(getenv func(string) string) (*ServerConfig, error) {
	config := DefaultServerConfig()

	if port := getenv("PORT"); port != "" {
		config.Port = port
	}

	if origins := getenv("CORS_ORIGINS"); origins != "" {
		config.CORSOrigins = config.CORSOrigins[:0]
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				config.CORSOrigins = append(config.CORSOrigins, origin)
			}
		}
	}

	if v := getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb < 1 {
			return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer, got %q", v)
		}
		config.MaxUploadMB = mb
	}

	if v := getenv("JPEG_START_INDEX"); v != "" {
		index, err := strconv.Atoi(v)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("JPEG_START_INDEX must be a non-negative integer, got %q", v)
		}
		config.JPEGStartIndex = index
	}

	if v := getenv("PSNR_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("PSNR_THRESHOLD must be a number, got %q", v)
		}
		config.PSNRThreshold = threshold
	}

	return config, nil
}
