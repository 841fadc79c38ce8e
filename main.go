package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"steganography-codecs/handlers"
	"steganography-codecs/models"
	"steganography-codecs/stego"
)

func main() {
	serverConfig, err := models.LoadServerConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	router := gin.Default()
	router.MaxMultipartMemory = serverConfig.MaxUploadBytes()

	config := cors.DefaultConfig()
	config.AllowOrigins = serverConfig.CORSOrigins
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"}
	config.ExposeHeaders = []string{
		"X-Stego-PSNR", "X-Stego-Quality", "X-Stego-Message", "X-Stego-Method",
		"X-Stego-Payload-Size", "X-Stego-Carrier-Size", "X-Request-ID", "Content-Disposition",
	}
	config.AllowCredentials = true
	router.Use(cors.New(config))
	router.Use(handlers.RequestID())

	registry := stego.NewDefaultRegistry(serverConfig.JPEGStartIndex)
	stegoHandler := handlers.NewStegoHandler(registry, serverConfig)
	handlers.RegisterRoutes(router, stegoHandler)

	log.Printf("Server starting on port %s", serverConfig.Port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/v1/stego/insert   - Embed a secret file into a carrier (returns the stego file)")
	log.Printf("  POST /api/v1/stego/extract  - Extract a secret file from a stego file")
	log.Printf("  POST /api/v1/stego/capacity - Report how many bytes a carrier can hold")
	log.Printf("  GET  /api/v1/codecs         - List available codecs")
	log.Printf("  GET  /api/v1/health         - Health check")
	log.Printf("")
	log.Printf("Codecs:")
	for _, kind := range registry.Kinds() {
		log.Printf("  • %s", kind)
	}
	log.Printf("")
	log.Printf("JPEG comment segments start at index %d; PSNR threshold %.1f dB",
		serverConfig.JPEGStartIndex, serverConfig.PSNRThreshold)

	if err := router.Run(":" + serverConfig.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
