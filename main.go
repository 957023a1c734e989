package main

import (
	"context"
	"log"

	"hpoannotate/internal/config"
	"hpoannotate/internal/container"
	"hpoannotate/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Initialize web server
	server, err := ui.NewServer(appContainer.Service, appContainer.Metrics)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	addr := ":" + appConfig.Server.Port
	if err := server.Start(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
