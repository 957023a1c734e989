package main

import (
	"log"

	"hpoannotate/internal/config"
	"hpoannotate/internal/container"
	"hpoannotate/ui"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatal("Failed to create application container:", err)
	}

	app, err := ui.NewApp(ui.Config{
		Port: appConfig.Server.Port,
	}, appContainer.Service, appContainer.Metrics)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting HPO annotation UI on http://localhost:%s", appConfig.Server.Port)
	log.Fatal(app.Start())
}
