// Package main starts the Mirepoix API server.
package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/mirepoix/v1/internal/infrastructure/container"
)

func main() {
	// .env is optional; real deployments configure via environment
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	fx.New(container.Module).Run()
}
