package main

import (
	"os"

	"github.com/yigit/studentdesk/internal/pkg/logger"
	"github.com/yigit/studentdesk/internal/server"
)

// @title StudentDesk API
// @version 1.0
// @description Student records administration API
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token returned by /auth/login

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until SIGINT or SIGTERM
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
